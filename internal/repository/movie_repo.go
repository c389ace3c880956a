package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cinema-api/internal/model"
)

type MovieRepository struct {
	pool *pgxpool.Pool
}

func NewMovieRepository(pool *pgxpool.Pool) *MovieRepository {
	return &MovieRepository{pool: pool}
}

const movieColumns = `id, name, description, language, duration, playing_date, playing_time,
	ticket_price, rating, genre, trailer_url, image_url`

func scanMovie(row pgx.Row) (model.Movie, error) {
	var m model.Movie
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Language, &m.Duration, &m.PlayingDate,
		&m.PlayingTime, &m.TicketPrice, &m.Rating, &m.Genre, &m.TrailerURL, &m.ImageURL)
	return m, err
}

// List returns one page of movies ordered by rating. Sort "desc" reverses the
// order; anything else is ascending.
func (r *MovieRepository) List(ctx context.Context, query model.MovieQuery) ([]model.MovieListItem, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&total); err != nil {
		return nil, 0, storeError("count movies", err)
	}

	order := "ASC"
	if query.Sort == "desc" {
		order = "DESC"
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, duration, language, rating, genre, image_url
		 FROM movies
		 ORDER BY rating `+order+`, id
		 LIMIT $1 OFFSET $2`,
		query.PageSize, (query.Page-1)*query.PageSize)
	if err != nil {
		return nil, 0, storeError("list movies", err)
	}
	defer rows.Close()

	items := make([]model.MovieListItem, 0, query.PageSize)
	for rows.Next() {
		var m model.MovieListItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Duration, &m.Language, &m.Rating, &m.Genre, &m.ImageURL); err != nil {
			return nil, 0, storeError("scan movie", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeError("iterate movies", err)
	}

	return items, total, nil
}

func (r *MovieRepository) Get(ctx context.Context, id int64) (model.Movie, error) {
	m, err := scanMovie(r.pool.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Movie{}, model.ErrMovieNotFound
	}
	if err != nil {
		return model.Movie{}, storeError("get movie", err)
	}
	return m, nil
}

// SearchByPrefix matches names starting with prefix, case-sensitively.
func (r *MovieRepository) SearchByPrefix(ctx context.Context, prefix string) ([]model.MovieSearchItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, image_url FROM movies WHERE starts_with(name, $1) ORDER BY name, id`, prefix)
	if err != nil {
		return nil, storeError("search movies", err)
	}
	defer rows.Close()

	items := make([]model.MovieSearchItem, 0)
	for rows.Next() {
		var m model.MovieSearchItem
		if err := rows.Scan(&m.ID, &m.Name, &m.ImageURL); err != nil {
			return nil, storeError("scan movie", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate movies", err)
	}
	return items, nil
}

func (r *MovieRepository) Create(ctx context.Context, m model.Movie) (model.Movie, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO movies (name, description, language, duration, playing_date, playing_time,
		                     ticket_price, rating, genre, trailer_url, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		m.Name, m.Description, m.Language, m.Duration, m.PlayingDate, m.PlayingTime,
		m.TicketPrice, m.Rating, m.Genre, m.TrailerURL, m.ImageURL).Scan(&m.ID)
	if err != nil {
		return model.Movie{}, storeError("create movie", err)
	}
	return m, nil
}

func (r *MovieRepository) Update(ctx context.Context, m model.Movie) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE movies SET name = $2, description = $3, language = $4, duration = $5,
		        playing_date = $6, playing_time = $7, ticket_price = $8, rating = $9,
		        genre = $10, trailer_url = $11, image_url = $12
		 WHERE id = $1`,
		m.ID, m.Name, m.Description, m.Language, m.Duration, m.PlayingDate, m.PlayingTime,
		m.TicketPrice, m.Rating, m.Genre, m.TrailerURL, m.ImageURL)
	if err != nil {
		return storeError("update movie", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMovieNotFound
	}
	return nil
}

func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return storeError("delete movie", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMovieNotFound
	}
	return nil
}
