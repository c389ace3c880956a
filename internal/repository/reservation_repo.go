package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cinema-api/internal/model"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) List(ctx context.Context, query model.PageQuery) ([]model.ReservationListItem, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&total); err != nil {
		return nil, 0, storeError("count reservations", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.reservation_time, u.name, m.name
		 FROM reservations r
		 JOIN users u ON u.id = r.user_id
		 JOIN movies m ON m.id = r.movie_id
		 ORDER BY r.id
		 LIMIT $1 OFFSET $2`,
		query.PageSize, (query.Page-1)*query.PageSize)
	if err != nil {
		return nil, 0, storeError("list reservations", err)
	}
	defer rows.Close()

	items := make([]model.ReservationListItem, 0, query.PageSize)
	for rows.Next() {
		var item model.ReservationListItem
		if err := rows.Scan(&item.ID, &item.ReservationTime, &item.CustomerName, &item.MovieName); err != nil {
			return nil, 0, storeError("scan reservation", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeError("iterate reservations", err)
	}

	return items, total, nil
}

func (r *ReservationRepository) Get(ctx context.Context, id int64) (model.ReservationDetail, error) {
	var d model.ReservationDetail
	err := r.pool.QueryRow(ctx,
		`SELECT r.id, r.reservation_time, u.name, m.name, u.email, r.quantity, r.price, r.phone,
		        m.playing_date, m.playing_time
		 FROM reservations r
		 JOIN users u ON u.id = r.user_id
		 JOIN movies m ON m.id = r.movie_id
		 WHERE r.id = $1`, id).
		Scan(&d.ID, &d.ReservationTime, &d.CustomerName, &d.MovieName, &d.Email, &d.Quantity,
			&d.Price, &d.Phone, &d.PlayingDate, &d.PlayingTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ReservationDetail{}, model.ErrReservationNotFound
	}
	if err != nil {
		return model.ReservationDetail{}, storeError("get reservation", err)
	}
	return d, nil
}

func (r *ReservationRepository) Create(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reservations (quantity, price, phone, reservation_time, movie_id, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		res.Quantity, res.Price, res.Phone, res.ReservationTime, res.MovieID, res.UserID).Scan(&res.ID)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgForeignKeyViolation {
			if strings.Contains(constraint, "user") {
				return model.Reservation{}, model.ErrUnknownIdentity
			}
			return model.Reservation{}, model.ErrMovieNotFound
		}
		return model.Reservation{}, storeError("create reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return storeError("delete reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReservationNotFound
	}
	return nil
}
