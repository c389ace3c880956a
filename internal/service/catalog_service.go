package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cinema-api/internal/model"
)

const (
	defaultPageSize = 3
	maxPageSize     = 100
	// keeps (page-1)*size well inside the OFFSET range
	maxPage = 1_000_000
)

type MovieStore interface {
	List(ctx context.Context, query model.MovieQuery) ([]model.MovieListItem, int, error)
	Get(ctx context.Context, id int64) (model.Movie, error)
	SearchByPrefix(ctx context.Context, prefix string) ([]model.MovieSearchItem, error)
	Create(ctx context.Context, movie model.Movie) (model.Movie, error)
	Update(ctx context.Context, movie model.Movie) error
	Delete(ctx context.Context, id int64) error
}

type ReservationStore interface {
	List(ctx context.Context, query model.PageQuery) ([]model.ReservationListItem, int, error)
	Get(ctx context.Context, id int64) (model.ReservationDetail, error)
	Create(ctx context.Context, reservation model.Reservation) (model.Reservation, error)
	Delete(ctx context.Context, id int64) error
}

// ImageStore keeps poster files and returns the public URL they are served at.
type ImageStore interface {
	Save(ctx context.Context, src io.Reader) (string, error)
	Remove(url string) error
}

type MovieService struct {
	movies MovieStore
	images ImageStore
}

func NewMovieService(movies MovieStore, images ImageStore) *MovieService {
	return &MovieService{movies: movies, images: images}
}

func (s *MovieService) List(ctx context.Context, query model.MovieQuery) ([]model.MovieListItem, model.Meta, error) {
	query.Sort = strings.ToLower(strings.TrimSpace(query.Sort))
	if query.Sort != "desc" {
		query.Sort = "asc"
	}
	query.Page, query.PageSize = normalizePage(query.Page, query.PageSize)

	items, total, err := s.movies.List(ctx, query)
	if err != nil {
		return nil, model.Meta{}, err
	}
	return items, *model.NewMeta(query.Page, query.PageSize, total), nil
}

func (s *MovieService) Get(ctx context.Context, id int64) (model.Movie, error) {
	return s.movies.Get(ctx, id)
}

func (s *MovieService) Search(ctx context.Context, name string) ([]model.MovieSearchItem, error) {
	return s.movies.SearchByPrefix(ctx, strings.TrimSpace(name))
}

// Create stores the movie and its optional poster. A poster saved for a
// record that fails to insert is removed again.
func (s *MovieService) Create(ctx context.Context, actor model.Principal, input model.MovieInput, image io.Reader) (model.Movie, error) {
	movie := movieFromInput(input)

	if image != nil {
		url, err := s.images.Save(ctx, image)
		if err != nil {
			return model.Movie{}, err
		}
		movie.ImageURL = url
	}

	created, err := s.movies.Create(ctx, movie)
	if err != nil {
		s.discardImage(movie.ImageURL)
		return model.Movie{}, err
	}

	slog.Info("movie created", "movie_id", created.ID, "by", actor.UserID)
	return created, nil
}

// Update replaces every field of movie id. A new poster replaces the old
// file, which is deleted only after the record is updated.
func (s *MovieService) Update(ctx context.Context, actor model.Principal, id int64, input model.MovieInput, image io.Reader) (model.Movie, error) {
	existing, err := s.movies.Get(ctx, id)
	if err != nil {
		return model.Movie{}, err
	}

	movie := movieFromInput(input)
	movie.ID = id
	movie.ImageURL = existing.ImageURL

	if image != nil {
		url, err := s.images.Save(ctx, image)
		if err != nil {
			return model.Movie{}, err
		}
		movie.ImageURL = url
	}

	if err := s.movies.Update(ctx, movie); err != nil {
		if movie.ImageURL != existing.ImageURL {
			s.discardImage(movie.ImageURL)
		}
		return model.Movie{}, err
	}

	if movie.ImageURL != existing.ImageURL {
		s.discardImage(existing.ImageURL)
	}

	slog.Info("movie updated", "movie_id", id, "by", actor.UserID)
	return movie, nil
}

func (s *MovieService) Delete(ctx context.Context, actor model.Principal, id int64) error {
	existing, err := s.movies.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.movies.Delete(ctx, id); err != nil {
		return err
	}

	s.discardImage(existing.ImageURL)
	slog.Info("movie deleted", "movie_id", id, "by", actor.UserID)
	return nil
}

func (s *MovieService) discardImage(url string) {
	if url == "" || s.images == nil {
		return
	}
	if err := s.images.Remove(url); err != nil {
		slog.Warn("failed to remove movie image", "url", url, "error", err)
	}
}

func movieFromInput(input model.MovieInput) model.Movie {
	return model.Movie{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Language:    input.Language,
		Duration:    input.Duration,
		PlayingDate: input.PlayingDate,
		PlayingTime: input.PlayingTime,
		TicketPrice: input.TicketPrice,
		Rating:      input.Rating,
		Genre:       input.Genre,
		TrailerURL:  input.TrailerURL,
	}
}

type ReservationService struct {
	reservations ReservationStore
	clock        func() time.Time
}

func NewReservationService(reservations ReservationStore, clock func() time.Time) *ReservationService {
	if clock == nil {
		clock = time.Now
	}
	return &ReservationService{reservations: reservations, clock: clock}
}

func (s *ReservationService) List(ctx context.Context, query model.PageQuery) ([]model.ReservationListItem, model.Meta, error) {
	query.Page, query.PageSize = normalizePage(query.Page, query.PageSize)

	items, total, err := s.reservations.List(ctx, query)
	if err != nil {
		return nil, model.Meta{}, err
	}
	return items, *model.NewMeta(query.Page, query.PageSize, total), nil
}

func (s *ReservationService) Get(ctx context.Context, id int64) (model.ReservationDetail, error) {
	return s.reservations.Get(ctx, id)
}

// Create books seats for req.UserID, or for the caller when it is empty.
// The reservation time is always the server's clock.
func (s *ReservationService) Create(ctx context.Context, actor model.Principal, req model.ReservationRequest) (model.Reservation, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = actor.UserID
	}
	if userID == "" {
		return model.Reservation{}, fmt.Errorf("reservation owner is required: %w", model.ErrInvalidInput)
	}

	created, err := s.reservations.Create(ctx, model.Reservation{
		Quantity:        req.Quantity,
		Price:           req.Price,
		Phone:           strings.TrimSpace(req.Phone),
		ReservationTime: s.clock().UTC(),
		MovieID:         req.MovieID,
		UserID:          userID,
	})
	if err != nil {
		if errors.Is(err, model.ErrUnknownIdentity) {
			return model.Reservation{}, fmt.Errorf("reservation owner %s: %w", userID, model.ErrInvalidInput)
		}
		return model.Reservation{}, err
	}

	return created, nil
}

func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	return s.reservations.Delete(ctx, id)
}

func normalizePage(page int, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
