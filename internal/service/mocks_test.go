package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"cinema-api/internal/model"
)

type mockMovieStore struct {
	mock.Mock
}

func (m *mockMovieStore) List(ctx context.Context, query model.MovieQuery) ([]model.MovieListItem, int, error) {
	args := m.Called(ctx, query)
	items, _ := args.Get(0).([]model.MovieListItem)
	return items, args.Int(1), args.Error(2)
}

func (m *mockMovieStore) Get(ctx context.Context, id int64) (model.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Movie), args.Error(1)
}

func (m *mockMovieStore) SearchByPrefix(ctx context.Context, prefix string) ([]model.MovieSearchItem, error) {
	args := m.Called(ctx, prefix)
	items, _ := args.Get(0).([]model.MovieSearchItem)
	return items, args.Error(1)
}

func (m *mockMovieStore) Create(ctx context.Context, movie model.Movie) (model.Movie, error) {
	args := m.Called(ctx, movie)
	return args.Get(0).(model.Movie), args.Error(1)
}

func (m *mockMovieStore) Update(ctx context.Context, movie model.Movie) error {
	return m.Called(ctx, movie).Error(0)
}

func (m *mockMovieStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockReservationStore struct {
	mock.Mock
}

func (m *mockReservationStore) List(ctx context.Context, query model.PageQuery) ([]model.ReservationListItem, int, error) {
	args := m.Called(ctx, query)
	items, _ := args.Get(0).([]model.ReservationListItem)
	return items, args.Int(1), args.Error(2)
}

func (m *mockReservationStore) Get(ctx context.Context, id int64) (model.ReservationDetail, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.ReservationDetail), args.Error(1)
}

func (m *mockReservationStore) Create(ctx context.Context, reservation model.Reservation) (model.Reservation, error) {
	args := m.Called(ctx, reservation)
	return args.Get(0).(model.Reservation), args.Error(1)
}

func (m *mockReservationStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) Save(ctx context.Context, src io.Reader) (string, error) {
	args := m.Called(ctx, src)
	return args.String(0), args.Error(1)
}

func (m *mockImageStore) Remove(url string) error {
	return m.Called(url).Error(0)
}

type mockAuditStore struct {
	mock.Mock
}

func (m *mockAuditStore) Log(ctx context.Context, entry model.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditStore) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	args := m.Called(ctx, query)
	items, _ := args.Get(0).([]model.AuditEntry)
	return items, args.Get(1).(model.Meta), args.Error(2)
}
