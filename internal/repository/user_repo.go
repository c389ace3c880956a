package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cinema-api/internal/model"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.Identity, error) {
	var u model.Identity
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at
		 FROM users WHERE lower(email) = $1`, model.NormalizeEmail(email)).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Identity{}, model.ErrUnknownIdentity
	}
	if err != nil {
		return model.Identity{}, storeError("find user by email", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.Identity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Identity{}, model.ErrUnknownIdentity
	}

	var u model.Identity
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at
		 FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Identity{}, model.ErrUnknownIdentity
	}
	if err != nil {
		return model.Identity{}, storeError("find user by id", err)
	}
	return u, nil
}

// Create inserts u. The unique index on lower(email) decides races between
// concurrent registrations of the same address.
func (r *UserRepository) Create(ctx context.Context, u model.Identity) (model.Identity, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = model.NormalizeEmail(u.Email)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return model.Identity{}, fmt.Errorf("create user: %w", model.ErrDuplicateIdentity)
		}
		return model.Identity{}, storeError("create user", err)
	}
	return u, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return storeError("ping", err)
	}
	return nil
}
