package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinema-api/internal/model"
)

// MemoryUserRepository keeps identities in process. The mutex makes the
// existence check and the insert one step, the same guarantee the Postgres
// unique index gives.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]model.Identity
	byID    map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byEmail: make(map[string]model.Identity),
		byID:    make(map[string]string),
	}
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (model.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[model.NormalizeEmail(email)]
	if !ok {
		return model.Identity{}, model.ErrUnknownIdentity
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (model.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email, ok := r.byID[id]
	if !ok {
		return model.Identity{}, model.ErrUnknownIdentity
	}
	return r.byEmail[email], nil
}

func (r *MemoryUserRepository) Create(ctx context.Context, u model.Identity) (model.Identity, error) {
	if err := ctx.Err(); err != nil {
		return model.Identity{}, storeError("create user", err)
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = model.NormalizeEmail(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return model.Identity{}, fmt.Errorf("create user: %w", model.ErrDuplicateIdentity)
	}
	r.byEmail[u.Email] = u
	r.byID[u.ID] = u.Email
	return u, nil
}

func (r *MemoryUserRepository) Ping(context.Context) error {
	return nil
}

func (r *MemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}
