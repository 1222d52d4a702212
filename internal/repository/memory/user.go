package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"moove/internal/domain"
	"moove/internal/identity"
	"moove/internal/repository"
)

// UserRegistry owns every registered user and their booking reference.
type UserRegistry struct {
	mu    sync.RWMutex
	ids   *identity.Allocator
	users map[domain.UserID]*domain.User
	order []domain.UserID
}

// NewUserRegistry creates a new UserRegistry.
func NewUserRegistry(ids *identity.Allocator) *UserRegistry {
	return &UserRegistry{
		ids:   ids,
		users: make(map[domain.UserID]*domain.User),
	}
}

// Create allocates an ID and stores the user with no booking.
func (r *UserRegistry) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = r.ids.NextUserID()
	user.BookedVehicleID = 0
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	stored := *user
	r.users[user.ID] = &stored
	r.order = append(r.order, user.ID)
	return nil
}

// GetByID returns a copy of the user.
func (r *UserRegistry) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

// GetAll returns copies of all users in creation order.
func (r *UserRegistry) GetAll(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.User, 0, len(r.order))
	for _, id := range r.order {
		copy := *r.users[id]
		result = append(result, &copy)
	}
	return result, nil
}

// Update replaces the stored user.
func (r *UserRegistry) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

// Remove drops the user from the registry.
func (r *UserRegistry) Remove(ctx context.Context, id domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	if idx := slices.Index(r.order, id); idx != -1 {
		r.order = slices.Delete(r.order, idx, idx+1)
	}
	return nil
}
