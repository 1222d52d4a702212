package repository

import (
	"context"

	"moove/internal/domain"
)

// UserRepository defines the registry operations for users.
type UserRepository interface {
	// Create assigns a new ID to the user and stores it with no booking.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)

	// GetAll retrieves all users in creation order.
	GetAll(ctx context.Context) ([]*domain.User, error)

	// Update replaces the stored user.
	Update(ctx context.Context, user *domain.User) error

	// Remove drops the user from the registry. It never touches bookings.
	Remove(ctx context.Context, id domain.UserID) error
}
