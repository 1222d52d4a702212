package repository

import (
	"context"

	"moove/internal/domain"
)

// VehicleRepository defines the registry operations for vehicles.
type VehicleRepository interface {
	// Create assigns a new ID to the vehicle and stores it as AVAILABLE
	// with no assigned user.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id domain.VehicleID) (*domain.Vehicle, error)

	// GetAll retrieves all vehicles in creation order, including removed ones.
	GetAll(ctx context.Context) ([]*domain.Vehicle, error)

	// Update replaces the stored vehicle.
	Update(ctx context.Context, vehicle *domain.Vehicle) error
}
