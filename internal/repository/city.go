package repository

import (
	"context"

	"moove/internal/domain"
)

// CityRepository defines the registry operations for cities and their
// vehicle membership.
type CityRepository interface {
	// Create assigns a new ID to the city and stores it with no members.
	Create(ctx context.Context, city *domain.City) error

	// GetByID retrieves a city by ID.
	GetByID(ctx context.Context, id domain.CityID) (*domain.City, error)

	// GetAll retrieves all cities in creation order.
	GetAll(ctx context.Context) ([]*domain.City, error)

	// AddVehicle appends a vehicle to the city's membership.
	// A vehicle can be a member of at most one city.
	AddVehicle(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID) error

	// RemoveVehicle drops a vehicle from the city's membership.
	// Returns ErrNotMember if it is not there.
	RemoveVehicle(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID) error

	// Members returns the city's vehicle IDs in membership order.
	Members(ctx context.Context, cityID domain.CityID) ([]domain.VehicleID, error)

	// CityOf returns the city a vehicle currently belongs to.
	// Returns ErrNotFound if it belongs to none.
	CityOf(ctx context.Context, vehicleID domain.VehicleID) (domain.CityID, error)
}
