package redis

import (
	"context"

	"moove/internal/domain"
)

// AvailabilityStoreInterface defines the availability projection operations.
type AvailabilityStoreInterface interface {
	MarkAvailable(ctx context.Context, cityID domain.CityID, vehicle *domain.Vehicle) error
	MarkUnavailable(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID) error
	Reset(ctx context.Context, cityID domain.CityID) error
	Invalidate(ctx context.Context, cityID domain.CityID) error
	AvailableVehicles(ctx context.Context, cityID domain.CityID) ([]domain.VehicleID, error)
}

// Ensure concrete types implement interfaces.
var (
	_ AvailabilityStoreInterface = (*AvailabilityStore)(nil)
)
