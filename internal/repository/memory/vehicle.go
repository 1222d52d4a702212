// Package memory provides the in-process registries that own fleet entities.
package memory

import (
	"context"
	"sync"
	"time"

	"moove/internal/domain"
	"moove/internal/identity"
	"moove/internal/repository"
)

// Ensure registries implement the repository interfaces.
var (
	_ repository.VehicleRepository = (*VehicleRegistry)(nil)
	_ repository.UserRepository    = (*UserRegistry)(nil)
	_ repository.CityRepository    = (*CityRegistry)(nil)
	_ repository.EventRepository   = (*EventLog)(nil)
)

// VehicleRegistry owns every vehicle and its lifecycle status.
type VehicleRegistry struct {
	mu       sync.RWMutex
	ids      *identity.Allocator
	vehicles map[domain.VehicleID]*domain.Vehicle
	order    []domain.VehicleID
}

// NewVehicleRegistry creates a new VehicleRegistry.
func NewVehicleRegistry(ids *identity.Allocator) *VehicleRegistry {
	return &VehicleRegistry{
		ids:      ids,
		vehicles: make(map[domain.VehicleID]*domain.Vehicle),
	}
}

// Create allocates an ID and stores the vehicle as AVAILABLE.
func (r *VehicleRegistry) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vehicle.ID = r.ids.NextVehicleID()
	vehicle.Status = domain.VehicleStatusAvailable
	vehicle.AssignedUserID = 0
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = time.Now()
	}

	stored := *vehicle
	r.vehicles[vehicle.ID] = &stored
	r.order = append(r.order, vehicle.ID)
	return nil
}

// GetByID returns a copy of the vehicle.
func (r *VehicleRegistry) GetByID(ctx context.Context, id domain.VehicleID) (*domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

// GetAll returns copies of all vehicles in creation order.
func (r *VehicleRegistry) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Vehicle, 0, len(r.order))
	for _, id := range r.order {
		copy := *r.vehicles[id]
		result = append(result, &copy)
	}
	return result, nil
}

// Update replaces the stored vehicle.
func (r *VehicleRegistry) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.vehicles[vehicle.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *vehicle
	r.vehicles[vehicle.ID] = &stored
	return nil
}
