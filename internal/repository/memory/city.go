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

// CityRegistry owns cities and the city-vehicle membership relation.
type CityRegistry struct {
	mu     sync.RWMutex
	ids    *identity.Allocator
	cities map[domain.CityID]*domain.City
	order  []domain.CityID

	// membership indexes the city each vehicle currently belongs to.
	membership map[domain.VehicleID]domain.CityID
}

// NewCityRegistry creates a new CityRegistry.
func NewCityRegistry(ids *identity.Allocator) *CityRegistry {
	return &CityRegistry{
		ids:        ids,
		cities:     make(map[domain.CityID]*domain.City),
		membership: make(map[domain.VehicleID]domain.CityID),
	}
}

// Create allocates an ID and stores the city with no members.
func (r *CityRegistry) Create(ctx context.Context, city *domain.City) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	city.ID = r.ids.NextCityID()
	city.VehicleIDs = nil
	if city.CreatedAt.IsZero() {
		city.CreatedAt = time.Now()
	}

	stored := *city
	r.cities[city.ID] = &stored
	r.order = append(r.order, city.ID)
	return nil
}

// GetByID returns a copy of the city.
func (r *CityRegistry) GetByID(ctx context.Context, id domain.CityID) (*domain.City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	city, ok := r.cities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneCity(city), nil
}

// GetAll returns copies of all cities in creation order.
func (r *CityRegistry) GetAll(ctx context.Context) ([]*domain.City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.City, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, cloneCity(r.cities[id]))
	}
	return result, nil
}

// AddVehicle appends a vehicle to the city's membership.
func (r *CityRegistry) AddVehicle(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	city, ok := r.cities[cityID]
	if !ok {
		return repository.ErrNotFound
	}
	if current, ok := r.membership[vehicleID]; ok {
		if current == cityID {
			return repository.ErrAlreadyMember
		}
		return repository.ErrMemberOfAnotherCity
	}

	city.VehicleIDs = append(city.VehicleIDs, vehicleID)
	r.membership[vehicleID] = cityID
	return nil
}

// RemoveVehicle drops a vehicle from the city's membership.
func (r *CityRegistry) RemoveVehicle(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	city, ok := r.cities[cityID]
	if !ok {
		return repository.ErrNotFound
	}
	idx := slices.Index(city.VehicleIDs, vehicleID)
	if idx == -1 {
		return repository.ErrNotMember
	}

	city.VehicleIDs = slices.Delete(city.VehicleIDs, idx, idx+1)
	delete(r.membership, vehicleID)
	return nil
}

// Members returns a snapshot of the city's vehicle IDs.
func (r *CityRegistry) Members(ctx context.Context, cityID domain.CityID) ([]domain.VehicleID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	city, ok := r.cities[cityID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return slices.Clone(city.VehicleIDs), nil
}

// CityOf returns the city the vehicle belongs to.
func (r *CityRegistry) CityOf(ctx context.Context, vehicleID domain.VehicleID) (domain.CityID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cityID, ok := r.membership[vehicleID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return cityID, nil
}

func cloneCity(city *domain.City) *domain.City {
	cloned := *city
	cloned.VehicleIDs = slices.Clone(city.VehicleIDs)
	return &cloned
}
