package service

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"moove/internal/domain"
	"moove/internal/redis"
	"moove/internal/repository"
)

// VehicleListing is one row of a city's vehicle listing.
type VehicleListing struct {
	ID     domain.VehicleID
	Type   domain.VehicleType
	Status domain.VehicleStatus
}

// CityService manages cities and which vehicles are located in them.
type CityService struct {
	cityRepo     repository.CityRepository
	vehicleRepo  repository.VehicleRepository
	locks        *LockManager
	availability availabilityProjector
	events       emitter
}

// NewCityService creates a new CityService.
// availabilityStore, observer and logger may be nil.
func NewCityService(
	cityRepo repository.CityRepository,
	vehicleRepo repository.VehicleRepository,
	locks *LockManager,
	availabilityStore redis.AvailabilityStoreInterface,
	observer Observer,
	logger *zap.Logger,
) *CityService {
	return &CityService{
		cityRepo:     cityRepo,
		vehicleRepo:  vehicleRepo,
		locks:        locks,
		availability: newAvailabilityProjector(availabilityStore, cityRepo, logger),
		events:       newEmitter(observer),
	}
}

// CreateCity registers a new city. Names are not deduplicated.
func (s *CityService) CreateCity(ctx context.Context, name string) (*domain.City, error) {
	city := &domain.City{Name: name}
	err := s.cityRepo.Create(ctx, city)
	if err == nil {
		s.availability.reset(ctx, city.ID)
	}

	s.events.emit(ctx, domain.OperationCreateCity, subject{cityID: city.ID}, err)
	if err != nil {
		return nil, err
	}
	return city, nil
}

// GetCity retrieves a city by ID.
func (s *CityService) GetCity(ctx context.Context, cityID domain.CityID) (*domain.City, error) {
	if err := validateCityID(cityID); err != nil {
		return nil, err
	}
	return s.cityRepo.GetByID(ctx, cityID)
}

// GetAllCities retrieves all cities.
func (s *CityService) GetAllCities(ctx context.Context) ([]*domain.City, error) {
	return s.cityRepo.GetAll(ctx)
}

// AddVehicle places a vehicle in a city. A vehicle must be removed from its
// current city before it can be added to another, and REMOVED vehicles can
// never be added.
func (s *CityService) AddVehicle(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID) error {
	event := s.events.pending(domain.OperationAddVehicleToCity, subject{vehicleID: vehicleID, cityID: cityID})
	return event.deliver(ctx, s.addVehicle(ctx, cityID, vehicleID, event))
}

func (s *CityService) addVehicle(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID, event *pendingEvent) (err error) {
	if err := validateCityID(cityID); err != nil {
		return err
	}
	if err := validateVehicleID(vehicleID); err != nil {
		return err
	}

	unlock, err := s.locks.Lock(ctx, VehicleKey(vehicleID))
	if err != nil {
		return err
	}
	defer unlock()
	defer func() { event.deliver(ctx, err) }()

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle.Status == domain.VehicleStatusRemoved {
		return ErrVehicleRemoved
	}

	switch err := s.cityRepo.AddVehicle(ctx, cityID, vehicleID); {
	case errors.Is(err, repository.ErrAlreadyMember):
		return ErrVehicleAlreadyInCity
	case errors.Is(err, repository.ErrMemberOfAnotherCity):
		return ErrVehicleInAnotherCity
	case err != nil:
		return err
	}

	s.availability.refreshIn(ctx, cityID, vehicle)
	return nil
}

// RemoveVehicle takes a vehicle out of a city without changing its status.
// Returns ErrVehicleNotInCity if it is not a member.
func (s *CityService) RemoveVehicle(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID) error {
	event := s.events.pending(domain.OperationRemoveVehicleFromCity, subject{vehicleID: vehicleID, cityID: cityID})
	return event.deliver(ctx, s.removeVehicle(ctx, cityID, vehicleID, event))
}

func (s *CityService) removeVehicle(ctx context.Context, cityID domain.CityID, vehicleID domain.VehicleID, event *pendingEvent) (err error) {
	if err := validateCityID(cityID); err != nil {
		return err
	}
	if err := validateVehicleID(vehicleID); err != nil {
		return err
	}

	unlock, err := s.locks.Lock(ctx, VehicleKey(vehicleID))
	if err != nil {
		return err
	}
	defer unlock()
	defer func() { event.deliver(ctx, err) }()

	if _, err := s.vehicleRepo.GetByID(ctx, vehicleID); err != nil {
		return err
	}

	err = s.cityRepo.RemoveVehicle(ctx, cityID, vehicleID)
	if errors.Is(err, repository.ErrNotMember) {
		return ErrVehicleNotInCity
	}
	if err != nil {
		return err
	}

	s.availability.forget(ctx, cityID, vehicleID)
	return nil
}

// ListVehicles returns the city's vehicles in membership order, excluding
// REMOVED ones.
func (s *CityService) ListVehicles(ctx context.Context, cityID domain.CityID) ([]VehicleListing, error) {
	if err := validateCityID(cityID); err != nil {
		return nil, err
	}

	members, err := s.cityRepo.Members(ctx, cityID)
	if err != nil {
		return nil, err
	}

	listing := make([]VehicleListing, 0, len(members))
	for _, id := range members {
		vehicle, err := s.vehicleRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if vehicle.Status == domain.VehicleStatusRemoved {
			continue
		}
		listing = append(listing, VehicleListing{ID: vehicle.ID, Type: vehicle.Type, Status: vehicle.Status})
	}
	return listing, nil
}

// AvailableVehicles returns the city's AVAILABLE vehicles ordered by ID.
// When the Redis projection is configured it is used to pick candidates,
// which are then re-verified against the registries.
func (s *CityService) AvailableVehicles(ctx context.Context, cityID domain.CityID) ([]VehicleListing, error) {
	if err := validateCityID(cityID); err != nil {
		return nil, err
	}
	if _, err := s.cityRepo.GetByID(ctx, cityID); err != nil {
		return nil, err
	}

	candidates, err := s.availabilityCandidates(ctx, cityID)
	if err != nil {
		return nil, err
	}

	available := make([]VehicleListing, 0, len(candidates))
	for _, id := range candidates {
		vehicle, err := s.vehicleRepo.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if vehicle.Status != domain.VehicleStatusAvailable {
			continue
		}
		if home, err := s.cityRepo.CityOf(ctx, id); err != nil || home != cityID {
			continue
		}
		available = append(available, VehicleListing{ID: vehicle.ID, Type: vehicle.Type, Status: vehicle.Status})
	}

	slices.SortFunc(available, func(a, b VehicleListing) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return available, nil
}

// availabilityCandidates reads candidate IDs from the projection, falling
// back to the city's membership if the projection is absent or fails.
func (s *CityService) availabilityCandidates(ctx context.Context, cityID domain.CityID) ([]domain.VehicleID, error) {
	if s.availability.store != nil {
		ids, err := s.availability.store.AvailableVehicles(ctx, cityID)
		if err == nil {
			return ids, nil
		}
	}
	return s.cityRepo.Members(ctx, cityID)
}
