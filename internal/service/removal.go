package service

import (
	"context"
	"errors"

	"moove/internal/domain"
	"moove/internal/repository"
)

// RemovalService removes vehicles and users without breaking active
// assignments. An IN_USE vehicle is never force-removed; a departing user's
// booking is returned first.
type RemovalService struct {
	vehicleRepo repository.VehicleRepository
	userRepo    repository.UserRepository
	cityRepo    repository.CityRepository
	locks       *LockManager
	assignments *AssignmentService
	events      emitter
}

// NewRemovalService creates a new RemovalService. It shares the lock manager
// of the assignment service it cascades into.
func NewRemovalService(
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	cityRepo repository.CityRepository,
	assignments *AssignmentService,
	observer Observer,
) *RemovalService {
	return &RemovalService{
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		cityRepo:    cityRepo,
		locks:       assignments.locks,
		assignments: assignments,
		events:      newEmitter(observer),
	}
}

// RemoveVehicle drops the vehicle from the city and marks it REMOVED.
// Removing an already REMOVED vehicle succeeds without further changes.
func (s *RemovalService) RemoveVehicle(ctx context.Context, vehicleID domain.VehicleID, cityID domain.CityID) error {
	event := s.events.pending(domain.OperationRemoveVehicle, subject{vehicleID: vehicleID, cityID: cityID})
	return event.deliver(ctx, s.removeVehicle(ctx, vehicleID, cityID, event))
}

func (s *RemovalService) removeVehicle(ctx context.Context, vehicleID domain.VehicleID, cityID domain.CityID, event *pendingEvent) (err error) {
	if cityID == 0 {
		return ErrCityRequired
	}
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
	if _, err := s.cityRepo.GetByID(ctx, cityID); err != nil {
		return err
	}

	if vehicle.Status == domain.VehicleStatusInUse {
		return ErrVehicleInUse
	}

	// The projection is keyed by the vehicle's actual city, which may differ
	// from the one named by the caller.
	homeCityID, homeErr := s.cityRepo.CityOf(ctx, vehicleID)

	err = s.cityRepo.RemoveVehicle(ctx, cityID, vehicleID)
	if err != nil && !errors.Is(err, repository.ErrNotMember) {
		return err
	}

	if vehicle.Status != domain.VehicleStatusRemoved {
		vehicle.Status = domain.VehicleStatusRemoved
		if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
			return err
		}
	}

	if homeErr == nil {
		s.assignments.availability.forget(ctx, homeCityID, vehicleID)
	}
	return nil
}

// RemoveUser returns the user's booked vehicle, if any, and then removes the
// user from the registry.
func (s *RemovalService) RemoveUser(ctx context.Context, userID domain.UserID) error {
	event := s.events.pending(domain.OperationRemoveUser, subject{userID: userID})

	err := validateUserID(userID)
	if err == nil {
		err = s.assignments.withBooking(ctx, userID, func(user *domain.User, vehicle *domain.Vehicle) error {
			if vehicle != nil {
				event.subject.vehicleID = vehicle.ID
				forced := s.assignments.events.pending(domain.OperationReturn, subject{vehicleID: vehicle.ID, userID: user.ID})
				if err := forced.deliver(ctx, s.assignments.unassignLocked(ctx, vehicle, user)); err != nil {
					return event.deliver(ctx, err)
				}
			}
			return event.deliver(ctx, s.userRepo.Remove(ctx, user.ID))
		})
	}
	return event.deliver(ctx, err)
}
