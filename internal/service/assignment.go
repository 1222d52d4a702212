package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"moove/internal/domain"
	"moove/internal/redis"
	"moove/internal/repository"
)

// AssignmentService is the vehicle assignment state machine:
// AVAILABLE -> IN_USE -> AVAILABLE. It keeps vehicle.AssignedUserID and
// user.BookedVehicleID pointing at each other.
type AssignmentService struct {
	vehicleRepo  repository.VehicleRepository
	userRepo     repository.UserRepository
	locks        *LockManager
	availability availabilityProjector
	events       emitter
}

// NewAssignmentService creates a new AssignmentService.
// availabilityStore, observer and logger may be nil.
func NewAssignmentService(
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	cityRepo repository.CityRepository,
	locks *LockManager,
	availabilityStore redis.AvailabilityStoreInterface,
	observer Observer,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		vehicleRepo:  vehicleRepo,
		userRepo:     userRepo,
		locks:        locks,
		availability: newAvailabilityProjector(availabilityStore, cityRepo, logger),
		events:       newEmitter(observer),
	}
}

// Assign links an AVAILABLE vehicle to a user with no booking.
func (s *AssignmentService) Assign(ctx context.Context, vehicleID domain.VehicleID, userID domain.UserID) error {
	event := s.events.pending(domain.OperationAssign, subject{vehicleID: vehicleID, userID: userID})

	err := validatePair(vehicleID, userID)
	if err == nil {
		err = s.withPair(ctx, vehicleID, userID, func(vehicle *domain.Vehicle, user *domain.User) error {
			return event.deliver(ctx, s.assignLocked(ctx, vehicle, user))
		})
	}
	return event.deliver(ctx, err)
}

// Unassign releases a vehicle from its assigned user.
func (s *AssignmentService) Unassign(ctx context.Context, vehicleID domain.VehicleID) error {
	event := s.events.pending(domain.OperationUnassign, subject{vehicleID: vehicleID})

	err := validateVehicleID(vehicleID)
	if err == nil {
		err = s.withHolder(ctx, vehicleID, func(vehicle *domain.Vehicle, user *domain.User) error {
			if user == nil {
				return event.deliver(ctx, ErrVehicleNotAssigned)
			}
			event.subject.userID = user.ID
			return event.deliver(ctx, s.unassignLocked(ctx, vehicle, user))
		})
	}
	return event.deliver(ctx, err)
}

// Book assigns a vehicle from the user's side. The vehicle must be AVAILABLE
// and the user must not hold a booking; both are checked under the same locks
// as the assignment itself.
func (s *AssignmentService) Book(ctx context.Context, userID domain.UserID, vehicleID domain.VehicleID) error {
	event := s.events.pending(domain.OperationBook, subject{vehicleID: vehicleID, userID: userID})

	err := validatePair(vehicleID, userID)
	if err == nil {
		err = s.withPair(ctx, vehicleID, userID, func(vehicle *domain.Vehicle, user *domain.User) error {
			return event.deliver(ctx, s.assignLocked(ctx, vehicle, user))
		})
	}
	return event.deliver(ctx, err)
}

// Return releases the vehicle the user currently holds.
func (s *AssignmentService) Return(ctx context.Context, userID domain.UserID) error {
	event := s.events.pending(domain.OperationReturn, subject{userID: userID})

	err := validateUserID(userID)
	if err == nil {
		err = s.withBooking(ctx, userID, func(user *domain.User, vehicle *domain.Vehicle) error {
			if vehicle == nil {
				return event.deliver(ctx, ErrNothingToReturn)
			}
			event.subject.vehicleID = vehicle.ID
			return event.deliver(ctx, s.unassignLocked(ctx, vehicle, user))
		})
	}
	return event.deliver(ctx, err)
}

// assignLocked performs the assignment. Callers hold both entity locks.
func (s *AssignmentService) assignLocked(ctx context.Context, vehicle *domain.Vehicle, user *domain.User) error {
	if vehicle.Status != domain.VehicleStatusAvailable || vehicle.IsAssigned() {
		return ErrVehicleNotAvailable
	}
	if user.HasBooking() {
		return ErrUserAlreadyBooked
	}

	previous := *vehicle
	vehicle.Status = domain.VehicleStatusInUse
	vehicle.AssignedUserID = user.ID
	user.BookedVehicleID = vehicle.ID

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		_ = s.vehicleRepo.Update(ctx, &previous)
		return err
	}

	s.availability.refresh(ctx, vehicle)
	return nil
}

// unassignLocked clears the pairing. Callers hold both entity locks.
func (s *AssignmentService) unassignLocked(ctx context.Context, vehicle *domain.Vehicle, user *domain.User) error {
	if vehicle.AssignedUserID != user.ID || user.BookedVehicleID != vehicle.ID {
		return fmt.Errorf("vehicle %d and user %d are not paired", vehicle.ID, user.ID)
	}

	previous := *user
	user.BookedVehicleID = 0
	vehicle.AssignedUserID = 0
	vehicle.Status = domain.VehicleStatusAvailable

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		_ = s.userRepo.Update(ctx, &previous)
		return err
	}

	s.availability.refresh(ctx, vehicle)
	return nil
}

// withPair locks a vehicle and a user, loads both, and runs fn.
func (s *AssignmentService) withPair(
	ctx context.Context,
	vehicleID domain.VehicleID,
	userID domain.UserID,
	fn func(*domain.Vehicle, *domain.User) error,
) error {
	unlock, err := s.locks.Lock(ctx, VehicleKey(vehicleID), UserKey(userID))
	if err != nil {
		return err
	}
	defer unlock()

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return fn(vehicle, user)
}

// withHolder locks a vehicle together with its assigned user (if any) and
// runs fn. The user is nil when the vehicle is unassigned. If the pairing
// changes between lookup and locking, the lookup is retried.
func (s *AssignmentService) withHolder(
	ctx context.Context,
	vehicleID domain.VehicleID,
	fn func(*domain.Vehicle, *domain.User) error,
) error {
	for {
		snapshot, err := s.vehicleRepo.GetByID(ctx, vehicleID)
		if err != nil {
			return err
		}
		holderID := snapshot.AssignedUserID

		keys := []LockKey{VehicleKey(vehicleID)}
		if holderID != 0 {
			keys = append(keys, UserKey(holderID))
		}
		unlock, err := s.locks.Lock(ctx, keys...)
		if err != nil {
			return err
		}

		vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
		if err != nil {
			unlock()
			return err
		}
		if vehicle.AssignedUserID != holderID {
			unlock()
			continue
		}

		var user *domain.User
		if holderID != 0 {
			user, err = s.userRepo.GetByID(ctx, holderID)
			if err != nil {
				unlock()
				return err
			}
		}

		err = fn(vehicle, user)
		unlock()
		return err
	}
}

// withBooking locks a user together with their booked vehicle (if any) and
// runs fn. The vehicle is nil when the user holds no booking. If the booking
// changes between lookup and locking, the lookup is retried.
func (s *AssignmentService) withBooking(
	ctx context.Context,
	userID domain.UserID,
	fn func(*domain.User, *domain.Vehicle) error,
) error {
	for {
		snapshot, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		bookedID := snapshot.BookedVehicleID

		keys := []LockKey{UserKey(userID)}
		if bookedID != 0 {
			keys = append(keys, VehicleKey(bookedID))
		}
		unlock, err := s.locks.Lock(ctx, keys...)
		if err != nil {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			unlock()
			return err
		}
		if user.BookedVehicleID != bookedID {
			unlock()
			continue
		}

		var vehicle *domain.Vehicle
		if bookedID != 0 {
			vehicle, err = s.vehicleRepo.GetByID(ctx, bookedID)
			if err != nil {
				unlock()
				return err
			}
		}

		err = fn(user, vehicle)
		unlock()
		return err
	}
}

func validatePair(vehicleID domain.VehicleID, userID domain.UserID) error {
	if err := validateVehicleID(vehicleID); err != nil {
		return err
	}
	return validateUserID(userID)
}

func validateVehicleID(id domain.VehicleID) error {
	if id <= 0 {
		return ErrInvalidVehicleID
	}
	return nil
}

func validateUserID(id domain.UserID) error {
	if id <= 0 {
		return ErrInvalidUserID
	}
	return nil
}

func validateCityID(id domain.CityID) error {
	if id <= 0 {
		return ErrInvalidCityID
	}
	return nil
}
