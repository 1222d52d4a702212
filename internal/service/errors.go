package service

import (
	"errors"

	"moove/internal/domain"
	"moove/internal/repository"
)

var (
	// ErrVehicleNotAvailable is returned when assigning or booking a vehicle that is not AVAILABLE.
	ErrVehicleNotAvailable = errors.New("vehicle not available")

	// ErrUserAlreadyBooked is returned when a user who holds a vehicle tries to book another.
	ErrUserAlreadyBooked = errors.New("user already has a booked vehicle")

	// ErrNothingToReturn is returned when a user with no booking tries to return a vehicle.
	ErrNothingToReturn = errors.New("user has no vehicle to return")

	// ErrVehicleNotAssigned is returned when unassigning a vehicle with no assigned user.
	ErrVehicleNotAssigned = errors.New("vehicle not assigned to any user")

	// ErrVehicleInUse is returned when removing a vehicle that is currently booked.
	ErrVehicleInUse = errors.New("vehicle is in use")

	// ErrCityRequired is returned when removing a vehicle without naming its city.
	ErrCityRequired = errors.New("city required for vehicle removal")

	// ErrVehicleNotInCity is returned when removing a vehicle from a city it is not in.
	ErrVehicleNotInCity = errors.New("vehicle not found in city")

	// ErrVehicleRemoved is returned when operating on a REMOVED vehicle.
	ErrVehicleRemoved = errors.New("vehicle has been removed")

	// ErrVehicleAlreadyInCity is returned when adding a vehicle to a city it is already in.
	ErrVehicleAlreadyInCity = errors.New("vehicle already in city")

	// ErrVehicleInAnotherCity is returned when adding a vehicle that belongs to another city.
	ErrVehicleInAnotherCity = errors.New("vehicle belongs to another city")

	// ErrInvalidVehicleType is returned when the vehicle type is unknown.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrInvalidVehicleID is returned when vehicle ID is not positive.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidUserID is returned when user ID is not positive.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidCityID is returned when city ID is not positive.
	ErrInvalidCityID = errors.New("invalid city id")
)

// ReasonFor maps an operation error to the reason code carried by events.
func ReasonFor(err error) domain.ReasonCode {
	switch {
	case err == nil:
		return domain.ReasonNone
	case errors.Is(err, ErrVehicleNotAvailable):
		return domain.ReasonVehicleNotAvailable
	case errors.Is(err, ErrUserAlreadyBooked):
		return domain.ReasonUserAlreadyBooked
	case errors.Is(err, ErrNothingToReturn):
		return domain.ReasonNothingToReturn
	case errors.Is(err, ErrVehicleNotAssigned):
		return domain.ReasonVehicleNotAssigned
	case errors.Is(err, ErrVehicleInUse):
		return domain.ReasonVehicleInUse
	case errors.Is(err, ErrCityRequired):
		return domain.ReasonCityRequired
	case errors.Is(err, ErrVehicleNotInCity):
		return domain.ReasonVehicleNotInCity
	case errors.Is(err, ErrVehicleRemoved):
		return domain.ReasonVehicleRemoved
	case errors.Is(err, ErrVehicleAlreadyInCity):
		return domain.ReasonAlreadyInCity
	case errors.Is(err, ErrVehicleInAnotherCity):
		return domain.ReasonInAnotherCity
	case errors.Is(err, repository.ErrNotFound):
		return domain.ReasonNotFound
	case errors.Is(err, ErrInvalidVehicleType),
		errors.Is(err, ErrInvalidVehicleID),
		errors.Is(err, ErrInvalidUserID),
		errors.Is(err, ErrInvalidCityID):
		return domain.ReasonInvalidArgument
	default:
		return domain.ReasonInternal
	}
}
