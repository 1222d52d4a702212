package app

import (
	"go.uber.org/zap"

	"moove/internal/handler"
	"moove/internal/identity"
	"moove/internal/redis"
	"moove/internal/repository"
	"moove/internal/repository/memory"
	"moove/internal/service"
)

// Fleet holds the registries and services of one engine instance. Every
// service shares the same lock manager.
type Fleet struct {
	Vehicles *memory.VehicleRegistry
	Users    *memory.UserRegistry
	Cities   *memory.CityRegistry

	VehicleService    *service.VehicleService
	UserService       *service.UserService
	CityService       *service.CityService
	AssignmentService *service.AssignmentService
	RemovalService    *service.RemovalService
}

// NewFleet wires a fleet. availabilityStore, observer and logger may be nil.
func NewFleet(availabilityStore redis.AvailabilityStoreInterface, observer service.Observer, logger *zap.Logger) *Fleet {
	ids := identity.NewAllocator()
	vehicles := memory.NewVehicleRegistry(ids)
	users := memory.NewUserRegistry(ids)
	cities := memory.NewCityRegistry(ids)
	locks := service.NewLockManager()

	assignments := service.NewAssignmentService(vehicles, users, cities, locks, availabilityStore, observer, logger)

	return &Fleet{
		Vehicles:          vehicles,
		Users:             users,
		Cities:            cities,
		VehicleService:    service.NewVehicleService(vehicles, observer),
		UserService:       service.NewUserService(users, observer),
		CityService:       service.NewCityService(cities, vehicles, locks, availabilityStore, observer, logger),
		AssignmentService: assignments,
		RemovalService:    service.NewRemovalService(vehicles, users, cities, assignments, observer),
	}
}

// Handlers builds the HTTP handlers for the fleet. events serves the journal.
func (f *Fleet) Handlers(events repository.EventRepository) (
	*handler.CityHandler,
	*handler.VehicleHandler,
	*handler.UserHandler,
	*handler.EventHandler,
) {
	return handler.NewCityHandler(f.CityService),
		handler.NewVehicleHandler(f.VehicleService, f.RemovalService),
		handler.NewUserHandler(f.UserService, f.AssignmentService, f.RemovalService),
		handler.NewEventHandler(events)
}
