package service

import (
	"context"
	"strings"

	"moove/internal/domain"
	"moove/internal/repository"
)

// VehicleService handles vehicle registration and lookup.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	events      emitter
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(vehicleRepo repository.VehicleRepository, observer Observer) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		events:      newEmitter(observer),
	}
}

// CreateVehicle registers a new AVAILABLE vehicle of the given type.
func (s *VehicleService) CreateVehicle(ctx context.Context, vehicleType domain.VehicleType) (*domain.Vehicle, error) {
	if !vehicleType.Valid() {
		s.events.emit(ctx, domain.OperationCreateVehicle, subject{}, ErrInvalidVehicleType)
		return nil, ErrInvalidVehicleType
	}

	vehicle := &domain.Vehicle{Type: vehicleType}
	err := s.vehicleRepo.Create(ctx, vehicle)

	s.events.emit(ctx, domain.OperationCreateVehicle, subject{vehicleID: vehicle.ID}, err)
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

// GetVehicle retrieves a vehicle by ID, whatever its status.
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID domain.VehicleID) (*domain.Vehicle, error) {
	if err := validateVehicleID(vehicleID); err != nil {
		return nil, err
	}
	return s.vehicleRepo.GetByID(ctx, vehicleID)
}

// GetAllVehicles retrieves every vehicle, including REMOVED ones.
func (s *VehicleService) GetAllVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.GetAll(ctx)
}

// ParseVehicleType accepts either the enum value ("E_SCOOTER") or the
// display name ("E-Scooter"), case-insensitively.
func ParseVehicleType(value string) (domain.VehicleType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")

	switch vt := domain.VehicleType(normalized); vt {
	case domain.VehicleTypeBike, domain.VehicleTypeScooter, domain.VehicleTypeEScooter:
		return vt, nil
	case "ESCOOTER":
		return domain.VehicleTypeEScooter, nil
	default:
		return "", ErrInvalidVehicleType
	}
}
