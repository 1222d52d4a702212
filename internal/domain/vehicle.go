package domain

import "time"

// VehicleID identifies a vehicle. The zero value means "no vehicle".
type VehicleID int64

// VehicleType is the kind of vehicle in the fleet.
type VehicleType string

const (
	VehicleTypeBike     VehicleType = "BIKE"
	VehicleTypeScooter  VehicleType = "SCOOTER"
	VehicleTypeEScooter VehicleType = "E_SCOOTER"
)

// DisplayName returns the human readable name of the vehicle type.
func (t VehicleType) DisplayName() string {
	switch t {
	case VehicleTypeBike:
		return "Bike"
	case VehicleTypeScooter:
		return "Scooter"
	case VehicleTypeEScooter:
		return "E-Scooter"
	default:
		return string(t)
	}
}

// Valid reports whether t is one of the known vehicle types.
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleTypeBike, VehicleTypeScooter, VehicleTypeEScooter:
		return true
	}
	return false
}

// VehicleStatus represents the lifecycle status of a vehicle.
type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "AVAILABLE"
	VehicleStatusInUse     VehicleStatus = "IN_USE"
	VehicleStatusRemoved   VehicleStatus = "REMOVED" // terminal
)

// Vehicle represents a shared vehicle in the fleet.
type Vehicle struct {
	ID             VehicleID
	Type           VehicleType
	Status         VehicleStatus
	AssignedUserID UserID // set iff Status is IN_USE
	CreatedAt      time.Time
}

// IsAssigned reports whether the vehicle currently has an assigned user.
func (v *Vehicle) IsAssigned() bool {
	return v.AssignedUserID != 0
}
