// Package identity issues process-lifetime identifiers for fleet entities.
package identity

import (
	"sync/atomic"

	"moove/internal/domain"
)

// Allocator issues strictly increasing identifiers starting at 1.
// Each entity kind has its own counter; ids are never reused or reset.
type Allocator struct {
	vehicles atomic.Int64
	users    atomic.Int64
	cities   atomic.Int64
}

// NewAllocator creates a new Allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// NextVehicleID returns the next vehicle identifier.
func (a *Allocator) NextVehicleID() domain.VehicleID {
	return domain.VehicleID(a.vehicles.Add(1))
}

// NextUserID returns the next user identifier.
func (a *Allocator) NextUserID() domain.UserID {
	return domain.UserID(a.users.Add(1))
}

// NextCityID returns the next city identifier.
func (a *Allocator) NextCityID() domain.CityID {
	return domain.CityID(a.cities.Add(1))
}
