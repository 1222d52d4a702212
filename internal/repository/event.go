package repository

import (
	"context"

	"moove/internal/domain"
)

// EventFilter narrows an event listing. Zero fields match everything.
type EventFilter struct {
	VehicleID domain.VehicleID
	UserID    domain.UserID
	Limit     int
}

// Matches reports whether the event satisfies the filter's ID constraints.
func (f EventFilter) Matches(event domain.Event) bool {
	if f.VehicleID != 0 && event.VehicleID != f.VehicleID {
		return false
	}
	if f.UserID != 0 && event.UserID != f.UserID {
		return false
	}
	return true
}

// EventRepository defines the append-only journal of emitted events.
type EventRepository interface {
	// Append stores an event.
	Append(ctx context.Context, event domain.Event) error

	// List returns events matching the filter, oldest first. With a
	// positive Limit only the most recent Limit events are returned.
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
}
