package memory

import (
	"context"
	"sync"

	"moove/internal/domain"
	"moove/internal/repository"
)

// EventLog is an in-process, append-only event journal.
type EventLog struct {
	mu     sync.RWMutex
	events []domain.Event
}

// NewEventLog creates a new EventLog.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Append stores an event.
func (l *EventLog) Append(ctx context.Context, event domain.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// List returns events matching the filter, oldest first.
func (l *EventLog) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.Event, 0)
	for _, event := range l.events {
		if filter.Matches(event) {
			result = append(result, event)
		}
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result, nil
}
