package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"

	"moove/internal/domain"
	"moove/internal/repository"
)

// Observer receives the structured event emitted for every operation outcome.
// Observe must not call back into the services.
type Observer interface {
	Observe(ctx context.Context, event domain.Event)
}

// Observers fans an event out to each observer in order.
type Observers []Observer

// Observe delivers the event to every non-nil observer.
func (o Observers) Observe(ctx context.Context, event domain.Event) {
	for _, observer := range o {
		if observer != nil {
			observer.Observe(ctx, event)
		}
	}
}

// EventCollector keeps every observed event in memory.
type EventCollector struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewEventCollector creates a new EventCollector.
func NewEventCollector() *EventCollector {
	return &EventCollector{}
}

// Observe records the event.
func (c *EventCollector) Observe(ctx context.Context, event domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Events returns a copy of the recorded events.
func (c *EventCollector) Events() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Event, len(c.events))
	copy(out, c.events)
	return out
}

// Last returns the most recent event, if any.
func (c *EventCollector) Last() (domain.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return domain.Event{}, false
	}
	return c.events[len(c.events)-1], true
}

// Reset drops all recorded events.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// LogObserver writes events to a zap logger. Rejections log at warn level.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates a new LogObserver.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger.Named("events")}
}

// Observe logs the event.
func (o *LogObserver) Observe(ctx context.Context, event domain.Event) {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("operation", string(event.Operation)),
		zap.String("outcome", string(event.Outcome)),
	}
	if event.VehicleID != 0 {
		fields = append(fields, zap.Int64("vehicle_id", int64(event.VehicleID)))
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Int64("user_id", int64(event.UserID)))
	}
	if event.CityID != 0 {
		fields = append(fields, zap.Int64("city_id", int64(event.CityID)))
	}

	if event.Outcome == domain.OutcomeRejected {
		o.logger.Warn("operation rejected", append(fields, zap.String("reason", string(event.Reason)))...)
		return
	}
	o.logger.Info("operation succeeded", fields...)
}

// JournalObserver appends events to an event repository.
// Append failures are logged and never fail the operation.
type JournalObserver struct {
	events repository.EventRepository
	logger *zap.Logger
}

// NewJournalObserver creates a new JournalObserver.
func NewJournalObserver(events repository.EventRepository, logger *zap.Logger) *JournalObserver {
	return &JournalObserver{events: events, logger: logger}
}

// Observe appends the event to the journal.
func (o *JournalObserver) Observe(ctx context.Context, event domain.Event) {
	if err := o.events.Append(context.WithoutCancel(ctx), event); err != nil && o.logger != nil {
		o.logger.Error("failed to journal event", zap.String("event_id", event.ID), zap.Error(err))
	}
}

// newRelicEventType is the custom event type recorded in New Relic.
const newRelicEventType = "MooveEvent"

// NewRelicObserver records events as New Relic custom events.
type NewRelicObserver struct {
	app *newrelic.Application
}

// NewNewRelicObserver creates a new NewRelicObserver.
func NewNewRelicObserver(app *newrelic.Application) *NewRelicObserver {
	return &NewRelicObserver{app: app}
}

// Observe records the event.
func (o *NewRelicObserver) Observe(ctx context.Context, event domain.Event) {
	if o.app == nil {
		return
	}
	o.app.RecordCustomEvent(newRelicEventType, map[string]interface{}{
		"eventId":   event.ID,
		"operation": string(event.Operation),
		"outcome":   string(event.Outcome),
		"reason":    string(event.Reason),
		"vehicleId": int64(event.VehicleID),
		"userId":    int64(event.UserID),
		"cityId":    int64(event.CityID),
	})
}

// emitter builds and delivers events on behalf of the services.
type emitter struct {
	observer Observer
	now      func() time.Time
}

func newEmitter(observer Observer) emitter {
	return emitter{observer: observer, now: time.Now}
}

// subject names the entities an event is about.
type subject struct {
	vehicleID domain.VehicleID
	userID    domain.UserID
	cityID    domain.CityID
}

// emit reports the outcome of op. A nil err is a success.
func (e emitter) emit(ctx context.Context, op domain.Operation, s subject, err error) {
	if e.observer == nil {
		return
	}

	outcome := domain.OutcomeSucceeded
	if err != nil {
		outcome = domain.OutcomeRejected
	}

	e.observer.Observe(ctx, domain.Event{
		ID:         uuid.New().String(),
		Operation:  op,
		VehicleID:  s.vehicleID,
		UserID:     s.userID,
		CityID:     s.cityID,
		Outcome:    outcome,
		Reason:     ReasonFor(err),
		OccurredAt: e.now(),
	})
}

// pendingEvent is one operation's event, delivered at most once. Operations
// that change entity state deliver it before releasing their entity locks,
// so observers see events in the order the changes were applied.
type pendingEvent struct {
	events    emitter
	operation domain.Operation
	subject   subject
	delivered bool
}

func (e emitter) pending(op domain.Operation, s subject) *pendingEvent {
	return &pendingEvent{events: e, operation: op, subject: s}
}

// deliver emits the event unless it was already emitted, and returns err.
func (p *pendingEvent) deliver(ctx context.Context, err error) error {
	if !p.delivered {
		p.delivered = true
		p.events.emit(ctx, p.operation, p.subject, err)
	}
	return err
}
