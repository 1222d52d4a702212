package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"moove/internal/domain"
	"moove/internal/repository"
)

// EventRepository is a PostgreSQL implementation of repository.EventRepository.
// Entity IDs restart at 1 with every process, so rows are stamped with the
// run that wrote them and List only reads the current run.
type EventRepository struct {
	q     Querier
	runID string
}

var _ repository.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new PostgreSQL event repository writing as
// runID.
func NewEventRepository(db *sql.DB, runID string) *EventRepository {
	return &EventRepository{q: db, runID: runID}
}

// RunID returns the run this repository writes and reads.
func (r *EventRepository) RunID() string {
	return r.runID
}

// Schema creates the journal table if it does not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS fleet_events (
	seq         BIGSERIAL PRIMARY KEY,
	run_id      TEXT        NOT NULL DEFAULT '',
	id          UUID        NOT NULL UNIQUE,
	operation   TEXT        NOT NULL,
	vehicle_id  BIGINT,
	user_id     BIGINT,
	city_id     BIGINT,
	outcome     TEXT        NOT NULL,
	reason      TEXT,
	occurred_at TIMESTAMPTZ NOT NULL
);
ALTER TABLE fleet_events ADD COLUMN IF NOT EXISTS run_id TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS fleet_events_run_vehicle_idx ON fleet_events (run_id, vehicle_id);
CREATE INDEX IF NOT EXISTS fleet_events_run_user_idx ON fleet_events (run_id, user_id);
`

// EnsureSchema applies Schema.
func (r *EventRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, Schema)
	return err
}

// Append stores an event.
func (r *EventRepository) Append(ctx context.Context, event domain.Event) error {
	query := `
		INSERT INTO fleet_events (run_id, id, operation, vehicle_id, user_id, city_id, outcome, reason, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var reason sql.NullString
	if event.Reason != domain.ReasonNone {
		reason = sql.NullString{String: string(event.Reason), Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		r.runID,
		event.ID,
		event.Operation,
		nullID(int64(event.VehicleID)),
		nullID(int64(event.UserID)),
		nullID(int64(event.CityID)),
		event.Outcome,
		reason,
		event.OccurredAt,
	)
	return err
}

// List returns the current run's events matching the filter, oldest first.
func (r *EventRepository) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	conditions := []string{"run_id = $1"}
	args := []any{r.runID}
	if filter.VehicleID != 0 {
		args = append(args, int64(filter.VehicleID))
		conditions = append(conditions, fmt.Sprintf("vehicle_id = $%d", len(args)))
	}
	if filter.UserID != 0 {
		args = append(args, int64(filter.UserID))
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT id, operation, COALESCE(vehicle_id, 0) AS vehicle_id, COALESCE(user_id, 0) AS user_id, COALESCE(city_id, 0) AS city_id, outcome, COALESCE(reason, '') AS reason, occurred_at, seq FROM fleet_events`
	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY seq DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	// Re-order the newest-first window back to oldest first.
	query = `SELECT id, operation, vehicle_id, user_id, city_id, outcome, reason, occurred_at FROM (` + query + `) AS recent ORDER BY seq ASC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var (
			event                     domain.Event
			vehicleID, userID, cityID int64
		)
		if err := rows.Scan(
			&event.ID,
			&event.Operation,
			&vehicleID,
			&userID,
			&cityID,
			&event.Outcome,
			&event.Reason,
			&event.OccurredAt,
		); err != nil {
			return nil, err
		}
		event.VehicleID = domain.VehicleID(vehicleID)
		event.UserID = domain.UserID(userID)
		event.CityID = domain.CityID(cityID)
		events = append(events, event)
	}
	return events, rows.Err()
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
