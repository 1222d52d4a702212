package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"moove/internal/domain"
	"moove/internal/repository"
)

// defaultEventLimit caps GET /v1/events when no limit is given.
const defaultEventLimit = 100

// EventHandler serves the operation event journal.
type EventHandler struct {
	events repository.EventRepository
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events repository.EventRepository) *EventHandler {
	return &EventHandler{events: events}
}

// EventResponse is the HTTP response for one journaled event.
type EventResponse struct {
	ID         string `json:"id"`
	Operation  string `json:"operation"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	VehicleID  int64  `json:"vehicle_id,omitempty"`
	UserID     int64  `json:"user_id,omitempty"`
	CityID     int64  `json:"city_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// List handles GET /v1/events?vehicle_id=&user_id=&limit=
func (h *EventHandler) List(c *gin.Context) {
	vehicleID, ok := parseOptionalID(c, "vehicle_id")
	if !ok {
		return
	}
	userID, ok := parseOptionalID(c, "user_id")
	if !ok {
		return
	}

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	events, err := h.events.List(c.Request.Context(), repository.EventFilter{
		VehicleID: domain.VehicleID(vehicleID),
		UserID:    domain.UserID(userID),
		Limit:     limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]EventResponse, len(events))
	for i, event := range events {
		response[i] = EventResponse{
			ID:         event.ID,
			Operation:  string(event.Operation),
			Outcome:    string(event.Outcome),
			Reason:     string(event.Reason),
			VehicleID:  int64(event.VehicleID),
			UserID:     int64(event.UserID),
			CityID:     int64(event.CityID),
			OccurredAt: event.OccurredAt.Format(time.RFC3339Nano),
		}
	}

	respondJSON(c, http.StatusOK, response)
}
