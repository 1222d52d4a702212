package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"moove/internal/repository"
	"moove/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error(), Reason: string(service.ReasonFor(err))})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidCityID),
		errors.Is(err, service.ErrInvalidVehicleType),
		errors.Is(err, service.ErrCityRequired):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrVehicleNotAvailable),
		errors.Is(err, service.ErrUserAlreadyBooked),
		errors.Is(err, service.ErrNothingToReturn),
		errors.Is(err, service.ErrVehicleNotAssigned),
		errors.Is(err, service.ErrVehicleInUse),
		errors.Is(err, service.ErrVehicleNotInCity),
		errors.Is(err, service.ErrVehicleRemoved),
		errors.Is(err, service.ErrVehicleAlreadyInCity),
		errors.Is(err, service.ErrVehicleInAnotherCity):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// parseID reads a positive integer path parameter. On failure it writes a
// 400 response and returns false.
func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param})
		return 0, false
	}
	return id, true
}

// parseOptionalID reads an optional integer query parameter. A missing value is 0.
func parseOptionalID(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key})
		return 0, false
	}
	return id, true
}
