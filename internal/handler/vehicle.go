package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"moove/internal/domain"
	"moove/internal/service"
)

// VehicleHandler handles HTTP requests for vehicles.
type VehicleHandler struct {
	vehicleService *service.VehicleService
	removalService *service.RemovalService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService, removalService *service.RemovalService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		removalService: removalService,
	}
}

// CreateVehicleRequest is the HTTP request body for creating a vehicle.
type CreateVehicleRequest struct {
	Type string `json:"type"` // BIKE, SCOOTER, E_SCOOTER
}

// VehicleResponse is the HTTP response for vehicle data.
type VehicleResponse struct {
	ID             int64  `json:"id"`
	Type           string `json:"type"`
	DisplayName    string `json:"display_name"`
	Status         string `json:"status"`
	AssignedUserID int64  `json:"assigned_user_id,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// CreateVehicle handles POST /v1/vehicles
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	vehicleType, err := service.ParseVehicleType(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), vehicleType)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toVehicleResponse(vehicle))
}

// GetAll handles GET /v1/vehicles
func (h *VehicleHandler) GetAll(c *gin.Context) {
	vehicles, err := h.vehicleService.GetAllVehicles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, len(vehicles))
	for i, vehicle := range vehicles {
		response[i] = toVehicleResponse(vehicle)
	}

	respondJSON(c, http.StatusOK, response)
}

// GetVehicle handles GET /v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicleID, ok := parseID(c, "id")
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), domain.VehicleID(vehicleID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

// RemoveVehicle handles DELETE /v1/vehicles/:id?city_id=
func (h *VehicleHandler) RemoveVehicle(c *gin.Context) {
	vehicleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	cityID, ok := parseOptionalID(c, "city_id")
	if !ok {
		return
	}

	if err := h.removalService.RemoveVehicle(c.Request.Context(), domain.VehicleID(vehicleID), domain.CityID(cityID)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"id":      vehicleID,
		"status":  string(domain.VehicleStatusRemoved),
		"message": "Vehicle removed",
	})
}

func toVehicleResponse(vehicle *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:             int64(vehicle.ID),
		Type:           string(vehicle.Type),
		DisplayName:    vehicle.Type.DisplayName(),
		Status:         string(vehicle.Status),
		AssignedUserID: int64(vehicle.AssignedUserID),
		CreatedAt:      vehicle.CreatedAt.Format(time.RFC3339),
	}
}
