package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"moove/internal/domain"
	"moove/internal/service"
)

// CityHandler handles HTTP requests for cities and their vehicles.
type CityHandler struct {
	cityService *service.CityService
}

// NewCityHandler creates a new CityHandler.
func NewCityHandler(cityService *service.CityService) *CityHandler {
	return &CityHandler{cityService: cityService}
}

// CreateCityRequest is the HTTP request body for creating a city.
type CreateCityRequest struct {
	Name string `json:"name"`
}

// AddVehicleRequest is the HTTP request body for adding a vehicle to a city.
type AddVehicleRequest struct {
	VehicleID int64 `json:"vehicle_id"`
}

// CityResponse is the HTTP response for city data.
type CityResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	VehicleIDs []int64 `json:"vehicle_ids"`
	CreatedAt  string  `json:"created_at"`
}

// VehicleListingResponse is one row of a city vehicle listing.
type VehicleListingResponse struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
}

// CreateCity handles POST /v1/cities
func (h *CityHandler) CreateCity(c *gin.Context) {
	var req CreateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	city, err := h.cityService.CreateCity(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toCityResponse(city))
}

// GetAll handles GET /v1/cities
func (h *CityHandler) GetAll(c *gin.Context) {
	cities, err := h.cityService.GetAllCities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]CityResponse, len(cities))
	for i, city := range cities {
		response[i] = toCityResponse(city)
	}

	respondJSON(c, http.StatusOK, response)
}

// ListVehicles handles GET /v1/cities/:id/vehicles
func (h *CityHandler) ListVehicles(c *gin.Context) {
	cityID, ok := parseID(c, "id")
	if !ok {
		return
	}

	listing, err := h.cityService.ListVehicles(c.Request.Context(), domain.CityID(cityID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toListingResponse(listing))
}

// AvailableVehicles handles GET /v1/cities/:id/vehicles/available
func (h *CityHandler) AvailableVehicles(c *gin.Context) {
	cityID, ok := parseID(c, "id")
	if !ok {
		return
	}

	listing, err := h.cityService.AvailableVehicles(c.Request.Context(), domain.CityID(cityID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toListingResponse(listing))
}

// AddVehicle handles POST /v1/cities/:id/vehicles
func (h *CityHandler) AddVehicle(c *gin.Context) {
	cityID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AddVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.cityService.AddVehicle(c.Request.Context(), domain.CityID(cityID), domain.VehicleID(req.VehicleID)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"city_id":    cityID,
		"vehicle_id": req.VehicleID,
		"message":    "Vehicle added to city",
	})
}

// RemoveVehicle handles DELETE /v1/cities/:id/vehicles/:vehicleId
func (h *CityHandler) RemoveVehicle(c *gin.Context) {
	cityID, ok := parseID(c, "id")
	if !ok {
		return
	}
	vehicleID, ok := parseID(c, "vehicleId")
	if !ok {
		return
	}

	if err := h.cityService.RemoveVehicle(c.Request.Context(), domain.CityID(cityID), domain.VehicleID(vehicleID)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"city_id":    cityID,
		"vehicle_id": vehicleID,
		"message":    "Vehicle removed from city",
	})
}

func toCityResponse(city *domain.City) CityResponse {
	ids := make([]int64, len(city.VehicleIDs))
	for i, id := range city.VehicleIDs {
		ids[i] = int64(id)
	}
	return CityResponse{
		ID:         int64(city.ID),
		Name:       city.Name,
		VehicleIDs: ids,
		CreatedAt:  city.CreatedAt.Format(time.RFC3339),
	}
}

func toListingResponse(listing []service.VehicleListing) []VehicleListingResponse {
	response := make([]VehicleListingResponse, len(listing))
	for i, row := range listing {
		response[i] = VehicleListingResponse{
			ID:          int64(row.ID),
			Type:        string(row.Type),
			DisplayName: row.Type.DisplayName(),
			Status:      string(row.Status),
		}
	}
	return response
}
