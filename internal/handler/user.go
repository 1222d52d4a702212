package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"moove/internal/domain"
	"moove/internal/service"
)

// UserHandler handles HTTP requests for users and their bookings.
type UserHandler struct {
	userService       *service.UserService
	assignmentService *service.AssignmentService
	removalService    *service.RemovalService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	userService *service.UserService,
	assignmentService *service.AssignmentService,
	removalService *service.RemovalService,
) *UserHandler {
	return &UserHandler{
		userService:       userService,
		assignmentService: assignmentService,
		removalService:    removalService,
	}
}

// RegisterRequest is the HTTP request body for user registration.
type RegisterRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// BookRequest is the HTTP request body for booking a vehicle.
type BookRequest struct {
	VehicleID int64 `json:"vehicle_id"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	PaymentMethod   string `json:"payment_method,omitempty"`
	BookedVehicleID int64  `json:"booked_vehicle_id,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "first_name and last_name are required"})
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), service.CreateUserRequest{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         strings.TrimSpace(req.Email),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toUserResponse(user))
}

// GetAll handles GET /v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.userService.GetAllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, len(users))
	for i, user := range users {
		response[i] = toUserResponse(user)
	}

	respondJSON(c, http.StatusOK, response)
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), domain.UserID(userID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.removalService.RemoveUser(c.Request.Context(), domain.UserID(userID)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Book handles POST /v1/users/:id/book
func (h *UserHandler) Book(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.assignmentService.Book(c.Request.Context(), domain.UserID(userID), domain.VehicleID(req.VehicleID)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"user_id":    userID,
		"vehicle_id": req.VehicleID,
		"status":     string(domain.VehicleStatusInUse),
		"message":    "Vehicle booked",
	})
}

// Return handles POST /v1/users/:id/return
func (h *UserHandler) Return(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.assignmentService.Return(c.Request.Context(), domain.UserID(userID)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"user_id": userID,
		"message": "Vehicle returned",
	})
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              int64(user.ID),
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		FullName:        user.FullName(),
		Email:           user.Email,
		PaymentMethod:   user.PaymentMethod,
		BookedVehicleID: int64(user.BookedVehicleID),
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
	}
}
