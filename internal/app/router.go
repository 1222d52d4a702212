package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"

	"moove/internal/handler"
	"moove/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	CityHandler      *handler.CityHandler
	VehicleHandler   *handler.VehicleHandler
	UserHandler      *handler.UserHandler
	EventHandler     *handler.EventHandler
	IdempotencyStore middleware.IdempotencyStore
	Logger           *zap.Logger
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.IdempotencyStore, logger))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// City routes.
		cities := v1.Group("/cities")
		{
			cities.POST("", deps.CityHandler.CreateCity)
			cities.GET("", deps.CityHandler.GetAll)
			cities.GET("/:id/vehicles", deps.CityHandler.ListVehicles)
			cities.GET("/:id/vehicles/available", deps.CityHandler.AvailableVehicles)
			cities.POST("/:id/vehicles", deps.CityHandler.AddVehicle)
			cities.DELETE("/:id/vehicles/:vehicleId", deps.CityHandler.RemoveVehicle)
		}

		// Vehicle routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", deps.VehicleHandler.CreateVehicle)
			vehicles.GET("", deps.VehicleHandler.GetAll)
			vehicles.GET("/:id", deps.VehicleHandler.GetVehicle)
			vehicles.DELETE("/:id", deps.VehicleHandler.RemoveVehicle)
		}

		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)
			users.GET("/:id", deps.UserHandler.GetUser)
			users.DELETE("/:id", deps.UserHandler.Delete)
			users.POST("/:id/book", deps.UserHandler.Book)
			users.POST("/:id/return", deps.UserHandler.Return)
		}

		// Event journal.
		v1.GET("/events", deps.EventHandler.List)
	}

	return router
}
