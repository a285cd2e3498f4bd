// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"clubtrips/docs"
	"clubtrips/internal/bookings"
	"clubtrips/internal/events"
	"clubtrips/internal/notifications"
	"clubtrips/internal/shared/config"
	"clubtrips/internal/shared/database"
	"clubtrips/pkg/cache"
	"clubtrips/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "clubtrips-backend"

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher
	log       *logger.Logger

	eventService events.Service // shared with the booking engine as its catalog
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher, log *logger.Logger) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		log:       log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	r.setupHealthRoutes(engine)
	r.setupSwaggerRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Event routes first: the booking engine reads through the same service
		r.setupEventRoutes(api)

		if err := r.setupBookingRoutes(api); err != nil {
			return err
		}
	}
	return nil
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

func (r *Router) setupSwaggerRoutes(engine *gin.Engine) {
	docs.SwaggerInfo.BasePath = r.config.GetAPIBasePath()
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// setupEventRoutes configures the read-only event catalog
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	var cacheService cache.Service
	if r.db.Redis != nil {
		cacheService = cache.NewService(r.db.Redis, r.log)
	}

	eventRepo := events.NewRepository(r.db.PostgreSQL)
	r.eventService = events.NewService(eventRepo, cacheService)
	eventController := events.NewController(r.eventService)

	events.SetupEventRoutes(rg, eventController)
}

// setupBookingRoutes configures the booking engine
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) error {
	bookingRepo := bookings.NewRepository(r.db.PostgreSQL)
	ledger := bookings.NewLedger(bookingRepo, r.config.Booking, r.log)
	bookingService := bookings.NewService(
		r.eventService,
		ledger,
		r.publisher,
		bookings.PolicyFromConfig(r.config.Booking),
		r.log,
	)
	bookingController := bookings.NewController(bookingService, r.log)

	return bookings.SetupBookingRoutes(rg, bookingController, r.config.JWT.Secret)
}
