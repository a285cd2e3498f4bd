package bookings

import (
	"clubtrips/internal/shared/middleware"
	"clubtrips/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, jwtSecret string) error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := RegisterValidators(v); err != nil {
			return err
		}
	}

	auth := middleware.JWTAuth(jwtSecret)
	anyUser := middleware.RequireRoles(string(users.RoleUser), string(users.RoleAdmin))

	// Public booking page reads
	events := rg.Group("/events")
	{
		events.GET("/:id/availability", controller.GetAvailability) // GET /api/v1/events/:id/availability
		events.GET("/:id/quote", controller.Quote)                  // GET /api/v1/events/:id/quote?attendees=N
		events.GET("/:id/my-booking", auth, anyUser, controller.GetMyBooking)
	}

	bookings := rg.Group("/bookings")
	bookings.Use(auth, anyUser)
	{
		bookings.POST("", controller.CreateBooking)             // POST /api/v1/bookings
		bookings.GET("/:ref", controller.GetBooking)            // GET /api/v1/bookings/:ref
		bookings.POST("/:ref/cancel", controller.CancelBooking) // POST /api/v1/bookings/:ref/cancel
	}

	userBookings := rg.Group("/users")
	userBookings.Use(auth, anyUser)
	{
		userBookings.GET("/bookings", controller.GetUserBookings) // GET /api/v1/users/bookings
	}

	admin := rg.Group("/admin/bookings")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.GET("", controller.ListBookings)               // GET /api/v1/admin/bookings
		admin.GET("/summary", controller.Summary)            // GET /api/v1/admin/bookings/summary
		admin.PATCH("/:ref/status", controller.ChangeStatus) // PATCH /api/v1/admin/bookings/:ref/status
		admin.DELETE("/:ref", controller.DeleteBooking)      // DELETE /api/v1/admin/bookings/:ref
	}

	return nil
}
