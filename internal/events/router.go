package events

import (
	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - the catalog is browsable without an account
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents) // GET /api/v1/events
		publicEvents.GET("/:id", controller.GetEvent) // GET /api/v1/events/:id
	}
}
