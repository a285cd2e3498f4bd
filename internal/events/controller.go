package events

import (
	"errors"
	"net/http"

	"clubtrips/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	GetEvent(c *gin.Context)
	GetAllEvents(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetEvent godoc
// @Summary      Get a catalog event
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /events/{id} [get]
func (ctrl *controller) GetEvent(c *gin.Context) {
	event, err := ctrl.service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to retrieve event", nil)
		return
	}

	response.Success(c, http.StatusOK, "Event retrieved successfully", event.ToResponse())
}

// GetAllEvents godoc
// @Summary      Browse active catalog events
// @Tags         events
// @Produce      json
// @Param        page    query  int     false  "Page"
// @Param        limit   query  int     false  "Page size"
// @Param        search  query  string  false  "Title or location"
// @Param        status  query  string  false  "Event status"
// @Success      200  {object}  response.StandardApiResponse
// @Router       /events [get]
func (ctrl *controller) GetAllEvents(c *gin.Context) {
	var query EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	events, err := ctrl.service.GetAllEvents(c.Request.Context(), query)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to retrieve events", nil)
		return
	}

	response.Success(c, http.StatusOK, "Events retrieved successfully", events)
}
