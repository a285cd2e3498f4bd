package bookings

import (
	"errors"
	"net/http"

	"clubtrips/internal/events"
	"clubtrips/internal/shared/middleware"
	"clubtrips/internal/shared/utils/response"
	"clubtrips/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
	log     *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Controller{service: service, log: log}
}

// GetAvailability godoc
// @Summary      Bookable dates of an event
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /events/{id}/availability [get]
func (c *Controller) GetAvailability(ctx *gin.Context) {
	eventID := ctx.Param("id")
	dates, err := c.service.GetAvailability(ctx.Request.Context(), eventID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(DateLayout)
	}
	response.Success(ctx, http.StatusOK, "Availability retrieved successfully", AvailabilityResponse{
		EventID: eventID,
		Dates:   out,
	})
}

// Quote godoc
// @Summary      Price a booking
// @Tags         bookings
// @Produce      json
// @Param        id         path   string  true  "Event ID"
// @Param        attendees  query  int     true  "Number of attendees"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      400  {object}  response.StandardApiResponse
// @Router       /events/{id}/quote [get]
func (c *Controller) Quote(ctx *gin.Context) {
	var query QuoteQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	eventID := ctx.Param("id")
	total, err := c.service.Quote(ctx.Request.Context(), eventID, query.Attendees)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Quote calculated successfully", QuoteResponse{
		EventID:     eventID,
		Attendees:   query.Attendees,
		TotalAmount: total,
	})
}

// GetMyBooking godoc
// @Summary      The caller's active booking for an event
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  response.StandardApiResponse
// @Router       /events/{id}/my-booking [get]
func (c *Controller) GetMyBooking(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	booking, err := c.service.HasBooked(ctx.Request.Context(), actor.UserID, ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	result := ExistingBookingResponse{HasBooking: booking != nil}
	if booking != nil {
		resp := booking.ToResponse()
		result.Booking = &resp
	}
	response.Success(ctx, http.StatusOK, "Booking status retrieved successfully", result)
}

// CreateBooking godoc
// @Summary      Book an event
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      BookRequest  true  "Booking request"
// @Success      201      {object}  response.StandardApiResponse
// @Failure      400      {object}  response.StandardApiResponse
// @Failure      409      {object}  response.StandardApiResponse
// @Failure      422      {object}  response.StandardApiResponse
// @Router       /bookings [post]
func (c *Controller) CreateBooking(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req BookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	booking, err := c.service.Book(ctx.Request.Context(), actor, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Booking created successfully", booking.ToResponse())
}

// GetBooking godoc
// @Summary      Get a booking by reference
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        ref  path      string  true  "Booking reference"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /bookings/{ref} [get]
func (c *Controller) GetBooking(ctx *gin.Context) {
	actor, _ := middleware.ActorFromContext(ctx)

	booking, err := c.service.GetBooking(ctx.Request.Context(), actor, ctx.Param("ref"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", booking.ToResponse())
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ref      path      string         true   "Booking reference"
// @Param        request  body      CancelRequest  false  "Cancellation reason"
// @Success      200      {object}  response.StandardApiResponse
// @Failure      409      {object}  response.StandardApiResponse
// @Router       /bookings/{ref}/cancel [post]
func (c *Controller) CancelBooking(ctx *gin.Context) {
	actor, _ := middleware.ActorFromContext(ctx)

	var req CancelRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}

	booking, err := c.service.Cancel(ctx.Request.Context(), actor, ctx.Param("ref"), req.Reason)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Booking cancelled successfully", booking.ToResponse())
}

// GetUserBookings godoc
// @Summary      The caller's bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        page    query  int     false  "Page"
// @Param        limit   query  int     false  "Page size"
// @Param        status  query  string  false  "Status filter"
// @Success      200  {object}  response.StandardApiResponse
// @Router       /users/bookings [get]
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	actor, _ := middleware.ActorFromContext(ctx)

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.ListUserBookings(ctx.Request.Context(), actor, query)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", result)
}

// ChangeStatus godoc
// @Summary      Change a booking's status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ref      path      string               true  "Booking reference"
// @Param        request  body      ChangeStatusRequest  true  "New status"
// @Success      200      {object}  response.StandardApiResponse
// @Failure      409      {object}  response.StandardApiResponse
// @Router       /admin/bookings/{ref}/status [patch]
func (c *Controller) ChangeStatus(ctx *gin.Context) {
	actor, _ := middleware.ActorFromContext(ctx)

	var req ChangeStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	booking, err := c.service.ChangeStatus(ctx.Request.Context(), actor, ctx.Param("ref"), status, req.Reason)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Booking status updated successfully", booking.ToResponse())
}

// DeleteBooking godoc
// @Summary      Permanently delete a booking
// @Description  Removes the record whatever its status. Not reversible.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        ref  path      string  true  "Booking reference"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /admin/bookings/{ref} [delete]
func (c *Controller) DeleteBooking(ctx *gin.Context) {
	actor, _ := middleware.ActorFromContext(ctx)

	if err := c.service.Delete(ctx.Request.Context(), actor, ctx.Param("ref")); err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Booking deleted successfully", nil)
}

// ListBookings godoc
// @Summary      All bookings
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int     false  "Page"
// @Param        limit      query  int     false  "Page size"
// @Param        status     query  string  false  "Status filter"
// @Param        event_id   query  string  false  "Event filter"
// @Param        date_from  query  string  false  "Created on or after (YYYY-MM-DD)"
// @Param        date_to    query  string  false  "Created on or before (YYYY-MM-DD)"
// @Success      200  {object}  response.StandardApiResponse
// @Router       /admin/bookings [get]
func (c *Controller) ListBookings(ctx *gin.Context) {
	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.ListBookings(ctx.Request.Context(), query)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", result)
}

// Summary godoc
// @Summary      Booking totals per status
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        event_id  query  string  false  "Event filter"
// @Success      200  {object}  response.StandardApiResponse
// @Router       /admin/bookings/summary [get]
func (c *Controller) Summary(ctx *gin.Context) {
	var query SummaryQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	summary, err := c.service.Summary(ctx.Request.Context(), query.EventID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Booking summary retrieved successfully", summary)
}

// respondError maps the booking error taxonomy onto HTTP
func (c *Controller) respondError(ctx *gin.Context, err error) {
	var already *AlreadyBookedError
	switch {
	case errors.As(err, &already):
		var details interface{}
		if already.Existing != nil {
			details = map[string]interface{}{"existing_booking": already.Existing.ToResponse()}
		}
		response.Error(ctx, http.StatusConflict, ErrAlreadyBooked.Error(), details)
	case errors.Is(err, ErrAlreadyBooked), errors.Is(err, ErrInvalidTransition):
		response.Error(ctx, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidDate):
		response.Error(ctx, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrEventNotBookable):
		response.Error(ctx, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, events.ErrEventNotFound):
		response.Error(ctx, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		response.Error(ctx, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrUnavailable):
		c.log.LogHTTPError(ctx, err, http.StatusServiceUnavailable)
		ctx.Header("Retry-After", "1")
		response.Error(ctx, http.StatusServiceUnavailable, ErrUnavailable.Error(), nil)
	default:
		c.log.LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.Error(ctx, http.StatusInternalServerError, "Internal server error", nil)
	}
}
