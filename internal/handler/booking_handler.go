package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imanubhardwaj/easyappointments/internal/service"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
	"github.com/imanubhardwaj/easyappointments/pkg/response"
)

// BookingHandler wires the public booking flow to HTTP routes.
type BookingHandler struct {
	bookings *service.BookingService
	metrics  *service.MetricsService
}

// NewBookingHandler constructs a new BookingHandler.
func NewBookingHandler(bookings *service.BookingService, metrics *service.MetricsService) *BookingHandler {
	return &BookingHandler{bookings: bookings, metrics: metrics}
}

// Book godoc
// @Summary Commit a booking for a previously queried slot
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.BookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments [post]
func (h *BookingHandler) Book(c *gin.Context) {
	var req service.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	result, err := h.bookings.Book(c.Request.Context(), req)
	if err != nil {
		h.metrics.ObserveBooking(bookingOutcome(err))
		response.Error(c, err)
		return
	}
	h.metrics.ObserveBooking("committed")
	response.Created(c, result)
}

// Cancel godoc
// @Summary Cancel a booking by its management hash
// @Tags Bookings
// @Param hash path string true "Booking management hash"
// @Success 204
// @Router /appointments/{hash} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	if err := h.bookings.CancelByHash(c.Request.Context(), c.Param("hash")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bookingOutcome(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Code == appErrors.ErrSlotUnavailable.Code {
		return "conflict"
	}
	return "error"
}
