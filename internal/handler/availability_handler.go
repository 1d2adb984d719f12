package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imanubhardwaj/easyappointments/internal/service"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
	"github.com/imanubhardwaj/easyappointments/pkg/response"
)

// AvailabilityHandler wires the availability engine to HTTP routes.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
	metrics      *service.MetricsService
}

// NewAvailabilityHandler constructs a new AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService, metrics *service.MetricsService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, metrics: metrics}
}

// Hours godoc
// @Summary Query bookable slots for a provider, service and date
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body service.SlotQueryRequest true "Availability query"
// @Success 200 {object} response.Envelope
// @Router /availability/hours [post]
func (h *AvailabilityHandler) Hours(c *gin.Context) {
	var req service.SlotQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	req.Now = time.Now().UTC()

	result, err := h.availability.AvailableHours(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveSlotQuery(len(result.Slots))
	response.JSON(c, http.StatusOK, result, nil)
}

// UnavailableDates godoc
// @Summary List the dates of a month with no bookable slot
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body service.UnavailableDatesRequest true "Month query"
// @Success 200 {object} response.Envelope
// @Router /availability/unavailable-dates [post]
func (h *AvailabilityHandler) UnavailableDates(c *gin.Context) {
	var req service.UnavailableDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid month payload"))
		return
	}
	req.Now = time.Now().UTC()

	dates, err := h.availability.UnavailableDates(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dates, nil)
}
