package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/internal/service"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
	"github.com/imanubhardwaj/easyappointments/pkg/response"
)

// ProviderHandler wires provider services to HTTP routes.
type ProviderHandler struct {
	providers *service.ProviderService
	agenda    *service.AgendaService
}

// NewProviderHandler constructs a new ProviderHandler.
func NewProviderHandler(providers *service.ProviderService, agenda *service.AgendaService) *ProviderHandler {
	return &ProviderHandler{providers: providers, agenda: agenda}
}

// List godoc
// @Summary List providers
// @Tags Providers
// @Produce json
// @Param search query string false "Search by name/email"
// @Param service_id query string false "Filter by offered service"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	filter := models.ProviderFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		ServiceID: c.Query("service_id"),
	}
	if active := c.Query("active"); active != "" {
		val := strings.EqualFold(active, "true")
		filter.Active = &val
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	providers, pagination, err := h.providers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, providers, pagination)
}

// Get godoc
// @Summary Get provider detail
// @Tags Providers
// @Produce json
// @Param id path string true "Provider ID"
// @Success 200 {object} response.Envelope
// @Router /providers/{id} [get]
func (h *ProviderHandler) Get(c *gin.Context) {
	provider, err := h.providers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, provider, nil)
}

// Create godoc
// @Summary Create provider
// @Tags Providers
// @Accept json
// @Produce json
// @Param payload body service.CreateProviderRequest true "Provider payload"
// @Success 201 {object} response.Envelope
// @Router /providers [post]
func (h *ProviderHandler) Create(c *gin.Context) {
	var req service.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid provider payload"))
		return
	}
	provider, err := h.providers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, provider)
}

// Update godoc
// @Summary Update provider
// @Tags Providers
// @Accept json
// @Produce json
// @Param id path string true "Provider ID"
// @Param payload body service.UpdateProviderRequest true "Provider payload"
// @Success 200 {object} response.Envelope
// @Router /providers/{id} [put]
func (h *ProviderHandler) Update(c *gin.Context) {
	var req service.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid provider payload"))
		return
	}
	provider, err := h.providers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, provider, nil)
}

// Delete godoc
// @Summary Delete provider
// @Tags Providers
// @Param id path string true "Provider ID"
// @Success 204
// @Router /providers/{id} [delete]
func (h *ProviderHandler) Delete(c *gin.Context) {
	if err := h.providers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AgendaPDF godoc
// @Summary Download a provider's day agenda as PDF
// @Tags Providers
// @Produce application/pdf
// @Param id path string true "Provider ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /providers/{id}/agenda.pdf [get]
func (h *ProviderHandler) AgendaPDF(c *gin.Context) {
	payload, filename, err := h.agenda.DayAgendaPDF(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

// AgendaCSV godoc
// @Summary Download a provider's day agenda as CSV
// @Tags Providers
// @Produce text/csv
// @Param id path string true "Provider ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /providers/{id}/agenda.csv [get]
func (h *ProviderHandler) AgendaCSV(c *gin.Context) {
	payload, filename, err := h.agenda.DayAgendaCSV(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}
