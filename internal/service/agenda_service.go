package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/internal/timeutil"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
	"github.com/imanubhardwaj/easyappointments/pkg/export"
)

type agendaAppointmentRepo interface {
	ListForDay(ctx context.Context, providerID string, from, to time.Time) ([]models.Appointment, error)
}

type agendaCustomerRepo interface {
	FindByID(ctx context.Context, id string) (*models.Customer, error)
}

// AgendaService renders a provider's day schedule as a downloadable file.
type AgendaService struct {
	providers    availabilityProviderRepo
	services     availabilityServiceRepo
	appointments agendaAppointmentRepo
	customers    agendaCustomerRepo
	pdf          *export.PDFExporter
	csv          *export.CSVExporter
	logger       *zap.Logger
}

// NewAgendaService constructs an AgendaService.
func NewAgendaService(
	providers availabilityProviderRepo,
	services availabilityServiceRepo,
	appointments agendaAppointmentRepo,
	customers agendaCustomerRepo,
	logger *zap.Logger,
) *AgendaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgendaService{
		providers:    providers,
		services:     services,
		appointments: appointments,
		customers:    customers,
		pdf:          export.NewPDFExporter(),
		csv:          export.NewCSVExporter(),
		logger:       logger,
	}
}

var agendaHeaders = []string{"Start", "End", "Service", "Customer", "Notes"}

// DayAgendaPDF renders the provider's appointments for a date as PDF bytes.
// The date is interpreted in the provider's own timezone and all clock
// values are printed in it.
func (s *AgendaService) DayAgendaPDF(ctx context.Context, providerID, date string) ([]byte, string, error) {
	dataset, provider, day, err := s.dayDataset(ctx, providerID, date)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("Agenda %s %s - %s", provider.FirstName, provider.LastName, day)
	payload, err := s.pdf.Render(*dataset, title)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render agenda pdf")
	}
	return payload, fmt.Sprintf("agenda-%s-%s.pdf", provider.ID, day), nil
}

// DayAgendaCSV renders the same day view as CSV bytes.
func (s *AgendaService) DayAgendaCSV(ctx context.Context, providerID, date string) ([]byte, string, error) {
	dataset, provider, day, err := s.dayDataset(ctx, providerID, date)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render agenda csv")
	}
	return payload, fmt.Sprintf("agenda-%s-%s.csv", provider.ID, day), nil
}

func (s *AgendaService) dayDataset(ctx context.Context, providerID, date string) (*export.Dataset, *models.Provider, string, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, nil, "", appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}

	provider, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, "", appErrors.Clone(appErrors.ErrNotFound, "provider not found")
		}
		return nil, nil, "", appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load provider")
	}
	offset, err := timeutil.ParseOffset(provider.Timezone)
	if err != nil {
		return nil, nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "provider has malformed timezone offset")
	}

	from := offset.Invert(timeutil.StartOfDay(day))
	to := offset.Invert(timeutil.StartOfDay(day.AddDate(0, 0, 1)))

	appointments, err := s.appointments.ListForDay(ctx, provider.ID, from, to)
	if err != nil {
		return nil, nil, "", appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load day appointments")
	}

	rows := make([]map[string]string, 0, len(appointments))
	for _, appt := range appointments {
		rows = append(rows, map[string]string{
			"Start":    offset.Apply(appt.StartDatetime).Format("15:04"),
			"End":      offset.Apply(appt.EndDatetime).Format("15:04"),
			"Service":  s.serviceName(ctx, appt),
			"Customer": s.customerName(ctx, appt),
			"Notes":    appt.Notes,
		})
	}

	return &export.Dataset{Headers: agendaHeaders, Rows: rows}, provider, day.Format(dateLayout), nil
}

func (s *AgendaService) serviceName(ctx context.Context, appt models.Appointment) string {
	if appt.IsUnavailable {
		return "Blocked"
	}
	if !appt.ServiceID.Valid {
		return ""
	}
	svc, err := s.services.FindByID(ctx, appt.ServiceID.String)
	if err != nil {
		s.logger.Warn("agenda service lookup failed", zap.String("service_id", appt.ServiceID.String), zap.Error(err))
		return appt.ServiceID.String
	}
	return svc.Name
}

func (s *AgendaService) customerName(ctx context.Context, appt models.Appointment) string {
	if !appt.CustomerID.Valid {
		return ""
	}
	customer, err := s.customers.FindByID(ctx, appt.CustomerID.String)
	if err != nil {
		s.logger.Warn("agenda customer lookup failed", zap.String("customer_id", appt.CustomerID.String), zap.Error(err))
		return appt.CustomerID.String
	}
	return customer.FirstName + " " + customer.LastName
}
