package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imanubhardwaj/easyappointments/internal/interval"
	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/internal/repository"
	"github.com/imanubhardwaj/easyappointments/internal/timeutil"
	"github.com/imanubhardwaj/easyappointments/pkg/config"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
)

const dateLayout = "2006-01-02"

type availabilityProviderRepo interface {
	FindByID(ctx context.Context, id string) (*models.Provider, error)
	ListByService(ctx context.Context, serviceID string) ([]models.Provider, error)
}

type availabilityServiceRepo interface {
	FindByID(ctx context.Context, id string) (*models.Service, error)
}

type availabilityAppointmentRepo interface {
	ListOverlapping(ctx context.Context, providerID string, from, to time.Time, excludeIDs []string) ([]models.Appointment, error)
	ListUnavailable(ctx context.Context, providerID string, from, to time.Time) ([]models.Appointment, error)
	CountAttendants(ctx context.Context, serviceID string, slotStart, slotEnd time.Time, excludeIDs []string) (int, error)
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// SlotQueryRequest describes an availability query. Timezone is the
// customer's signed "+HH:MM" offset; Now is injected by the handler so the
// engine stays deterministic. ExcludeAppointmentID is set when editing an
// existing appointment, which must not conflict with itself.
type SlotQueryRequest struct {
	ProviderID           string    `json:"provider_id" validate:"required"`
	ServiceID            string    `json:"service_id" validate:"required"`
	Date                 string    `json:"date" validate:"required"`
	Timezone             string    `json:"timezone" validate:"required"`
	Now                  time.Time `json:"-"`
	ExcludeAppointmentID string    `json:"exclude_appointment_id"`
}

// SlotQueryResult carries the resolved provider and the bookable start
// times as customer-local "HH:MM" strings, ascending and deduplicated.
type SlotQueryResult struct {
	ProviderID string   `json:"provider_id"`
	Slots      []string `json:"slots"`
}

// UnavailableDatesRequest asks which dates of a month have no free slot.
type UnavailableDatesRequest struct {
	ProviderID string    `json:"provider_id" validate:"required"`
	ServiceID  string    `json:"service_id" validate:"required"`
	Month      string    `json:"month" validate:"required"` // "2006-01"
	Timezone   string    `json:"timezone" validate:"required"`
	Now        time.Time `json:"-"`
}

// AvailabilityService computes bookable slots from working plans, breaks
// and existing appointments. It is a pure computation over repository
// reads; no state survives between calls.
type AvailabilityService struct {
	providers    availabilityProviderRepo
	services     availabilityServiceRepo
	appointments availabilityAppointmentRepo
	cache        availabilityCache
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          config.BookingConfig
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(
	providers availabilityProviderRepo,
	services availabilityServiceRepo,
	appointments availabilityAppointmentRepo,
	cache availabilityCache,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.BookingConfig,
) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FlexibleStepMinutes <= 0 {
		cfg.FlexibleStepMinutes = 5
	}
	if cfg.MultiAttendantStepMinutes <= 0 {
		cfg.MultiAttendantStepMinutes = 15
	}
	if cfg.AnyProviderKey == "" {
		cfg.AnyProviderKey = "any"
	}
	return &AvailabilityService{
		providers:    providers,
		services:     services,
		appointments: appointments,
		cache:        cache,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
	}
}

// AvailableHours returns the bookable start times for a provider, service
// and date. A missing provider or service yields an empty list, not an
// error. When ProviderID equals the any-provider key the provider with the
// most free slots is resolved first and returned in the result.
func (s *AvailabilityService) AvailableHours(ctx context.Context, req SlotQueryRequest) (*SlotQueryResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}
	customerOffset, err := timeutil.ParseOffset(req.Timezone)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timezone offset")
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	svc, err := s.services.FindByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &SlotQueryResult{ProviderID: req.ProviderID}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load service")
	}

	providerID := req.ProviderID
	if providerID == s.cfg.AnyProviderKey {
		resolved, err := s.resolveAnyProvider(ctx, svc, date, customerOffset, now)
		if err != nil {
			return nil, err
		}
		if resolved == "" {
			return &SlotQueryResult{}, nil
		}
		providerID = resolved
	}

	provider, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &SlotQueryResult{ProviderID: providerID}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load provider")
	}

	var excludeIDs []string
	if req.ExcludeAppointmentID != "" {
		excludeIDs = append(excludeIDs, req.ExcludeAppointmentID)
	}

	slots, err := s.slotsForDate(ctx, provider, svc, date, customerOffset, now, excludeIDs)
	if err != nil {
		return nil, err
	}
	return &SlotQueryResult{ProviderID: providerID, Slots: slots}, nil
}

// slotsForDate runs the full pipeline for one provider and date: candidate
// instants, customer-local conversion, date filtering, the advance-lead
// cutoff, dedup and string sort.
func (s *AvailabilityService) slotsForDate(
	ctx context.Context,
	provider *models.Provider,
	svc *models.Service,
	date time.Time,
	customerOffset timeutil.Offset,
	now time.Time,
	excludeIDs []string,
) ([]string, error) {
	providerOffset, err := timeutil.ParseOffset(provider.Timezone)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "provider has malformed timezone offset")
	}

	var candidates []time.Time
	if svc.MultiAttendant() {
		candidates, err = s.capacityCandidates(ctx, provider, svc, date, providerOffset, excludeIDs)
	} else {
		candidates, err = s.singleCandidates(ctx, provider, svc, date, providerOffset, excludeIDs)
	}
	if err != nil {
		return nil, err
	}

	return s.finalize(candidates, date, customerOffset, now), nil
}

// singleCandidates generates slot start instants for the ordinary path:
// 3-day busy set, gap extraction, duration-quantized walk per free period.
func (s *AvailabilityService) singleCandidates(
	ctx context.Context,
	provider *models.Provider,
	svc *models.Service,
	date time.Time,
	providerOffset timeutil.Offset,
	excludeIDs []string,
) ([]time.Time, error) {
	free, err := s.freePeriods(ctx, provider, date, providerOffset, excludeIDs)
	if err != nil {
		return nil, err
	}

	step := svc.Duration()
	if svc.AvailabilityType != models.AvailabilityFixed {
		step = time.Duration(s.cfg.FlexibleStepMinutes) * time.Minute
	}
	return walkPeriods(free, svc.Duration(), step), nil
}

// freePeriods builds the sorted busy set for the date and its two calendar
// neighbours, then returns the gaps. All instants are in the reference
// zone. The 3-day window exists because the customer's offset can shift a
// provider-local slot across a day boundary.
func (s *AvailabilityService) freePeriods(
	ctx context.Context,
	provider *models.Provider,
	date time.Time,
	providerOffset timeutil.Offset,
	excludeIDs []string,
) ([]interval.Interval, error) {
	var busy []interval.Interval
	for delta := -1; delta <= 1; delta++ {
		day := date.AddDate(0, 0, delta)
		segments, err := busySegmentsForDay(day, provider.WorkingPlan.Day(timeutil.WeekdayKey(day)), providerOffset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "provider has malformed working plan")
		}
		busy = append(busy, segments...)
	}

	windowStart := providerOffset.Invert(timeutil.StartOfDay(date.AddDate(0, 0, -1)))
	windowEnd := providerOffset.Invert(timeutil.StartOfDay(date.AddDate(0, 0, 2)))

	appointments, err := s.appointments.ListOverlapping(ctx, provider.ID, windowStart, windowEnd, excludeIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load appointments")
	}
	for _, appt := range appointments {
		busy = append(busy, interval.Interval{Start: appt.StartDatetime, End: appt.EndDatetime})
	}

	interval.SortByStart(busy)
	return interval.Gaps(busy), nil
}

// busySegmentsForDay produces the reference-zone busy segments one
// calendar day contributes: the stretches outside working hours plus every
// break. A day without a working plan is one full-day busy segment, so a
// dayless provider is fully unavailable and the window edges always stay
// tiled; edge segments are kept even when empty for the same reason.
func busySegmentsForDay(day time.Time, wd *models.WorkingDay, providerOffset timeutil.Offset) ([]interval.Interval, error) {
	dayStart := providerOffset.Invert(timeutil.StartOfDay(day))
	dayEnd := providerOffset.Invert(timeutil.StartOfDay(day.AddDate(0, 0, 1)))

	if !wd.Working() {
		return []interval.Interval{{Start: dayStart, End: dayEnd}}, nil
	}

	workStartLocal, err := timeutil.AtClock(day, *wd.Start)
	if err != nil {
		return nil, err
	}
	workEndLocal, err := timeutil.AtClock(day, *wd.End)
	if err != nil {
		return nil, err
	}
	if !workStartLocal.Before(workEndLocal) {
		return []interval.Interval{{Start: dayStart, End: dayEnd}}, nil
	}

	segments := []interval.Interval{
		{Start: dayStart, End: providerOffset.Invert(workStartLocal)},
		{Start: providerOffset.Invert(workEndLocal), End: dayEnd},
	}

	for _, brk := range wd.Breaks {
		breakStart, err := timeutil.AtClock(day, brk.Start)
		if err != nil {
			return nil, err
		}
		breakEnd, err := timeutil.AtClock(day, brk.End)
		if err != nil {
			return nil, err
		}
		segments = append(segments, interval.Interval{
			Start: providerOffset.Invert(breakStart),
			End:   providerOffset.Invert(breakEnd),
		})
	}
	return segments, nil
}

// capacityPeriods builds the multi-attendant periods for one date: the
// working window with breaks and unavailability blocks subtracted, in the
// reference zone. A non-working or inverted day yields no periods.
func (s *AvailabilityService) capacityPeriods(
	ctx context.Context,
	provider *models.Provider,
	date time.Time,
	providerOffset timeutil.Offset,
) ([]interval.Interval, error) {
	wd := provider.WorkingPlan.Day(timeutil.WeekdayKey(date))
	if !wd.Working() {
		return nil, nil
	}

	workStartLocal, err := timeutil.AtClock(date, *wd.Start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "provider has malformed working plan")
	}
	workEndLocal, err := timeutil.AtClock(date, *wd.End)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "provider has malformed working plan")
	}
	if !workStartLocal.Before(workEndLocal) {
		return nil, nil
	}

	periods := []interval.Interval{{
		Start: providerOffset.Invert(workStartLocal),
		End:   providerOffset.Invert(workEndLocal),
	}}

	var subtrahends []interval.Interval
	for _, brk := range wd.Breaks {
		breakStart, err := timeutil.AtClock(date, brk.Start)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "provider has malformed break")
		}
		breakEnd, err := timeutil.AtClock(date, brk.End)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "provider has malformed break")
		}
		subtrahends = append(subtrahends, interval.Interval{
			Start: providerOffset.Invert(breakStart),
			End:   providerOffset.Invert(breakEnd),
		})
	}

	blocks, err := s.appointments.ListUnavailable(ctx, provider.ID, periods[0].Start, periods[0].End)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load unavailability blocks")
	}
	for _, block := range blocks {
		subtrahends = append(subtrahends, interval.Interval{Start: block.StartDatetime, End: block.EndDatetime})
	}

	return interval.SubtractAll(periods, subtrahends), nil
}

// capacityCandidates is the multi-attendant path: a duration-sized window
// slid across each capacity period, keeping starts whose reserved attendant
// count is below capacity.
func (s *AvailabilityService) capacityCandidates(
	ctx context.Context,
	provider *models.Provider,
	svc *models.Service,
	date time.Time,
	providerOffset timeutil.Offset,
	excludeIDs []string,
) ([]time.Time, error) {
	periods, err := s.capacityPeriods(ctx, provider, date, providerOffset)
	if err != nil {
		return nil, err
	}

	step := svc.Duration()
	if svc.AvailabilityType != models.AvailabilityFixed {
		step = time.Duration(s.cfg.MultiAttendantStepMinutes) * time.Minute
	}

	var candidates []time.Time
	for _, period := range periods {
		slotStart := period.Start
		slotEnd := slotStart.Add(svc.Duration())
		for !slotEnd.After(period.End) {
			reserved, err := s.appointments.CountAttendants(ctx, svc.ID, slotStart, slotEnd, excludeIDs)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to count attendants")
			}
			if reserved < svc.AttendantsNumber {
				candidates = append(candidates, slotStart)
			}
			slotStart = slotStart.Add(step)
			slotEnd = slotEnd.Add(step)
		}
	}
	return candidates, nil
}

// walkPeriods quantizes free periods into candidate start instants: emit
// while a full service duration still fits before the period's end.
func walkPeriods(free []interval.Interval, duration, step time.Duration) []time.Time {
	var out []time.Time
	for _, period := range free {
		for current := period.Start; period.End.Sub(current) >= duration; current = current.Add(step) {
			out = append(out, current)
		}
	}
	return out
}

// finalize converts candidate instants to the customer's wall clock, keeps
// only those landing on the requested date, applies the advance-lead
// cutoff when that date is "today" for the customer, and returns the
// deduplicated ascending "HH:MM" list.
func (s *AvailabilityService) finalize(candidates []time.Time, date time.Time, customerOffset timeutil.Offset, now time.Time) []string {
	cutoffActive := timeutil.SameDate(customerOffset.Apply(now), date)
	cutoff := now.Add(time.Duration(s.cfg.AdvanceMinutes) * time.Minute)

	seen := make(map[string]struct{})
	var slots []string
	for _, candidate := range candidates {
		local := customerOffset.Apply(candidate)
		if !timeutil.SameDate(local, date) {
			continue
		}
		if cutoffActive && !candidate.After(cutoff) {
			continue
		}
		hhmm := local.Format("15:04")
		if _, ok := seen[hhmm]; ok {
			continue
		}
		seen[hhmm] = struct{}{}
		slots = append(slots, hhmm)
	}

	sort.Strings(slots)
	return slots
}

// resolveAnyProvider picks the provider offering the service with the
// strictly greatest slot count for the date; ties keep the first
// encountered, and no slots anywhere resolves to "".
func (s *AvailabilityService) resolveAnyProvider(
	ctx context.Context,
	svc *models.Service,
	date time.Time,
	customerOffset timeutil.Offset,
	now time.Time,
) (string, error) {
	providers, err := s.providers.ListByService(ctx, svc.ID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list providers")
	}

	best := ""
	bestCount := 0
	for i := range providers {
		provider := &providers[i]
		slots, err := s.slotsForDate(ctx, provider, svc, date, customerOffset, now, nil)
		if err != nil {
			return "", err
		}
		if len(slots) > bestCount {
			best = provider.ID
			bestCount = len(slots)
		}
	}
	return best, nil
}

// ValidateSlot re-runs the period computation immediately before a booking
// commit and confirms [start, start+duration) is still fully contained in
// one free period; the multi-attendant path checks containment in a
// capacity period and then re-counts reserved attendants. This is a
// point-in-time check, not a lock: the persistence layer repeats it inside
// the insert transaction.
func (s *AvailabilityService) ValidateSlot(ctx context.Context, providerID, serviceID string, start time.Time, excludeAppointmentID string) error {
	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "unknown service")
		}
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load service")
	}

	provider, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "unknown provider")
		}
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load provider")
	}
	providerOffset, err := timeutil.ParseOffset(provider.Timezone)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "provider has malformed timezone offset")
	}

	slot := interval.Interval{Start: start, End: start.Add(svc.Duration())}

	// Re-validate against the provider-local calendar day of the slot.
	localDate := timeutil.StartOfDay(providerOffset.Apply(start))

	var excludeIDs []string
	if excludeAppointmentID != "" {
		excludeIDs = append(excludeIDs, excludeAppointmentID)
	}

	if svc.MultiAttendant() {
		periods, err := s.capacityPeriods(ctx, provider, localDate, providerOffset)
		if err != nil {
			return err
		}
		if !containedInAny(periods, slot) {
			return appErrors.Clone(appErrors.ErrSlotUnavailable, "")
		}
		reserved, err := s.appointments.CountAttendants(ctx, svc.ID, slot.Start, slot.End, excludeIDs)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to count attendants")
		}
		if reserved >= svc.AttendantsNumber {
			return appErrors.Clone(appErrors.ErrSlotUnavailable, "")
		}
		return nil
	}

	free, err := s.freePeriods(ctx, provider, localDate, providerOffset, excludeIDs)
	if err != nil {
		return err
	}
	if !containedInAny(free, slot) {
		return appErrors.Clone(appErrors.ErrSlotUnavailable, "")
	}
	return nil
}

func containedInAny(periods []interval.Interval, slot interval.Interval) bool {
	for _, period := range periods {
		if period.Contains(slot) {
			return true
		}
	}
	return false
}

// UnavailableDates returns the dates of a month with no bookable slot for
// the provider/service pair, as "2006-01-02" strings. The month view is
// cached; booking writes invalidate it.
func (s *AvailabilityService) UnavailableDates(ctx context.Context, req UnavailableDatesRequest) ([]string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unavailable-dates query")
	}
	monthStart, err := time.Parse("2006-01", req.Month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid month, expected YYYY-MM")
	}
	if _, err := timeutil.ParseOffset(req.Timezone); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timezone offset")
	}

	cacheKey := ""
	if s.cache != nil {
		cacheKey = repository.UnavailableDatesKey(req.ProviderID, req.ServiceID, req.Month)
		var cached []string
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("unavailable-dates cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	dates := []string{}
	for day := monthStart; day.Month() == monthStart.Month(); day = day.AddDate(0, 0, 1) {
		result, err := s.AvailableHours(ctx, SlotQueryRequest{
			ProviderID: req.ProviderID,
			ServiceID:  req.ServiceID,
			Date:       day.Format(dateLayout),
			Timezone:   req.Timezone,
			Now:        req.Now,
		})
		if err != nil {
			return nil, err
		}
		if len(result.Slots) == 0 {
			dates = append(dates, day.Format(dateLayout))
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, dates, s.cfg.UnavailableDatesTTL); err != nil {
			s.logger.Warn("unavailable-dates cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return dates, nil
}
