package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/hairloft/salon-platform/internal/branch"
	"github.com/hairloft/salon-platform/internal/catalog"
	"github.com/hairloft/salon-platform/internal/customer"
	"github.com/hairloft/salon-platform/internal/observability/metrics"
	"github.com/hairloft/salon-platform/internal/payments"
	"github.com/hairloft/salon-platform/internal/schedule"
	"github.com/hairloft/salon-platform/internal/tax"
	"github.com/hairloft/salon-platform/pkg/logging"
)

var bookingTracer = otel.Tracer("salon.internal.booking")

// BranchDirectory resolves branches and their booking settings.
type BranchDirectory interface {
	Branch(ctx context.Context, orgID string, id uuid.UUID) (*branch.Branch, error)
	Settings(ctx context.Context, orgID string, branchID uuid.UUID) (*branch.Settings, error)
}

// ServiceCatalog resolves bookable services.
type ServiceCatalog interface {
	Service(ctx context.Context, orgID string, id uuid.UUID) (*catalog.Service, error)
}

// ScheduleSource resolves a staff member's weekly opening hours.
type ScheduleSource interface {
	Weekly(ctx context.Context, orgID string, branchID, staffID uuid.UUID) (*schedule.WeeklySchedule, error)
}

// CustomerDirectory resolves customer profiles and keeps the appointment
// counter.
type CustomerDirectory interface {
	Profile(ctx context.Context, orgID string, customerID uuid.UUID) (*customer.Profile, error)
	IncrementAppointments(ctx context.Context, orgID string, customerID uuid.UUID) error
}

// AppointmentStore persists appointments. Insert must fail with
// ErrSlotConflict when a pending appointment already holds the slot.
type AppointmentStore interface {
	Insert(ctx context.Context, a *Appointment) error
	Get(ctx context.Context, orgID string, id uuid.UUID) (*Appointment, error)
	ListForStaffOnDates(ctx context.Context, orgID string, staffID uuid.UUID, dates []string) ([]Appointment, error)
	ListForOwner(ctx context.Context, orgID string, ownerID uuid.UUID) ([]Appointment, error)
	UpdateStatus(ctx context.Context, orgID string, id uuid.UUID, status Status) error
}

// Notifier sends booking lifecycle emails. Implementations are best-effort
// and must not fail the calling flow.
type Notifier interface {
	AppointmentBooked(ctx context.Context, email, name string, appt *Appointment)
	AppointmentCancelled(ctx context.Context, email, name string, appt *Appointment, feeCents int64)
}

// Service orchestrates availability, admission and cancellation.
type Service struct {
	branches  BranchDirectory
	catalog   ServiceCatalog
	schedules ScheduleSource
	customers CustomerDirectory
	store     AppointmentStore
	tax       tax.Calculator
	charger   payments.FeeCharger
	notifier  Notifier
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	clock     schedule.Clock
}

// Options carries the optional collaborators.
type Options struct {
	Charger  payments.FeeCharger
	Notifier Notifier
	Metrics  *metrics.BookingMetrics
	Logger   *logging.Logger
	// Clock overrides time.Now for tests.
	Clock schedule.Clock
}

// NewService creates the booking service.
func NewService(branches BranchDirectory, cat ServiceCatalog, schedules ScheduleSource,
	customers CustomerDirectory, store AppointmentStore, taxCalc tax.Calculator, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		branches:  branches,
		catalog:   cat,
		schedules: schedules,
		customers: customers,
		store:     store,
		tax:       taxCalc,
		charger:   opts.Charger,
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		logger:    logger,
		clock:     clock,
	}
}

// AvailabilityQuery identifies the staff/branch/service combination to plan
// slots for.
type AvailabilityQuery struct {
	BranchID  uuid.UUID
	StaffID   uuid.UUID
	ServiceID uuid.UUID
}

// AvailabilityResult is the per-date slot calendar for one staff member.
type AvailabilityResult struct {
	BranchID  uuid.UUID                  `json:"branch_id"`
	StaffID   uuid.UUID                  `json:"staff_id"`
	ServiceID uuid.UUID                  `json:"service_id"`
	Days      []schedule.DayAvailability `json:"days"`
}

// Availability computes the bookable start times across the branch's booking
// window. The window re-anchors to "now" on every call.
func (s *Service) Availability(ctx context.Context, orgID string, q AvailabilityQuery) (*AvailabilityResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.availability")
	defer span.End()
	started := time.Now()
	defer func() { s.metrics.ObserveAvailabilityLatency(time.Since(started).Seconds()) }()

	env, err := s.resolveBookingEnv(ctx, orgID, q.BranchID, q.ServiceID)
	if err != nil {
		return nil, err
	}

	weekly, err := s.schedules.Weekly(ctx, orgID, q.BranchID, q.StaffID)
	if err != nil {
		return nil, err
	}

	planner := schedule.Planner{Now: s.clock}
	leadTime := time.Duration(env.settings.LeadTimeHours) * time.Hour
	windowStart, windowEnd := planner.WindowBounds(env.loc, leadTime, env.settings.BookingWindowDays)

	busy, err := s.busyIntervals(ctx, orgID, q.StaffID, env.loc, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	days, err := planner.Plan(schedule.PlanRequest{
		Schedule:   weekly,
		Location:   env.loc,
		LeadTime:   leadTime,
		WindowDays: env.settings.BookingWindowDays,
		Duration:   env.svc.Duration(),
		Buffer:     env.svc.Buffer(),
		Step:       time.Duration(env.settings.SlotIncrementMinutes) * time.Minute,
		Busy:       busy,
	})
	if err != nil {
		return nil, err
	}
	return &AvailabilityResult{BranchID: q.BranchID, StaffID: q.StaffID, ServiceID: q.ServiceID, Days: days}, nil
}

// BookingRequest is one requested slot.
type BookingRequest struct {
	BranchID   uuid.UUID `json:"branch_id"`
	StaffID    uuid.UUID `json:"staff_id"`
	ServiceID  uuid.UUID `json:"service_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	// Date is the branch-local calendar date, "2006-01-02".
	Date string `json:"date"`
	// Start is the branch-local wall-clock start, "15:04".
	Start string `json:"start"`
}

// Book runs the admission sequence: resolve the branch, settings and service;
// enforce the stored-payment-method policy; quote tax; derive the booked and
// buffered intervals once; pre-check conflicts and insert. The partial unique
// index behind the store makes the insert the authoritative conflict check,
// so of two concurrent requests for the same slot exactly one is admitted.
func (s *Service) Book(ctx context.Context, orgID string, req BookingRequest) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.book")
	defer span.End()

	appt, err := s.book(ctx, orgID, req)
	s.metrics.ObserveAdmission(admissionOutcome(err))
	return appt, err
}

func (s *Service) book(ctx context.Context, orgID string, req BookingRequest) (*Appointment, error) {
	env, err := s.resolveBookingEnv(ctx, orgID, req.BranchID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	start, err := schedule.At(req.Date, req.Start, env.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	profile, err := s.customers.Profile(ctx, orgID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if env.settings.Policy.RequiresStoredPaymentMethod() && !profile.HasStoredPaymentMethod() {
		return nil, ErrPaymentMethodRequired
	}

	quote, err := s.tax.Quote(ctx, env.branch.Address, tax.LineItem{
		AmountCents: env.svc.PriceCents,
		Reference:   env.svc.Name,
		TaxCode:     env.svc.TaxCode,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaxCalculation, err)
	}

	// The canonical duration+buffer pair, computed exactly once. BookedTime
	// is customer-facing; the buffered range is what conflicts run against.
	end := start.Add(env.svc.Duration())
	bufferedEnd := end.Add(env.svc.Buffer())
	booked := schedule.TimeRange{From: start.Format(schedule.ClockLayout), To: end.Format(schedule.ClockLayout)}
	buffered := schedule.TimeRange{From: booked.From, To: bufferedEnd.Format(schedule.ClockLayout)}
	proposed := schedule.Interval{Start: start, End: bufferedEnd}

	existing, err := s.store.ListForStaffOnDates(ctx, orgID, req.StaffID, []string{req.Date})
	if err != nil {
		return nil, err
	}
	for i := range existing {
		iv, err := existing[i].BufferedInterval(env.loc)
		if err != nil {
			return nil, err
		}
		if proposed.Overlaps(iv) {
			return nil, ErrSlotConflict
		}
	}

	appt := &Appointment{
		ID:                   uuid.New(),
		OrgID:                orgID,
		BranchID:             req.BranchID,
		StaffID:              req.StaffID,
		ServiceID:            req.ServiceID,
		OwnerID:              req.CustomerID,
		Date:                 req.Date,
		BookedTime:           booked,
		BookedTimeWithBuffer: buffered,
		Price: Price{
			ServiceFeeCents: env.svc.PriceCents,
			TaxCents:        quote.TaxCents,
			TaxRate:         quote.EffectiveRate,
			TotalCents:      env.svc.PriceCents + quote.TaxCents,
		},
		Policy:    SnapshotPolicy(env.settings.Policy, env.svc.PriceCents),
		Status:    StatusPending,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.store.Insert(ctx, appt); err != nil {
		return nil, err
	}

	// Counter and confirmation email are best-effort; the appointment is
	// already committed.
	if err := s.customers.IncrementAppointments(ctx, orgID, req.CustomerID); err != nil {
		s.logger.Warn("appointment counter increment failed", "org_id", orgID, "customer_id", req.CustomerID, "error", err)
	}
	if s.notifier != nil && profile != nil {
		s.notifier.AppointmentBooked(ctx, profile.Email, profile.Name, appt)
	}

	s.logger.Info("appointment booked", "org_id", orgID, "appointment_id", appt.ID,
		"staff_id", req.StaffID, "date", req.Date, "from", booked.From)
	return appt, nil
}

// CancelQuote previews a cancellation: whether it is late and what fee would
// be charged. The decision comes from the live clock, never cached.
func (s *Service) CancelQuote(ctx context.Context, orgID string, apptID uuid.UUID) (*CancelAssessment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.cancel_quote")
	defer span.End()

	appt, loc, err := s.loadPending(ctx, orgID, apptID)
	if err != nil {
		return nil, err
	}
	assessment, err := AssessCancellation(appt, loc, s.clock().In(loc))
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

// CancelResult reports what a cancellation attempt did.
type CancelResult struct {
	Cancelled bool `json:"cancelled"`
	// RequiresConfirmation means a fee is due and the caller has not
	// confirmed the charge; nothing was changed.
	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
	FeeCents             int64  `json:"fee_cents,omitempty"`
	FeeChargedCents      int64  `json:"fee_charged_cents,omitempty"`
	ChargeRef            string `json:"charge_ref,omitempty"`
}

// Cancel cancels a pending appointment. A late cancellation under a
// collecting policy charges the snapshotted fee, but only after the caller
// confirms; the first unconfirmed attempt returns the fee without changing
// anything.
func (s *Service) Cancel(ctx context.Context, orgID string, apptID uuid.UUID, confirmCharge bool) (*CancelResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.cancel")
	defer span.End()

	appt, loc, err := s.loadPending(ctx, orgID, apptID)
	if err != nil {
		return nil, err
	}
	assessment, err := AssessCancellation(appt, loc, s.clock().In(loc))
	if err != nil {
		return nil, err
	}

	result := &CancelResult{FeeCents: assessment.FeeCents}
	if assessment.Charge {
		if !confirmCharge {
			result.RequiresConfirmation = true
			s.metrics.ObserveCancellation("confirmation_required")
			return result, nil
		}
		profile, err := s.customers.Profile(ctx, orgID, appt.OwnerID)
		if err != nil {
			return nil, err
		}
		if !profile.HasStoredPaymentMethod() {
			return nil, ErrPaymentMethodRequired
		}
		if s.charger == nil {
			return nil, fmt.Errorf("booking: fee charger not configured")
		}
		ref, err := s.charger.ChargeFee(ctx, profile.StripeCustomerID, profile.StripePaymentMethodID,
			assessment.FeeCents, chargeDescription("Late cancellation", appt))
		if err != nil {
			s.metrics.ObserveCancellation("charge_failed")
			return nil, fmt.Errorf("booking: cancellation fee charge: %w", err)
		}
		result.FeeChargedCents = assessment.FeeCents
		result.ChargeRef = ref
	}

	if err := s.store.UpdateStatus(ctx, orgID, apptID, StatusCancelled); err != nil {
		return nil, err
	}
	result.Cancelled = true
	if result.FeeChargedCents > 0 {
		s.metrics.ObserveCancellation("late_charged")
	} else {
		s.metrics.ObserveCancellation("free")
	}

	if s.notifier != nil {
		if profile, err := s.customers.Profile(ctx, orgID, appt.OwnerID); err == nil && profile != nil {
			s.notifier.AppointmentCancelled(ctx, profile.Email, profile.Name, appt, result.FeeChargedCents)
		}
	}
	s.logger.Info("appointment cancelled", "org_id", orgID, "appointment_id", apptID,
		"late", assessment.Late, "fee_charged_cents", result.FeeChargedCents)
	return result, nil
}

// NoShowResult reports what marking a no-show did.
type NoShowResult struct {
	MarkedNoShow    bool   `json:"marked_no_show"`
	FeeChargedCents int64  `json:"fee_charged_cents,omitempty"`
	ChargeRef       string `json:"charge_ref,omitempty"`
}

// MarkNoShow moves a pending appointment to no-show and, when the snapshotted
// policy collects a no-show fee and the customer has a stored payment method,
// charges it. The charge is best-effort: the status transition stands even if
// the charge fails.
func (s *Service) MarkNoShow(ctx context.Context, orgID string, apptID uuid.UUID) (*NoShowResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.mark_no_show")
	defer span.End()

	appt, _, err := s.loadPending(ctx, orgID, apptID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateStatus(ctx, orgID, apptID, StatusNoShow); err != nil {
		return nil, err
	}

	result := &NoShowResult{MarkedNoShow: true}
	fee := NoShowFeeDue(appt)
	if fee > 0 && s.charger != nil {
		profile, err := s.customers.Profile(ctx, orgID, appt.OwnerID)
		if err == nil && profile.HasStoredPaymentMethod() {
			ref, err := s.charger.ChargeFee(ctx, profile.StripeCustomerID, profile.StripePaymentMethodID,
				fee, chargeDescription("No-show", appt))
			if err != nil {
				s.logger.Warn("no-show fee charge failed", "appointment_id", apptID, "error", err)
			} else {
				result.FeeChargedCents = fee
				result.ChargeRef = ref
			}
		}
	}
	return result, nil
}

// Complete moves a pending appointment to completed.
func (s *Service) Complete(ctx context.Context, orgID string, apptID uuid.UUID) error {
	return s.store.UpdateStatus(ctx, orgID, apptID, StatusCompleted)
}

// OwnedAppointment is an appointment decorated with the actions its owner can
// currently take.
type OwnedAppointment struct {
	Appointment
	Cancellable bool `json:"cancellable"`
}

// ListForOwner returns a customer's appointments with action flags.
func (s *Service) ListForOwner(ctx context.Context, orgID string, ownerID uuid.UUID) ([]OwnedAppointment, error) {
	appts, err := s.store.ListForOwner(ctx, orgID, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]OwnedAppointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, OwnedAppointment{Appointment: a, Cancellable: a.Status == StatusPending})
	}
	return out, nil
}

// Get loads one appointment.
func (s *Service) Get(ctx context.Context, orgID string, apptID uuid.UUID) (*Appointment, error) {
	appt, err := s.store.Get(ctx, orgID, apptID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, apptID)
	}
	return appt, nil
}

// bookingEnv is the resolved branch/settings/service triple every
// availability and admission request starts from.
type bookingEnv struct {
	branch   *branch.Branch
	settings *branch.Settings
	svc      *catalog.Service
	loc      *time.Location
}

func (s *Service) resolveBookingEnv(ctx context.Context, orgID string, branchID, serviceID uuid.UUID) (*bookingEnv, error) {
	b, err := s.branches.Branch(ctx, orgID, branchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: branch %s", ErrNotFound, branchID)
	}
	settings, err := s.branches.Settings(ctx, orgID, branchID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, fmt.Errorf("%w: booking settings for branch %s", ErrNotFound, branchID)
	}
	svc, err := s.catalog.Service(ctx, orgID, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil || !svc.Active || svc.BranchID != branchID {
		return nil, fmt.Errorf("%w: service %s", ErrNotFound, serviceID)
	}
	loc, err := b.Location()
	if err != nil {
		return nil, err
	}
	return &bookingEnv{branch: b, settings: settings, svc: svc, loc: loc}, nil
}

// busyIntervals loads the staff member's pending appointments across the
// window dates and resolves their buffered intervals per date.
func (s *Service) busyIntervals(ctx context.Context, orgID string, staffID uuid.UUID,
	loc *time.Location, windowStart, windowEnd time.Time) (map[string][]schedule.Interval, error) {
	var dates []string
	last := time.Date(windowEnd.Year(), windowEnd.Month(), windowEnd.Day(), 0, 0, 0, 0, loc)
	for day := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, loc); !day.After(last); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day.Format(schedule.DateLayout))
	}
	appts, err := s.store.ListForStaffOnDates(ctx, orgID, staffID, dates)
	if err != nil {
		return nil, err
	}
	busy := make(map[string][]schedule.Interval, len(appts))
	for i := range appts {
		iv, err := appts[i].BufferedInterval(loc)
		if err != nil {
			return nil, err
		}
		busy[appts[i].Date] = append(busy[appts[i].Date], iv)
	}
	return busy, nil
}

// loadPending loads an appointment that must still be pending, plus its
// branch location.
func (s *Service) loadPending(ctx context.Context, orgID string, apptID uuid.UUID) (*Appointment, *time.Location, error) {
	appt, err := s.Get(ctx, orgID, apptID)
	if err != nil {
		return nil, nil, err
	}
	if appt.Status != StatusPending {
		return nil, nil, fmt.Errorf("%w: appointment %s is %s", ErrInvalidInput, apptID, appt.Status)
	}
	b, err := s.branches.Branch(ctx, orgID, appt.BranchID)
	if err != nil {
		return nil, nil, err
	}
	if b == nil {
		return nil, nil, fmt.Errorf("%w: branch %s", ErrNotFound, appt.BranchID)
	}
	loc, err := b.Location()
	if err != nil {
		return nil, nil, err
	}
	return appt, loc, nil
}

func admissionOutcome(err error) string {
	switch {
	case err == nil:
		return "admitted"
	case errors.Is(err, ErrSlotConflict):
		return "slot_conflict"
	case errors.Is(err, ErrPaymentMethodRequired):
		return "payment_method_required"
	case errors.Is(err, ErrTaxCalculation):
		return "tax_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
