package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hairloft/salon-platform/internal/schedule"
	"github.com/hairloft/salon-platform/internal/tenancy"
	"github.com/hairloft/salon-platform/pkg/logging"
)

// Handler exposes the booking API.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a booking HTTP handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes returns the booking router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/availability", h.GetAvailability)
	r.Post("/", h.CreateBooking)
	r.Get("/", h.ListBookings)
	r.Get("/{appointmentID}", h.GetBooking)
	r.Post("/{appointmentID}/cancel-quote", h.CancelQuote)
	r.Post("/{appointmentID}/cancel", h.Cancel)
	r.Post("/{appointmentID}/no-show", h.MarkNoShow)
	r.Post("/{appointmentID}/complete", h.Complete)
	return r
}

// GetAvailability computes the slot calendar for a staff/service pair.
// GET /bookings/availability?branch=&staff=&service=
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	q := AvailabilityQuery{}
	var err error
	if q.BranchID, err = uuid.Parse(r.URL.Query().Get("branch")); err != nil {
		http.Error(w, `{"error": "branch query parameter required"}`, http.StatusBadRequest)
		return
	}
	if q.StaffID, err = uuid.Parse(r.URL.Query().Get("staff")); err != nil {
		http.Error(w, `{"error": "staff query parameter required"}`, http.StatusBadRequest)
		return
	}
	if q.ServiceID, err = uuid.Parse(r.URL.Query().Get("service")); err != nil {
		http.Error(w, `{"error": "service query parameter required"}`, http.StatusBadRequest)
		return
	}

	result, err := h.svc.Availability(r.Context(), orgID, q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateBooking admits one booking request.
// POST /bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Book(r.Context(), orgID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// ListBookings lists a customer's appointments with action flags.
// GET /bookings?customer=<uuid>
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	ownerID, err := uuid.Parse(r.URL.Query().Get("customer"))
	if err != nil {
		http.Error(w, `{"error": "customer query parameter required"}`, http.StatusBadRequest)
		return
	}

	appts, err := h.svc.ListForOwner(r.Context(), orgID, ownerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// GetBooking loads one appointment.
// GET /bookings/{appointmentID}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	apptID, ok := parseAppointmentID(w, r)
	if !ok {
		return
	}

	appt, err := h.svc.Get(r.Context(), orgID, apptID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// CancelQuote previews the cancellation fee decision for an appointment.
// POST /bookings/{appointmentID}/cancel-quote
func (h *Handler) CancelQuote(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	apptID, ok := parseAppointmentID(w, r)
	if !ok {
		return
	}

	assessment, err := h.svc.CancelQuote(r.Context(), orgID, apptID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

type cancelBody struct {
	ConfirmCharge bool `json:"confirm_charge"`
}

// Cancel cancels an appointment, charging the late fee when confirmed.
// POST /bookings/{appointmentID}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	apptID, ok := parseAppointmentID(w, r)
	if !ok {
		return
	}
	var body cancelBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.Cancel(r.Context(), orgID, apptID, body.ConfirmCharge)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MarkNoShow flags a missed appointment.
// POST /bookings/{appointmentID}/no-show
func (h *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	apptID, ok := parseAppointmentID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.MarkNoShow(r.Context(), orgID, apptID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Complete marks an appointment done.
// POST /bookings/{appointmentID}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	apptID, ok := parseAppointmentID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Complete(r.Context(), orgID, apptID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(StatusCompleted)})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, `{"error": "not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, schedule.ErrInvalidDate):
		http.Error(w, `{"error": "invalid input"}`, http.StatusBadRequest)
	case errors.Is(err, ErrSlotConflict):
		http.Error(w, `{"error": "slot already booked"}`, http.StatusConflict)
	case errors.Is(err, ErrPaymentMethodRequired):
		http.Error(w, `{"error": "stored payment method required"}`, http.StatusPaymentRequired)
	case errors.Is(err, ErrTaxCalculation):
		http.Error(w, `{"error": "tax calculation failed, retry the request"}`, http.StatusBadGateway)
	default:
		h.logger.Error("booking request failed", "path", r.URL.Path, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
	}
}

func parseAppointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, `{"error": "invalid appointment id"}`, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
