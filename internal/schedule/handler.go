package schedule

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hairloft/salon-platform/internal/tenancy"
	"github.com/hairloft/salon-platform/pkg/logging"
)

// Handler exposes opening-hours management for staff members.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a schedule HTTP handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes returns the staff schedule router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{staffID}/opening-hours", h.GetOpeningHours)
	r.Put("/{staffID}/opening-hours", h.SaveOpeningHours)
	return r
}

// GetOpeningHours returns a staff member's weekly schedule at a branch.
// GET /staff/{staffID}/opening-hours?branch=<uuid>
func (h *Handler) GetOpeningHours(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	staffID, branchID, ok := parseIDs(w, r)
	if !ok {
		return
	}

	ws, err := h.repo.Weekly(r.Context(), orgID, branchID, staffID)
	if err != nil {
		h.logger.Error("failed to load opening hours", "org_id", orgID, "staff_id", staffID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ws)
}

// SaveOpeningHours replaces a staff member's weekly schedule at a branch.
// PUT /staff/{staffID}/opening-hours?branch=<uuid>
func (h *Handler) SaveOpeningHours(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	staffID, branchID, ok := parseIDs(w, r)
	if !ok {
		return
	}

	var ws WeeklySchedule
	if err := json.NewDecoder(r.Body).Decode(&ws); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if err := ws.Validate(); err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	if err := h.repo.SaveWeekly(r.Context(), orgID, branchID, staffID, &ws); err != nil {
		h.logger.Error("failed to save opening hours", "org_id", orgID, "staff_id", staffID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("opening hours saved", "org_id", orgID, "staff_id", staffID, "branch_id", branchID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&ws)
}

func parseIDs(w http.ResponseWriter, r *http.Request) (staffID, branchID uuid.UUID, ok bool) {
	staffID, err := uuid.Parse(chi.URLParam(r, "staffID"))
	if err != nil {
		http.Error(w, `{"error": "invalid staff id"}`, http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	branchID, err = uuid.Parse(r.URL.Query().Get("branch"))
	if err != nil {
		http.Error(w, `{"error": "branch query parameter required"}`, http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	return staffID, branchID, true
}
