package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hairloft/salon-platform/internal/tenancy"
	"github.com/hairloft/salon-platform/pkg/logging"
)

// Handler exposes catalog read endpoints for the booking flow.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a catalog HTTP handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes returns the catalog router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListServices)
	r.Get("/{serviceID}", h.GetService)
	return r
}

// ListServices returns the active services for a branch.
// GET /services?branch=<uuid>
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	branchID, err := uuid.Parse(r.URL.Query().Get("branch"))
	if err != nil {
		http.Error(w, `{"error": "branch query parameter required"}`, http.StatusBadRequest)
		return
	}

	services, err := h.repo.ListByBranch(r.Context(), orgID, branchID)
	if err != nil {
		h.logger.Error("failed to list services", "org_id", orgID, "branch_id", branchID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(services)
}

// GetService returns one service.
// GET /services/{serviceID}
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "serviceID"))
	if err != nil {
		http.Error(w, `{"error": "invalid service id"}`, http.StatusBadRequest)
		return
	}

	svc, err := h.repo.Service(r.Context(), orgID, id)
	if err != nil {
		h.logger.Error("failed to get service", "org_id", orgID, "service_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if svc == nil {
		http.Error(w, `{"error": "service not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(svc)
}
