package branch

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hairloft/salon-platform/internal/tenancy"
	"github.com/hairloft/salon-platform/pkg/logging"
)

// Handler exposes branch directory and booking-settings endpoints.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a branch HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Routes returns the branch router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListBranches)
	r.Get("/{branchID}", h.GetBranch)
	r.Put("/{branchID}", h.SaveBranch)
	r.Get("/{branchID}/booking-settings", h.GetSettings)
	r.Put("/{branchID}/booking-settings", h.SaveSettings)
	return r
}

// ListBranches returns the org's location directory.
// GET /branches
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	branches, err := h.store.List(r.Context(), orgID)
	if err != nil {
		h.logger.Error("failed to list branches", "org_id", orgID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, branches)
}

// GetBranch returns one branch.
// GET /branches/{branchID}
func (h *Handler) GetBranch(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "branchID"))
	if err != nil {
		http.Error(w, `{"error": "invalid branch id"}`, http.StatusBadRequest)
		return
	}
	b, err := h.store.Branch(r.Context(), orgID, id)
	if err != nil {
		h.logger.Error("failed to get branch", "org_id", orgID, "branch_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if b == nil {
		http.Error(w, `{"error": "branch not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, b)
}

// SaveBranch creates or updates a branch.
// PUT /branches/{branchID}
func (h *Handler) SaveBranch(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "branchID"))
	if err != nil {
		http.Error(w, `{"error": "invalid branch id"}`, http.StatusBadRequest)
		return
	}

	var b Branch
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	b.ID = id
	b.OrgID = orgID

	if err := h.store.Save(r.Context(), &b); err != nil {
		if vErr := b.Validate(); vErr != nil {
			http.Error(w, `{"error": "`+vErr.Error()+`"}`, http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to save branch", "org_id", orgID, "branch_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("branch saved", "org_id", orgID, "branch_id", id, "name", b.Name)
	writeJSON(w, &b)
}

// GetSettings returns the branch booking settings.
// GET /branches/{branchID}/booking-settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "branchID"))
	if err != nil {
		http.Error(w, `{"error": "invalid branch id"}`, http.StatusBadRequest)
		return
	}
	cfg, err := h.store.Settings(r.Context(), orgID, id)
	if err != nil {
		h.logger.Error("failed to get booking settings", "org_id", orgID, "branch_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if cfg == nil {
		http.Error(w, `{"error": "booking settings not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, cfg)
}

// SaveSettings creates or updates booking settings for a branch.
// PUT /branches/{branchID}/booking-settings
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	orgID, _ := tenancy.OrgIDFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "branchID"))
	if err != nil {
		http.Error(w, `{"error": "invalid branch id"}`, http.StatusBadRequest)
		return
	}

	var cfg Settings
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	cfg.BranchID = id
	cfg.OrgID = orgID
	if err := cfg.Validate(); err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	if err := h.store.SaveSettings(r.Context(), &cfg); err != nil {
		h.logger.Error("failed to save booking settings", "org_id", orgID, "branch_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("booking settings saved", "org_id", orgID, "branch_id", id)
	writeJSON(w, &cfg)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
