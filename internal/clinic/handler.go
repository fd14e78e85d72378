package clinic

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/session"
	"github.com/wolfman30/pochita-booking/pkg/logging"
)

// Handler provides HTTP endpoints for the clinic profile.
type Handler struct {
	store    *Store
	clinicID string
	logger   *logging.Logger
}

// NewHandler creates a new clinic profile HTTP handler.
func NewHandler(store *Store, clinicID string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, clinicID: clinicID, logger: logger}
}

// profileResponse adds display helpers to the stored profile.
type profileResponse struct {
	*Config
	Schedule []ScheduleRow `json:"schedule"`
}

// GetConfig returns the clinic profile.
// GET /api/clinic/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Get(r.Context(), h.clinicID)
	if err != nil {
		h.logger.Error("failed to get clinic config", "clinic_id", h.clinicID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Config: cfg, Schedule: cfg.WeekSchedule()})
}

// UpdateConfigRequest is the request body for updating the clinic profile.
type UpdateConfigRequest struct {
	Name          string            `json:"name,omitempty"`
	Address       string            `json:"address,omitempty"`
	Email         string            `json:"email,omitempty"`
	Timezone      string            `json:"timezone,omitempty"`
	Emergency     *EmergencyContact `json:"emergency,omitempty"`
	BusinessHours *BusinessHours    `json:"business_hours,omitempty"`
	Areas         []Area            `json:"areas,omitempty"`
}

// UpdateConfig applies a partial update. Receptionists only.
// PUT /api/clinic/config
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok || !sess.Authenticated() || sess.User == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	if sess.User.Role != backend.RoleReceptionist {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "solo recepción puede modificar la clínica"})
		return
	}

	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	cfg, err := h.store.Get(r.Context(), h.clinicID)
	if err != nil {
		h.logger.Error("failed to get clinic config", "clinic_id", h.clinicID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if req.Name != "" {
		cfg.Name = req.Name
	}
	if req.Address != "" {
		cfg.Address = req.Address
	}
	if req.Email != "" {
		cfg.Email = req.Email
	}
	if req.Timezone != "" {
		cfg.Timezone = req.Timezone
	}
	if req.Emergency != nil {
		cfg.Emergency = *req.Emergency
	}
	if req.BusinessHours != nil {
		cfg.BusinessHours = *req.BusinessHours
	}
	if req.Areas != nil {
		cfg.Areas = req.Areas
	}

	if err := cfg.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.store.Set(r.Context(), cfg); err != nil {
		h.logger.Error("failed to save clinic config", "clinic_id", h.clinicID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save config"})
		return
	}

	h.logger.Info("clinic config updated", "clinic_id", h.clinicID, "user_id", sess.User.ID)
	writeJSON(w, http.StatusOK, profileResponse{Config: cfg, Schedule: cfg.WeekSchedule()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
