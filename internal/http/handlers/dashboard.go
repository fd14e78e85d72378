package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/pochita-booking/internal/clinic"
	"github.com/wolfman30/pochita-booking/internal/dashboard"
	"github.com/wolfman30/pochita-booking/internal/holidays"
)

// DashboardHandler serves the landing panel, the clinic profile and the
// holiday calendar.
type DashboardHandler struct {
	base
	clinic *clinic.Handler
}

// NewDashboardHandler creates the panel endpoints.
func NewDashboardHandler(d Deps) *DashboardHandler {
	b := newBase(d)
	return &DashboardHandler{base: b, clinic: clinic.NewHandler(b.Clinic, b.ClinicID, b.Logger)}
}

// Panel returns the caller's landing panel.
// GET /api/dashboard
func (h *DashboardHandler) Panel(w http.ResponseWriter, r *http.Request) {
	user := h.user(r)
	p, err := dashboard.Build(r.Context(), h.userClient(r), *user, h.today())
	if err != nil {
		h.backendError(w, "dashboard", err, "Error al cargar el panel")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ClinicConfig returns the clinic profile.
// GET /api/clinic/config
func (h *DashboardHandler) ClinicConfig(w http.ResponseWriter, r *http.Request) {
	if h.Clinic == nil {
		cfg := h.clinicConfig(r.Context())
		writeJSON(w, http.StatusOK, struct {
			*clinic.Config
			Schedule []clinic.ScheduleRow `json:"schedule"`
		}{cfg, cfg.WeekSchedule()})
		return
	}
	h.clinic.GetConfig(w, r)
}

// UpdateClinicConfig replaces the clinic profile. Reception only.
// PUT /api/clinic/config
func (h *DashboardHandler) UpdateClinicConfig(w http.ResponseWriter, r *http.Request) {
	if h.Clinic == nil {
		jsonError(w, "clinic profile storage unavailable", http.StatusServiceUnavailable)
		return
	}
	h.clinic.UpdateConfig(w, r)
}

// Schedule returns the clinic's weekly opening hours.
// GET /api/clinic/schedule
func (h *DashboardHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	cfg := h.clinicConfig(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"name":      cfg.Name,
		"emergency": cfg.Emergency,
		"schedule":  cfg.WeekSchedule(),
		"open_now":  cfg.IsOpenAt(h.Now().In(h.Location), h.Holidays),
	})
}

// HolidayList lists the national holidays of a year. A ".ics" suffix returns
// an iCalendar feed instead of JSON.
// GET /api/holidays/{year} and /api/holidays/{year}.ics
func (h *DashboardHandler) HolidayList(w http.ResponseWriter, r *http.Request) {
	raw, asICS := strings.CutSuffix(chi.URLParam(r, "year"), ".ics")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 2999 {
		jsonError(w, "invalid year", http.StatusBadRequest)
		return
	}
	set := h.Holidays.Year(year)
	if !asICS {
		writeJSON(w, http.StatusOK, map[string]any{"year": year, "holidays": set.List()})
		return
	}
	cfg := h.clinicConfig(r.Context())
	body := holidays.ICS(set, holidays.ICSOptions{
		ClinicName: cfg.Name,
		UIDDomain:  "pochita.cl",
		Stamp:      h.Now().UTC().Truncate(time.Second),
	})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"feriados-"+raw+".ics\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
