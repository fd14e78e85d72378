package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/pochita-booking/internal/calendar"
	"github.com/wolfman30/pochita-booking/internal/format"
	"github.com/wolfman30/pochita-booking/internal/holidays"
)

var errVeterinarianRequired = errors.New("Seleccione un veterinario para ver la disponibilidad")

// CalendarHandler renders availability grids.
type CalendarHandler struct {
	base
}

// NewCalendarHandler creates the calendar endpoints.
func NewCalendarHandler(d Deps) *CalendarHandler {
	return &CalendarHandler{base: newBase(d)}
}

// availability loads a month of slots. Signed-in users get the full
// calendar; anonymous visitors get the public view of one veterinarian.
func (b base) availability(r *http.Request, year int, month time.Month, vetID int) ([]calendar.DayAvailability, error) {
	ctx := r.Context()
	if b.user(r) != nil {
		cal, err := b.userClient(r).MonthlyCalendar(ctx, year, int(month), vetID)
		if err != nil {
			return nil, err
		}
		return cal.Calendar, nil
	}
	if vetID <= 0 {
		return nil, errVeterinarianRequired
	}
	cal, err := b.Backend.PublicAvailability(ctx, year, int(month), vetID)
	if err != nil {
		return nil, err
	}
	return cal.Calendar, nil
}

// renderMonth builds the grid for year/month, keeping only vetID's records
// when set.
func (b base) renderMonth(r *http.Request, year int, month time.Month, vetID int, selected string) (calendar.Month, []calendar.DayAvailability, error) {
	days, err := b.availability(r, year, month, vetID)
	if err != nil {
		return calendar.Month{}, nil, err
	}
	days = calendar.ForVeterinarian(days, vetID)
	m := calendar.RenderMonth(year, month, days, b.Holidays.Year(year), b.today(), selected)
	return m, days, nil
}

// monthQuery reads year, month and vet, defaulting to the current month.
func (b base) monthQuery(r *http.Request) (int, time.Month, int, error) {
	today := b.today()
	year, err := queryInt(r, "year", today.Year())
	if err != nil {
		return 0, 0, 0, err
	}
	month, err := queryInt(r, "month", int(today.Month()))
	if err != nil {
		return 0, 0, 0, err
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, errors.New("month must be between 1 and 12")
	}
	vetID, err := queryInt(r, "vet", 0)
	if err != nil {
		return 0, 0, 0, err
	}
	return year, time.Month(month), vetID, nil
}

type monthResponse struct {
	calendar.Month
	Holidays []holidays.Holiday `json:"holidays"`
}

// Month renders the month grid.
// GET /api/calendar/month?year=&month=&vet=&selected=
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, month, vetID, err := h.monthQuery(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	m, _, err := h.renderMonth(r, year, month, vetID, r.URL.Query().Get("selected"))
	if err != nil {
		if errors.Is(err, errVeterinarianRequired) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.backendError(w, "monthly_calendar", err, "Error al cargar el calendario")
		return
	}
	writeJSON(w, http.StatusOK, monthResponse{Month: m, Holidays: h.Holidays.Year(year).InMonth(month)})
}

// Day returns the per-veterinarian slots of one date. Holidays carry the
// clinic's emergency contact instead of slots.
// GET /api/calendar/day?date=&vet=
func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request) {
	date, err := format.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	vetID, err := queryInt(r, "vet", 0)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	hs := h.Holidays.Year(date.Year())
	if hol, ok := hs.On(date); ok {
		day, _ := calendar.DayDetail(format.DateString(date), nil, hs)
		cfg := h.clinicConfig(r.Context())
		notice := calendar.NewClosedNotice(hol.Name, cfg.Emergency.WhatsApp, cfg.Emergency.Phone)
		day.Closed = &notice
		writeJSON(w, http.StatusOK, day)
		return
	}

	days, err := h.availability(r, date.Year(), date.Month(), vetID)
	if err != nil {
		if errors.Is(err, errVeterinarianRequired) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.backendError(w, "monthly_calendar", err, "Error al cargar los horarios")
		return
	}
	day, err := calendar.DayDetail(format.DateString(date), calendar.ForVeterinarian(days, vetID), hs)
	if err != nil && !errors.Is(err, calendar.ErrDateNotInData) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if day.Veterinarians == nil {
		day.Veterinarians = []calendar.VetSlots{}
	}
	writeJSON(w, http.StatusOK, day)
}
