package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/booking"
	"github.com/wolfman30/pochita-booking/internal/calendar"
	"github.com/wolfman30/pochita-booking/internal/format"
	"github.com/wolfman30/pochita-booking/internal/http/middleware"
)

// BookingHandler drives the appointment wizard. The wizard id lives in the
// visitor's session so the browser only keeps the session cookie.
type BookingHandler struct {
	base
	svc *booking.Service
}

// NewBookingHandler creates the wizard endpoints.
func NewBookingHandler(d Deps, svc *booking.Service) *BookingHandler {
	return &BookingHandler{base: newBase(d), svc: svc}
}

type bookingView struct {
	Booking *booking.Session `json:"booking"`
	Summary booking.Summary  `json:"summary"`
}

func (h *BookingHandler) view(r *http.Request, s *booking.Session) bookingView {
	cfg := h.clinicConfig(r.Context())
	return bookingView{Booking: s, Summary: booking.Summarize(s, cfg.Name, cfg.Emergency.WhatsApp)}
}

func bookingStatus(err error) int {
	switch {
	case errors.Is(err, booking.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, booking.ErrRoleCannotBook), errors.Is(err, booking.ErrPetNotOwned):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrWrongStep), errors.Is(err, booking.ErrAlreadyConfirmed):
		return http.StatusConflict
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// fail answers a failed wizard action, echoing the wizard when there is one.
func (h *BookingHandler) fail(w http.ResponseWriter, r *http.Request, s *booking.Session, op string, err error) {
	if errors.Is(err, booking.ErrNotFound) {
		jsonError(w, "No hay una reserva en curso", http.StatusNotFound)
		return
	}
	msg, ok := booking.Message(err)
	if !ok {
		if be, isBackend := backend.AsError(err); isBackend && be.Kind == backend.KindConflict && s != nil {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":        s.LastError,
				"alternatives": s.Alternatives,
				"booking":      h.view(r, s),
			})
			return
		}
		h.backendError(w, op, err, booking.SubmitFallbackMessage)
		return
	}
	payload := map[string]any{"error": msg}
	if s != nil {
		payload["booking"] = h.view(r, s)
	}
	if errors.Is(err, booking.ErrNotAuthenticated) {
		payload["redirect"] = h.LoginPath
	}
	writeJSON(w, bookingStatus(err), payload)
}

func (h *BookingHandler) wizardID(r *http.Request) string {
	if d := h.currentSession(r); d != nil {
		return d.BookingID
	}
	return ""
}

// load fetches the visitor's wizard.
func (h *BookingHandler) load(w http.ResponseWriter, r *http.Request) (*booking.Session, bool) {
	s, err := h.svc.Get(r.Context(), h.wizardID(r))
	if err != nil {
		h.fail(w, r, nil, "load_booking", err)
		return nil, false
	}
	return s, true
}

// update applies fn to the visitor's wizard and answers with the result.
func (h *BookingHandler) update(w http.ResponseWriter, r *http.Request, op string, fn func(*booking.Session) error) {
	s, err := h.svc.Update(r.Context(), h.wizardID(r), fn)
	if err != nil {
		h.fail(w, r, s, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(r, s))
}

// attach stores the wizard id in the visitor's session.
func (h *BookingHandler) attach(w http.ResponseWriter, r *http.Request, s *booking.Session) bool {
	d := h.currentSession(r)
	if d.BookingID != "" && d.BookingID != s.ID {
		if err := h.svc.Discard(r.Context(), d.BookingID); err != nil {
			h.Logger.Warn("failed to discard previous booking", "booking_id", d.BookingID, "error", err)
		}
	}
	d.BookingID = s.ID
	if err := h.Sessions.Save(r.Context(), d); err != nil {
		h.Logger.Error("failed to attach booking to session", "error", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return false
	}
	return true
}

// Start opens a new wizard, replacing any wizard in progress.
// POST /api/booking
func (h *BookingHandler) Start(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Start(r.Context())
	if err != nil {
		h.Logger.Error("failed to start booking", "error", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !h.attach(w, r, s) {
		return
	}
	writeJSON(w, http.StatusCreated, h.view(r, s))
}

// Get returns the wizard in progress.
// GET /api/booking
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.view(r, s))
}

// Discard drops the wizard in progress.
// DELETE /api/booking
func (h *BookingHandler) Discard(w http.ResponseWriter, r *http.Request) {
	d := h.currentSession(r)
	if d.BookingID != "" {
		if err := h.svc.Discard(r.Context(), d.BookingID); err != nil {
			h.Logger.Warn("failed to discard booking", "booking_id", d.BookingID, "error", err)
		}
		d.BookingID = ""
		if err := h.Sessions.Save(r.Context(), d); err != nil {
			h.Logger.Warn("failed to detach booking", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectService picks area and service.
// POST /api/booking/service {"area": "...", "service": "..."}
func (h *BookingHandler) SelectService(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Area    string `json:"area"`
		Service string `json:"service"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg := h.clinicConfig(r.Context())
	h.update(w, r, "select_service", func(s *booking.Session) error {
		return s.SelectService(cfg, strings.TrimSpace(req.Area), strings.TrimSpace(req.Service))
	})
}

// SelectVeterinarian picks one of the clinic's veterinarians.
// POST /api/booking/veterinarian {"veterinarian_id": 3}
func (h *BookingHandler) SelectVeterinarian(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VeterinarianID int `json:"veterinarian_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.VeterinarianID <= 0 {
		h.fail(w, r, nil, "select_veterinarian", booking.ErrVeterinarianRequired)
		return
	}
	vets, err := h.Backend.ListVeterinarians(r.Context())
	if err != nil {
		h.backendError(w, "list_veterinarians", err, "Error al cargar veterinarios")
		return
	}
	var chosen *booking.Veterinarian
	for _, v := range vets {
		if v.ID == req.VeterinarianID {
			vet := booking.VeterinarianFromUser(v)
			chosen = &vet
			break
		}
	}
	if chosen == nil {
		jsonError(w, "Veterinario no encontrado", http.StatusNotFound)
		return
	}
	h.update(w, r, "select_veterinarian", func(s *booking.Session) error {
		return s.SelectVeterinarian(*chosen)
	})
}

// Calendar renders the selected veterinarian's month with the wizard's date
// marked.
// GET /api/booking/calendar?year=&month=
func (h *BookingHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	if s.Veterinarian == nil {
		h.fail(w, r, s, "booking_calendar", booking.ErrVeterinarianRequired)
		return
	}
	year, month, _, err := h.monthQuery(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("year") == "" && s.Date != "" {
		if t, err := format.ParseDate(s.Date); err == nil {
			year, month = t.Year(), t.Month()
		}
	}
	m, _, err := h.renderMonth(r, year, month, s.Veterinarian.ID, s.Date)
	if err != nil {
		h.backendError(w, "monthly_calendar", err, "Error al cargar el calendario")
		return
	}
	writeJSON(w, http.StatusOK, monthResponse{Month: m, Holidays: h.Holidays.Year(year).InMonth(month)})
}

// SelectDate picks a day on the selected veterinarian's grid.
// POST /api/booking/date {"date": "2025-09-17"}
func (h *BookingHandler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	if s.Veterinarian == nil {
		h.fail(w, r, s, "select_date", booking.ErrVeterinarianRequired)
		return
	}
	t, err := format.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, s, "select_date", booking.ErrDateRequired)
		return
	}
	m, _, err := h.renderMonth(r, t.Year(), t.Month(), s.Veterinarian.ID, "")
	if err != nil {
		h.backendError(w, "monthly_calendar", err, "Error al cargar el calendario")
		return
	}
	h.update(w, r, "select_date", func(s *booking.Session) error {
		return s.SelectDate(m, format.DateString(t))
	})
}

// Slots lists the selected veterinarian's free slots on the wizard's date.
// GET /api/booking/slots
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	if s.Veterinarian == nil {
		h.fail(w, r, s, "booking_slots", booking.ErrVeterinarianRequired)
		return
	}
	t, err := format.ParseDate(s.Date)
	if err != nil {
		h.fail(w, r, s, "booking_slots", booking.ErrDateRequired)
		return
	}
	days, err := h.availability(r, t.Year(), t.Month(), s.Veterinarian.ID)
	if err != nil {
		h.backendError(w, "monthly_calendar", err, "Error al cargar los horarios")
		return
	}
	day, err := calendar.DayDetail(s.Date, calendar.ForVeterinarian(days, s.Veterinarian.ID), h.Holidays.Year(t.Year()))
	slots := []calendar.Slot{}
	if err == nil {
		for _, v := range day.Veterinarians {
			slots = append(slots, v.Available...)
		}
	}
	type slotView struct {
		calendar.Slot
		Label string `json:"label"`
	}
	out := make([]slotView, 0, len(slots))
	for _, sl := range slots {
		out = append(out, slotView{Slot: sl, Label: sl.Label()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": s.Date, "label": day.Label, "slots": out})
}

// SelectSlot picks a slot and moves on to identification.
// POST /api/booking/slot {"slot_id": 10}
func (h *BookingHandler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SlotID int `json:"slot_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	if s.Veterinarian == nil {
		h.fail(w, r, s, "select_slot", booking.ErrVeterinarianRequired)
		return
	}
	t, err := format.ParseDate(s.Date)
	if err != nil {
		h.fail(w, r, s, "select_slot", booking.ErrDateRequired)
		return
	}
	if req.SlotID <= 0 {
		h.fail(w, r, s, "select_slot", booking.ErrSlotRequired)
		return
	}
	days, err := h.availability(r, t.Year(), t.Month(), s.Veterinarian.ID)
	if err != nil {
		h.backendError(w, "monthly_calendar", err, "Error al cargar los horarios")
		return
	}
	h.update(w, r, "select_slot", func(s *booking.Session) error {
		return s.SelectSlot(days, req.SlotID)
	})
}

// SelectPet identifies the signed-in user and picks the pet to book for.
// POST /api/booking/pet {"pet_id": 8}
func (h *BookingHandler) SelectPet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PetID int `json:"pet_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	user := h.user(r)
	if user == nil {
		h.fail(w, r, nil, "select_pet", booking.ErrNotAuthenticated)
		return
	}
	if req.PetID <= 0 {
		h.fail(w, r, nil, "select_pet", booking.ErrPetRequired)
		return
	}
	pet, err := h.userClient(r).GetPet(r.Context(), req.PetID)
	if err != nil {
		h.backendError(w, "get_pet", err, "Error al cargar la mascota")
		return
	}
	h.update(w, r, "select_pet", func(s *booking.Session) error {
		if err := s.Identify(*user); err != nil {
			return err
		}
		return s.SelectPet(*pet)
	})
}

// SetReason records the reason and notes.
// POST /api/booking/reason {"reason": "...", "notes": "..."}
func (h *BookingHandler) SetReason(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
		Notes  string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.update(w, r, "set_reason", func(s *booking.Session) error {
		return s.SetReason(strings.TrimSpace(req.Reason), strings.TrimSpace(req.Notes))
	})
}

// Next advances one step.
// POST /api/booking/next
func (h *BookingHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "booking_next", func(s *booking.Session) error { return s.Next() })
}

// Back returns one step.
// POST /api/booking/back
func (h *BookingHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "booking_back", func(s *booking.Session) error { return s.Back() })
}

// SelectAlternative re-targets the wizard to a veterinarian offered after a
// slot conflict.
// POST /api/booking/alternative {"veterinarian_id": 3, "time_slot_id": 31}
func (h *BookingHandler) SelectAlternative(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VeterinarianID int `json:"veterinarian_id"`
		TimeSlotID     int `json:"time_slot_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.update(w, r, "select_alternative", func(s *booking.Session) error {
		return s.SelectAlternative(req.VeterinarianID, req.TimeSlotID)
	})
}

// Confirm submits the wizard to the backend. A client without a chosen pet
// books for their first pet.
// POST /api/booking/confirm
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	user := h.user(r)
	if user == nil {
		middleware.WriteUnauthorized(w, h.LoginPath)
		return
	}
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	api := h.userClient(r)
	if s.Pet == nil && user.Role == backend.RoleClient {
		pets, err := api.ListPets(r.Context())
		if err != nil {
			h.backendError(w, "list_pets", err, "Error al cargar mascotas")
			return
		}
		pets = ownedBy(pets, user.ID)
		if _, err := h.svc.Update(r.Context(), s.ID, func(s *booking.Session) error {
			if err := s.Identify(*user); err != nil {
				return err
			}
			return s.DefaultPet(pets)
		}); err != nil {
			h.fail(w, r, s, "confirm", err)
			return
		}
	} else if _, err := h.svc.Update(r.Context(), s.ID, func(s *booking.Session) error {
		return s.Identify(*user)
	}); err != nil {
		h.fail(w, r, s, "confirm", err)
		return
	}

	s, err := h.svc.Confirm(r.Context(), s.ID, api)
	if err != nil {
		h.fail(w, r, s, "confirm", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(r, s))
}

// Reschedule opens a wizard that moves an existing appointment.
// POST /api/appointments/{id}/reschedule
func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		jsonError(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	apt, err := h.userClient(r).GetAppointment(r.Context(), id)
	if err != nil {
		h.backendError(w, "get_appointment", err, "Error al cargar la cita")
		return
	}
	s, err := h.svc.StartReschedule(r.Context(), *apt)
	if err != nil {
		if msg, ok := booking.Message(err); ok {
			jsonError(w, msg, http.StatusConflict)
			return
		}
		h.Logger.Error("failed to start reschedule", "appointment_id", id, "error", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !h.attach(w, r, s) {
		return
	}
	writeJSON(w, http.StatusCreated, h.view(r, s))
}

// Catalog lists bookable areas and services.
// GET /api/catalog/services
func (h *BookingHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.clinicConfig(r.Context()).Areas)
}

func ownedBy(pets []backend.Pet, ownerID int) []backend.Pet {
	out := make([]backend.Pet, 0, len(pets))
	for _, p := range pets {
		if p.Owner == 0 || p.Owner == ownerID {
			out = append(out, p)
		}
	}
	return out
}
