package handlers

import (
	"net/http"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/dashboard"
)

// AppointmentsHandler lists and acts on existing appointments.
type AppointmentsHandler struct {
	base
}

// NewAppointmentsHandler creates the appointment endpoints.
func NewAppointmentsHandler(d Deps) *AppointmentsHandler {
	return &AppointmentsHandler{base: newBase(d)}
}

// List returns the caller's agenda split into upcoming, past and cancelled.
// GET /api/appointments
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := h.user(r)
	apts, err := h.userClient(r).ListAppointments(r.Context())
	if err != nil {
		h.backendError(w, "list_appointments", err, "Error al cargar citas")
		return
	}
	writeJSON(w, http.StatusOK, dashboard.BuildAgenda(apts, *user, h.today()))
}

// Get returns one appointment.
// GET /api/appointments/{id}
func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, map[string]any{
		"appointment": apt,
		"badge":       dashboard.StatusBadge(apt.Status),
	})
}

// Attend marks a confirmed appointment as attended. Veterinarians only.
// POST /api/appointments/{id}/attend
func (h *AppointmentsHandler) Attend(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "attend_appointment", "Error al marcar la cita como atendida",
		func(u *backend.UserClient, id int) (*backend.ActionResult, error) {
			return u.AttendAppointment(r.Context(), id)
		})
}

// Cancel cancels an appointment and frees its slot.
// POST /api/appointments/{id}/cancel
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "cancel_appointment", "Error al cancelar la cita",
		func(u *backend.UserClient, id int) (*backend.ActionResult, error) {
			return u.CancelAppointment(r.Context(), id)
		})
}

func (h *AppointmentsHandler) act(w http.ResponseWriter, r *http.Request, op, fallback string,
	call func(*backend.UserClient, int) (*backend.ActionResult, error)) {
	id, ok := intParam(r, "id")
	if !ok {
		jsonError(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	res, err := call(h.userClient(r), id)
	if err != nil {
		h.backendError(w, op, err, fallback)
		return
	}
	h.Logger.Info("appointment updated", "op", op, "appointment_id", id)
	writeJSON(w, http.StatusOK, res)
}
