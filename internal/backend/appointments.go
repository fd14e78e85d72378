package backend

import (
	"context"
	"fmt"
	"net/http"
)

// CreateAppointment books a slot. A taken slot comes back as a KindConflict
// *Error carrying alternative veterinarians.
func (u *UserClient) CreateAppointment(ctx context.Context, req AppointmentRequest) (*Appointment, error) {
	var out Appointment
	if err := u.call(ctx, "create_appointment", http.MethodPost, "/api/appointments/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RescheduleAppointment moves an appointment to a new date, time and slot.
func (u *UserClient) RescheduleAppointment(ctx context.Context, id int, req RescheduleRequest) (*ActionResult, error) {
	var out ActionResult
	path := fmt.Sprintf("/api/appointments/%d/reschedule/", id)
	if err := u.call(ctx, "reschedule_appointment", http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AttendAppointment marks an appointment ATENDIDA. Only the assigned
// veterinarian may do this.
func (u *UserClient) AttendAppointment(ctx context.Context, id int) (*ActionResult, error) {
	var out ActionResult
	path := fmt.Sprintf("/api/appointments/%d/attend/", id)
	if err := u.call(ctx, "attend_appointment", http.MethodPost, path, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelAppointment cancels an appointment and frees its slot.
func (u *UserClient) CancelAppointment(ctx context.Context, id int) (*ActionResult, error) {
	var out ActionResult
	path := fmt.Sprintf("/api/appointments/%d/cancel/", id)
	if err := u.call(ctx, "cancel_appointment", http.MethodPost, path, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAppointments returns the appointments visible to the caller.
func (u *UserClient) ListAppointments(ctx context.Context) ([]Appointment, error) {
	return listCall[Appointment](ctx, u, "list_appointments", "/api/appointments/")
}

// GetAppointment fetches one appointment.
func (u *UserClient) GetAppointment(ctx context.Context, id int) (*Appointment, error) {
	var out Appointment
	path := fmt.Sprintf("/api/appointments/%d/", id)
	if err := u.call(ctx, "get_appointment", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
