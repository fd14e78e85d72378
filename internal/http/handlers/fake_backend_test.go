package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/calendar"
)

// fakeClinic is a minimal stand-in for the clinic REST backend.
type fakeClinic struct {
	mu          sync.Mutex
	created     []backend.AppointmentRequest
	rescheduled []backend.RescheduleRequest
	conflict    bool
	publicCalls int
	authedCalls int
}

var fakeUsers = map[string]backend.User{
	"ana": {ID: 7, Username: "ana", FirstName: "Ana", LastName: "Pérez", Role: backend.RoleClient},
	"rec": {ID: 2, Username: "rec", FirstName: "Rosa", LastName: "Mella", Role: backend.RoleReceptionist},
	"vet": {ID: 3, Username: "vet", FirstName: "Pedro", LastName: "Soto", Role: backend.RoleVeterinarian},
}

var fakeVets = []backend.User{
	{ID: 3, Username: "vet", FirstName: "Pedro", LastName: "Soto", Role: backend.RoleVeterinarian},
	{ID: 4, Username: "laura", FirstName: "Laura", LastName: "Díaz", Role: backend.RoleVeterinarian},
}

var fakePet = backend.Pet{ID: 8, Name: "Pochi", Species: "PERRO", Owner: 7}

var fakeAppointment = backend.Appointment{
	ID:              55,
	Pet:             8,
	PetName:         "Pochi",
	Client:          7,
	Veterinarian:    3,
	TimeSlot:        10,
	AppointmentDate: "2025-09-12",
	AppointmentTime: "09:00:00",
	Reason:          "Control",
	Status:          backend.StatusConfirmed,
}

func septemberCalendar() []calendar.DayAvailability {
	return []calendar.DayAvailability{
		{Date: "2025-09-17", VeterinarianID: 3, VeterinarianName: "Pedro Soto", AvailableSlots: []calendar.Slot{
			{ID: 10, StartTime: "09:00:00", EndTime: "09:30:00"},
			{ID: 11, StartTime: "09:30:00", EndTime: "10:00:00"},
		}},
		{Date: "2025-09-17", VeterinarianID: 4, VeterinarianName: "Laura Díaz", AvailableSlots: []calendar.Slot{
			{ID: 20, StartTime: "09:00:00", EndTime: "09:30:00"},
		}},
		{Date: "2025-09-18", VeterinarianID: 3, VeterinarianName: "Pedro Soto", AvailableSlots: []calendar.Slot{
			{ID: 30, StartTime: "09:00:00", EndTime: "09:30:00"},
		}},
	}
}

func (f *fakeClinic) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	caller := func(r *http.Request) (backend.User, bool) {
		u, ok := fakeUsers[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer acc-")]
		return u, ok
	}
	authed := func(next func(w http.ResponseWriter, r *http.Request, u backend.User)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			u, ok := caller(r)
			if !ok {
				write(w, http.StatusUnauthorized, map[string]string{"detail": "token_not_valid"})
				return
			}
			next(w, r, u)
		}
	}

	mux.HandleFunc("POST /api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var creds backend.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if _, ok := fakeUsers[creds.Username]; !ok || creds.Password != "secret" {
			write(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		write(w, http.StatusOK, backend.Tokens{Access: "acc-" + creds.Username, Refresh: "ref-" + creds.Username})
	})
	mux.HandleFunc("POST /api/auth/register/", func(w http.ResponseWriter, r *http.Request) {
		var reg backend.Registration
		_ = json.NewDecoder(r.Body).Decode(&reg)
		write(w, http.StatusCreated, backend.User{ID: 99, Username: reg.Username, Role: reg.Role, RUT: reg.RUT})
	})
	mux.HandleFunc("POST /api/auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/auth/me/", authed(func(w http.ResponseWriter, r *http.Request, u backend.User) {
		write(w, http.StatusOK, u)
	}))
	mux.HandleFunc("GET /api/auth/veterinarians/", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, fakeVets)
	})
	mux.HandleFunc("GET /api/appointments/availability/public/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.publicCalls++
		f.mu.Unlock()
		write(w, http.StatusOK, backend.MonthlyCalendar{Year: 2025, Month: 9, Calendar: septemberCalendar()})
	})
	mux.HandleFunc("GET /api/appointments/calendar/monthly/", authed(func(w http.ResponseWriter, r *http.Request, u backend.User) {
		f.mu.Lock()
		f.authedCalls++
		f.mu.Unlock()
		write(w, http.StatusOK, backend.MonthlyCalendar{Year: 2025, Month: 9, Calendar: septemberCalendar()})
	}))
	mux.HandleFunc("GET /api/pets/", authed(func(w http.ResponseWriter, r *http.Request, u backend.User) {
		write(w, http.StatusOK, map[string]any{"results": []backend.Pet{fakePet}})
	}))
	mux.HandleFunc("GET /api/pets/8/", authed(func(w http.ResponseWriter, r *http.Request, u backend.User) {
		write(w, http.StatusOK, fakePet)
	}))
	mux.HandleFunc("GET /api/appointments/", authed(func(w http.ResponseWriter, r *http.Request, u backend.User) {
		write(w, http.StatusOK, []backend.Appointment{fakeAppointment})
	}))
	mux.HandleFunc("GET /api/appointments/55/", authed(func(w http.ResponseWriter, r *http.Request, u backend.User) {
		write(w, http.StatusOK, fakeAppointment)
	}))
	mux.HandleFunc("POST /api/appointments/", authed(func(w http.ResponseWriter, r *http.Request, u backend.User) {
		var req backend.AppointmentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.conflict {
			f.conflict = false
			write(w, http.StatusConflict, map[string]any{
				"error": "El horario seleccionado ya no está disponible",
				"alternative_veterinarians": []map[string]any{
					{"id": 4, "name": "Laura Díaz", "time_slot_id": 20},
				},
			})
			return
		}
		f.created = append(f.created, req)
		apt := fakeAppointment
		apt.ID = 100 + len(f.created)
		apt.Veterinarian = req.Veterinarian
		apt.TimeSlot = req.TimeSlot
		apt.AppointmentDate = req.AppointmentDate
		apt.Reason = req.Reason
		write(w, http.StatusCreated, apt)
	}))
	mux.HandleFunc("POST /api/appointments/55/reschedule/", authed(func(w http.ResponseWriter, r *http.Request, u backend.User) {
		var req backend.RescheduleRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.rescheduled = append(f.rescheduled, req)
		f.mu.Unlock()
		apt := fakeAppointment
		apt.AppointmentDate = req.NewDate
		apt.Status = backend.StatusRescheduled
		write(w, http.StatusOK, backend.ActionResult{Message: "Cita reprogramada", Appointment: &apt})
	}))
	mux.HandleFunc("POST /api/appointments/55/cancel/", authed(func(w http.ResponseWriter, r *http.Request, u backend.User) {
		write(w, http.StatusOK, backend.ActionResult{Message: "Cita cancelada exitosamente"})
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
