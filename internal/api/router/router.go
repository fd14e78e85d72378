package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/pochita-booking/internal/http/middleware"
	"github.com/wolfman30/pochita-booking/internal/session"
	"github.com/wolfman30/pochita-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger   *logging.Logger
	Sessions *session.Manager
	Cookie   httpmiddleware.CookieOptions

	Auth         *handlers.AuthHandler
	Calendar     *handlers.CalendarHandler
	Booking      *handlers.BookingHandler
	Appointments *handlers.AppointmentsHandler
	Pets         *handlers.PetsHandler
	Dashboard    *handlers.DashboardHandler

	LoginPath          string
	RateLimiter        *httpmiddleware.RateLimiter
	Recorder           httpmiddleware.RequestRecorder
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.Recorder))

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	requireAuth := httpmiddleware.RequireAuth(cfg.Sessions, cfg.LoginPath)

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}

		// Stateless public endpoints
		api.Get("/holidays/{year}", cfg.Dashboard.HolidayList)
		api.Get("/clinic/config", cfg.Dashboard.ClinicConfig)
		api.Get("/clinic/schedule", cfg.Dashboard.Schedule)
		api.Get("/catalog/services", cfg.Booking.Catalog)
		api.Get("/veterinarians", cfg.Auth.Veterinarians)
		api.Get("/rut/validate", cfg.Auth.ValidateRUT)

		api.Group(func(sess chi.Router) {
			sess.Use(httpmiddleware.Sessions(cfg.Sessions, cfg.Cookie, cfg.Logger))

			sess.Post("/auth/login", cfg.Auth.Login)
			sess.Post("/auth/register", cfg.Auth.Register)

			// Steps 1-3 of the wizard work before sign-in on public availability.
			sess.Get("/calendar/month", cfg.Calendar.Month)
			sess.Get("/calendar/day", cfg.Calendar.Day)
			sess.Route("/booking", func(b chi.Router) {
				b.Post("/", cfg.Booking.Start)
				b.Get("/", cfg.Booking.Get)
				b.Delete("/", cfg.Booking.Discard)
				b.Post("/service", cfg.Booking.SelectService)
				b.Post("/veterinarian", cfg.Booking.SelectVeterinarian)
				b.Get("/calendar", cfg.Booking.Calendar)
				b.Post("/date", cfg.Booking.SelectDate)
				b.Get("/slots", cfg.Booking.Slots)
				b.Post("/slot", cfg.Booking.SelectSlot)
				b.Post("/reason", cfg.Booking.SetReason)
				b.Post("/next", cfg.Booking.Next)
				b.Post("/back", cfg.Booking.Back)
				b.Post("/alternative", cfg.Booking.SelectAlternative)
				b.With(requireAuth).Post("/pet", cfg.Booking.SelectPet)
				b.With(requireAuth).Post("/confirm", cfg.Booking.Confirm)
			})

			sess.Group(func(authed chi.Router) {
				authed.Use(requireAuth)

				authed.Post("/auth/logout", cfg.Auth.Logout)
				authed.Get("/auth/me", cfg.Auth.Me)
				authed.Get("/dashboard", cfg.Dashboard.Panel)
				authed.With(httpmiddleware.RequireRole(backend.RoleReceptionist)).
					Put("/clinic/config", cfg.Dashboard.UpdateClinicConfig)

				authed.Route("/appointments", func(a chi.Router) {
					a.Get("/", cfg.Appointments.List)
					a.Get("/{id}", cfg.Appointments.Get)
					a.With(httpmiddleware.RequireRole(backend.RoleVeterinarian)).
						Post("/{id}/attend", cfg.Appointments.Attend)
					a.Post("/{id}/cancel", cfg.Appointments.Cancel)
					a.Post("/{id}/reschedule", cfg.Booking.Reschedule)
				})

				authed.Route("/pets", func(p chi.Router) {
					p.Get("/", cfg.Pets.List)
					p.Post("/", cfg.Pets.Create)
					p.With(httpmiddleware.RequireRole(backend.RoleReceptionist)).
						Post("/pre-register", cfg.Pets.PreRegister)
					p.Get("/{id}", cfg.Pets.Get)
					p.Get("/{id}/history", cfg.Pets.History)
				})

				authed.Get("/medical-records", cfg.Pets.MedicalRecords)
				authed.With(httpmiddleware.RequireRole(backend.RoleVeterinarian)).
					Post("/medical-records", cfg.Pets.CreateMedicalRecord)
			})
		})
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
