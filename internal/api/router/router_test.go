package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/booking"
	"github.com/wolfman30/pochita-booking/internal/clinic"
	"github.com/wolfman30/pochita-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/pochita-booking/internal/http/middleware"
	"github.com/wolfman30/pochita-booking/internal/session"
	"github.com/wolfman30/pochita-booking/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(upstream.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := logging.Default()
	sessions := session.NewManager(session.NewRedisStore(rdb), time.Hour, logger)
	deps := handlers.Deps{
		Backend:  backend.New(upstream.URL, time.Second, logger),
		Sessions: sessions,
		Clinic:   clinic.NewStore(rdb),
		ClinicID: "pochita",
		Logger:   logger,
	}
	svc := booking.NewService(booking.NewRedisStore(rdb, time.Hour), nil, logger)

	return New(&Config{
		Logger:             logger,
		Sessions:           sessions,
		Cookie:             httpmiddleware.CookieOptions{Name: "pochita_session", MaxAge: time.Hour},
		Auth:               handlers.NewAuthHandler(deps),
		Calendar:           handlers.NewCalendarHandler(deps),
		Booking:            handlers.NewBookingHandler(deps, svc),
		Appointments:       handlers.NewAppointmentsHandler(deps),
		Pets:               handlers.NewPetsHandler(deps),
		Dashboard:          handlers.NewDashboardHandler(deps),
		LoginPath:          "/login/",
		MetricsHandler:     http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("# metrics\n")) }),
		CORSAllowedOrigins: []string{"https://pochita.cl"},
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterPublicEndpointsSkipSession(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/holidays/2025",
		"/api/holidays/2025.ics",
		"/api/clinic/config",
		"/api/catalog/services",
		"/api/veterinarians",
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d (%s)", path, rr.Code, rr.Body.String())
		}
		if len(rr.Result().Cookies()) != 0 {
			t.Errorf("%s: public endpoint should not start a session", path)
		}
	}
}

// TestRouterProtectedEndpointsRedirect verifies the session-expired payload
// the UI turns into a redirect to the login page.
func TestRouterProtectedEndpointsRedirect(t *testing.T) {
	router := newTestRouter(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/appointments"},
		{http.MethodPost, "/api/appointments/5/cancel"},
		{http.MethodGet, "/api/pets"},
		{http.MethodPost, "/api/booking/confirm"},
		{http.MethodPut, "/api/clinic/config"},
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}")))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, rr.Code)
			continue
		}
		var body map[string]string
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tc.path, err)
		}
		if body["redirect"] != "/login/" {
			t.Errorf("%s: expected redirect to /login/, got %q", tc.path, body["redirect"])
		}
	}
}

func TestRouterAnonymousWizardStart(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/booking", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "pochita_session" {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/booking", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected wizard to survive across requests, got %d", rr.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/booking", nil)
	req.Header.Set("Origin", "https://pochita.cl")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://pochita.cl" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials allowed, got %q", got)
	}
}
