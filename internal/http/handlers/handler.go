// Package handlers exposes the booking service over JSON. Handlers hold no
// state of their own: visitor state lives in the session, clinic data in
// Redis and everything else in the clinic backend.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/clinic"
	"github.com/wolfman30/pochita-booking/internal/format"
	"github.com/wolfman30/pochita-booking/internal/holidays"
	"github.com/wolfman30/pochita-booking/internal/http/middleware"
	"github.com/wolfman30/pochita-booking/internal/session"
	"github.com/wolfman30/pochita-booking/pkg/logging"
)

const maxBodyBytes = 1 << 20

// Deps is what the handlers share.
type Deps struct {
	Backend   *backend.Client
	Sessions  *session.Manager
	Clinic    *clinic.Store
	ClinicID  string
	Holidays  *holidays.Calendar
	Location  *time.Location
	LoginPath string
	Logger    *logging.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	if d.Holidays == nil {
		d.Holidays = holidays.NewCalendar()
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.LoginPath == "" {
		d.LoginPath = "/login/"
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// base carries Deps plus the helpers every handler uses.
type base struct {
	Deps
}

func newBase(d Deps) base {
	return base{Deps: d.withDefaults()}
}

// today is the clinic's current calendar date.
func (b base) today() time.Time {
	return format.Today(b.Now(), b.Location)
}

func (b base) currentSession(r *http.Request) *session.Data {
	d, _ := session.FromContext(r.Context())
	return d
}

// user returns the signed-in user or nil.
func (b base) user(r *http.Request) *backend.User {
	d := b.currentSession(r)
	if d == nil || !d.Authenticated() {
		return nil
	}
	return d.User
}

func (b base) userClient(r *http.Request) *backend.UserClient {
	return b.Backend.ForUser(b.Sessions.Tokens(b.currentSession(r)))
}

// clinicConfig loads the profile, falling back to the defaults when the
// store is unavailable.
func (b base) clinicConfig(ctx context.Context) *clinic.Config {
	if b.Clinic == nil {
		return clinic.DefaultConfig(b.ClinicID)
	}
	cfg, err := b.Clinic.Get(ctx, b.ClinicID)
	if err != nil {
		b.Logger.Warn("clinic config unavailable, using defaults", "clinic_id", b.ClinicID, "error", err)
		return clinic.DefaultConfig(b.ClinicID)
	}
	return cfg
}

// backendError maps a backend failure to an HTTP response. Session expiry
// becomes the 401 redirect payload.
func (b base) backendError(w http.ResponseWriter, op string, err error, fallback string) {
	if backend.IsSessionExpired(err) {
		middleware.WriteUnauthorized(w, b.LoginPath)
		return
	}
	be, ok := backend.AsError(err)
	if !ok {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			jsonError(w, "La solicitud tardó demasiado. Intente nuevamente.", http.StatusGatewayTimeout)
			return
		}
		b.Logger.Error("backend call failed", "op", op, "error", err)
		jsonError(w, fallback, http.StatusInternalServerError)
		return
	}
	msg := backend.UserMessage(be, fallback)
	switch be.Kind {
	case backend.KindUnauthorized:
		middleware.WriteUnauthorized(w, b.LoginPath)
	case backend.KindForbidden:
		jsonError(w, msg, http.StatusForbidden)
	case backend.KindNotFound:
		jsonError(w, msg, http.StatusNotFound)
	case backend.KindValidation:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": msg, "fields": be.Fields})
	case backend.KindConflict:
		writeJSON(w, http.StatusConflict, map[string]any{"error": msg, "alternatives": be.Alternatives})
	default:
		b.Logger.Error("backend call failed", "op", op, "kind", be.Kind, "status", be.Status, "error", err)
		jsonError(w, msg, http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a bounded JSON body. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// intParam reads a positive integer URL parameter.
func intParam(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, name)))
	return n, err == nil && n > 0
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}
