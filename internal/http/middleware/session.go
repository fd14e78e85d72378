package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/session"
	"github.com/wolfman30/pochita-booking/pkg/logging"
)

// SessionHeader carries the session id for clients that cannot keep cookies.
const SessionHeader = "X-Session-Id"

// SessionExpiredMessage is returned with every 401.
const SessionExpiredMessage = "Su sesión ha expirado. Inicie sesión nuevamente."

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Sessions loads the visitor's session from the cookie (or SessionHeader),
// starting a new one when missing, and stores it in the request context.
func Sessions(mgr *session.Manager, opts CookieOptions, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Name == "" {
		opts.Name = "pochita_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if c, err := r.Cookie(opts.Name); err == nil && c.Value != "" {
				id = c.Value
			}
			d, created, err := mgr.LoadOrNew(r.Context(), id)
			if err != nil {
				logger.Error("session: load failed", "error", err)
				writeError(w, http.StatusServiceUnavailable, "Servicio no disponible. Intente nuevamente más tarde.")
				return
			}
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     opts.Name,
					Value:    d.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(opts.MaxAge.Seconds()),
				})
			}
			w.Header().Set(SessionHeader, d.ID)
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), d)))
		})
	}
}

// RequireAuth rejects anonymous sessions and sessions whose refresh token has
// already expired, answering 401 with a redirect to loginPath.
func RequireAuth(mgr *session.Manager, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, ok := session.FromContext(r.Context())
			if !ok || !d.Authenticated() {
				WriteUnauthorized(w, loginPath)
				return
			}
			if exp := session.ExpiresAt(d.RefreshToken); !exp.IsZero() && !time.Now().Before(exp) {
				_ = mgr.SignOut(r.Context(), d)
				WriteUnauthorized(w, loginPath)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole lets only the listed roles through. It must run after
// RequireAuth.
func RequireRole(roles ...backend.Role) func(http.Handler) http.Handler {
	allowed := make(map[backend.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, ok := session.FromContext(r.Context())
			if !ok || d.User == nil {
				writeError(w, http.StatusForbidden, "No tiene permiso para realizar esta acción.")
				return
			}
			if _, ok := allowed[d.User.Role]; !ok {
				writeError(w, http.StatusForbidden, "No tiene permiso para realizar esta acción.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteUnauthorized sends the session-expired payload the UI turns into a
// redirect.
func WriteUnauthorized(w http.ResponseWriter, loginPath string) {
	if loginPath == "" {
		loginPath = "/login/"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":    SessionExpiredMessage,
		"redirect": loginPath,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
