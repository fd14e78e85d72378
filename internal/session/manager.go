// Package session keeps per-visitor authentication state server side, keyed
// by an opaque cookie value.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/pkg/logging"
)

// Manager creates, loads and renews sessions.
type Manager struct {
	store      Store
	defaultTTL time.Duration
	logger     *logging.Logger
	now        func() time.Time
}

// NewManager wraps a store. defaultTTL applies to anonymous sessions and to
// tokens without an exp claim.
func NewManager(store Store, defaultTTL time.Duration, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &Manager{store: store, defaultTTL: defaultTTL, logger: logger, now: time.Now}
}

// New starts an anonymous session.
func (m *Manager) New(ctx context.Context) (*Data, error) {
	now := m.now().UTC()
	d := &Data{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	if err := m.store.Save(ctx, d, m.defaultTTL); err != nil {
		return nil, err
	}
	return d, nil
}

// Load fetches a session by id. Unknown ids return ErrNotFound.
func (m *Manager) Load(ctx context.Context, id string) (*Data, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return m.store.Get(ctx, id)
}

// LoadOrNew returns the existing session or starts a new one. created is
// true when the caller must set a cookie.
func (m *Manager) LoadOrNew(ctx context.Context, id string) (d *Data, created bool, err error) {
	if id != "" {
		d, err = m.Load(ctx, id)
		if err == nil {
			return d, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
	}
	d, err = m.New(ctx)
	return d, true, err
}

// Save persists d. Authenticated sessions live as long as their refresh token.
func (m *Manager) Save(ctx context.Context, d *Data) error {
	d.UpdatedAt = m.now().UTC()
	ttl := m.defaultTTL
	if d.RefreshToken != "" {
		ttl = ttlFor(d.RefreshToken, m.now(), m.defaultTTL)
	}
	return m.store.Save(ctx, d, ttl)
}

// SignIn stores a fresh token pair and profile on the session.
func (m *Manager) SignIn(ctx context.Context, d *Data, toks backend.Tokens, user *backend.User) error {
	d.AccessToken = toks.Access
	d.RefreshToken = toks.Refresh
	d.User = user
	if err := m.Save(ctx, d); err != nil {
		return fmt.Errorf("session: sign in: %w", err)
	}
	m.logger.Info("session signed in", "session_id", d.ID, "user_id", userID(d))
	return nil
}

// SignOut clears credentials but keeps the session id.
func (m *Manager) SignOut(ctx context.Context, d *Data) error {
	d.ClearAuth()
	d.BookingID = ""
	return m.Save(ctx, d)
}

// Destroy deletes the session.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// Tokens adapts a session to backend.TokenSource. Refreshed tokens are
// written through to the store; clearing also drops the cached profile.
func (m *Manager) Tokens(d *Data) backend.TokenSource {
	return &tokenSource{m: m, d: d}
}

type tokenSource struct {
	m *Manager
	d *Data
}

func (t *tokenSource) Tokens(context.Context) (backend.Tokens, error) {
	return backend.Tokens{Access: t.d.AccessToken, Refresh: t.d.RefreshToken}, nil
}

func (t *tokenSource) SaveTokens(ctx context.Context, toks backend.Tokens) error {
	t.d.AccessToken = toks.Access
	t.d.RefreshToken = toks.Refresh
	return t.m.Save(ctx, t.d)
}

func (t *tokenSource) ClearTokens(ctx context.Context) error {
	t.m.logger.Info("session credentials cleared", "session_id", t.d.ID, "user_id", userID(t.d))
	t.d.ClearAuth()
	return t.m.Save(ctx, t.d)
}

func userID(d *Data) int {
	if d.User != nil && d.User.ID != 0 {
		return d.User.ID
	}
	if claims, err := ParseClaims(d.AccessToken); err == nil {
		return claims.UserID
	}
	return 0
}
