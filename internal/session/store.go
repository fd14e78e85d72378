package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/pochita-booking/internal/backend"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session: not found")

// Data is what a browser would otherwise keep in local storage.
type Data struct {
	ID           string        `json:"id"`
	AccessToken  string        `json:"access_token,omitempty"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	User         *backend.User `json:"user_data,omitempty"`
	BookingID    string        `json:"booking_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Authenticated reports whether the session holds a token pair.
func (d *Data) Authenticated() bool {
	return d != nil && d.AccessToken != ""
}

// ClearAuth drops tokens and the cached profile.
func (d *Data) ClearAuth() {
	d.AccessToken = ""
	d.RefreshToken = ""
	d.User = nil
}

// Store persists sessions.
type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, d *Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON under session:{id}.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Get loads a session.
func (s *RedisStore) Get(ctx context.Context, id string) (*Data, error) {
	raw, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &d, nil
}

// Save writes a session with the given lifetime.
func (s *RedisStore) Save(ctx context.Context, d *Data, ttl time.Duration) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(d.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("session: set: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

type memEntry struct {
	raw     []byte
	expires time.Time
}

// MemoryStore is an in-process Store for tests and Redis-less development.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memEntry
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]memEntry{}, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.items, id)
		return nil, ErrNotFound
	}
	var d Data
	if err := json.Unmarshal(e.raw, &d); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &d, nil
}

func (s *MemoryStore) Save(_ context.Context, d *Data, ttl time.Duration) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	e := memEntry{raw: raw}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.items[d.ID] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}
