package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/session"
	"github.com/wolfman30/pochita-booking/pkg/logging"
)

func withUser(r *http.Request, role backend.Role) *http.Request {
	d := &session.Data{ID: "s1", AccessToken: "a", RefreshToken: "r", User: &backend.User{ID: 9, Role: role}}
	return r.WithContext(session.WithSession(r.Context(), d))
}

func TestGetConfigReturnsProfileAndSchedule(t *testing.T) {
	store, _ := newTestStore(t)
	h := NewHandler(store, "pochita", logging.Default())

	rec := httptest.NewRecorder()
	h.GetConfig(rec, httptest.NewRequest(http.MethodGet, "/api/clinic/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CHIGUAYANTE", body["branch"])
	assert.Len(t, body["schedule"], 7)
}

func TestUpdateConfigRequiresReceptionist(t *testing.T) {
	store, _ := newTestStore(t)
	h := NewHandler(store, "pochita", logging.Default())
	payload := []byte(`{"name":"Pochita Norte"}`)

	rec := httptest.NewRecorder()
	h.UpdateConfig(rec, httptest.NewRequest(http.MethodPut, "/api/clinic/config", bytes.NewReader(payload)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateConfig(rec, withUser(httptest.NewRequest(http.MethodPut, "/api/clinic/config", bytes.NewReader(payload)), backend.RoleVeterinarian))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateConfig(rec, withUser(httptest.NewRequest(http.MethodPut, "/api/clinic/config", bytes.NewReader(payload)), backend.RoleReceptionist))
	require.Equal(t, http.StatusOK, rec.Code)

	cfg, err := store.Get(context.Background(), "pochita")
	require.NoError(t, err)
	assert.Equal(t, "Pochita Norte", cfg.Name)
	assert.Equal(t, "America/Santiago", cfg.Timezone, "partial update keeps other fields")
}

func TestUpdateConfigValidation(t *testing.T) {
	store, _ := newTestStore(t)
	h := NewHandler(store, "pochita", logging.Default())

	rec := httptest.NewRecorder()
	h.UpdateConfig(rec, withUser(httptest.NewRequest(http.MethodPut, "/api/clinic/config", bytes.NewReader([]byte(`{`))), backend.RoleReceptionist))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateConfig(rec, withUser(httptest.NewRequest(http.MethodPut, "/api/clinic/config", bytes.NewReader([]byte(`{"timezone":"Bad/Zone"}`))), backend.RoleReceptionist))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid timezone")
}
