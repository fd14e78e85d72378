package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/pochita-booking/internal/booking"
	appconfig "github.com/wolfman30/pochita-booking/internal/config"
	"github.com/wolfman30/pochita-booking/internal/session"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true))
	assert.Nil(t, BuildRedisClient(context.Background(), nil, nil, true))
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, nil, true)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, nil, true))
}

func TestBuildStoresFallBackToMemory(t *testing.T) {
	cfg := &appconfig.Config{Env: "development", BookingSessionTTL: time.Hour}
	assert.IsType(t, &session.MemoryStore{}, BuildSessionStore(nil, cfg, nil))
	assert.IsType(t, &booking.MemoryStore{}, BuildBookingStore(nil, cfg))
	assert.Nil(t, BuildClinicStore(context.Background(), nil, cfg, nil))
}

func TestBuildClinicStoreSeedsOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, nil, false)
	t.Cleanup(func() { _ = client.Close() })

	path := filepath.Join(t.TempDir(), "clinic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Pochita Concepción\n"), 0o600))
	cfg := &appconfig.Config{ClinicID: "pochita", ClinicConfigPath: path}

	store := BuildClinicStore(context.Background(), client, cfg, nil)
	require.NotNil(t, store)
	got, err := store.Get(context.Background(), "pochita")
	require.NoError(t, err)
	assert.Equal(t, "Pochita Concepción", got.Name)
	assert.NotEmpty(t, got.Areas, "defaults fill fields the file omits")

	got.Name = "Editada"
	require.NoError(t, store.Set(context.Background(), got))
	BuildClinicStore(context.Background(), client, cfg, nil)
	got, err = store.Get(context.Background(), "pochita")
	require.NoError(t, err)
	assert.Equal(t, "Editada", got.Name, "seeding never overwrites")
}
