package clinic

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestStoreGetReturnsDefaultWhenMissing(t *testing.T) {
	store, _ := newTestStore(t)
	cfg, err := store.Get(context.Background(), "pochita")
	require.NoError(t, err)
	assert.Equal(t, "pochita", cfg.ClinicID)
	assert.Equal(t, "America/Santiago", cfg.Timezone)
}

func TestStoreSetAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	cfg := DefaultConfig("pochita")
	cfg.Name = "Pochita Centro"
	require.NoError(t, store.Set(ctx, cfg))
	assert.True(t, mr.Exists("clinic:config:pochita"))

	got, err := store.Get(ctx, "pochita")
	require.NoError(t, err)
	assert.Equal(t, "Pochita Centro", got.Name)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestStoreSetRejectsInvalid(t *testing.T) {
	store, mr := newTestStore(t)
	cfg := DefaultConfig("pochita")
	cfg.Name = ""
	assert.Error(t, store.Set(context.Background(), cfg))
	assert.False(t, mr.Exists("clinic:config:pochita"))
}

func TestSeedDoesNotOverwrite(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first := DefaultConfig("pochita")
	first.Name = "Primera"
	wrote, err := store.Seed(ctx, first)
	require.NoError(t, err)
	assert.True(t, wrote)

	second := DefaultConfig("pochita")
	second.Name = "Segunda"
	wrote, err = store.Seed(ctx, second)
	require.NoError(t, err)
	assert.False(t, wrote)

	got, err := store.Get(ctx, "pochita")
	require.NoError(t, err)
	assert.Equal(t, "Primera", got.Name)
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile("testdata/clinic.yaml", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "pochita", cfg.ClinicID)
	assert.Equal(t, "Clínica Veterinaria Pochita", cfg.Name)
	assert.Equal(t, "18:00", cfg.BusinessHours.Friday.Close)
	assert.Nil(t, cfg.BusinessHours.Sunday)
	require.Len(t, cfg.Areas, 2)
	assert.Equal(t, "Vacunación", cfg.Areas[0].Services[1].Label)

	_, err = LoadFile("testdata/missing.yaml", "x")
	assert.Error(t, err)
}

func TestParseYAMLKeepsDefaults(t *testing.T) {
	cfg, err := ParseYAML([]byte("name: Pochita Sur\n"), "sur")
	require.NoError(t, err)
	assert.Equal(t, "sur", cfg.ClinicID)
	assert.Equal(t, "Pochita Sur", cfg.Name)
	assert.Equal(t, "56949729777", cfg.Emergency.WhatsApp)

	_, err = ParseYAML([]byte("timezone: Nowhere/City\n"), "x")
	assert.Error(t, err)
}
