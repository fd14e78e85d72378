package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/pochita-booking/internal/booking"
	"github.com/wolfman30/pochita-booking/internal/clinic"
	appconfig "github.com/wolfman30/pochita-booking/internal/config"
	"github.com/wolfman30/pochita-booking/internal/session"
	"github.com/wolfman30/pochita-booking/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore returns the Redis session store, or an in-memory store
// outside production when Redis is unavailable.
func BuildSessionStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) session.Store {
	if redisClient != nil {
		return session.NewRedisStore(redisClient)
	}
	if logger != nil {
		logger.Warn("sessions kept in memory; they will not survive a restart", "env", cfg.Env)
	}
	return session.NewMemoryStore()
}

// BuildBookingStore mirrors BuildSessionStore for wizard state.
func BuildBookingStore(redisClient *redis.Client, cfg *appconfig.Config) booking.Store {
	if redisClient != nil {
		return booking.NewRedisStore(redisClient, cfg.BookingSessionTTL)
	}
	return booking.NewMemoryStore()
}

// BuildClinicStore returns the clinic config store when Redis is available,
// seeding it from cfg.ClinicConfigPath on first boot. A stored profile is
// never overwritten.
func BuildClinicStore(ctx context.Context, redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) *clinic.Store {
	if redisClient == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	store := clinic.NewStore(redisClient)

	profile := clinic.DefaultConfig(cfg.ClinicID)
	if path := strings.TrimSpace(cfg.ClinicConfigPath); path != "" {
		loaded, err := clinic.LoadFile(path, cfg.ClinicID)
		if err != nil {
			logger.Warn("clinic seed file unusable, seeding defaults", "path", path, "error", err)
		} else {
			profile = loaded
		}
	}
	wrote, err := store.Seed(ctx, profile)
	if err != nil {
		logger.Warn("failed to seed clinic config", "clinic_id", cfg.ClinicID, "error", err)
	} else if wrote {
		logger.Info("clinic config seeded", "clinic_id", cfg.ClinicID, "name", profile.Name)
	}
	return store
}
