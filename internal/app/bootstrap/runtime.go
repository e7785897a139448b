// Package bootstrap builds the optional runtime dependencies of the API from
// configuration. Every builder degrades to an in-process fallback when its
// backing service is not configured.
package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/assessment-api/internal/config"
	"github.com/wolfman30/assessment-api/internal/leads"
	"github.com/wolfman30/assessment-api/internal/ratelimit"
	"github.com/wolfman30/assessment-api/pkg/logging"
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
		logger.Warn("redis not available, falling back to in-memory rate limiting", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter picks the shared Redis counter store when a client is
// available. Otherwise it returns an in-process store the caller must sweep.
func BuildRateLimiter(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) (*ratelimit.Limiter, *ratelimit.MemoryStore, error) {
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	if redisClient != nil {
		limiter, err := ratelimit.New(ratelimit.NewRedisStore(redisClient), cfg.RateLimitMax, cfg.RateLimitWindow, logger,
			ratelimit.WithKeyPrefix("assessment:ratelimit:"))
		return limiter, nil, err
	}
	mem := ratelimit.NewMemoryStore()
	limiter, err := ratelimit.New(mem, cfg.RateLimitMax, cfg.RateLimitWindow, logger)
	if err != nil {
		return nil, nil, err
	}
	return limiter, mem, nil
}

// ConnectPostgresPool opens and pings a pool. It returns nil when the URL is
// empty or the database is unreachable.
func ConnectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Warn("postgres pool init failed, submission ledger kept in memory", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Warn("postgres not reachable, submission ledger kept in memory", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// BuildLedger returns the Postgres ledger when a pool is available.
func BuildLedger(pool *pgxpool.Pool) leads.Ledger {
	if pool == nil {
		return leads.NewMemoryLedger()
	}
	return leads.NewPostgresLedger(pool)
}
