// Package bootstrap builds the optional backends the API binary wires
// together. Each builder returns nil when its backend is not configured.
package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/sciencehub/sciencehub-api/cmd/mainconfig"
	"github.com/sciencehub/sciencehub-api/internal/attachments"
	appconfig "github.com/sciencehub/sciencehub-api/internal/config"
	"github.com/sciencehub/sciencehub-api/internal/profanity"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

// BuildRedisClient returns a Redis client when configured and reachable.
// When verify is true an unreachable server yields nil so the feed runs
// uncached.
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
		logger.Warn("redis not available, feed cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// Postgres bundles the pgx pool used by the repositories with a database/sql
// handle over the same pool for health checks.
type Postgres struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
}

// Close releases the sql handle and the pool.
func (p *Postgres) Close() {
	if p == nil {
		return
	}
	_ = p.DB.Close()
	p.Pool.Close()
}

// BuildPostgres connects to DATABASE_URL. An empty URL returns nil, nil and
// the caller falls back to in-memory storage.
func BuildPostgres(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Postgres, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	logger.Info("connected to postgres")
	return &Postgres{Pool: pool, DB: stdlib.OpenDBFromPool(pool)}, nil
}

// BuildProfanityFilter loads PROFANITY_DENYLIST_PATH when set and otherwise
// returns the embedded filter.
func BuildProfanityFilter(cfg *appconfig.Config, logger *logging.Logger) (*profanity.Filter, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil || strings.TrimSpace(cfg.ProfanityDenylistPath) == "" {
		f := profanity.Default()
		logger.Info("profanity filter ready", "source", "embedded", "terms", f.Len(), "languages", f.Languages())
		return f, nil
	}
	d, err := profanity.LoadDenylistFile(cfg.ProfanityDenylistPath)
	if err != nil {
		return nil, err
	}
	f, err := profanity.NewFromDenylist(d)
	if err != nil {
		return nil, err
	}
	logger.Info("profanity filter ready", "source", cfg.ProfanityDenylistPath, "terms", f.Len(), "languages", f.Languages())
	return f, nil
}

// BuildUploadsStore returns an S3-backed store when UPLOADS_BUCKET is set.
func BuildUploadsStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*attachments.Store, error) {
	if cfg == nil || strings.TrimSpace(cfg.UploadsBucket) == "" {
		return nil, nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	client := mainconfig.NewS3Client(awsCfg, cfg)
	return attachments.NewStore(client, cfg.UploadsBucket, cfg.UploadsPublicURL, cfg.UploadMaxBytes, logger), nil
}
