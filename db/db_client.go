// Package db owns the PostgreSQL connection pool and the embedded schema
// migrations.
package db

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matchfund/matchfund-backend/config"
	"github.com/matchfund/matchfund-backend/logger"
)

// Connect builds a pool from the database config and checks it with a ping.
// Production connections require TLS 1.2.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	log := logger.GetLogger()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.Server.Environment == config.EnvProduction && cfg.Database.SSLMode != "disable" {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Database.Host,
			MinVersion: tls.VersionTLS12,
		}
	}
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Infow("Connected to database",
		"host", cfg.Database.Host,
		"database", cfg.Database.Name,
		"maxConns", poolConfig.MaxConns)
	return pool, nil
}
