package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-auth/internal/metrics"
)

type DB struct {
	Pool *pgxpool.Pool
}

// New opens a connection pool and wires its acquire/release hooks into the
// pool connection gauge.
func New(ctx context.Context, databaseURL string, maxConns int32, minConns int32, recorder *metrics.Recorder) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	if recorder != nil {
		cfg.BeforeAcquire = func(_ context.Context, _ *pgx.Conn) bool {
			recorder.ConnAcquired()
			return true
		}
		cfg.AfterRelease = func(_ *pgx.Conn) bool {
			recorder.ConnReleased()
			return true
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connected", "max_conns", maxConns, "min_conns", minConns)
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

func (db *DB) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
