package utils

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresPoolConfig sizes the database/sql pool. Zero fields take the
// package defaults.
type PostgresPoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var defaultPostgresPool = PostgresPoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    25,
	ConnMaxLifetime: 30 * time.Minute,
	ConnMaxIdleTime: 5 * time.Minute,
	PingTimeout:     5 * time.Second,
}

func (c PostgresPoolConfig) withDefaults() PostgresPoolConfig {
	d := defaultPostgresPool
	return PostgresPoolConfig{
		MaxOpenConns:    positiveOr(c.MaxOpenConns, d.MaxOpenConns),
		MaxIdleConns:    positiveOr(c.MaxIdleConns, d.MaxIdleConns),
		ConnMaxLifetime: positiveOr(c.ConnMaxLifetime, d.ConnMaxLifetime),
		ConnMaxIdleTime: positiveOr(c.ConnMaxIdleTime, d.ConnMaxIdleTime),
		PingTimeout:     positiveOr(c.PingTimeout, d.PingTimeout),
	}
}

// OpenPostgres opens the user and audit store. driverName is "pgx" (pgx
// stdlib) in production. The dsn carries credentials and is never logged.
func OpenPostgres(ctx context.Context, driverName, dsn string, pool PostgresPoolConfig) (*sql.DB, error) {
	pool = pool.withDefaults()

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	if err := HealthCheck(ctx, db, pool.PingTimeout); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// HealthCheck pings the DB with a timeout.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if db == nil {
		return fmt.Errorf("db ping failed: database not configured")
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("db ping failed: %w", err)
	}
	return nil
}

// PostgresCheck adapts HealthCheck for the readiness endpoint.
func PostgresCheck(db *sql.DB, timeout time.Duration) Check {
	return func(ctx context.Context) error {
		return HealthCheck(ctx, db, timeout)
	}
}
