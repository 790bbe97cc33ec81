// Package postgres persists disasters and answers proximity queries against
// PostgreSQL through database/sql and the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Config holds connection pool settings.
type Config struct {
	URL             string
	PingTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConfigFrom derives pool settings from the service configuration.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		URL:             cfg.DatabaseURL,
		PingTimeout:     cfg.DatabasePingTimeout,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    max(1, cfg.DatabaseMaxOpenConns/2),
		ConnMaxLifetime: 30 * time.Minute,
	}
}

func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.PingTimeout <= 0 {
		return errors.New("DATABASE_PING_TIMEOUT must be positive")
	}
	if c.MaxOpenConns < 1 {
		return errors.New("DATABASE_MAX_OPEN_CONNS must be >= 1")
	}
	if c.MaxIdleConns < 0 || c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("idle connections must be between 0 and DATABASE_MAX_OPEN_CONNS")
	}
	return nil
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return db, nil
}

// Pinger reports database reachability for the readiness endpoint.
type Pinger struct {
	DB *sql.DB
}

func (p Pinger) CheckReadiness(ctx context.Context) error {
	if err := p.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}
