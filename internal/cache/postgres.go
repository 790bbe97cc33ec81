package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Postgres is a TTL cache stored in the "cache" table
// (key TEXT PRIMARY KEY, value JSONB, expires_at TIMESTAMPTZ).
type Postgres struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewPostgres wraps an open database. Pass a nil clock to use real time.
func NewPostgres(db *sql.DB, clock clockwork.Clock) *Postgres {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Postgres{db: db, clock: clock}
}

func (p *Postgres) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var (
		value     []byte
		expiresAt time.Time
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache WHERE key = $1`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select cache %q: %w", key, err)
	}
	if !p.clock.Now().Before(expiresAt) {
		return nil, false, nil
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value %q: %w", key, err)
	}
	expiresAt := p.clock.Now().Add(effectiveTTL(ttl)).UTC()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO cache (key, value, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, data, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cache %q: %w", key, err)
	}
	return nil
}
