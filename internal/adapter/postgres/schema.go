package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is idempotent. find_resources_near computes haversine distance in
// kilometres and returns rows nearest first.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS disasters (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL,
		tags          JSONB NOT NULL DEFAULT '[]',
		owner_id      TEXT NOT NULL,
		location_name TEXT NOT NULL,
		location      TEXT NOT NULL,
		lat           DOUBLE PRECISION NOT NULL,
		lng           DOUBLE PRECISION NOT NULL,
		audit_trail   JSONB NOT NULL DEFAULT '[]',
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS disasters_tags_idx ON disasters USING GIN (tags)`,
	`CREATE INDEX IF NOT EXISTS disasters_created_at_idx ON disasters (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS resources (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		lat  DOUBLE PRECISION NOT NULL,
		lng  DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cache (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE OR REPLACE FUNCTION find_resources_near(origin_lat DOUBLE PRECISION, origin_lng DOUBLE PRECISION, radius_km DOUBLE PRECISION)
	RETURNS TABLE (id TEXT, name TEXT, type TEXT, lat DOUBLE PRECISION, lng DOUBLE PRECISION, distance_km DOUBLE PRECISION)
	LANGUAGE sql STABLE AS $$
		SELECT near.id, near.name, near.type, near.lat, near.lng, near.distance_km
		FROM (
			SELECT r.id, r.name, r.type, r.lat, r.lng,
				2 * 6371 * asin(least(1, sqrt(
					power(sin(radians(r.lat - origin_lat) / 2), 2) +
					cos(radians(origin_lat)) * cos(radians(r.lat)) *
					power(sin(radians(r.lng - origin_lng) / 2), 2)
				))) AS distance_km
			FROM resources r
		) near
		WHERE near.distance_km <= radius_km
		ORDER BY near.distance_km
	$$`,
}

// EnsureSchema creates the tables and functions the store and cache use.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
