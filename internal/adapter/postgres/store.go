package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

const disasterColumns = `id, title, description, tags, owner_id, location_name, location, lat, lng, audit_trail, created_at`

// Store implements domain.DisasterStore and domain.SpatialQuerier.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, d domain.Disaster) (domain.Disaster, error) {
	tags, trail, err := encodeJSONColumns(d)
	if err != nil {
		return domain.Disaster{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO disasters (`+disasterColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+disasterColumns,
		d.ID, d.Title, d.Description, tags, d.OwnerID, d.LocationName, d.Location,
		d.Geo.Lat, d.Geo.Lng, trail, d.CreatedAt,
	)
	created, err := scanDisaster(row)
	if err != nil {
		return domain.Disaster{}, fmt.Errorf("insert disaster %s: %w", d.ID, err)
	}
	return created, nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.Disaster, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+disasterColumns+` FROM disasters WHERE id = $1`, id)
	d, err := scanDisaster(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Disaster{}, fmt.Errorf("disaster %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Disaster{}, fmt.Errorf("select disaster %s: %w", id, err)
	}
	return d, nil
}

// List returns disasters newest first. A non-empty tag filters by containment.
func (s *Store) List(ctx context.Context, tag string) ([]domain.Disaster, error) {
	query := `SELECT ` + disasterColumns + ` FROM disasters`
	var args []any
	if tag != "" {
		filter, err := json.Marshal([]string{tag})
		if err != nil {
			return nil, fmt.Errorf("encode tag filter: %w", err)
		}
		query += ` WHERE tags @> $1::jsonb`
		args = append(args, string(filter))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list disasters: %w", err)
	}
	defer rows.Close()

	out := []domain.Disaster{}
	for rows.Next() {
		d, err := scanDisaster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan disaster: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list disasters: %w", err)
	}
	return out, nil
}

// Update writes the supplied fields and appends the audit entry in SQL, so
// concurrent updates cannot overwrite each other's entries. The location
// columns are never touched.
func (s *Store) Update(ctx context.Context, id string, in domain.UpdateInput, at time.Time) (domain.Disaster, error) {
	args, err := updateArgs(id, in, at)
	if err != nil {
		return domain.Disaster{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`UPDATE disasters SET
		   title = COALESCE($2, title),
		   description = COALESCE($3, description),
		   tags = CASE WHEN $4::boolean THEN $5::jsonb ELSE tags END,
		   audit_trail = audit_trail || $6::jsonb
		 WHERE id = $1
		 RETURNING `+disasterColumns,
		args...,
	)
	updated, err := scanDisaster(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Disaster{}, fmt.Errorf("disaster %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Disaster{}, fmt.Errorf("update disaster %s: %w", id, err)
	}
	return updated, nil
}

// updateArgs binds the UPDATE parameters. Unset fields are NULL so COALESCE
// keeps the stored value; the audit entry is a one-element array to append.
func updateArgs(id string, in domain.UpdateInput, at time.Time) ([]any, error) {
	var title, description sql.NullString
	if in.Title != nil {
		title = sql.NullString{String: *in.Title, Valid: true}
	}
	if in.Description != nil {
		description = sql.NullString{String: *in.Description, Valid: true}
	}
	tags, err := json.Marshal(domain.NormalizeTags(in.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	entry, err := json.Marshal([]domain.AuditEntry{{Action: domain.AuditUpdate, UserID: in.Actor, Timestamp: at}})
	if err != nil {
		return nil, fmt.Errorf("encode audit entry: %w", err)
	}
	return []any{id, title, description, in.TagsSet, string(tags), string(entry)}, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM disasters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete disaster %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete disaster %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("disaster %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) Location(ctx context.Context, id string) (string, error) {
	var point string
	err := s.db.QueryRowContext(ctx, `SELECT location FROM disasters WHERE id = $1`, id).Scan(&point)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("disaster %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("select location %s: %w", id, err)
	}
	return point, nil
}

// FindResourcesNear delegates the distance computation to find_resources_near.
func (s *Store) FindResourcesNear(ctx context.Context, origin domain.Geo, radiusKm float64) ([]domain.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, lat, lng, distance_km FROM find_resources_near($1, $2, $3)`,
		origin.Lat, origin.Lng, radiusKm,
	)
	if err != nil {
		return nil, fmt.Errorf("find_resources_near: %w", err)
	}
	defer rows.Close()

	out := []domain.Resource{}
	for rows.Next() {
		var r domain.Resource
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &r.Geo.Lat, &r.Geo.Lng, &r.DistanceKm); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find_resources_near: %w", err)
	}
	return out, nil
}

// UpsertResources inserts or replaces resources by ID.
func (s *Store) UpsertResources(ctx context.Context, resources []domain.Resource) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, r := range resources {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO resources (id, name, type, lat, lng) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type,
			 lat = EXCLUDED.lat, lng = EXCLUDED.lng`,
			r.ID, r.Name, r.Type, r.Geo.Lat, r.Geo.Lng,
		); err != nil {
			return fmt.Errorf("upsert resource %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDisaster(row scanner) (domain.Disaster, error) {
	var (
		d            domain.Disaster
		tags, trail []byte
	)
	if err := row.Scan(&d.ID, &d.Title, &d.Description, &tags, &d.OwnerID, &d.LocationName,
		&d.Location, &d.Geo.Lat, &d.Geo.Lng, &trail, &d.CreatedAt); err != nil {
		return domain.Disaster{}, err
	}
	if err := decodeJSONColumns(&d, tags, trail); err != nil {
		return domain.Disaster{}, err
	}
	d.CreatedAt = d.CreatedAt.UTC()
	return d, nil
}

func encodeJSONColumns(d domain.Disaster) (tags, trail string, err error) {
	t := d.Tags
	if t == nil {
		t = []string{}
	}
	a := d.AuditTrail
	if a == nil {
		a = []domain.AuditEntry{}
	}
	tb, err := json.Marshal(t)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return "", "", fmt.Errorf("encode audit trail: %w", err)
	}
	return string(tb), string(ab), nil
}

func decodeJSONColumns(d *domain.Disaster, tags, trail []byte) error {
	d.Tags = []string{}
	d.AuditTrail = []domain.AuditEntry{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return fmt.Errorf("decode tags: %w", err)
		}
	}
	if len(trail) > 0 {
		if err := json.Unmarshal(trail, &d.AuditTrail); err != nil {
			return fmt.Errorf("decode audit trail: %w", err)
		}
	}
	return nil
}
