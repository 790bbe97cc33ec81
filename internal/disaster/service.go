// Package disaster implements the disaster lifecycle and the lookups that
// enrich a disaster once it exists.
package disaster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/location"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// LocationResolver extracts a place name from free text.
type LocationResolver interface {
	Resolve(ctx context.Context, text string) (string, error)
}

// Deps are the collaborators of a Service. Store, Resolver, Geocoder, Cache
// and Publisher are required. Verifier, Updates and Social are optional.
type Deps struct {
	Store     domain.DisasterStore
	Resolver  LocationResolver
	Geocoder  domain.Geocoder
	Cache     domain.Cache
	Publisher domain.Publisher

	Verifier domain.ImageVerifier
	Updates  domain.UpdatesSource
	Social   domain.SocialSource

	DefaultTTL time.Duration
	UpdatesTTL time.Duration
	Clock      clockwork.Clock
	NewID      func() string
	Logger     *slog.Logger
}

// Service runs the creation pipeline and the per-disaster lookups.
type Service struct {
	store     domain.DisasterStore
	resolver  LocationResolver
	geocoder  domain.Geocoder
	cache     domain.Cache
	publisher domain.Publisher
	verifier  domain.ImageVerifier
	updates   domain.UpdatesSource
	social    domain.SocialSource

	defaultTTL time.Duration
	updatesTTL time.Duration
	clock      clockwork.Clock
	newID      func() string
	logger     *slog.Logger
}

// NewService creates a Service from deps, filling in defaults for the clock,
// ID generator and TTLs.
func NewService(deps Deps) *Service {
	s := &Service{
		store:      deps.Store,
		resolver:   deps.Resolver,
		geocoder:   deps.Geocoder,
		cache:      deps.Cache,
		publisher:  deps.Publisher,
		verifier:   deps.Verifier,
		updates:    deps.Updates,
		social:     deps.Social,
		defaultTTL: deps.DefaultTTL,
		updatesTTL: deps.UpdatesTTL,
		clock:      deps.Clock,
		newID:      deps.NewID,
		logger:     deps.Logger,
	}
	if s.defaultTTL <= 0 {
		s.defaultTTL = domain.DefaultCacheTTL
	}
	if s.updatesTTL <= 0 {
		s.updatesTTL = domain.UpdatesCacheTTL
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// GeocodeText resolves the place named in text and geocodes it.
func (s *Service) GeocodeText(ctx context.Context, text string) (string, domain.Geo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.Geo{}, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	return s.locate(ctx, text)
}

// Create resolves and geocodes the description, then persists the disaster.
// Nothing is stored or published unless both steps succeed.
func (s *Service) Create(ctx context.Context, in domain.CreateInput) (domain.Disaster, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return domain.Disaster{}, fmt.Errorf("%w: title and description are required", domain.ErrInvalidInput)
	}
	if in.Actor == "" {
		return domain.Disaster{}, fmt.Errorf("%w: actor is required", domain.ErrInvalidInput)
	}

	name, geo, err := s.locate(ctx, description)
	if err != nil {
		return domain.Disaster{}, err
	}

	now := s.clock.Now().UTC()
	d := domain.Disaster{
		ID:           s.newID(),
		Title:        title,
		Description:  description,
		Tags:         domain.NormalizeTags(in.Tags),
		OwnerID:      in.Actor,
		LocationName: name,
		Location:     domain.FormatPoint(geo),
		Geo:          geo,
		AuditTrail:   []domain.AuditEntry{{Action: domain.AuditCreate, UserID: in.Actor, Timestamp: now}},
		CreatedAt:    now,
	}
	created, err := s.store.Create(ctx, d)
	if err != nil {
		return domain.Disaster{}, fmt.Errorf("persist disaster: %w", err)
	}

	s.publishChange("create", created)
	s.logger.Info("disaster created",
		"disaster_id", created.ID,
		"owner", created.OwnerID,
		"location", created.LocationName,
		"point", created.Location,
	)
	return created, nil
}

// Get returns one disaster.
func (s *Service) Get(ctx context.Context, id string) (domain.Disaster, error) {
	return s.store.Get(ctx, id)
}

// List returns disasters newest first. An empty tag matches every disaster.
func (s *Service) List(ctx context.Context, tag string) ([]domain.Disaster, error) {
	return s.store.List(ctx, strings.TrimSpace(tag))
}

// Update applies the editable fields and appends an update audit entry. The
// location is never re-derived.
func (s *Service) Update(ctx context.Context, id string, in domain.UpdateInput) (domain.Disaster, error) {
	if in.Actor == "" {
		return domain.Disaster{}, fmt.Errorf("%w: actor is required", domain.ErrInvalidInput)
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return domain.Disaster{}, fmt.Errorf("%w: title must not be empty", domain.ErrInvalidInput)
		}
		in.Title = &t
	}

	updated, err := s.store.Update(ctx, id, in, s.clock.Now().UTC())
	if err != nil {
		return domain.Disaster{}, fmt.Errorf("update disaster: %w", err)
	}

	s.publishChange("update", updated)
	s.logger.Info("disaster updated", "disaster_id", id, "user", in.Actor)
	return updated, nil
}

// Delete removes the disaster permanently.
func (s *Service) Delete(ctx context.Context, id, actor string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publishChange("delete", domain.Disaster{ID: id})
	s.logger.Info("disaster deleted", "disaster_id", id, "user", actor)
	return nil
}

func (s *Service) locate(ctx context.Context, text string) (string, domain.Geo, error) {
	name, err := s.resolver.Resolve(ctx, text)
	if err != nil {
		return "", domain.Geo{}, err
	}
	name = strings.TrimSpace(name)
	if location.IsUnknown(name) {
		return "", domain.Geo{}, fmt.Errorf("%w: could not determine a location from the description", domain.ErrUnknownLocation)
	}

	geo, err := s.geocoder.Geocode(ctx, name)
	if err != nil {
		s.logger.Warn("geocode failed", "location", name, "error", err)
		return "", domain.Geo{}, err
	}
	return name, geo, nil
}

func (s *Service) publishChange(action string, d domain.Disaster) {
	s.publisher.Publish(domain.Event{
		Topic:    domain.TopicDisasterUpdated,
		EntityID: d.ID,
		Payload:  domain.DisasterChange{Action: action, Disaster: d},
	})
}

// readCache decodes a cached value into dst. An undecodable entry counts as a miss.
func (s *Service) readCache(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read cache %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return false, nil
	}
	s.logger.Debug("cache hit", "key", key)
	return true, nil
}

func (s *Service) writeCache(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("write cache %s: %w", key, err)
	}
	return nil
}
