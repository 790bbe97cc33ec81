// Package memory provides process-local implementations of the disaster store
// and spatial query, used when no database is configured.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// Store keeps disasters in a map. Returned values never alias stored ones.
type Store struct {
	mu        sync.RWMutex
	disasters map[string]domain.Disaster
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{disasters: make(map[string]domain.Disaster)}
}

func (s *Store) Create(_ context.Context, d domain.Disaster) (domain.Disaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.disasters[d.ID]; ok {
		return domain.Disaster{}, fmt.Errorf("disaster %s already exists", d.ID)
	}
	s.disasters[d.ID] = clone(d)
	return clone(d), nil
}

func (s *Store) Get(_ context.Context, id string) (domain.Disaster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.disasters[id]
	if !ok {
		return domain.Disaster{}, fmt.Errorf("disaster %s: %w", id, domain.ErrNotFound)
	}
	return clone(d), nil
}

// List returns disasters newest first, optionally filtered by tag.
func (s *Store) List(_ context.Context, tag string) ([]domain.Disaster, error) {
	s.mu.RLock()
	out := make([]domain.Disaster, 0, len(s.disasters))
	for _, d := range s.disasters {
		if tag == "" || d.HasTag(tag) {
			out = append(out, clone(d))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Disaster) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Update reads, applies and writes under one lock.
func (s *Store) Update(_ context.Context, id string, in domain.UpdateInput, at time.Time) (domain.Disaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.disasters[id]
	if !ok {
		return domain.Disaster{}, fmt.Errorf("disaster %s: %w", id, domain.ErrNotFound)
	}
	updated := in.Apply(clone(current), at)
	s.disasters[id] = updated
	return clone(updated), nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.disasters[id]; !ok {
		return fmt.Errorf("disaster %s: %w", id, domain.ErrNotFound)
	}
	delete(s.disasters, id)
	return nil
}

func (s *Store) Location(ctx context.Context, id string) (string, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return d.Location, nil
}

func clone(d domain.Disaster) domain.Disaster {
	d.Tags = slices.Clone(d.Tags)
	d.AuditTrail = slices.Clone(d.AuditTrail)
	return d
}
