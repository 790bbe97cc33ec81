package disaster

import (
	"context"
	"slices"
	"sync"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// DefaultFeedLimit is the number of reports kept per disaster.
const DefaultFeedLimit = 50

// Feed is a bounded in-memory log of social reports per disaster, oldest
// first. It is the SocialSource fed by the ingest pipeline.
type Feed struct {
	mu      sync.RWMutex
	limit   int
	reports map[string][]domain.SocialReport
}

// NewFeed creates a Feed that keeps at most limit reports per disaster.
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return &Feed{limit: limit, reports: make(map[string][]domain.SocialReport)}
}

// Append adds reports and returns the IDs of the disasters they touched in
// first-seen order. Reports without a disaster ID are ignored.
func (f *Feed) Append(reports ...domain.SocialReport) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var touched []string
	for _, r := range reports {
		if r.DisasterID == "" {
			continue
		}
		list := append(f.reports[r.DisasterID], r)
		if over := len(list) - f.limit; over > 0 {
			list = slices.Clone(list[over:])
		}
		f.reports[r.DisasterID] = list
		if !slices.Contains(touched, r.DisasterID) {
			touched = append(touched, r.DisasterID)
		}
	}
	return touched
}

// Recent returns a copy of the reports held for disasterID.
func (f *Feed) Recent(_ context.Context, disasterID string) ([]domain.SocialReport, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.reports[disasterID]), nil
}
