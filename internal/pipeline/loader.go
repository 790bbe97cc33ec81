package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// FeedAppender stores reports and reports which disasters they touched.
type FeedAppender interface {
	Append(reports ...domain.SocialReport) []string
}

// SocialRefresher rebuilds the cached, published view of a disaster's reports.
type SocialRefresher interface {
	RefreshSocial(ctx context.Context, disasterID string) ([]domain.SocialReport, error)
}

// FeedLoader appends reports to the feed and refreshes every touched disaster.
// It implements BatchLoader.
type FeedLoader struct {
	feed      FeedAppender
	refresher SocialRefresher
}

// NewFeedLoader creates a FeedLoader.
func NewFeedLoader(feed FeedAppender, refresher SocialRefresher) *FeedLoader {
	return &FeedLoader{feed: feed, refresher: refresher}
}

func (l *FeedLoader) LoadBatch(ctx context.Context, reports []domain.SocialReport) error {
	for _, id := range l.feed.Append(reports...) {
		if _, err := l.refresher.RefreshSocial(ctx, id); err != nil {
			return fmt.Errorf("refresh social reports for %s: %w", id, err)
		}
	}
	return nil
}
