package disaster

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

const mockVerificationReason = "Mock verification: Cannot verify image without API key."

// SocialReports returns the classified social reports for a disaster, from the
// cache when fresh.
func (s *Service) SocialReports(ctx context.Context, disasterID string) ([]domain.SocialReport, error) {
	var cached []domain.SocialReport
	ok, err := s.readCache(ctx, domain.SocialKey(disasterID), &cached)
	if err != nil {
		return nil, err
	}
	if ok {
		return cached, nil
	}
	return s.RefreshSocial(ctx, disasterID)
}

// RefreshSocial reads the social source, overwrites the cached reports, and
// publishes them. It runs on a cache miss and after every ingest batch.
func (s *Service) RefreshSocial(ctx context.Context, disasterID string) ([]domain.SocialReport, error) {
	reports := []domain.SocialReport{}
	if s.social != nil {
		recent, err := s.social.Recent(ctx, disasterID)
		if err != nil {
			return nil, fmt.Errorf("read social reports: %w", err)
		}
		for _, r := range recent {
			r.DisasterID = disasterID
			reports = append(reports, r.Classify())
		}
	}

	if err := s.writeCache(ctx, domain.SocialKey(disasterID), reports, s.defaultTTL); err != nil {
		return nil, err
	}
	s.publisher.Publish(domain.Event{
		Topic:    domain.TopicSocialMediaUpdated,
		EntityID: disasterID,
		Payload:  domain.SocialChange{DisasterID: disasterID, Reports: reports},
	})
	return reports, nil
}

// VerifyImage checks an image posted for an existing disaster. Without a
// verifier configured it answers a fixed positive result.
func (s *Service) VerifyImage(ctx context.Context, disasterID, imageURL string) (domain.Verification, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return domain.Verification{}, fmt.Errorf("%w: image_url is required", domain.ErrInvalidInput)
	}

	// A deleted disaster must not keep serving its cached verifications.
	if _, err := s.store.Get(ctx, disasterID); err != nil {
		return domain.Verification{}, err
	}

	key := domain.VerifyKey(disasterID, imageURL)
	var cached domain.Verification
	ok, err := s.readCache(ctx, key, &cached)
	if err != nil {
		return domain.Verification{}, err
	}
	if ok {
		return cached, nil
	}

	result := domain.Verification{Verified: true, Reason: mockVerificationReason}
	if s.verifier != nil {
		result, err = s.verifier.VerifyImage(ctx, imageURL)
		if err != nil {
			return domain.Verification{}, fmt.Errorf("verify image: %w", err)
		}
	} else {
		s.logger.Warn("no image verifier configured, returning mock verification", "disaster_id", disasterID)
	}

	if err := s.writeCache(ctx, key, result, s.defaultTTL); err != nil {
		return domain.Verification{}, err
	}
	return result, nil
}

// OfficialUpdates returns the official updates gathered for a disaster. They
// are cached for the shorter updates TTL. An empty result is never cached.
func (s *Service) OfficialUpdates(ctx context.Context, disasterID string) ([]domain.OfficialUpdate, error) {
	key := domain.UpdatesKey(disasterID)
	var cached []domain.OfficialUpdate
	ok, err := s.readCache(ctx, key, &cached)
	if err != nil {
		return nil, err
	}
	if ok {
		return cached, nil
	}

	if s.updates == nil {
		return nil, domain.ErrNoUpdates
	}
	found, err := s.updates.FetchUpdates(ctx, disasterID)
	if err != nil {
		return nil, fmt.Errorf("fetch official updates: %w", err)
	}
	if len(found) == 0 {
		return nil, domain.ErrNoUpdates
	}

	if err := s.writeCache(ctx, key, found, s.updatesTTL); err != nil {
		return nil, err
	}
	return found, nil
}
