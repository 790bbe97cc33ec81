package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// wireReport is the JSON shape of a message on the social report topic.
type wireReport struct {
	DisasterID string `json:"disaster_id"`
	Post       string `json:"post"`
	User       string `json:"user"`
}

// ReportTransformer decodes social report messages and tags their urgency.
type ReportTransformer struct{}

// NewTransformer creates a ReportTransformer.
func NewTransformer() *ReportTransformer {
	return &ReportTransformer{}
}

func (t *ReportTransformer) Transform(_ context.Context, raw domain.RawMessage) (domain.SocialReport, error) {
	var w wireReport
	if err := json.Unmarshal(raw.Value, &w); err != nil {
		return domain.SocialReport{}, fmt.Errorf("decode social report: %w", err)
	}
	w.DisasterID = strings.TrimSpace(w.DisasterID)
	if w.DisasterID == "" {
		// Fall back to the message key, which producers set to the disaster ID.
		w.DisasterID = strings.TrimSpace(string(raw.Key))
	}
	if w.DisasterID == "" || strings.TrimSpace(w.Post) == "" {
		return domain.SocialReport{}, fmt.Errorf("%w: social report needs disaster_id and post", domain.ErrInvalidInput)
	}

	report := domain.SocialReport{
		DisasterID: w.DisasterID,
		Post:       w.Post,
		User:       w.User,
	}
	return report.Classify(), nil
}
