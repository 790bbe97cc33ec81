package domain

import "strings"

// Priority is the urgency tag of a social report.
type Priority string

const (
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
)

// UrgencyKeywords are checked in order against the lower-cased report text.
var UrgencyKeywords = []string{"urgent", "sos", "help", "emergency", "asap"}

// SocialReport is a post about a disaster with its derived priority.
type SocialReport struct {
	DisasterID string   `json:"disaster_id,omitempty"`
	Post       string   `json:"post"`
	User       string   `json:"user"`
	Priority   Priority `json:"priority"`
}

// ClassifyUrgency returns PriorityHigh when any urgency keyword appears as a
// substring of text, ignoring case.
func ClassifyUrgency(text string) Priority {
	lower := strings.ToLower(text)
	for _, kw := range UrgencyKeywords {
		if strings.Contains(lower, kw) {
			return PriorityHigh
		}
	}
	return PriorityNormal
}

// Classify returns r with its Priority derived from the post text.
func (r SocialReport) Classify() SocialReport {
	r.Priority = ClassifyUrgency(r.Post)
	return r
}
