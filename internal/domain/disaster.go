package domain

import (
	"slices"
	"time"
)

// UnknownLocation is the answer a LocationExtractor gives when the text names no place.
const UnknownLocation = "Unknown"

// AuditAction names an entry in a disaster's audit trail.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
)

// AuditEntry records one action taken against a disaster.
type AuditEntry struct {
	Action    AuditAction `json:"action"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Disaster is a reported event with a resolved location.
//
// Location and Geo are derived from LocationName once, at creation. Updates
// never touch them. AuditTrail is append-only.
type Disaster struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Tags         []string     `json:"tags"`
	OwnerID      string       `json:"owner_id"`
	LocationName string       `json:"location_name"`
	Location     string       `json:"location"` // POINT(<lng> <lat>)
	Geo          Geo          `json:"geo"`
	AuditTrail   []AuditEntry `json:"audit_trail"`
	CreatedAt    time.Time    `json:"created_at"`
}

// NormalizeTags drops empty and duplicate tags. Tag order carries no meaning,
// so the result is sorted for stable storage.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// HasTag reports whether the disaster carries tag.
func (d Disaster) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// CreateInput carries the caller-supplied fields of a new disaster.
type CreateInput struct {
	Title       string
	Description string
	Tags        []string
	Actor       string
}

// UpdateInput carries optional replacements for the editable fields of a
// disaster. Nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Tags        []string
	TagsSet     bool
	Actor       string
}

// Apply returns d with the update applied and an update entry appended to the
// audit trail. The receiver's audit slice is never modified in place.
func (u UpdateInput) Apply(d Disaster, at time.Time) Disaster {
	if u.Title != nil {
		d.Title = *u.Title
	}
	if u.Description != nil {
		d.Description = *u.Description
	}
	if u.TagsSet {
		d.Tags = NormalizeTags(u.Tags)
	}
	trail := make([]AuditEntry, 0, len(d.AuditTrail)+1)
	trail = append(trail, d.AuditTrail...)
	d.AuditTrail = append(trail, AuditEntry{Action: AuditUpdate, UserID: u.Actor, Timestamp: at})
	return d
}
