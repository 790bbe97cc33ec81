package domain

import "time"

// Event topics published on the bus.
const (
	TopicDisasterUpdated    = "disaster_updated"
	TopicResourcesUpdated   = "resources_updated"
	TopicSocialMediaUpdated = "social_media_updated"
)

// Event is a live state-change notification. EntityID scopes the event to one
// disaster; subscribers without a scope receive every event.
type Event struct {
	Topic       string    `json:"topic"`
	EntityID    string    `json:"entity_id,omitempty"`
	Payload     any       `json:"payload"`
	PublishedAt time.Time `json:"published_at"`
}

// DisasterChange is the payload of TopicDisasterUpdated.
type DisasterChange struct {
	Action   string   `json:"action"` // "create", "update", "delete"
	Disaster Disaster `json:"disaster"`
}

// ResourcesChange is the payload of TopicResourcesUpdated.
type ResourcesChange struct {
	DisasterID string     `json:"disaster_id"`
	Resources  []Resource `json:"resources"`
}

// SocialChange is the payload of TopicSocialMediaUpdated.
type SocialChange struct {
	DisasterID string         `json:"disaster_id"`
	Reports    []SocialReport `json:"reports"`
}
