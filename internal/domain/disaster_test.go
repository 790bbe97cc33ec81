package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"flood", "storm"}, NormalizeTags([]string{"storm", "flood", "", "storm"}))
	assert.Empty(t, NormalizeTags(nil))
}

func TestUpdateInput_Apply_AppendsAudit(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := Disaster{
		ID:           "d-1",
		Title:        "Flood",
		Description:  "Flooding in downtown Boston",
		Tags:         []string{"flood"},
		LocationName: "Boston, MA",
		Location:     "POINT(-71.06 42.36)",
		Geo:          Geo{Lat: 42.36, Lng: -71.06},
		AuditTrail:   []AuditEntry{{Action: AuditCreate, UserID: "netrunnerX", Timestamp: created}},
	}

	title := "Major flood"
	at := created.Add(time.Hour)
	got := UpdateInput{Title: &title, Tags: []string{"urgent", "flood"}, TagsSet: true, Actor: "reliefAdmin"}.Apply(d, at)

	assert.Equal(t, "Major flood", got.Title)
	assert.Equal(t, d.Description, got.Description)
	assert.Equal(t, []string{"flood", "urgent"}, got.Tags)
	assert.Equal(t, d.Location, got.Location)
	assert.Equal(t, d.Geo, got.Geo)
	if assert.Len(t, got.AuditTrail, 2) {
		assert.Equal(t, d.AuditTrail[0], got.AuditTrail[0])
		assert.Equal(t, AuditEntry{Action: AuditUpdate, UserID: "reliefAdmin", Timestamp: at}, got.AuditTrail[1])
	}
	assert.Len(t, d.AuditTrail, 1, "original trail must not be modified")
}

func TestUpdateInput_Apply_TagsUnsetKeepsTags(t *testing.T) {
	d := Disaster{Tags: []string{"flood"}}
	got := UpdateInput{Actor: "a"}.Apply(d, time.Now())
	assert.Equal(t, []string{"flood"}, got.Tags)
	assert.True(t, got.HasTag("flood"))
}
