package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyUrgency(t *testing.T) {
	tests := []struct {
		text string
		want Priority
	}{
		{"We need URGENT medical assistance", PriorityHigh},
		{"Offering shelter in Brooklyn", PriorityNormal},
		{"Need HELP now", PriorityHigh},
		{"SOS trapped on roof", PriorityHigh},
		{"emergency services en route", PriorityHigh},
		{"send water asap", PriorityHigh},
		{"#floodrelief Need food in NYC", PriorityNormal},
		{"", PriorityNormal},
		// Substring match: "helpful" contains "help".
		{"volunteers were helpful", PriorityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUrgency(tt.text))
		})
	}
}

func TestSocialReport_Classify(t *testing.T) {
	r := SocialReport{Post: "Emergency at the bridge", User: "citizen1"}.Classify()
	assert.Equal(t, PriorityHigh, r.Priority)
	assert.Equal(t, "citizen1", r.User)
}
