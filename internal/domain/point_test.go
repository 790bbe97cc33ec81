package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoint(t *testing.T) {
	g, err := ParsePoint("POINT(-73.9857 40.7484)")
	require.NoError(t, err)
	assert.Equal(t, -73.9857, g.Lng)
	assert.Equal(t, 40.7484, g.Lat)
}

func TestParsePoint_Integers(t *testing.T) {
	g, err := ParsePoint("POINT(10 -5)")
	require.NoError(t, err)
	assert.Equal(t, 10.0, g.Lng)
	assert.Equal(t, -5.0, g.Lat)
}

func TestParsePoint_Malformed(t *testing.T) {
	tests := []string{
		"",
		"POINT()",
		"POINT(-73.9857)",
		"POINT(-73.9857,40.7484)",
		"POINT( -73.9857 40.7484)",
		"point(-73.9857 40.7484)",
		"POINT(-73.9857 40.7484) ",
		"SRID=4326;POINT(-73.9857 40.7484)",
		"POINT(abc def)",
		"POINT(1.2.3 4)",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParsePoint(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrResourceLookup))
		})
	}
}

func TestFormatPoint(t *testing.T) {
	assert.Equal(t, "POINT(-71.06 42.36)", FormatPoint(Geo{Lat: 42.36, Lng: -71.06}))
	assert.Equal(t, "POINT(0 0)", FormatPoint(Geo{}))
}

func TestFormatPoint_RoundTrip(t *testing.T) {
	in := Geo{Lat: 40.7484, Lng: -73.9857}
	out, err := ParsePoint(FormatPoint(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
