package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// pointRe matches the stored WKT form "POINT(<lng> <lat>)" and nothing else.
var pointRe = regexp.MustCompile(`^POINT\(([-+]?\d+(?:\.\d+)?) ([-+]?\d+(?:\.\d+)?)\)$`)

// FormatPoint renders g in the stored point format, longitude first.
func FormatPoint(g Geo) string {
	return fmt.Sprintf("POINT(%s %s)", formatCoord(g.Lng), formatCoord(g.Lat))
}

// ParsePoint parses a stored point. Any deviation from the grammar is an
// ErrResourceLookup.
func ParsePoint(s string) (Geo, error) {
	m := pointRe.FindStringSubmatch(s)
	if m == nil {
		return Geo{}, fmt.Errorf("%w: malformed point %q", ErrResourceLookup, s)
	}
	lng, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Geo{}, fmt.Errorf("%w: longitude %q: %v", ErrResourceLookup, m[1], err)
	}
	lat, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Geo{}, fmt.Errorf("%w: latitude %q: %v", ErrResourceLookup, m[2], err)
	}
	return Geo{Lat: lat, Lng: lng}, nil
}

// formatCoord uses the shortest decimal form, so 42.36 stays "42.36".
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
