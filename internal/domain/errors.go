package domain

import "errors"

var (
	// ErrInvalidInput marks a request missing required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownLocation is returned when the text names no determinable place.
	ErrUnknownLocation = errors.New("could not determine a location from the description")
	// ErrResolution is returned when the text-understanding call itself fails.
	ErrResolution = errors.New("location resolution failed")
	// ErrGeocode is returned when every geocoding provider is exhausted.
	ErrGeocode = errors.New("geocoding failed")
	// ErrProviderUnavailable marks a provider transport failure, as opposed to "not found".
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
	// ErrResourceLookup marks a malformed stored point or failed spatial query.
	ErrResourceLookup = errors.New("resource lookup failed")
	// ErrNotFound is returned when a disaster does not exist.
	ErrNotFound = errors.New("disaster not found")
	// ErrNoUpdates is returned when no official updates are available.
	ErrNoUpdates = errors.New("no updates found from the source")
)
