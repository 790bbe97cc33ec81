// Package domain models disaster events and the contracts of the services that
// enrich them.
//
// # Creation Pipeline
//
// A disaster is created from free text in three staged steps:
//
//	description → location name → coordinates → persisted record
//
// The location name comes from a text-understanding capability
// ([LocationExtractor]). The literal answer "Unknown" ([UnknownLocation]) is a
// terminal "cannot resolve" signal and rejects the request. Coordinates come
// from an ordered chain of [GeocodeProvider] backends. Nothing is persisted
// until both steps have succeeded, so a failed resolution or geocode never
// leaves a partial record behind.
//
// # Stored Point Format
//
// Locations are persisted as WKT points with longitude first:
//
//	POINT(<lng> <lat>)  →  e.g. "POINT(-73.9857 40.7484)"
//
// [ParsePoint] accepts exactly this grammar. Anything else is a data-integrity
// failure ([ErrResourceLookup]) and is never defaulted to (0,0).
//
// # Cache Keys
//
// Derived results are cached under "<domain>:<disasterId>[:<qualifier>...]":
//
//	resources:<id>:<lat>:<lng>:<radius>
//	social:<id>
//	verify:<id>:<imageUrl>
//	updates:<id>
//
// The format is shared with previously cached data and must not change. See
// [ResourcesKey] and friends.
//
// # Urgency
//
// Social reports are tagged High when the lower-cased text contains any of
// the keywords in [UrgencyKeywords] as a substring, Normal otherwise.
package domain
