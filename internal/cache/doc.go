// Package cache implements the TTL key/value store that shields external
// lookups. Every backend shares the same read rule: an entry whose expiry is at
// or before the read time is reported as absent, but it is left in storage
// until the next write to the same key replaces it. Writes always overwrite,
// whatever the remaining lifetime of the previous entry.
package cache
