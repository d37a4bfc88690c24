// Package cache stores engine language tables so they are fetched once per
// engine rather than on every validation.
package cache

import "context"

// Cache is a string key/value store.
type Cache interface {
	// Get retrieves a value. Returns empty string and false if not found or expired.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value.
	Set(ctx context.Context, key string, value string) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// LanguagesKey is the key an engine's language table is stored under.
func LanguagesKey(engine string) string {
	return "languages:" + engine
}
