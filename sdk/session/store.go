package session

// Store is the storage boundary for persisted session and tenant state. Keys
// and values are opaque strings. Implementations must be safe for concurrent
// use.
type Store interface {
	// Get returns the value stored under the specified key. The boolean result
	// is false if no such key exists.
	Get(key string) (string, bool, error)
	// Set stores all of the provided entries in a single write so that readers
	// never observe some of them without the others.
	Set(entries map[string]string) error
	// Delete removes the specified keys. Deleting keys that do not exist is not
	// an error.
	Delete(keys ...string) error
}
