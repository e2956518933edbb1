package ratelimit

import (
	"context"
	"errors"
)

// ErrStoreUnavailable wraps connectivity failures from the counter store.
// The limiter's fail-open/fail-closed policy decides what the HTTP layer
// does with it; it must never be silently swallowed.
var ErrStoreUnavailable = errors.New("counter store unavailable")

// Record is the persisted counter state for one (client, bucket) pair.
// Expiry is logical: it lives in the Expires field rather than in a
// store-level TTL, so lapsed records linger until overwritten.
type Record struct {
	// Hits is the number of requests counted in the current window.
	Hits int `json:"hits"`

	// Expires is the epoch second at which the current window ends.
	// Zero means no active window.
	Expires int64 `json:"expires"`

	// Bucket is the bucket the record belongs to. Carried for
	// convenience; it is not part of the storage key.
	Bucket string `json:"bucket"`
}

// CounterStore is the external key-value store holding counter records.
// It exclusively owns the durable copy; the limiter only ever holds a
// transient in-memory copy for the duration of one request. All methods
// may block on network I/O and must honor context cancellation.
type CounterStore interface {
	// Read returns the record for key. The second return value is false
	// when no record exists.
	Read(ctx context.Context, key string) (Record, bool, error)

	// Write persists the record under key, replacing any existing value.
	Write(ctx context.Context, key string, rec Record) error

	// Delete removes the record for key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
