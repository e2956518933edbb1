package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownBucket is returned when a bucket name is not present in the
// registry. Referencing an unknown bucket is a programming error; routes
// validate their bucket names at registration time rather than per request.
var ErrUnknownBucket = errors.New("unknown rate limit bucket")

// Bucket is a named rate-limit policy: at most Limit hits within one
// fixed Window.
type Bucket struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Registry maps bucket names to their policies. It is immutable after
// construction and safe for concurrent use without locking.
type Registry struct {
	buckets map[string]Bucket
}

// GlobalBucket is the implicit bucket applied to every request.
const GlobalBucket = "global"

// DefaultBuckets returns the built-in bucket table. The values match the
// limits the embed API has always shipped with; clients depend on them.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{Name: GlobalBucket, Limit: 60, Window: 30 * time.Second},
		{Name: "generate", Limit: 30, Window: 30 * time.Second},
		{Name: "create", Limit: 10, Window: 60 * time.Second},
		{Name: "update", Limit: 10, Window: 60 * time.Second},
		{Name: "delete", Limit: 15, Window: 60 * time.Second},
	}
}

// NewRegistry builds a registry from the given buckets. Passing any buckets
// replaces the whole default table; partial overrides are not supported.
// An empty slice yields the defaults.
func NewRegistry(buckets []Bucket) (*Registry, error) {
	if len(buckets) == 0 {
		buckets = DefaultBuckets()
	}

	table := make(map[string]Bucket, len(buckets))
	for _, b := range buckets {
		if b.Name == "" {
			return nil, errors.New("bucket name cannot be empty")
		}
		if b.Limit <= 0 {
			return nil, fmt.Errorf("bucket %s: limit must be positive", b.Name)
		}
		if b.Window <= 0 {
			return nil, fmt.Errorf("bucket %s: window must be positive", b.Name)
		}
		if _, dup := table[b.Name]; dup {
			return nil, fmt.Errorf("bucket %s: duplicate name", b.Name)
		}
		table[b.Name] = b
	}

	return &Registry{buckets: table}, nil
}

// LimitFor returns the policy for the named bucket.
func (r *Registry) LimitFor(name string) (Bucket, error) {
	b, ok := r.buckets[name]
	if !ok {
		return Bucket{}, fmt.Errorf("%w: %s", ErrUnknownBucket, name)
	}
	return b, nil
}

// Validate confirms that every given bucket name exists in the registry.
// Called at route-registration time so that misconfigured routes fail at
// startup instead of on the first request.
func (r *Registry) Validate(names ...string) error {
	for _, name := range names {
		if _, err := r.LimitFor(name); err != nil {
			return err
		}
	}
	return nil
}
