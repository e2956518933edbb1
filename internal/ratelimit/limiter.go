// Package ratelimit implements per-client, per-bucket request limiting for
// the embed API using approximate fixed-window counters. Counter state
// lives in an external key-value store keyed by a one-way hash of the
// client address; the in-process code is stateless apart from the per-key
// locks that serialize each counter's read-modify-write.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result is the gate's decision for one request, carrying the header set
// either way: allowed responses merge the headers, rejected responses send
// them on the 429.
type Result struct {
	Allowed bool
	Headers Headers
}

// Limiter combines the bucket registry, the counter store, and the window
// algorithm. It is safe for concurrent use; counters for distinct
// (client, bucket) keys are fully independent, while operations on the
// same key are serialized by an in-process lock.
type Limiter struct {
	registry *Registry
	store    CounterStore
	now      func() time.Time
	failOpen bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the limiter's time source. Used by tests to lapse
// windows without sleeping.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithFailOpen sets the policy for counter-store outages during a request:
// fail-open serves traffic unlimited, fail-closed (the default) rejects it.
func WithFailOpen(failOpen bool) Option {
	return func(l *Limiter) {
		l.failOpen = failOpen
	}
}

// New creates a Limiter over the given registry and store.
func New(registry *Registry, store CounterStore, opts ...Option) *Limiter {
	l := &Limiter{
		registry: registry,
		store:    store,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the limiter's bucket registry.
func (l *Limiter) Registry() *Registry {
	return l.registry
}

// FailOpen reports the configured store-outage policy.
func (l *Limiter) FailOpen() bool {
	return l.failOpen
}

// keyLock returns the mutex serializing operations on one counter key.
// Locks are never evicted; the set of keys is bounded by distinct
// (client, bucket) pairs seen by this process, same as the store itself.
func (l *Limiter) keyLock(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}

// State reads the current counter record without mutating it. A client
// that has never been seen yields an empty record. Repeated calls without
// an intervening Update return identical records.
func (l *Limiter) State(ctx context.Context, clientIP, bucket string) (Record, error) {
	if _, err := l.registry.LimitFor(bucket); err != nil {
		return Record{}, err
	}

	rec, ok, err := l.store.Read(ctx, DeriveKey(clientIP, bucket))
	if err != nil {
		return Record{}, err
	}
	if !ok {
		rec = Record{}
	}
	rec.Bucket = bucket
	return rec, nil
}

// Update counts one hit for (clientIP, bucket) and returns the record as
// written. A lapsed or empty window is reset before counting, and a fresh
// window's expiry is stamped now + window. The whole read-modify-write runs
// under the key's lock; without it, concurrent requests from the same
// client would lose updates.
func (l *Limiter) Update(ctx context.Context, clientIP, bucket string) (Record, error) {
	b, err := l.registry.LimitFor(bucket)
	if err != nil {
		return Record{}, err
	}

	key := DeriveKey(clientIP, bucket)
	lock := l.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	rec, ok, err := l.store.Read(ctx, key)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		rec = Record{}
	}

	now := l.now().Unix()
	if rec.Expires <= now {
		rec.Hits = 0
		rec.Expires = 0
	}
	rec.Hits++
	if rec.Expires == 0 {
		rec.Expires = now + int64(b.Window/time.Second)
	}
	rec.Bucket = bucket

	if err := l.store.Write(ctx, key, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Check counts the request against its bucket and decides whether it is
// over limit: rejected iff the window is still active and strictly more
// than the bucket's limit has been counted, so the limit-th hit itself is
// still allowed. Counting happens before the decision; the request that
// tips a bucket over the limit is the first one rejected, and its own hit
// is what pushed Remaining negative.
func (l *Limiter) Check(ctx context.Context, clientIP, bucket string) (Result, error) {
	b, err := l.registry.LimitFor(bucket)
	if err != nil {
		return Result{}, err
	}

	rec, err := l.Update(ctx, clientIP, bucket)
	if err != nil {
		return Result{}, err
	}

	headers := NewHeaders(b.Limit, rec, l.now())
	return Result{
		Allowed: !headers.Limited,
		Headers: headers,
	}, nil
}

// Remove deletes the counter for (clientIP, bucket). Administrative use
// only; counters normally just lapse.
func (l *Limiter) Remove(ctx context.Context, clientIP, bucket string) error {
	if _, err := l.registry.LimitFor(bucket); err != nil {
		return err
	}
	return l.store.Delete(ctx, DeriveKey(clientIP, bucket))
}

// Ping reports whether the counter store is reachable.
func (l *Limiter) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}
