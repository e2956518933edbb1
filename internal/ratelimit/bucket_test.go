package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Defaults(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)

	tests := []struct {
		bucket string
		limit  int
		window time.Duration
	}{
		{"global", 60, 30 * time.Second},
		{"generate", 30, 30 * time.Second},
		{"create", 10, 60 * time.Second},
		{"update", 10, 60 * time.Second},
		{"delete", 15, 60 * time.Second},
	}

	for _, tt := range tests {
		b, err := reg.LimitFor(tt.bucket)
		require.NoError(t, err, "bucket %s", tt.bucket)
		assert.Equal(t, tt.limit, b.Limit, "bucket %s limit", tt.bucket)
		assert.Equal(t, tt.window, b.Window, "bucket %s window", tt.bucket)
	}
}

func TestNewRegistry_OverrideReplacesTable(t *testing.T) {
	reg, err := NewRegistry([]Bucket{
		{Name: "api", Limit: 5, Window: 10 * time.Second},
	})
	require.NoError(t, err)

	b, err := reg.LimitFor("api")
	require.NoError(t, err)
	assert.Equal(t, 5, b.Limit)

	// Supplying any override replaces the entire table, defaults included.
	_, err = reg.LimitFor("global")
	assert.ErrorIs(t, err, ErrUnknownBucket)
}

func TestNewRegistry_RejectsInvalidBuckets(t *testing.T) {
	tests := []struct {
		name    string
		buckets []Bucket
	}{
		{"empty name", []Bucket{{Name: "", Limit: 1, Window: time.Second}}},
		{"zero limit", []Bucket{{Name: "a", Limit: 0, Window: time.Second}}},
		{"negative limit", []Bucket{{Name: "a", Limit: -1, Window: time.Second}}},
		{"zero window", []Bucket{{Name: "a", Limit: 1, Window: 0}}},
		{"duplicate", []Bucket{
			{Name: "a", Limit: 1, Window: time.Second},
			{Name: "a", Limit: 2, Window: time.Second},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.buckets)
			assert.Error(t, err)
		})
	}
}

func TestRegistry_LimitFor_Unknown(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)

	_, err = reg.LimitFor("nope")
	assert.ErrorIs(t, err, ErrUnknownBucket)
	assert.Contains(t, err.Error(), "nope")
}

func TestRegistry_Validate(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)

	assert.NoError(t, reg.Validate("global", "create", "delete"))
	assert.ErrorIs(t, reg.Validate("global", "missing"), ErrUnknownBucket)
}
