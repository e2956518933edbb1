package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	assert.Equal(t, DeriveKey("203.0.113.7", "create"), DeriveKey("203.0.113.7", "create"))
	assert.Equal(t, DeriveKey("2001:db8::1", "global"), DeriveKey("2001:db8::1", "global"))
}

func TestDeriveKey_DistinctInputs(t *testing.T) {
	a := DeriveKey("203.0.113.7", "create")
	assert.NotEqual(t, a, DeriveKey("203.0.113.7", "delete"))
	assert.NotEqual(t, a, DeriveKey("203.0.113.8", "create"))
}

func TestDeriveKey_FixedLengthHex(t *testing.T) {
	key := DeriveKey("203.0.113.7", "global")
	assert.Len(t, key, 64)
	for _, c := range key {
		assert.Contains(t, "0123456789abcdef", string(c))
	}
}

func TestDeriveKey_KnownValue(t *testing.T) {
	// sha256("127.0.0.1:global")
	assert.Equal(t,
		"720b11a58700c6cff968d917dce6fbb0bfd150e9abef8601f27647f60841954a",
		DeriveKey("127.0.0.1", "global"))
}
