package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeriveKey maps a client address and bucket name to the counter-store key.
// It hashes so that addresses are never persisted in the clear; this is a
// privacy measure, not a security boundary, so no salt is used and the
// mapping is deliberately deterministic.
func DeriveKey(clientIP, bucket string) string {
	sum := sha256.Sum256([]byte(clientIP + ":" + bucket))
	return hex.EncodeToString(sum[:])
}
