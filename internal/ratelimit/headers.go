package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// Headers is the typed rate-limit header set derived from a bucket's limit
// and a counter record. Remaining and ResetAfter are signed on purpose:
// once a client is over limit, Remaining goes negative and is surfaced
// verbatim, and ResetAfter goes negative once a window has lapsed.
type Headers struct {
	Limit      int
	Count      int
	Remaining  int
	Reset      int64 // epoch seconds
	ResetAfter int64 // seconds until reset
	Bucket     string
	Limited    bool  // currently over limit
	RetryAfter int64 // meaningful only when Limited
}

// NewHeaders derives the header set for a record at the given time. The
// bucket name is taken from the record; leave it empty for the anonymous
// mode, which omits the bucket header.
func NewHeaders(limit int, rec Record, now time.Time) Headers {
	resetAfter := rec.Expires - now.Unix()
	limited := rec.Expires > now.Unix() && rec.Hits > limit

	return Headers{
		Limit:      limit,
		Count:      rec.Hits,
		Remaining:  limit - rec.Hits,
		Reset:      rec.Expires,
		ResetAfter: resetAfter,
		Bucket:     rec.Bucket,
		Limited:    limited,
		RetryAfter: resetAfter,
	}
}

// Apply writes the standard rate-limit headers. Retry-After is only set
// while the client is actively over limit, and the bucket header is only
// set when a bucket name is present.
func (h Headers) Apply(header http.Header) {
	header.Set("X-RateLimit-Limit", strconv.Itoa(h.Limit))
	header.Set("X-RateLimit-Count", strconv.Itoa(h.Count))
	header.Set("X-RateLimit-Remaining", strconv.Itoa(h.Remaining))
	header.Set("X-RateLimit-Reset", strconv.FormatInt(h.Reset, 10))
	header.Set("X-RateLimit-Reset-After", strconv.FormatInt(h.ResetAfter, 10))
	if h.Bucket != "" {
		header.Set("X-RateLimit-Bucket", h.Bucket)
	}
	if h.Limited {
		header.Set("Retry-After", strconv.FormatInt(h.RetryAfter, 10))
	}
}
