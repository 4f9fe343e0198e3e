package api

import (
	"fmt"
	"time"
)

// TTL is the time-to-live of persisted wizard data in time-bounded
// repository backends. It is an immutable non-negative duration with
// second granularity.
type TTL struct {
	seconds int
}

// TTLFromSeconds constructs a TTL. Negative values are rejected.
func TTLFromSeconds(seconds int) (TTL, error) {
	if seconds < 0 {
		return TTL{}, fmt.Errorf("ttl must not be negative, got %d", seconds)
	}
	return TTL{seconds: seconds}, nil
}

// MustTTL is TTLFromSeconds that panics on invalid input. Intended for
// package-level configuration where the value is a constant.
func MustTTL(seconds int) TTL {
	ttl, err := TTLFromSeconds(seconds)
	if err != nil {
		panic("wizard: " + err.Error())
	}
	return ttl
}

// Seconds round-trips the TTL back to seconds.
func (t TTL) Seconds() int { return t.seconds }

// Duration returns the TTL as a time.Duration.
func (t TTL) Duration() time.Duration { return time.Duration(t.seconds) * time.Second }

// ExpiresAfter returns the cutoff instant for expiry sweeps: records last
// touched before now-TTL are expired.
func (t TTL) ExpiresAfter() time.Time {
	return time.Now().Add(-t.Duration())
}
