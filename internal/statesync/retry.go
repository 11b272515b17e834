package statesync

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy controls the delay between failed polls. Delays grow from
// Initial by Multiplier up to Max and reset after the next good response.
// The loop never gives up.
type RetryPolicy struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	// Jitter randomizes each delay by up to this fraction (0 disables).
	Jitter float64
}

// DefaultRetryPolicy waits 1s, 2s, 4s ... capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Initial:    time.Second,
		Max:        30 * time.Second,
		Multiplier: 2,
	}
}

// newBackOff builds the backoff sequence for one Run.
func (p RetryPolicy) newBackOff() backoff.BackOff {
	def := DefaultRetryPolicy()
	if p.Initial <= 0 {
		p.Initial = def.Initial
	}
	if p.Max < p.Initial {
		p.Max = p.Initial
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	if p.Jitter < 0 || p.Jitter >= 1 {
		p.Jitter = 0
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.MaxInterval = p.Max
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
