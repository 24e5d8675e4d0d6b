package pagelens

import (
	"math"
	"time"
)

// Retry policy defaults.
const (
	DefaultRetryMinWait    = 2 * time.Second
	DefaultRetryMaxWait    = 10 * time.Second
	DefaultRetryMultiplier = 1.0
)

// RetryPolicy describes how many times an operation is attempted and how long
// to wait between attempts. The wait before attempt i+1 is
// clamp(Multiplier × 2^(i-1) seconds, MinWait, MaxWait).
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts. Zero means exactly one.
	MaxAttempts int

	MinWait    time.Duration
	MaxWait    time.Duration
	Multiplier float64
}

// DefaultRetryPolicy returns the default policy: 3 attempts, waits of 2s to 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxRetries,
		MinWait:     DefaultRetryMinWait,
		MaxWait:     DefaultRetryMaxWait,
		Multiplier:  DefaultRetryMultiplier,
	}
}

// Attempts returns the number of attempts the policy allows, at least one.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Wait returns the pause after the given 1-based attempt failed.
func (p RetryPolicy) Wait(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	secs := p.Multiplier * math.Pow(2, float64(attempt-1))
	wait := time.Duration(secs * float64(time.Second))
	// Overflow for large attempt numbers lands on MaxWait.
	if math.IsInf(secs, 0) || secs > math.MaxInt64/float64(time.Second) {
		wait = p.MaxWait
	}
	if wait < p.MinWait {
		wait = p.MinWait
	}
	if p.MaxWait > 0 && wait > p.MaxWait {
		wait = p.MaxWait
	}
	return wait
}

// Validate returns an error if the policy cannot be applied.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 0 {
		return Errorf(EINVALID, "max attempts cannot be negative")
	}
	if p.MinWait < 0 || p.MaxWait < 0 {
		return Errorf(EINVALID, "retry waits cannot be negative")
	}
	if p.MaxWait > 0 && p.MinWait > p.MaxWait {
		return Errorf(EINVALID, "minimum wait %s exceeds maximum wait %s", p.MinWait, p.MaxWait)
	}
	return nil
}
