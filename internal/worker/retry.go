package worker

import (
	"math"
	"time"
)

// RetryPolicy defines exponential backoff parameters for export attempts.
// Zero-valued fields take the defaults from normalized.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// normalized fills unset fields so a zero policy is usable: three attempts,
// 2s initial delay doubling up to a minute.
func (r RetryPolicy) normalized() RetryPolicy {
	if r.MaxRetries <= 0 {
		r.MaxRetries = 3
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = 2 * time.Second
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = time.Minute
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}
	return r
}

// NextDelay returns the delay for a given attempt (1-based) with clamping.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	r = r.normalized()

	d := time.Duration(float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1)))
	if d > r.MaxDelay || d <= 0 {
		d = r.MaxDelay
	}
	return d
}
