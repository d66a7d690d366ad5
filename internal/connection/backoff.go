package connection

import (
	"math"
	"time"
)

// Policy bounds reconnection: attempt n waits BaseDelay*Factor^(n-1),
// capped at MaxDelay, and no more than MaxAttempts retries are made before
// giving up.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
	MaxDelay    time.Duration
}

// DefaultPolicy retries five times starting at 3s, growing by 1.5x up to 15s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   3 * time.Second,
		Factor:      1.5,
		MaxDelay:    15 * time.Second,
	}
}

// Delay returns the wait before the given 1-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(math.Round(delay))
}

// Schedule lists the delay for every attempt the policy allows.
func (p Policy) Schedule() []time.Duration {
	delays := make([]time.Duration, 0, p.MaxAttempts)
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		delays = append(delays, p.Delay(attempt))
	}
	return delays
}
