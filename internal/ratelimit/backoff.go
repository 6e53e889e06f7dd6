package ratelimit

import (
	"math"
	"math/rand/v2"
	"time"

	"sheets_quota_client/internal/config"
)

// Backoff computes retry delays:
// min(InitialWait * Multiplier^attempt + U(0, Jitter), MaxWait).
type Backoff struct {
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	Jitter      time.Duration
	// rand returns a value in [0, 1); nil uses math/rand/v2.
	rand func() float64
}

// NewBackoff builds a Backoff from a RetryConfig.
func NewBackoff(cfg config.RetryConfig) Backoff {
	return Backoff{
		InitialWait: cfg.InitialWait,
		MaxWait:     cfg.MaxWait,
		Multiplier:  cfg.Multiplier,
		Jitter:      cfg.Jitter,
	}
}

// Delay returns the wait before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	mult := b.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(b.InitialWait) * math.Pow(mult, float64(attempt))
	if b.Jitter > 0 {
		r := rand.Float64
		if b.rand != nil {
			r = b.rand
		}
		d += r() * float64(b.Jitter)
	}
	if math.IsInf(d, 0) || math.IsNaN(d) || d > float64(b.MaxWait) {
		return b.MaxWait
	}
	return time.Duration(d)
}

// RetryState tracks one logical request from its first retryable failure
// until it succeeds or runs out of retries.
type RetryState struct {
	Attempt   int // retries scheduled so far
	NextDelay time.Duration
	LastErr   error
}
