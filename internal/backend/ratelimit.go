package backend

import (
	"golang.org/x/time/rate"
)

// newLimiter creates a rate limiter, falling back to defaults for unset values.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
