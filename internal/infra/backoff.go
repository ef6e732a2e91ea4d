package infra

import (
	"math"
	"time"
)

const (
	DefaultBaseDelay = 1 * time.Second
	DefaultMaxDelay  = 30 * time.Second
)

// CalculateBackoff returns base * 2^retryCount, capped at max.
func CalculateBackoff(retryCount int, base, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	// Cap retry count to prevent overflow
	if retryCount > 16 {
		return max
	}
	delay := base * time.Duration(math.Pow(2, float64(retryCount)))
	if delay > max {
		delay = max
	}
	return delay
}
