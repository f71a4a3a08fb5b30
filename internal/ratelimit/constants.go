// Package ratelimit derives client-side pacing from the platform's rate limits.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/constants"
)

// Commerce Layer API Throttle Limits
//
// Every organization is throttled on two independent windows: a short burst window and
// a longer average window. A client that stays under both never sees a 429.
//
// Non-cacheable endpoints (exports create/retrieve/list):
//   - burst:   50 requests / 10 seconds
//   - average: 200 requests / 60 seconds
//
// The poll loop does not react to 429 responses. It paces itself with ComputeDelay,
// which is always at least as slow as the stricter window.

// RateBudget is one request-rate ceiling: at most MaxRequests every WindowSeconds.
type RateBudget struct {
	MaxRequests   int
	WindowSeconds int
}

// PerRequest returns the spacing between requests that keeps a client inside this budget,
// rounded up to the next whole millisecond.
func (b RateBudget) PerRequest() time.Duration {
	windowMs := int64(b.WindowSeconds) * 1000
	n := int64(b.MaxRequests)
	// integer ceiling: float division turns 10000/50 into 200.00000000000003
	return time.Duration((windowMs+n-1)/n) * time.Millisecond
}

// RatePerSec returns the sustained request rate allowed by this budget.
func (b RateBudget) RatePerSec() float64 {
	return float64(b.MaxRequests) / float64(b.WindowSeconds)
}

func (b RateBudget) validate(name string) error {
	if b.MaxRequests <= 0 {
		return fmt.Errorf("%s budget: max requests must be positive, got %d", name, b.MaxRequests)
	}
	if b.WindowSeconds <= 0 {
		return fmt.Errorf("%s budget: window seconds must be positive, got %d", name, b.WindowSeconds)
	}
	return nil
}

// Budgets pairs the burst and average ceilings. It is immutable configuration:
// callers pass it by value and nothing in this package keeps a copy.
type Budgets struct {
	Burst   RateBudget
	Average RateBudget
}

// DefaultBudgets returns the platform's documented limits.
func DefaultBudgets() Budgets {
	return Budgets{
		Burst:   RateBudget{MaxRequests: constants.RequestsMaxNumBurst, WindowSeconds: constants.RequestsMaxSecsBurst},
		Average: RateBudget{MaxRequests: constants.RequestsMaxNumAvg, WindowSeconds: constants.RequestsMaxSecsAvg},
	}
}

// Validate checks that both budgets describe a usable rate.
func (b Budgets) Validate() error {
	if err := b.Burst.validate("burst"); err != nil {
		return err
	}
	return b.Average.validate("average")
}

// ComputeDelay returns the wait between two status polls:
// ceil(max(burst per-request delay, average per-request delay) * 1000) milliseconds.
//
// Example: burst 5 req/2s (400ms) and average 100 req/60s (600ms) give 600ms.
func (b Budgets) ComputeDelay() time.Duration {
	burst, avg := b.Burst.PerRequest(), b.Average.PerRequest()
	if burst > avg {
		return burst
	}
	return avg
}
