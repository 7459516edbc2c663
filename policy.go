package rebuild

import (
	"fmt"
	"time"
)

// Default retry settings: five retries (six attempts) two seconds apart.
const (
	DefaultMaxRetries = 5
	DefaultRetryDelay = 2000 * time.Millisecond
)

// Policy holds the retry settings for module-not-found failures.
// The delay is fixed; it does not grow between attempts.
type Policy struct {
	MaxRetries int           // retries after the first failed attempt
	Delay      time.Duration // wait before each retry
}

// DefaultPolicy returns the default policy (5 retries, 2s).
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, Delay: DefaultRetryDelay}
}

// MaxAttempts is the total number of attempts the policy allows.
func (p Policy) MaxAttempts() int {
	return p.MaxRetries + 1
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if p.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	return nil
}
