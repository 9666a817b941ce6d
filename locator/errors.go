package locator

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy is returned by BuildWith for names missing from the registry.
var ErrUnknownStrategy = errors.New("locator: unknown strategy")

// StrategyError records a strategy that returned an error or panicked.
// Builders log it and move on to the next strategy.
type StrategyError struct {
	Strategy string
	Cause    error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("locator: strategy %s failed: %v", e.Strategy, e.Cause)
}

func (e *StrategyError) Unwrap() error { return e.Cause }
