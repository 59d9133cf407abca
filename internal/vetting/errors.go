package vetting

import (
	"errors"
	"fmt"
)

// ErrNilProfile is returned when a report or score is requested without a client profile.
var ErrNilProfile = errors.New("client profile is required")

// ConfigError reports an invalid scoring configuration.
// It is surfaced at construction time and should be treated as fatal.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("scoring config: %s: %s", e.Field, e.Reason)
}

// InvariantError reports corrupt upstream data (e.g. more hires than posted jobs).
// The engine surfaces it instead of silently clamping, since clamping would
// hide a data-quality bug in the scraping pipeline.
type InvariantError struct {
	Field string
	Value int
	Limit int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %s = %d exceeds %d", e.Field, e.Value, e.Limit)
}
