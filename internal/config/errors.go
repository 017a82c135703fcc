package config

import (
	"errors"
	"fmt"
)

// ErrConflictingNextVersion is returned when next-version is configured and
// a legacy NextVersion.txt is also present.
var ErrConflictingNextVersion = errors.New("next-version is set in configuration and in " + LegacyNextVersionFile)

// Error is a fatal configuration problem. Key is the offending setting,
// e.g. "branches.feature.regex".
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return "configuration: " + e.Err.Error()
	}
	return fmt.Sprintf("configuration %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err carries an *Error.
func IsConfigurationError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}
