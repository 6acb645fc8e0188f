// SPDX-License-Identifier: MPL-2.0

package merge

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Override resolves every collision in favor of the other side.
	Override Strategy = iota
	// FailOnError combines structural kinds and rejects any other collision.
	FailOnError
	// KeepFirstOnError combines structural kinds and keeps the base side for
	// any other collision.
	KeepFirstOnError
)

// ErrInvalidStrategy is the sentinel error wrapped by InvalidStrategyError.
var ErrInvalidStrategy = errors.New("invalid merge strategy")

var strategyNames = map[Strategy]string{
	Override:         "override",
	FailOnError:      "merge-fail-on-error",
	KeepFirstOnError: "merge-keep-first-on-error",
}

type (
	// Strategy selects how collisions are resolved. It applies uniformly to
	// every category of a merge.
	Strategy int

	// InvalidStrategyError is returned when a strategy name is not recognized.
	InvalidStrategyError struct {
		Value string
	}
)

// Strategies returns the names of every strategy.
func Strategies() []string {
	return []string{strategyNames[Override], strategyNames[FailOnError], strategyNames[KeepFirstOnError]}
}

// ParseStrategy resolves a strategy from its name. Names are matched
// case-insensitively and underscores are accepted in place of hyphens.
func ParseStrategy(name string) (Strategy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for s, n := range strategyNames {
		if n == normalized {
			return s, nil
		}
	}
	return 0, &InvalidStrategyError{Value: name}
}

// String returns the strategy name.
func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if _, ok := strategyNames[s]; !ok {
		return nil, &InvalidStrategyError{Value: s.String()}
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Error implements the error interface.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid merge strategy %q (valid: %s)", e.Value, strings.Join(Strategies(), ", "))
}

// Unwrap returns ErrInvalidStrategy for errors.Is() compatibility.
func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }
