// SPDX-License-Identifier: MPL-2.0

package serialize

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/packforge/packforge/pkg/filetree"

	"github.com/charmbracelet/log"
)

const (
	// Abort stops reading at the first entry that fails to decode.
	Abort ErrorPolicy = iota
	// Skip logs a warning for every entry that fails to decode, keeps its
	// bytes as an unrecognized file, and carries on.
	Skip
)

// ErrInvalidErrorPolicy is the sentinel error wrapped by InvalidErrorPolicyError.
var ErrInvalidErrorPolicy = errors.New("invalid error policy")

type (
	// ErrorPolicy decides what a decode failure does to the rest of a read.
	ErrorPolicy int

	// InvalidErrorPolicyError is returned when a policy name is not recognized.
	InvalidErrorPolicyError struct {
		Value string
	}

	// ReadOptions configures a Reader.
	ReadOptions struct {
		// Format selects the folder layout used to classify paths. Zero means
		// the format declared by pack.mcmeta, or the latest layout when the
		// pack has no descriptor. A negative value always means the latest
		// layout.
		Format int
		// Policy handles entries that fail to decode.
		Policy ErrorPolicy
		// Lenient accepts JSON with comments and trailing commas.
		Lenient bool
		// Workers bounds the number of entries decoded concurrently.
		// Zero or less means GOMAXPROCS.
		Workers int
		// Logger receives progress and warnings. Nil discards them.
		Logger *log.Logger
	}

	// WriteOptions configures a Writer.
	WriteOptions struct {
		// Logger receives progress. Nil discards it.
		Logger *log.Logger
		// ZipOptions are applied when the helpers create an archive.
		ZipOptions []filetree.ZipOption
	}
)

// ParseErrorPolicy resolves a policy from its name: "abort" or "skip".
func ParseErrorPolicy(name string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "abort":
		return Abort, nil
	case "skip":
		return Skip, nil
	default:
		return 0, &InvalidErrorPolicyError{Value: name}
	}
}

// String returns the policy name.
func (p ErrorPolicy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ErrorPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseErrorPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Error implements the error interface.
func (e *InvalidErrorPolicyError) Error() string {
	return fmt.Sprintf("invalid error policy %q (valid: abort, skip)", e.Value)
}

// Unwrap returns ErrInvalidErrorPolicy for errors.Is() compatibility.
func (e *InvalidErrorPolicyError) Unwrap() error { return ErrInvalidErrorPolicy }

func (o ReadOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

func (o ReadOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o WriteOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}
