package paste

import (
	"errors"
	"fmt"
)

// ErrParse is returned (wrapped in a *ParseError) when input cannot be parsed.
var ErrParse = errors.New("html parse failed")

// ErrInputTooLarge is returned when input exceeds Config.MaxInputBytes.
var ErrInputTooLarge = errors.New("input exceeds maximum size")

// ErrNodeNotFound is returned when an operation's anchor node is not attached.
var ErrNodeNotFound = errors.New("node not attached to fragment")

// ErrNoMutator is returned by Paster.Paste when no DocumentMutator is configured.
var ErrNoMutator = errors.New("no document mutator configured")

// ParseError describes why a payload could not be parsed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %v", ErrParse, e.Err)
}

// Unwrap lets errors.Is match both ErrParse and the underlying cause.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Kind classifies a reported problem.
type Kind string

const (
	// KindParseFailure marks input that could not be parsed and was wrapped
	// as a single paragraph instead.
	KindParseFailure Kind = "parse_failure"
	// KindStructuralViolation marks an internal invariant that failed.
	KindStructuralViolation Kind = "structural_violation"
)
