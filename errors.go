// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

import "fmt"

// A LexError reports malformed input at the tokenization stage.
type LexError struct {
	Msg string
	Pos Pos
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Msg)
}

// A ParseError reports the first grammar violation encountered.
// Parsing is fail-fast: no recovery is attempted.
type ParseError struct {
	Expected string
	Found    string
	Pos      Pos
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

// ElabErrKind discriminates elaboration failures.
type ElabErrKind int

// Elaboration error kinds.
const (
	ErrUnresolvedReference ElabErrKind = iota
	ErrWidthMismatch
	ErrMultipleDrivers
	ErrUnsupportedWidth
)

func (k ElabErrKind) String() string {
	switch k {
	case ErrUnresolvedReference:
		return "unresolved reference"
	case ErrWidthMismatch:
		return "width mismatch"
	case ErrMultipleDrivers:
		return "multiple drivers"
	default:
		return "unsupported width"
	}
}

// An ElabError reports a structural error found during elaboration. It
// names the offending signal and, where applicable, the blocks
// involved.
type ElabError struct {
	Kind   ElabErrKind
	Signal string
	Blocks []string
	Msg    string
	Pos    Pos
}

func (e *ElabError) Error() string {
	s := fmt.Sprintf("elaboration error at %s: %s", e.Pos, e.Kind)
	if e.Signal != "" {
		s += ": signal " + e.Signal
	}
	for _, b := range e.Blocks {
		s += ", " + b
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// SimErrKind discriminates simulation failures.
type SimErrKind int

// Simulation error kinds.
const (
	// ErrNoConvergence reports a combinational loop that failed to
	// settle within the delta-cycle iteration cap.
	ErrNoConvergence SimErrKind = iota
	// ErrUnknownSignal reports a stimulus event naming a signal that
	// does not exist in the design.
	ErrUnknownSignal
)

// A SimError reports a fatal runtime failure. The run it aborts is not
// resumable.
type SimError struct {
	Kind   SimErrKind
	Time   uint64
	Signal string
}

func (e *SimError) Error() string {
	switch e.Kind {
	case ErrNoConvergence:
		return fmt.Sprintf("simulation error at t=%d: combinational logic did not converge", e.Time)
	default:
		return fmt.Sprintf("simulation error: unknown stimulus signal %q", e.Signal)
	}
}
