// Package diagnostics is the code generator's single abort path (spec.md
// §7): well-typed input never reaches it, so every Bug call represents a
// programming error, not a user-facing compile error. A violation raised
// through At carries a line/column location (Bug carries none), and a
// caught panic prints as an ordinary error message a developer can act on
// instead of a bare Go stack trace.
package diagnostics

import (
	"fmt"
)

// Location is a source position, propagated from an AST node's Span when
// one is available. It is informational only; Bug never requires it.
type Location struct {
	Line, Column int
}

// InvariantViolation is the panic value raised by Bug. It is never
// recovered inside internal/codegen — it is recovered only at the top of a
// call stack: internal/program recovers it in each goroutine that lowers a
// function body and returns it as Lower's error, and cmd/lattec recovers
// any raised on its own goroutine, to print it cleanly.
type InvariantViolation struct {
	Message  string
	Location *Location
}

func (e *InvariantViolation) Error() string {
	if e.Location == nil {
		return "invariant violation: " + e.Message
	}
	return fmt.Sprintf("invariant violation at %d:%d: %s", e.Location.Line, e.Location.Column, e.Message)
}

// Bug raises an InvariantViolation with no location context. Use At when a
// source span is available.
func Bug(format string, args ...interface{}) {
	panic(&InvariantViolation{Message: fmt.Sprintf(format, args...)})
}

// At raises an InvariantViolation carrying a source location.
func At(loc Location, format string, args ...interface{}) {
	panic(&InvariantViolation{Message: fmt.Sprintf(format, args...), Location: &loc})
}

// Recover turns a panicking InvariantViolation into an error, for a
// top-level recover point (cmd/lattec, and each lowering goroutine in
// internal/program). It re-panics anything else, since
// only InvariantViolation is an expected abort shape here.
func Recover(rec interface{}) error {
	if rec == nil {
		return nil
	}
	if iv, ok := rec.(*InvariantViolation); ok {
		return iv
	}
	panic(rec)
}
