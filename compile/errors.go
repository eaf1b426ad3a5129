// Package compile lowers a nfa.NFA into a self-contained WebAssembly module
// whose exported is_match function decides match/no-match for a haystack
// written into the module's linear memory.
//
// The package is organized the way nfa.Compiler organizes regex-to-NFA
// compilation: a dense state encoding (encoding.go), epsilon-closure
// precomputation (closure.go), a look-around evaluator (lookaround.go),
// per-state transition lowering (transition.go), a driver function emitter
// (driver.go), and a top-level orchestrator (compile.go) tying them together
// behind one Compile(pattern) entry point.
package compile

import (
	"errors"
	"fmt"
)

// Sentinel errors, mirroring nfa/error.go's taxonomy.
var (
	// ErrParse indicates the pattern could not be parsed into an NFA.
	ErrParse = errors.New("pattern parse failed")

	// ErrUnsupportedFeature indicates the NFA uses a construct the WASM
	// lowering does not implement (e.g. StateRuneAny/StateRuneAnyNotNL states).
	ErrUnsupportedFeature = errors.New("unsupported feature for WASM lowering")

	// ErrInternal indicates a lowering invariant was violated; this is a
	// bug in the compiler, not a problem with the input pattern.
	ErrInternal = errors.New("internal compiler error")

	// ErrMemory indicates the compiled module would require more linear
	// memory than the compiler is willing to statically allocate.
	ErrMemory = errors.New("pattern requires too much memory to compile")
)

// ParseError wraps a pattern that failed to parse.
type ParseError struct {
	Pattern string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("compile: failed to parse pattern %q: %v", e.Pattern, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedFeatureError names the specific NFA construct that could not be lowered.
type UnsupportedFeatureError struct {
	Feature string
	Detail  string
}

func (e *UnsupportedFeatureError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("compile: unsupported feature %s: %s", e.Feature, e.Detail)
	}
	return fmt.Sprintf("compile: unsupported feature %s", e.Feature)
}

func (e *UnsupportedFeatureError) Unwrap() error { return ErrUnsupportedFeature }

// InternalError wraps an unexpected lowering failure with context about
// where it happened.
type InternalError struct {
	Stage string
	Err   error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("compile: internal error in %s: %v", e.Stage, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

// MemoryError reports that the computed linear-memory footprint exceeds the
// configured limit.
type MemoryError struct {
	RequestedBytes uint32
	LimitBytes     uint32
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("compile: module requires %d bytes of memory, limit is %d", e.RequestedBytes, e.LimitBytes)
}

func (e *MemoryError) Unwrap() error { return ErrMemory }
