// Package compile lowers a Thompson NFA (package nfa) into a self-contained
// WebAssembly module (package ir) whose is_match export decides match or
// no-match for a haystack the host has written into linear memory.
//
// The files mirror the spec components: encoding.go assigns dense state
// ids (component C), transition.go lowers byte-consuming states into edges
// (D), closure.go precomputes epsilon closures (E), driver.go emits the
// is_match/prepare_input functions (F), lookaround.go emits the look-around
// evaluator (G), and this file is the orchestrator (H) that wires them all
// into one Module and encodes it.
package compile

import (
	"github.com/coregx/wahgex/internal/conv"
	"github.com/coregx/wahgex/ir"
	"github.com/coregx/wahgex/nfa"
)

// maxBitmapBytes bounds how large a single current/next state bitmap may
// grow before compilation is rejected: two bitmaps must fit comfortably
// inside page 0, leaving ir.HaystackBase (the start of page 1) as the
// haystack's fixed address.
const maxBitmapBytes = ir.HaystackBase / 2

// defaultMemoryPages reserves page 0 for the state bitmaps and page 1
// onward for the haystack the host writes before calling is_match. Larger
// haystacks are the host's responsibility to grow into before writing.
const defaultMemoryPages = 2

// Option configures a Compile call.
type Option func(*options)

type options struct {
	config nfa.CompilerConfig
}

// WithUTF8 controls whether the pattern respects UTF-8 codepoint boundaries.
// Defaults to true, matching nfa.DefaultCompilerConfig.
func WithUTF8(enabled bool) Option {
	return func(o *options) { o.config.UTF8 = enabled }
}

// WithAnchored forces the pattern to match only at the start of the haystack.
func WithAnchored(anchored bool) Option {
	return func(o *options) { o.config.Anchored = anchored }
}

// WithDotNewline controls whether '.' matches '\n'.
func WithDotNewline(enabled bool) Option {
	return func(o *options) { o.config.DotNewline = enabled }
}

// WithASCIIOnly compiles '.' and Unicode classes down to ASCII-only byte
// ranges, trading Unicode coverage for a smaller NFA and module.
func WithASCIIOnly(enabled bool) Option {
	return func(o *options) { o.config.ASCIIOnly = enabled }
}

// Compile lowers pattern into a WASM module implementing is_match for it.
func Compile(pattern string, opts ...Option) (*CompileResult, error) {
	o := &options{config: nfa.DefaultCompilerConfig()}
	for _, opt := range opts {
		opt(o)
	}

	n, err := nfa.NewCompiler(o.config).Compile(pattern)
	if err != nil {
		return nil, &ParseError{Pattern: pattern, Err: err}
	}

	enc, err := BuildEncoding(n)
	if err != nil {
		return nil, err
	}
	if enc.BitmapBytes() > maxBitmapBytes {
		return nil, &MemoryError{
			RequestedBytes: enc.BitmapBytes() * 2,
			LimitBytes:     maxBitmapBytes * 2,
		}
	}

	seeds, err := CollectSeeds(n, enc)
	if err != nil {
		return nil, err
	}
	closures, err := BuildClosures(n, enc, seeds)
	if err != nil {
		return nil, err
	}

	transitions := make(map[uint32][]ByteEdge, enc.NumStates())
	for d := 0; d < enc.NumStates(); d++ {
		dense := conv.IntToUint32(d)
		id := enc.fromDense[dense]
		st := n.State(id)
		if st.Kind() == nfa.StateMatch {
			continue
		}
		edges, err := TransitionsOf(st)
		if err != nil {
			return nil, err
		}
		transitions[dense] = edges
	}

	usedLooks := closures.UsedLooks()

	// has_empty and lookset_prefix_any both come from the start closure
	// alone: whether it reaches an accept state without consuming a byte,
	// and which look-around kinds gate that reach.
	startSeed := n.StartUnanchored()
	if n.IsAnchored() {
		startSeed = n.StartAnchored()
	}
	var hasEmpty bool
	var looksetPrefixAny LookSet
	for _, edge := range closures.Edges(startSeed) {
		looksetPrefixAny |= edge.Require
		for _, t := range edge.Targets {
			if enc.IsMatch(t) {
				hasEmpty = true
			}
		}
	}

	cfg := &DriverConfig{
		NFA:          n,
		Enc:          enc,
		Closures:     closures,
		Transitions:  transitions,
		UsedLooks:    usedLooks,
		HaystackBase: ir.HaystackBase,
		CurrentBase:  0,
		NextBase:     enc.BitmapBytes(),
		BitmapBytes:  enc.BitmapBytes(),
	}

	mod := &ir.Module{
		Memory: ir.Memory{MinPages: defaultMemoryPages, MaxPages: 0},
	}
	mod.Globals = append(mod.Globals, ir.Global{Type: ir.I32, Mutable: true, Init: 0})
	cfg.LenGlobal = 0

	if usedLooks != 0 {
		le := &LookEmitter{Used: usedLooks, HaystackBase: ir.HaystackBase, LenGlobal: cfg.LenGlobal}
		lookAtFn, err := le.Emit()
		if err != nil {
			return nil, &InternalError{Stage: "lookaround", Err: err}
		}
		cfg.LookAtFunc = conv.IntToUint32(len(mod.Funcs))
		mod.Funcs = append(mod.Funcs, lookAtFn)
	}

	prepFn, err := EmitPrepareInput(cfg)
	if err != nil {
		return nil, &InternalError{Stage: "driver", Err: err}
	}
	mod.Funcs = append(mod.Funcs, prepFn)

	matchFn, err := EmitIsMatch(cfg)
	if err != nil {
		return nil, &InternalError{Stage: "driver", Err: err}
	}
	mod.Funcs = append(mod.Funcs, matchFn)

	wasmBytes, err := mod.Encode()
	if err != nil {
		return nil, &InternalError{Stage: "encode", Err: err}
	}

	return &CompileResult{
		Wasm:             wasmBytes,
		Pattern:          pattern,
		NumStates:        enc.NumStates(),
		BitmapBytes:      enc.BitmapBytes(),
		UsedLooks:        usedLooks,
		HasLookaround:    usedLooks != 0,
		IsAnchored:       n.IsAnchored(),
		IsUTF8:           n.IsUTF8(),
		HasEmpty:         hasEmpty,
		HasCapture:       n.CaptureCount() > 1,
		LooksetPrefixAny: looksetPrefixAny,
		IsReverse:        false,
		HaystackBase:     ir.HaystackBase,
	}, nil
}
