package compile

// CompileResult carries the compiled WASM module plus the diagnostics an
// embedder (or the CLI's --stats flag) needs without having to re-parse the
// binary: state counts, memory layout, and which look-around kinds the
// pattern actually exercises.
type CompileResult struct {
	Wasm    []byte
	Pattern string

	NumStates   int
	BitmapBytes uint32

	UsedLooks     LookSet
	HasLookaround bool

	IsAnchored bool
	IsUTF8     bool

	// HasEmpty is true iff the NFA's start closure intersects the accept
	// set, i.e. the pattern matches the empty string (spec.md §6, tested
	// by testable property #8.6).
	HasEmpty bool

	// HasCapture is true iff the pattern declares capture groups beyond
	// group 0. The emitted module never reports capture offsets (match-only
	// semantics), so this is diagnostic only.
	HasCapture bool

	// LooksetPrefixAny is the subset of UsedLooks reachable from the start
	// closure without consuming a byte — the look-around kinds that can
	// gate a match at position span_start itself.
	LooksetPrefixAny LookSet

	// IsReverse reflects the NFA's configured scan direction. WAHGEX's NFA
	// input is always forward (see DESIGN.md); this is carried through for
	// parity with the documented CompileResult shape and is always false.
	IsReverse bool

	// HaystackBase is the fixed linear-memory offset the host must write
	// the haystack bytes to before calling prepare_input and is_match.
	HaystackBase uint32
}

// ModuleSize is the size in bytes of the encoded WASM module.
func (r *CompileResult) ModuleSize() int { return len(r.Wasm) }
