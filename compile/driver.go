package compile

import (
	"github.com/coregx/wahgex/internal/conv"
	"github.com/coregx/wahgex/ir"
	"github.com/coregx/wahgex/nfa"
)

// DriverConfig carries everything the driver function emitter (component F)
// needs: the dense encoding, precomputed closures, per-state transitions,
// and the memory/global layout chosen by the orchestrator.
type DriverConfig struct {
	NFA          *nfa.NFA
	Enc          *Encoding
	Closures     *ClosureTable
	Transitions  map[uint32][]ByteEdge // dense state id -> outgoing byte edges
	UsedLooks    LookSet
	HaystackBase uint32
	CurrentBase  uint32
	NextBase     uint32
	BitmapBytes  uint32
	LenGlobal    uint32
	LookAtFunc   uint32 // function index of look_at; only valid if UsedLooks != 0
}

// EmitPrepareInput builds the prepare_input(len: i64) export: it records the
// haystack length the host has already written starting at HaystackBase.
// The i64 parameter is the exported ABI's, per spec; it is narrowed to i32
// once here since the bitmap/haystack layout never exceeds i32 address space.
func EmitPrepareInput(cfg *DriverConfig) (*ir.Func, error) {
	fb := ir.NewFunc("prepare_input", true, ir.I64)
	fb.LocalGet(0).I32WrapI64().GlobalSet(cfg.LenGlobal, ir.I32)
	return fb.Finish()
}

// is_match parameter indices, per the exported ABI:
// (anchored i32, anchored_pattern i32, span_start i64, span_end i64, haystack_len i64) -> i32.
const (
	isMatchAnchoredParam        = uint32(0)
	isMatchAnchoredPatternParam = uint32(1)
	isMatchSpanStartParam       = uint32(2)
	isMatchSpanEndParam         = uint32(3)
	isMatchHaystackLenParam     = uint32(4)
)

// EmitIsMatch builds the is_match export: the two-set NFA simulation driven
// by the precomputed dense encoding and closures, scanning only within
// [span_start, span_end) and selecting between the unanchored and
// anchored-pattern start closures at runtime per the anchored/anchored_pattern
// flags (spec.md §4.F).
func EmitIsMatch(cfg *DriverConfig) (*ir.Func, error) {
	fb := ir.NewFunc("is_match", true, ir.I32, ir.I32, ir.I64, ir.I64, ir.I64)
	fb.SetResults(ir.I32)

	pos := fb.NewLocal(ir.I32)
	spanEnd := fb.NewLocal(ir.I32)
	anchoredAny := fb.NewLocal(ir.I32)
	byteVal := fb.NewLocal(ir.I32)
	var lookBits uint32
	if cfg.UsedLooks != 0 {
		lookBits = fb.NewLocal(ir.I32)
	}

	fb.Block(ir.I32Block)
	exitDepth := fb.Depth()

	// Out-of-range spans never match and never trap: span_start > span_end,
	// or span_end beyond the haystack the host prepared.
	fb.LocalGet(isMatchSpanStartParam).LocalGet(isMatchSpanEndParam).I64GtU()
	fb.LocalGet(isMatchSpanEndParam).LocalGet(isMatchHaystackLenParam).I64GtU()
	fb.I32Or()
	fb.If(ir.VoidBlock)
	fb.I32Const(0)
	fb.Br(conv.IntToUint32(fb.Depth() - exitDepth))
	fb.End()

	// With a single pattern, anchored and anchored_pattern are equivalent
	// (spec.md §9 open questions): either nonzero selects the anchored start.
	fb.LocalGet(isMatchAnchoredParam).LocalGet(isMatchAnchoredPatternParam).I32Or().LocalSet(anchoredAny)

	fb.LocalGet(isMatchSpanStartParam).I32WrapI64().LocalSet(pos)
	fb.LocalGet(isMatchSpanEndParam).I32WrapI64().LocalSet(spanEnd)

	clearBitmap(fb, cfg.CurrentBase, cfg.BitmapBytes)

	// Initial look bits at span_start, if needed.
	if cfg.UsedLooks != 0 {
		fb.LocalGet(pos).Call(cfg.LookAtFunc, []ir.ValType{ir.I32}, []ir.ValType{ir.I32}).LocalSet(lookBits)
	}

	// active := E(start_anchored) if anchored or anchored_pattern else E(start)
	fb.LocalGet(anchoredAny)
	fb.If(ir.VoidBlock)
	if err := applyClosure(fb, cfg, cfg.NFA.StartAnchored(), cfg.CurrentBase, lookBits); err != nil {
		return nil, err
	}
	fb.Else()
	if err := applyClosure(fb, cfg, cfg.NFA.StartUnanchored(), cfg.CurrentBase, lookBits); err != nil {
		return nil, err
	}
	fb.End()

	fb.Loop(ir.VoidBlock)
	loopDepth := fb.Depth()

	// If any match-state bit is set in current, return 1. Run at the top of
	// the loop so the very first pass (before any byte is consumed) covers
	// the empty-match check at span_start.
	for d := 0; d < cfg.Enc.NumStates(); d++ {
		if !cfg.Enc.IsMatch(conv.IntToUint32(d)) {
			continue
		}
		emitGetBit(fb, cfg.CurrentBase, conv.IntToUint32(d))
		fb.If(ir.VoidBlock)
		fb.I32Const(1)
		fb.Br(conv.IntToUint32(fb.Depth() - exitDepth))
		fb.End()
	}

	// if pos == span_end: return 0 (no match found within the span)
	fb.LocalGet(pos).LocalGet(spanEnd).I32GeU()
	fb.If(ir.VoidBlock)
	fb.I32Const(0)
	fb.Br(conv.IntToUint32(fb.Depth() - exitDepth))
	fb.End()

	clearBitmap(fb, cfg.NextBase, cfg.BitmapBytes)

	// byteVal = haystack[pos]
	fb.LocalGet(pos).I32Const(int32(cfg.HaystackBase)).I32Add().I32Load8U(0).LocalSet(byteVal)

	// lookBits = look_at(pos+1), reused for every edge taken at this position
	if cfg.UsedLooks != 0 {
		fb.LocalGet(pos).I32Const(1).I32Add().
			Call(cfg.LookAtFunc, []ir.ValType{ir.I32}, []ir.ValType{ir.I32}).
			LocalSet(lookBits)
	}

	for d := 0; d < cfg.Enc.NumStates(); d++ {
		dense := conv.IntToUint32(d)
		edges := cfg.Transitions[dense]
		if len(edges) == 0 {
			continue
		}
		emitGetBit(fb, cfg.CurrentBase, dense)
		fb.If(ir.VoidBlock)

		for _, e := range edges {
			fb.LocalGet(byteVal).I32Const(int32(e.Lo)).I32GeU()
			fb.LocalGet(byteVal).I32Const(int32(e.Hi)).I32LeU()
			fb.I32And()
			fb.If(ir.VoidBlock)
			if err := applyClosure(fb, cfg, e.Next, cfg.NextBase, lookBits); err != nil {
				return nil, err
			}
			fb.End()
		}

		fb.End()
	}

	// Anchored mode fast-fails the instant next goes empty: no unanchored
	// restart is attempted. Unanchored mode instead folds a fresh start
	// attempt into next, so the simulation effectively tries every
	// remaining starting position in parallel.
	fb.LocalGet(anchoredAny)
	fb.If(ir.VoidBlock)
	emitBitmapIsZero(fb, cfg.NextBase, cfg.BitmapBytes)
	fb.If(ir.VoidBlock)
	fb.I32Const(0)
	fb.Br(conv.IntToUint32(fb.Depth() - exitDepth))
	fb.End()
	fb.Else()
	if err := applyClosure(fb, cfg, cfg.NFA.StartUnanchored(), cfg.NextBase, lookBits); err != nil {
		return nil, err
	}
	fb.End()

	copyBitmap(fb, cfg.NextBase, cfg.CurrentBase, cfg.BitmapBytes)

	// pos += 1
	fb.LocalGet(pos).I32Const(1).I32Add().LocalSet(pos)

	fb.Br(conv.IntToUint32(fb.Depth() - loopDepth))
	fb.End() // loop
	fb.End() // block $exit

	return fb.Finish()
}

// applyClosure emits, for every closure edge reachable from seed, the bit
// sets into the bitmap at base — gated on the precomputed lookBits local
// when the edge requires look-around context, skipped entirely (at compile
// time) when the pattern never uses any look-around.
func applyClosure(fb *ir.FuncBuilder, cfg *DriverConfig, seed nfa.StateID, base uint32, lookBits uint32) error {
	edges := cfg.Closures.Edges(seed)
	for _, edge := range edges {
		if edge.Require == 0 {
			for _, t := range edge.Targets {
				emitSetBit(fb, base, t)
			}
			continue
		}
		if cfg.UsedLooks == 0 {
			// No look ever holds if the pattern declares none used; an edge
			// requiring look bits is simply unreachable.
			continue
		}
		fb.LocalGet(lookBits).I32Const(int32(edge.Require)).I32And()
		fb.I32Const(int32(edge.Require)).I32Eq()
		fb.If(ir.VoidBlock)
		for _, t := range edge.Targets {
			emitSetBit(fb, base, t)
		}
		fb.End()
	}
	return nil
}

func clearBitmap(fb *ir.FuncBuilder, base, size uint32) {
	for i := uint32(0); i < size; i++ {
		fb.I32Const(int32(base + i))
		fb.I32Const(0)
		fb.I32Store8(0)
	}
}

func copyBitmap(fb *ir.FuncBuilder, srcBase, dstBase, size uint32) {
	for i := uint32(0); i < size; i++ {
		fb.I32Const(int32(dstBase + i))
		fb.I32Const(int32(srcBase + i))
		fb.I32Load8U(0)
		fb.I32Store8(0)
	}
}

// emitSetBit ORs bit (dense % 8) into byte (base + dense/8).
func emitSetBit(fb *ir.FuncBuilder, base, dense uint32) {
	addr := int32(base + dense/8)
	mask := int32(1 << (dense % 8))
	fb.I32Const(addr)
	fb.I32Const(addr)
	fb.I32Load8U(0)
	fb.I32Const(mask)
	fb.I32Or()
	fb.I32Store8(0)
}

// emitBitmapIsZero leaves 1 on the stack if every byte in the bitmap at
// base is zero (the state set is empty), 0 otherwise.
func emitBitmapIsZero(fb *ir.FuncBuilder, base, size uint32) {
	fb.I32Const(0)
	for i := uint32(0); i < size; i++ {
		fb.I32Const(int32(base + i)).I32Load8U(0)
		fb.I32Or()
	}
	fb.I32Eqz()
}

// emitGetBit leaves (byte(base+dense/8) & (1<<(dense%8))) on the stack.
func emitGetBit(fb *ir.FuncBuilder, base, dense uint32) {
	addr := int32(base + dense/8)
	mask := int32(1 << (dense % 8))
	fb.I32Const(addr)
	fb.I32Load8U(0)
	fb.I32Const(mask)
	fb.I32And()
}
