package compile

import "github.com/coregx/wahgex/ir"

// noByteSentinel stands in for "there is no byte here" (before position 0,
// or at/after the end of the haystack). It is outside the 0-255 byte range
// so every ASCII word-byte comparison against it is false, which is exactly
// the behavior start/end-of-text boundaries need.
const noByteSentinel = 256

// LookEmitter builds the look-around evaluator (component G): a function
// that, given a scan position, returns a LookSet bitmask of which
// look-around assertions hold there. Only bits in Used are computed; unused
// look kinds cost nothing in the emitted module.
//
// Evaluation only ever needs the byte immediately before and at the
// position, so — unlike a DFA's lazily-computed LookSet — this is a pure
// function of (pos, adjacent bytes) computed inline, not a precomputed
// per-position table in memory.
type LookEmitter struct {
	Used         LookSet
	HaystackBase uint32
	LenGlobal    uint32
}

// lookAtFuncName is the internal (unexported) name of the emitted function.
const lookAtFuncName = "look_at"

// Emit builds the look_at(pos: i32) -> i32 function.
func (le *LookEmitter) Emit() (*ir.Func, error) {
	fb := ir.NewFunc(lookAtFuncName, false, ir.I32)
	fb.SetResults(ir.I32)

	const posLocal = uint32(0)
	hasPrev := fb.NewLocal(ir.I32)
	hasCur := fb.NewLocal(ir.I32)
	prevByte := fb.NewLocal(ir.I32)
	curByte := fb.NewLocal(ir.I32)

	// hasPrev = pos > 0
	fb.LocalGet(posLocal).I32Const(0).I32GtU().LocalSet(hasPrev)
	// hasCur = pos < len
	fb.LocalGet(posLocal).GlobalGet(le.LenGlobal, ir.I32).I32LtU().LocalSet(hasCur)

	// prevByte = hasPrev ? haystack[pos-1] : sentinel
	fb.LocalGet(hasPrev).If(ir.I32Block)
	fb.LocalGet(posLocal).I32Const(int32(le.HaystackBase) - 1).I32Add().I32Load8U(0)
	fb.Else()
	fb.I32Const(noByteSentinel)
	fb.End()
	fb.LocalSet(prevByte)

	// curByte = hasCur ? haystack[pos] : sentinel
	fb.LocalGet(hasCur).If(ir.I32Block)
	fb.LocalGet(posLocal).I32Const(int32(le.HaystackBase)).I32Add().I32Load8U(0)
	fb.Else()
	fb.I32Const(noByteSentinel)
	fb.End()
	fb.LocalSet(curByte)

	// result accumulator starts at 0
	fb.I32Const(0)

	// Each boolean (0/1) test below is turned into its bit via multiplication
	// rather than AND: AND only happens to work when the flag's value is 1
	// (LookSetStartText), and silently zeroes every other flag since a 0/1
	// value never has any bit above bit 0 set.
	if le.Used&LookSetStartText != 0 {
		fb.LocalGet(posLocal).I32Const(0).I32Eq()
		fb.I32Const(int32(LookSetStartText)).I32Mul()
		fb.I32Or()
	}
	if le.Used&LookSetEndText != 0 {
		fb.LocalGet(hasCur).I32Eqz()
		fb.I32Const(int32(LookSetEndText)).I32Mul()
		fb.I32Or()
	}
	if le.Used&LookSetStartLine != 0 {
		// pos == 0 || prevByte == '\n'
		fb.LocalGet(posLocal).I32Const(0).I32Eq()
		fb.LocalGet(prevByte).I32Const('\n').I32Eq()
		fb.I32Or()
		fb.I32Const(int32(LookSetStartLine)).I32Mul()
		fb.I32Or()
	}
	if le.Used&LookSetEndLine != 0 {
		// !hasCur || curByte == '\n'
		fb.LocalGet(hasCur).I32Eqz()
		fb.LocalGet(curByte).I32Const('\n').I32Eq()
		fb.I32Or()
		fb.I32Const(int32(LookSetEndLine)).I32Mul()
		fb.I32Or()
	}
	if le.Used&(LookSetWordBoundary|LookSetNoWordBoundary) != 0 {
		emitIsWordByte(fb, hasPrev, prevByte) // leaves isWordPrev
		emitIsWordByte(fb, hasCur, curByte)   // leaves isWordCur
		fb.I32Ne()                            // boundary = isWordPrev != isWordCur

		if le.Used&LookSetWordBoundary != 0 && le.Used&LookSetNoWordBoundary != 0 {
			boundaryLocal := fb.NewLocal(ir.I32)
			fb.LocalTee(boundaryLocal)
			fb.I32Const(int32(LookSetWordBoundary)).I32Mul()
			fb.I32Or()
			fb.LocalGet(boundaryLocal).I32Eqz()
			fb.I32Const(int32(LookSetNoWordBoundary)).I32Mul()
			fb.I32Or()
		} else if le.Used&LookSetWordBoundary != 0 {
			fb.I32Const(int32(LookSetWordBoundary)).I32Mul()
			fb.I32Or()
		} else {
			fb.I32Eqz()
			fb.I32Const(int32(LookSetNoWordBoundary)).I32Mul()
			fb.I32Or()
		}
	}

	return fb.Finish()
}

// emitIsWordByte computes hasByte && isWordByte(byteLocal), leaving a 0/1
// i32 on the stack. b is an ASCII word byte per [0-9A-Za-z_].
func emitIsWordByte(fb *ir.FuncBuilder, hasByteLocal, byteLocal uint32) {
	fb.LocalGet(byteLocal).I32Const('_').I32Eq()

	fb.LocalGet(byteLocal).I32Const('0').I32GeU()
	fb.LocalGet(byteLocal).I32Const('9').I32LeU()
	fb.I32And()
	fb.I32Or()

	fb.LocalGet(byteLocal).I32Const('a').I32GeU()
	fb.LocalGet(byteLocal).I32Const('z').I32LeU()
	fb.I32And()
	fb.I32Or()

	fb.LocalGet(byteLocal).I32Const('A').I32GeU()
	fb.LocalGet(byteLocal).I32Const('Z').I32LeU()
	fb.I32And()
	fb.I32Or()

	fb.LocalGet(hasByteLocal).I32And()
}
