package ir

import (
	"bytes"
	"fmt"
)

// ctrlKind distinguishes the three structured control constructs.
type ctrlKind byte

const (
	ctrlBlock ctrlKind = iota
	ctrlLoop
	ctrlIf
)

// ctrlFrame tracks one nested block/loop/if for label and stack validation.
type ctrlFrame struct {
	kind      ctrlKind
	blockType BlockType
	// stackBase is the operand stack depth when this frame was entered;
	// branching out of the frame must leave the stack at stackBase (+1 if
	// the frame yields a result).
	stackBase int
}

// FuncBuilder incrementally assembles one function body using a typed,
// stack-checked instruction API. It is the WASM analogue of nfa.Builder:
// a low-level API giving full control over construction, used by the
// higher-level lowering passes in package compile.
type FuncBuilder struct {
	name    string
	export  bool
	params  []ValType
	results []ValType
	locals  []ValType // includes params at indices [0, len(params))

	body  bytes.Buffer
	stack []ValType // operand-stack type tracker
	ctrl  []ctrlFrame

	err error // first error encountered; subsequent calls become no-ops
}

// NewFunc starts building a new function with the given parameter types.
// Locals beyond the parameters are allocated with NewLocal.
func NewFunc(name string, export bool, params ...ValType) *FuncBuilder {
	locals := make([]ValType, len(params))
	copy(locals, params)
	return &FuncBuilder{
		name:   name,
		export: export,
		params: params,
		locals: locals,
	}
}

// Depth returns the current control-flow nesting depth (number of open
// block/loop/if frames). Call it right after opening a frame to remember a
// branch target: later, inside deeper nesting, the relative label index to
// branch back to that frame is Depth() - rememberedDepth.
func (f *FuncBuilder) Depth() int { return len(f.ctrl) }

// NewLocal allocates a new local variable of the given type and returns its index.
func (f *FuncBuilder) NewLocal(t ValType) uint32 {
	idx := uint32(len(f.locals))
	f.locals = append(f.locals, t)
	return idx
}

// SetResults declares the function's result types. Must be called before Finish.
func (f *FuncBuilder) SetResults(results ...ValType) *FuncBuilder {
	f.results = results
	return f
}

func (f *FuncBuilder) fail(format string, args ...any) {
	if f.err == nil {
		f.err = fmt.Errorf(format, args...)
	}
}

func (f *FuncBuilder) push(t ValType) {
	f.stack = append(f.stack, t)
}

func (f *FuncBuilder) pop(want ValType) {
	if len(f.stack) == 0 {
		f.fail("operand stack underflow, expected %s", want)
		return
	}
	got := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	if got != want {
		f.fail("operand stack type mismatch: expected %s, got %s", want, got)
	}
}

func (f *FuncBuilder) emit(op byte) { f.body.WriteByte(op) }

// --- Locals and globals ---

func (f *FuncBuilder) LocalGet(idx uint32) *FuncBuilder {
	if int(idx) >= len(f.locals) {
		f.fail("local index %d out of range", idx)
		return f
	}
	f.emit(opLocalGet)
	putUvarint(&f.body, uint64(idx))
	f.push(f.locals[idx])
	return f
}

func (f *FuncBuilder) LocalSet(idx uint32) *FuncBuilder {
	if int(idx) >= len(f.locals) {
		f.fail("local index %d out of range", idx)
		return f
	}
	f.pop(f.locals[idx])
	f.emit(opLocalSet)
	putUvarint(&f.body, uint64(idx))
	return f
}

func (f *FuncBuilder) LocalTee(idx uint32) *FuncBuilder {
	if int(idx) >= len(f.locals) {
		f.fail("local index %d out of range", idx)
		return f
	}
	f.pop(f.locals[idx])
	f.emit(opLocalTee)
	putUvarint(&f.body, uint64(idx))
	f.push(f.locals[idx])
	return f
}

func (f *FuncBuilder) GlobalGet(idx uint32, t ValType) *FuncBuilder {
	f.emit(opGlobalGet)
	putUvarint(&f.body, uint64(idx))
	f.push(t)
	return f
}

func (f *FuncBuilder) GlobalSet(idx uint32, t ValType) *FuncBuilder {
	f.pop(t)
	f.emit(opGlobalSet)
	putUvarint(&f.body, uint64(idx))
	return f
}

// --- Constants ---

func (f *FuncBuilder) I32Const(v int32) *FuncBuilder {
	f.emit(opI32Const)
	putVarint(&f.body, int64(v))
	f.push(I32)
	return f
}

// --- Memory ---

// I32Load8U emits i32.load8_u with the given static byte offset (align=0).
func (f *FuncBuilder) I32Load8U(offset uint32) *FuncBuilder {
	f.pop(I32) // address
	f.emit(opI32Load8U)
	putUvarint(&f.body, 0) // align
	putUvarint(&f.body, uint64(offset))
	f.push(I32)
	return f
}

// I32Store8 emits i32.store8 with the given static byte offset (align=0).
// Stack order: [addr, value] -> []
func (f *FuncBuilder) I32Store8(offset uint32) *FuncBuilder {
	f.pop(I32) // value
	f.pop(I32) // address
	f.emit(opI32Store8)
	putUvarint(&f.body, 0)
	putUvarint(&f.body, uint64(offset))
	return f
}

// I32Load emits i32.load (4-byte aligned) with the given static byte offset.
func (f *FuncBuilder) I32Load(offset uint32) *FuncBuilder {
	f.pop(I32)
	f.emit(opI32Load)
	putUvarint(&f.body, 2) // align = 2^2 = 4 bytes
	putUvarint(&f.body, uint64(offset))
	f.push(I32)
	return f
}

// I32Store emits i32.store (4-byte aligned) with the given static byte offset.
func (f *FuncBuilder) I32Store(offset uint32) *FuncBuilder {
	f.pop(I32)
	f.pop(I32)
	f.emit(opI32Store)
	putUvarint(&f.body, 2)
	putUvarint(&f.body, uint64(offset))
	return f
}

// --- Arithmetic / comparison (all i32) ---

func (f *FuncBuilder) binop(op byte) *FuncBuilder {
	f.pop(I32)
	f.pop(I32)
	f.emit(op)
	f.push(I32)
	return f
}

func (f *FuncBuilder) I32Add() *FuncBuilder  { return f.binop(opI32Add) }
func (f *FuncBuilder) I32Sub() *FuncBuilder  { return f.binop(opI32Sub) }
func (f *FuncBuilder) I32Mul() *FuncBuilder  { return f.binop(opI32Mul) }
func (f *FuncBuilder) I32And() *FuncBuilder  { return f.binop(opI32And) }
func (f *FuncBuilder) I32Or() *FuncBuilder   { return f.binop(opI32Or) }
func (f *FuncBuilder) I32Xor() *FuncBuilder  { return f.binop(opI32Xor) }
func (f *FuncBuilder) I32Shl() *FuncBuilder  { return f.binop(opI32Shl) }
func (f *FuncBuilder) I32ShrU() *FuncBuilder { return f.binop(opI32ShrU) }
func (f *FuncBuilder) I32Eq() *FuncBuilder   { return f.binop(opI32Eq) }
func (f *FuncBuilder) I32Ne() *FuncBuilder   { return f.binop(opI32Ne) }
func (f *FuncBuilder) I32LtU() *FuncBuilder  { return f.binop(opI32LtU) }
func (f *FuncBuilder) I32GtU() *FuncBuilder  { return f.binop(opI32GtU) }
func (f *FuncBuilder) I32LeU() *FuncBuilder  { return f.binop(opI32LeU) }
func (f *FuncBuilder) I32GeU() *FuncBuilder  { return f.binop(opI32GeU) }

func (f *FuncBuilder) I32Eqz() *FuncBuilder {
	f.pop(I32)
	f.emit(opI32Eqz)
	f.push(I32)
	return f
}

// I64GtU emits i64.gt_u, comparing two i64 operands and leaving an i32
// 0/1 result. Used by is_match to validate span bounds carried as i64
// parameters before they are narrowed to i32 for memory addressing.
func (f *FuncBuilder) I64GtU() *FuncBuilder {
	f.pop(I64)
	f.pop(I64)
	f.emit(opI64GtU)
	f.push(I32)
	return f
}

// I32WrapI64 emits i32.wrap_i64, truncating an i64 to its low 32 bits.
// is_match's span_start/span_end/haystack_len parameters are i64 per the
// exported ABI, but every address computed from them fits comfortably in
// i32 (memory is capped well under 4 GiB), so the driver wraps once up
// front and does the rest of its arithmetic in i32.
func (f *FuncBuilder) I32WrapI64() *FuncBuilder {
	f.pop(I64)
	f.emit(opI32WrapI64)
	f.push(I32)
	return f
}

func (f *FuncBuilder) Drop() *FuncBuilder {
	if len(f.stack) == 0 {
		f.fail("drop on empty stack")
		return f
	}
	f.stack = f.stack[:len(f.stack)-1]
	f.emit(opDrop)
	return f
}

// --- Structured control flow ---
//
// Branch targets use WebAssembly's relative label indexing: Br(0) targets
// the innermost enclosing block/loop/if, Br(1) the next one out, etc. This
// needs no forward-patching because the index is a nesting depth, not an
// absolute byte offset.

func (f *FuncBuilder) pushCtrl(kind ctrlKind, bt BlockType) {
	f.ctrl = append(f.ctrl, ctrlFrame{kind: kind, blockType: bt, stackBase: len(f.stack)})
}

func (f *FuncBuilder) Block(bt BlockType) *FuncBuilder {
	f.emit(opBlock)
	f.body.WriteByte(blockTypeByte(bt))
	f.pushCtrl(ctrlBlock, bt)
	return f
}

func (f *FuncBuilder) Loop(bt BlockType) *FuncBuilder {
	f.emit(opLoop)
	f.body.WriteByte(blockTypeByte(bt))
	f.pushCtrl(ctrlLoop, bt)
	return f
}

func (f *FuncBuilder) If(bt BlockType) *FuncBuilder {
	f.pop(I32) // condition
	f.emit(opIf)
	f.body.WriteByte(blockTypeByte(bt))
	f.pushCtrl(ctrlIf, bt)
	return f
}

func (f *FuncBuilder) Else() *FuncBuilder {
	if len(f.ctrl) == 0 || f.ctrl[len(f.ctrl)-1].kind != ctrlIf {
		f.fail("else without matching if")
		return f
	}
	top := f.ctrl[len(f.ctrl)-1]
	f.stack = f.stack[:top.stackBase]
	f.emit(opElse)
	return f
}

func (f *FuncBuilder) End() *FuncBuilder {
	if len(f.ctrl) == 0 {
		f.fail("end without matching block")
		return f
	}
	top := f.ctrl[len(f.ctrl)-1]
	f.ctrl = f.ctrl[:len(f.ctrl)-1]
	// A block's result can reach here either by falling through with the
	// value on top of the stack, or by an earlier br that jumped straight to
	// this label carrying the value (real WASM validates that branch
	// site against the label's type, not this point). Either way the state
	// after End is just stackBase+result: truncate and push rather than pop,
	// so a branch-supplied value doesn't look like an underflow here.
	f.stack = f.stack[:top.stackBase]
	if !top.blockType.Empty {
		f.push(top.blockType.Result)
	}
	f.emit(opEnd)
	return f
}

func (f *FuncBuilder) Br(depth uint32) *FuncBuilder {
	f.emit(opBr)
	putUvarint(&f.body, uint64(depth))
	return f
}

func (f *FuncBuilder) BrIf(depth uint32) *FuncBuilder {
	f.pop(I32)
	f.emit(opBrIf)
	putUvarint(&f.body, uint64(depth))
	return f
}

// BrTable emits a br_table with the given jump targets and default target.
func (f *FuncBuilder) BrTable(targets []uint32, def uint32) *FuncBuilder {
	f.pop(I32)
	f.emit(opBrTable)
	putUvarint(&f.body, uint64(len(targets)))
	for _, t := range targets {
		putUvarint(&f.body, uint64(t))
	}
	putUvarint(&f.body, uint64(def))
	return f
}

func (f *FuncBuilder) Return() *FuncBuilder {
	f.emit(opReturn)
	return f
}

func (f *FuncBuilder) Unreachable() *FuncBuilder {
	f.emit(opUnreachable)
	return f
}

// Call emits a call to the function at the given index, with the given
// argument and result types used purely for the builder's own stack tracking.
func (f *FuncBuilder) Call(funcIdx uint32, argTypes []ValType, resultTypes []ValType) *FuncBuilder {
	for i := len(argTypes) - 1; i >= 0; i-- {
		f.pop(argTypes[i])
	}
	f.emit(opCall)
	putUvarint(&f.body, uint64(funcIdx))
	for _, t := range resultTypes {
		f.push(t)
	}
	return f
}

// Finish validates that the function is well-formed (balanced control
// structures, operand stack matches declared results) and returns the
// assembled Func.
func (f *FuncBuilder) Finish() (*Func, error) {
	if f.err != nil {
		return nil, fmt.Errorf("ir: function %q: %w", f.name, f.err)
	}
	if len(f.ctrl) != 0 {
		return nil, fmt.Errorf("ir: function %q: %d unclosed block(s)", f.name, len(f.ctrl))
	}
	if len(f.stack) != len(f.results) {
		return nil, fmt.Errorf("ir: function %q: operand stack has %d values at end, want %d",
			f.name, len(f.stack), len(f.results))
	}
	for i, want := range f.results {
		if f.stack[i] != want {
			return nil, fmt.Errorf("ir: function %q: result %d is %s, want %s", f.name, i, f.stack[i], want)
		}
	}

	var bodyOut bytes.Buffer
	bodyOut.Write(f.body.Bytes())
	bodyOut.WriteByte(opEnd)

	return &Func{
		Name:      f.name,
		Export:    f.export,
		Params:    f.params,
		Results:   f.results,
		LocalDecl: localsBeyondParams(f.locals, len(f.params)),
		Body:      bodyOut.Bytes(),
	}, nil
}

// localsBeyondParams groups the non-parameter locals into
// (count, type) runs, as required by the code section's locals encoding.
func localsBeyondParams(all []ValType, numParams int) []LocalGroup {
	rest := all[numParams:]
	var groups []LocalGroup
	for _, t := range rest {
		if n := len(groups); n > 0 && groups[n-1].Type == t {
			groups[n-1].Count++
			continue
		}
		groups = append(groups, LocalGroup{Count: 1, Type: t})
	}
	return groups
}

// LocalGroup is a run of consecutive locals sharing a type, as encoded in
// the WASM code section.
type LocalGroup struct {
	Count uint32
	Type  ValType
}

// Func is a finished, ready-to-encode function.
type Func struct {
	Name      string
	Export    bool
	Params    []ValType
	Results   []ValType
	LocalDecl []LocalGroup
	Body      []byte // includes the trailing 0x0B END opcode
}
