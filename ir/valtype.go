// Package ir provides a minimal WebAssembly module builder: a typed
// instruction builder over an operand-stack model, module-level sections
// (memory, globals, functions, exports), and a binary encoder.
//
// It plays the role the teacher's regexp/syntax-to-NFA compiler plays for
// parsing: a narrow, purpose-built layer that the rest of the module treats
// as a primitive. See DESIGN.md for why this is hand-written instead of
// imported.
package ir

// ValType is a WebAssembly value type.
type ValType byte

// Value type encodings, per the WebAssembly binary format.
const (
	I32 ValType = 0x7F
	I64 ValType = 0x7E
	F32 ValType = 0x7D
	F64 ValType = 0x7C
)

func (v ValType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}

// BlockType describes the result arity of a structured control instruction.
// WAHGEX only ever needs "no result" or "single i32 result" blocks.
type BlockType struct {
	// Empty is true for a block/loop/if with no result value.
	Empty bool
	// Result is the single result type, valid when Empty is false.
	Result ValType
}

// VoidBlock is the empty block type (0x40 in the binary format).
var VoidBlock = BlockType{Empty: true}

// I32Block is a block that leaves a single i32 on the stack.
var I32Block = BlockType{Result: I32}
