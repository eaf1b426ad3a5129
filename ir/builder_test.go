package ir

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncBuilder_SimpleAdd(t *testing.T) {
	fb := NewFunc("add", true, I32, I32)
	fb.SetResults(I32)
	fb.LocalGet(0).LocalGet(1).I32Add()
	fn, err := fb.Finish()
	require.NoError(t, err)
	assert.Equal(t, "add", fn.Name)
	assert.True(t, fn.Export)
	assert.Equal(t, []ValType{I32, I32}, fn.Params)
	assert.Equal(t, []ValType{I32}, fn.Results)
	assert.NotEmpty(t, fn.Body)
}

func TestFuncBuilder_UnbalancedResultFails(t *testing.T) {
	fb := NewFunc("bad", false)
	fb.SetResults(I32)
	_, err := fb.Finish()
	assert.Error(t, err)
}

func TestFuncBuilder_UnclosedBlockFails(t *testing.T) {
	fb := NewFunc("bad", false)
	fb.Block(VoidBlock)
	_, err := fb.Finish()
	assert.Error(t, err)
}

func TestFuncBuilder_LocalIndexOutOfRangeFails(t *testing.T) {
	fb := NewFunc("bad", false)
	fb.SetResults(I32)
	fb.LocalGet(5)
	_, err := fb.Finish()
	assert.Error(t, err)
}

func TestFuncBuilder_BranchCarriesBlockResult(t *testing.T) {
	// A block exited exclusively via `br` carrying its result, never by
	// falling through to its own `end` — the shape compile/driver.go relies
	// on for its exit block.
	fb := NewFunc("loopy", true, I32)
	fb.SetResults(I32)

	fb.Block(I32Block)
	exitDepth := fb.Depth()

	fb.Loop(VoidBlock)
	loopDepth := fb.Depth()

	fb.LocalGet(0).I32Const(0).I32Eq()
	fb.If(VoidBlock)
	fb.I32Const(1)
	fb.Br(uint32(fb.Depth() - exitDepth))
	fb.End()

	fb.I32Const(0)
	fb.Br(uint32(fb.Depth() - exitDepth))

	// Unreachable, but still emitted: proves the builder doesn't require the
	// loop to ever fall through normally.
	fb.Br(uint32(fb.Depth() - loopDepth))
	fb.End() // loop
	fb.End() // block

	fn, err := fb.Finish()
	require.NoError(t, err)
	assert.NotEmpty(t, fn.Body)
}

func TestFuncBuilder_LocalGroups(t *testing.T) {
	fb := NewFunc("locals", false, I32)
	fb.NewLocal(I32)
	fb.NewLocal(I32)
	fb.NewLocal(I64)
	fb.SetResults()
	fn, err := fb.Finish()
	require.NoError(t, err)
	// Three locals beyond the one param, grouped into two runs: [I32 x2][I64 x1].
	require.Len(t, fn.LocalDecl, 2)
	assert.Equal(t, uint32(2), fn.LocalDecl[0].Count)
	assert.Equal(t, I32, fn.LocalDecl[0].Type)
	assert.Equal(t, uint32(1), fn.LocalDecl[1].Count)
	assert.Equal(t, I64, fn.LocalDecl[1].Type)
}

func TestFuncBuilder_MemoryOps(t *testing.T) {
	fb := NewFunc("mem", false, I32)
	fb.SetResults(I32)
	fb.LocalGet(0).I32Load8U(0)
	fn, err := fb.Finish()
	require.NoError(t, err)
	assert.NotEmpty(t, fn.Body)

	fb2 := NewFunc("mem2", false, I32, I32)
	fb2.LocalGet(0).LocalGet(1).I32Store8(0)
	_, err = fb2.Finish()
	require.NoError(t, err)
}

func TestModule_Encode_HeaderAndSections(t *testing.T) {
	fb := NewFunc("answer", true)
	fb.SetResults(I32)
	fb.I32Const(42)
	fn, err := fb.Finish()
	require.NoError(t, err)

	m := &Module{
		Memory: Memory{MinPages: 1},
		Funcs:  []*Func{fn},
	}
	out, err := m.Encode()
	require.NoError(t, err)
	require.True(t, len(out) > 8)
	assert.True(t, bytes.HasPrefix(out, []byte(wasmMagic)))
	assert.Equal(t, []byte{byte(wasmVersion), 0, 0, 0}, out[4:8])
}

func TestModule_Encode_NoFuncsFails(t *testing.T) {
	m := &Module{Memory: Memory{MinPages: 1}}
	_, err := m.Encode()
	assert.Error(t, err)
}

func TestModule_Encode_DedupesIdenticalSignatures(t *testing.T) {
	fb1 := NewFunc("a", true, I32)
	fb1.SetResults(I32)
	fb1.LocalGet(0)
	f1, err := fb1.Finish()
	require.NoError(t, err)

	fb2 := NewFunc("b", true, I32)
	fb2.SetResults(I32)
	fb2.LocalGet(0)
	f2, err := fb2.Finish()
	require.NoError(t, err)

	m := &Module{Memory: Memory{MinPages: 1}, Funcs: []*Func{f1, f2}}
	out, err := m.Encode()
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
