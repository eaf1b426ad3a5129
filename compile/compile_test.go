package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/wahgex/ir"
)

func TestCompile_ProducesValidModuleHeader(t *testing.T) {
	res, err := Compile("a+b")
	require.NoError(t, err)
	require.True(t, len(res.Wasm) > 8)
	assert.Equal(t, []byte("\x00asm"), res.Wasm[:4])
	assert.True(t, res.NumStates > 0)
	assert.Equal(t, uint32(ir.HaystackBase), res.HaystackBase)
}

func TestCompile_RejectsUnparsablePattern(t *testing.T) {
	_, err := Compile("a(")
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestCompile_NoLookaroundForLiteral(t *testing.T) {
	res, err := Compile("hello")
	require.NoError(t, err)
	assert.False(t, res.HasLookaround)
	assert.Zero(t, res.UsedLooks)
}

func TestCompile_LookaroundForWordBoundary(t *testing.T) {
	res, err := Compile(`\bword\b`)
	require.NoError(t, err)
	assert.True(t, res.HasLookaround)
	assert.NotZero(t, res.UsedLooks&LookSetWordBoundary)
}

func TestCompile_AnchoredOption(t *testing.T) {
	res, err := Compile("abc", WithAnchored(true))
	require.NoError(t, err)
	assert.True(t, res.IsAnchored)
}

func TestCompile_ModuleSizeMatchesWasmLength(t *testing.T) {
	res, err := Compile("x*y+z?")
	require.NoError(t, err)
	assert.Equal(t, len(res.Wasm), res.ModuleSize())
}

// TestCompile_HasEmpty covers testable property #8.6: patterns matching the
// empty string report has_empty == true, patterns that don't report false.
func TestCompile_HasEmpty(t *testing.T) {
	empty, err := Compile("a*")
	require.NoError(t, err)
	assert.True(t, empty.HasEmpty)

	nonEmpty, err := Compile("a")
	require.NoError(t, err)
	assert.False(t, nonEmpty.HasEmpty)
}

func TestCompile_HasCapture(t *testing.T) {
	captured, err := Compile("(ab)+")
	require.NoError(t, err)
	assert.True(t, captured.HasCapture)

	uncaptured, err := Compile("ab+")
	require.NoError(t, err)
	assert.False(t, uncaptured.HasCapture)
}

func TestCompile_LooksetPrefixAny(t *testing.T) {
	anchored, err := Compile("^abc")
	require.NoError(t, err)
	assert.NotZero(t, anchored.LooksetPrefixAny&LookSetStartText)

	plain, err := Compile("abc")
	require.NoError(t, err)
	assert.Zero(t, plain.LooksetPrefixAny)
}

func TestCompile_IsReverse(t *testing.T) {
	res, err := Compile("abc")
	require.NoError(t, err)
	assert.False(t, res.IsReverse)
}
