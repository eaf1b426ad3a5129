package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/wahgex/nfa"
)

func TestTransitionsOf_ByteRange(t *testing.T) {
	n := mustNFA(t, "a")
	it := n.Iter()
	var found bool
	for it.HasNext() {
		s := it.Next()
		if s.Kind() != nfa.StateByteRange {
			continue
		}
		found = true
		edges, err := TransitionsOf(s)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		lo, hi, next := s.ByteRange()
		assert.Equal(t, lo, edges[0].Lo)
		assert.Equal(t, hi, edges[0].Hi)
		assert.Equal(t, next, edges[0].Next)
	}
	assert.True(t, found, "expected at least one ByteRange state for pattern \"a\"")
}

func TestTransitionsOf_MatchYieldsNoEdges(t *testing.T) {
	n := mustNFA(t, "a")
	it := n.Iter()
	for it.HasNext() {
		s := it.Next()
		if s.Kind() != nfa.StateMatch {
			continue
		}
		edges, err := TransitionsOf(s)
		require.NoError(t, err)
		assert.Empty(t, edges)
	}
}

func TestTransitionsOf_RejectsStructuralState(t *testing.T) {
	n := mustNFA(t, "a*")
	it := n.Iter()
	for it.HasNext() {
		s := it.Next()
		if s.Kind() != nfa.StateSplit {
			continue
		}
		_, err := TransitionsOf(s)
		assert.Error(t, err)
		return
	}
	t.Fatal("expected a Split state in \"a*\"'s NFA")
}

func TestCollectSeeds_IncludesStartStates(t *testing.T) {
	n := mustNFA(t, "ab")
	enc, err := BuildEncoding(n)
	require.NoError(t, err)
	seeds, err := CollectSeeds(n, enc)
	require.NoError(t, err)

	seen := make(map[nfa.StateID]bool, len(seeds))
	for _, s := range seeds {
		seen[s] = true
	}
	assert.True(t, seen[n.StartUnanchored()])
	assert.True(t, seen[n.StartAnchored()])
}
