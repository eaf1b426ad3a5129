package compile

import (
	"fmt"
	"sort"

	"github.com/coregx/wahgex/internal/sparse"
	"github.com/coregx/wahgex/nfa"
)

// ErrInvalidClosureState reports that a closure walk reached a state ID the
// encoding or NFA doesn't recognize — a bug in the compiler, not the pattern.
func ErrInvalidClosureState(id nfa.StateID) error {
	return fmt.Errorf("invalid state %d reached during closure computation", id)
}

// LookSet is a bitmask over the look-around kinds a pattern can require.
// Adapted from the lazy DFA's runtime LookSet (coregx-coregex's
// dfa/lazy/look.go, not present in this tree — see DESIGN.md); here the
// set is computed once per closure at compile time rather than threaded
// through a live search.
type LookSet uint8

// Bits of LookSet, one per nfa.Look kind.
const (
	LookSetStartText LookSet = 1 << iota
	LookSetEndText
	LookSetStartLine
	LookSetEndLine
	LookSetWordBoundary
	LookSetNoWordBoundary
)

func lookBit(l nfa.Look) LookSet {
	switch l {
	case nfa.LookStartText:
		return LookSetStartText
	case nfa.LookEndText:
		return LookSetEndText
	case nfa.LookStartLine:
		return LookSetStartLine
	case nfa.LookEndLine:
		return LookSetEndLine
	case nfa.LookWordBoundary:
		return LookSetWordBoundary
	case nfa.LookNoWordBoundary:
		return LookSetNoWordBoundary
	default:
		return 0
	}
}

// ClosureEdge groups dense target states that are reachable from a closure
// seed under a specific conjunction of look-around requirements. Require
// is 0 when the edge is unconditional.
type ClosureEdge struct {
	Require LookSet
	Targets []uint32 // dense state ids, ascending, deduped
}

// ClosureTable maps each seed nfa.StateID (a Split/Epsilon/ByteRange/.../
// transition target, or a start state) to the set of closure edges reached
// by following epsilon, split, capture, and look-gated transitions until a
// Match/ByteRange/Sparse state (or dead end) is found.
type ClosureTable struct {
	edges map[nfa.StateID][]ClosureEdge
}

// Edges returns the precomputed closure for seed, or nil if seed was never
// registered via BuildClosures.
func (c *ClosureTable) Edges(seed nfa.StateID) []ClosureEdge {
	return c.edges[seed]
}

// BuildClosures computes the epsilon closure of each seed state. Seeds are
// typically the NFA's unanchored and anchored start states plus every raw
// transition target referenced by a ByteRange/Sparse state (see transition.go).
//
// Both the per-state worklist ("have we walked this state under this look
// requirement yet") and the per-requirement target accumulation walk a
// dense [0,N) id space — NFA state ids per nfa.go's State/States(), dense
// encoded ids per Encoding — so both use internal/sparse.SparseSet (ported
// from the teacher's NFA simulator, nfa/pikevm.go) instead of a plain map.
func BuildClosures(n *nfa.NFA, enc *Encoding, seeds []nfa.StateID) (*ClosureTable, error) {
	ct := &ClosureTable{edges: make(map[nfa.StateID][]ClosureEdge, len(seeds))}
	numStates := uint32(n.States())

	for _, seed := range seeds {
		if _, done := ct.edges[seed]; done {
			continue
		}
		groups := make(map[LookSet]*sparse.SparseSet)
		visited := make(map[LookSet]*sparse.SparseSet)
		if err := walkClosure(n, enc, seed, 0, numStates, groups, visited); err != nil {
			return nil, err
		}
		ct.edges[seed] = finalizeGroups(groups)
	}

	return ct, nil
}

func walkClosure(
	n *nfa.NFA,
	enc *Encoding,
	id nfa.StateID,
	required LookSet,
	numStates uint32,
	groups map[LookSet]*sparse.SparseSet,
	visited map[LookSet]*sparse.SparseSet,
) error {
	if id == nfa.InvalidState || id == nfa.FailState {
		return nil
	}

	seen, ok := visited[required]
	if !ok {
		seen = sparse.NewSparseSet(numStates)
		visited[required] = seen
	}
	if seen.Contains(uint32(id)) {
		return nil
	}
	seen.Insert(uint32(id))

	st := n.State(id)
	if st == nil {
		return &InternalError{Stage: "closure", Err: ErrInvalidClosureState(id)}
	}

	switch st.Kind() {
	case nfa.StateMatch, nfa.StateByteRange, nfa.StateSparse:
		dense, ok := enc.DenseID(id)
		if !ok {
			return &InternalError{Stage: "closure", Err: ErrInvalidClosureState(id)}
		}
		set, ok := groups[required]
		if !ok {
			set = sparse.NewSparseSet(uint32(enc.NumStates()))
			groups[required] = set
		}
		set.Insert(dense)

	case nfa.StateEpsilon:
		return walkClosure(n, enc, st.Epsilon(), required, numStates, groups, visited)

	case nfa.StateSplit:
		left, right := st.Split()
		if err := walkClosure(n, enc, left, required, numStates, groups, visited); err != nil {
			return err
		}
		return walkClosure(n, enc, right, required, numStates, groups, visited)

	case nfa.StateCapture:
		_, _, next := st.Capture()
		return walkClosure(n, enc, next, required, numStates, groups, visited)

	case nfa.StateLook:
		look, next := st.Look()
		return walkClosure(n, enc, next, required|lookBit(look), numStates, groups, visited)

	case nfa.StateFail:
		// dead end, contributes nothing

	default:
		return &UnsupportedFeatureError{Feature: st.Kind().String(), Detail: "cannot appear in an epsilon closure"}
	}

	return nil
}

func finalizeGroups(groups map[LookSet]*sparse.SparseSet) []ClosureEdge {
	edges := make([]ClosureEdge, 0, len(groups))
	for req, set := range groups {
		targets := append([]uint32(nil), set.Values()...)
		sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
		edges = append(edges, ClosureEdge{Require: req, Targets: targets})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Require < edges[j].Require })
	return edges
}

// UsedLooks returns the union of all look requirements appearing in the
// table, used by the orchestrator to decide whether the emitted module
// needs a look-around evaluator at all.
func (c *ClosureTable) UsedLooks() LookSet {
	var used LookSet
	for _, edges := range c.edges {
		for _, e := range edges {
			used |= e.Require
		}
	}
	return used
}
