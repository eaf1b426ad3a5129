package compile

import "github.com/coregx/wahgex/nfa"

// ByteEdge is one lowered transition: the driver follows it when the
// current input byte falls in [Lo, Hi], moving to whatever closure Next
// expands to.
type ByteEdge struct {
	Lo, Hi byte
	Next   nfa.StateID
}

// TransitionsOf lowers a single real (ByteRange or Sparse) state into its
// byte-range edges. ByteRange always yields exactly one edge; Sparse yields
// one edge per character-class range, corresponding to component D's
// "dispatch" strategy for states with more than one outgoing range.
func TransitionsOf(st *nfa.State) ([]ByteEdge, error) {
	switch st.Kind() {
	case nfa.StateByteRange:
		lo, hi, next := st.ByteRange()
		return []ByteEdge{{Lo: lo, Hi: hi, Next: next}}, nil

	case nfa.StateSparse:
		trs := st.Transitions()
		edges := make([]ByteEdge, len(trs))
		for i, t := range trs {
			edges[i] = ByteEdge{Lo: t.Lo, Hi: t.Hi, Next: t.Next}
		}
		return edges, nil

	case nfa.StateMatch:
		// Match states consume nothing; callers should skip them when
		// lowering transitions and only test IsMatch on them.
		return nil, nil

	default:
		return nil, &UnsupportedFeatureError{
			Feature: st.Kind().String(),
			Detail:  "not a byte-consuming state",
		}
	}
}

// CollectSeeds gathers every distinct transition target referenced by the
// real states in enc, plus the NFA's unanchored and anchored start states.
// These are the seeds closure.go needs to precompute.
func CollectSeeds(n *nfa.NFA, enc *Encoding) ([]nfa.StateID, error) {
	seen := make(map[nfa.StateID]bool)
	var seeds []nfa.StateID

	add := func(id nfa.StateID) {
		if id == nfa.InvalidState || id == nfa.FailState || seen[id] {
			return
		}
		seen[id] = true
		seeds = append(seeds, id)
	}

	add(n.StartUnanchored())
	add(n.StartAnchored())

	for d := 0; d < enc.NumStates(); d++ {
		id := enc.fromDense[d]
		st := n.State(id)
		if st == nil || st.Kind() == nfa.StateMatch {
			continue
		}
		edges, err := TransitionsOf(st)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			add(e.Next)
		}
	}

	return seeds, nil
}
