package compile

import (
	"sort"

	"github.com/coregx/wahgex/internal/conv"
	"github.com/coregx/wahgex/nfa"
)

// Encoding assigns each "real" NFA state — one that is either an accepting
// state or consumes a byte of input — a dense index in [0, NumStates).
// Epsilon, Split, Capture, and Look states are structural: they are folded
// away entirely during epsilon-closure precomputation (closure.go) and
// never receive a dense id of their own.
//
// This mirrors nfa.Builder's own state-ID assignment (monotonic, assigned
// at construction time) but restricted to the subset of kinds the WASM
// driver's two-set simulation actually tracks bits for.
type Encoding struct {
	denseID   map[nfa.StateID]uint32
	fromDense []nfa.StateID
	isMatch   []bool
}

// BuildEncoding scans every state in n and assigns dense ids to Match,
// ByteRange, and Sparse states in ascending nfa.StateID order.
func BuildEncoding(n *nfa.NFA) (*Encoding, error) {
	var real []nfa.StateID
	it := n.Iter()
	for it.HasNext() {
		s := it.Next()
		switch s.Kind() {
		case nfa.StateMatch, nfa.StateByteRange, nfa.StateSparse:
			real = append(real, s.ID())
		case nfa.StateRuneAny, nfa.StateRuneAnyNotNL:
			return nil, &UnsupportedFeatureError{
				Feature: "StateRuneAny",
				Detail:  "the NFA compiler does not currently emit these states; add transition lowering support before enabling them",
			}
		}
	}
	sort.Slice(real, func(i, j int) bool { return real[i] < real[j] })

	enc := &Encoding{
		denseID:   make(map[nfa.StateID]uint32, len(real)),
		fromDense: make([]nfa.StateID, len(real)),
		isMatch:   make([]bool, len(real)),
	}
	for i, id := range real {
		dense := conv.IntToUint32(i)
		enc.denseID[id] = dense
		enc.fromDense[dense] = id
		enc.isMatch[dense] = n.State(id).IsMatch()
	}
	return enc, nil
}

// DenseID returns the dense index for a real state, or (0, false) if id does
// not name a Match/ByteRange/Sparse state.
func (e *Encoding) DenseID(id nfa.StateID) (uint32, bool) {
	d, ok := e.denseID[id]
	return d, ok
}

// NumStates is the total count of dense-encoded states.
func (e *Encoding) NumStates() int { return len(e.fromDense) }

// IsMatch reports whether the dense state at index d is an accepting state.
func (e *Encoding) IsMatch(d uint32) bool { return e.isMatch[d] }

// BitmapBytes is the number of bytes needed to hold one bit per dense state.
func (e *Encoding) BitmapBytes() uint32 {
	n := e.NumStates()
	return conv.IntToUint32((n + 7) / 8)
}
