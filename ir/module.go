package ir

import (
	"bytes"
	"fmt"
)

// Global is a module-level global variable.
type Global struct {
	Name    string
	Type    ValType
	Mutable bool
	Export  bool
	// Init is the constant initializer. For I32 globals this is the low
	// 32 bits; for I64 the full value.
	Init int64
}

// Memory describes the module's single linear memory, always exported
// under the name "haystack" per the driver/host contract (component A):
// the host writes haystack bytes into instance.exports.haystack.buffer
// starting at HaystackBase before calling is_match.
type Memory struct {
	MinPages uint32 // 64KiB pages
	MaxPages uint32 // 0 means unbounded
}

// Module is a complete, ready-to-encode WebAssembly module: one memory,
// zero or more globals, and a list of functions (each optionally exported).
//
// This is the concrete shape component A (Module Layout) names: a single
// linear memory big enough to hold the haystack and the NFA's active/next
// state bitmaps, a global recording the haystack length, and exactly two
// exported functions, prepare_input and is_match.
type Module struct {
	Memory  Memory
	Globals []Global
	Funcs   []*Func
}

// HaystackBase is the fixed byte offset in linear memory where prepare_input
// expects the haystack bytes to already have been written by the host
// before is_match is called. Offsets below this are reserved for the
// compiler's own state bitmaps (component C/E).
const HaystackBase = 65536 // start of the second 64KiB page

// funcSig identifies a function signature for type-section deduplication.
type funcSig struct {
	params  string
	results string
}

func sigOf(f *Func) funcSig {
	return funcSig{params: valTypesKey(f.Params), results: valTypesKey(f.Results)}
}

func valTypesKey(ts []ValType) string {
	b := make([]byte, len(ts))
	for i, t := range ts {
		b[i] = byte(t)
	}
	return string(b)
}

// Encode serializes the module to the WebAssembly binary format.
func (m *Module) Encode() ([]byte, error) {
	if len(m.Funcs) == 0 {
		return nil, fmt.Errorf("ir: module has no functions")
	}

	// Deduplicate signatures into the type section, in first-seen order.
	var sigs []funcSig
	sigIndex := make(map[funcSig]uint32)
	typeIdxOf := make([]uint32, len(m.Funcs))
	for i, f := range m.Funcs {
		s := sigOf(f)
		idx, ok := sigIndex[s]
		if !ok {
			idx = uint32(len(sigs))
			sigs = append(sigs, s)
			sigIndex[s] = idx
		}
		typeIdxOf[i] = idx
	}

	var out bytes.Buffer
	out.WriteString(wasmMagic)
	out.Write([]byte{byte(wasmVersion), 0, 0, 0}) // version is 4 raw LE bytes, not a varint

	out.Write(wrapSection(secType, encodeTypeSection(sigs, m.Funcs, sigIndex)))
	out.Write(wrapSection(secFunction, encodeFunctionSection(typeIdxOf)))
	out.Write(wrapSection(secMemory, encodeMemorySection(m.Memory)))
	if len(m.Globals) > 0 {
		out.Write(wrapSection(secGlobal, encodeGlobalSection(m.Globals)))
	}
	out.Write(wrapSection(secExport, encodeExportSection(m)))
	out.Write(wrapSection(secCode, encodeCodeSection(m.Funcs)))

	return out.Bytes(), nil
}

func encodeTypeSection(sigs []funcSig, funcs []*Func, sigIndex map[funcSig]uint32) []byte {
	// Recover one representative Func per signature to get the actual ValType slices.
	reps := make([]*Func, len(sigs))
	for _, f := range funcs {
		idx := sigIndex[sigOf(f)]
		if reps[idx] == nil {
			reps[idx] = f
		}
	}

	var body bytes.Buffer
	putUvarint(&body, uint64(len(sigs)))
	for _, f := range reps {
		body.WriteByte(0x60) // func type tag
		putUvarint(&body, uint64(len(f.Params)))
		for _, p := range f.Params {
			body.WriteByte(byte(p))
		}
		putUvarint(&body, uint64(len(f.Results)))
		for _, r := range f.Results {
			body.WriteByte(byte(r))
		}
	}
	return body.Bytes()
}

func encodeFunctionSection(typeIdxOf []uint32) []byte {
	var body bytes.Buffer
	putUvarint(&body, uint64(len(typeIdxOf)))
	for _, idx := range typeIdxOf {
		putUvarint(&body, uint64(idx))
	}
	return body.Bytes()
}

func encodeMemorySection(mem Memory) []byte {
	var body bytes.Buffer
	putUvarint(&body, 1) // exactly one memory
	if mem.MaxPages > 0 {
		body.WriteByte(0x01)
		putUvarint(&body, uint64(mem.MinPages))
		putUvarint(&body, uint64(mem.MaxPages))
	} else {
		body.WriteByte(0x00)
		putUvarint(&body, uint64(mem.MinPages))
	}
	return body.Bytes()
}

func encodeGlobalSection(globals []Global) []byte {
	var body bytes.Buffer
	putUvarint(&body, uint64(len(globals)))
	for _, g := range globals {
		body.WriteByte(byte(g.Type))
		if g.Mutable {
			body.WriteByte(0x01)
		} else {
			body.WriteByte(0x00)
		}
		switch g.Type {
		case I64:
			body.WriteByte(opI64Const)
			putVarint(&body, g.Init)
		default:
			body.WriteByte(opI32Const)
			putVarint(&body, g.Init)
		}
		body.WriteByte(opEnd)
	}
	return body.Bytes()
}

// exportKind values, per the WebAssembly binary format.
const (
	exportFunc   = 0x00
	exportMemory = 0x02
	exportGlobal = 0x03
)

func encodeExportSection(m *Module) []byte {
	type exp struct {
		name string
		kind byte
		idx  uint32
	}
	var exports []exp
	exports = append(exports, exp{"haystack", exportMemory, 0})
	for i, g := range m.Globals {
		if g.Export {
			exports = append(exports, exp{g.Name, exportGlobal, uint32(i)})
		}
	}
	for i, f := range m.Funcs {
		if f.Export {
			exports = append(exports, exp{f.Name, exportFunc, uint32(i)})
		}
	}

	var body bytes.Buffer
	putUvarint(&body, uint64(len(exports)))
	for _, e := range exports {
		putName(&body, e.name)
		body.WriteByte(e.kind)
		putUvarint(&body, uint64(e.idx))
	}
	return body.Bytes()
}

func encodeCodeSection(funcs []*Func) []byte {
	var body bytes.Buffer
	putUvarint(&body, uint64(len(funcs)))
	for _, f := range funcs {
		var fbody bytes.Buffer
		putUvarint(&fbody, uint64(len(f.LocalDecl)))
		for _, lg := range f.LocalDecl {
			putUvarint(&fbody, uint64(lg.Count))
			fbody.WriteByte(byte(lg.Type))
		}
		fbody.Write(f.Body)

		putUvarint(&body, uint64(fbody.Len()))
		body.Write(fbody.Bytes())
	}
	return body.Bytes()
}
