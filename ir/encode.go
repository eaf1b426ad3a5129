package ir

import (
	"bytes"
)

// putUvarint appends v to buf as an unsigned LEB128 varint.
func putUvarint(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			buf.WriteByte(b | 0x80)
		} else {
			buf.WriteByte(b)
			return
		}
	}
}

// putVarint appends v to buf as a signed LEB128 varint.
func putVarint(buf *bytes.Buffer, v int64) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}

// putName appends a length-prefixed UTF-8 string, as used for export/import names.
func putName(buf *bytes.Buffer, s string) {
	putUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

// wrapSection wraps the given section id and raw body with its byte-length
// prefix, per the WebAssembly module binary format's section framing.
func wrapSection(id byte, body []byte) []byte {
	var out bytes.Buffer
	out.WriteByte(id)
	putUvarint(&out, uint64(len(body)))
	out.Write(body)
	return out.Bytes()
}

// Section IDs, per the WebAssembly binary format.
const (
	secType     = 1
	secFunction = 3
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secCode     = 10
)

const (
	wasmMagic   = "\x00asm"
	wasmVersion = 1
)
