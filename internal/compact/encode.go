package compact

import (
	"bytes"
	"math/big"

	"github.com/beamdis/beamdis/internal/value"
)

// Encoder emits the compact-term encoding. It is not part of the core (the
// disassembler only reads), but is required by the round-trip property
// tests in §8 of the format's testable properties.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the encoded byte string accumulated so far.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

func (e *Encoder) writeTagged(tag byte, index int) {
	switch {
	case index >= 0 && index < 16:
		e.buf.WriteByte(byte(index<<4) | tag)
	case index >= 0 && index < 0x800:
		b0 := byte((index>>3)&0xE0) | 0x08 | tag
		e.buf.WriteByte(b0)
		e.buf.WriteByte(byte(index & 0xFF))
	default:
		b := bigEndianBytes(uint64(index))
		e.writeByteStringHeader(tag, len(b))
		e.buf.Write(b)
	}
}

func (e *Encoder) writeByteStringHeader(tag byte, n int) {
	if n-2 < 7 {
		e.buf.WriteByte(byte((n-2)<<5) | 0x18 | tag)
		return
	}
	e.buf.WriteByte(byte(7<<5) | 0x18 | tag)
	e.writeCount(n - 9)
}

func (e *Encoder) writeCount(n int) {
	e.writeTagged(tagLiteral, n)
}

func bigEndianBytes(v uint64) []byte {
	var tmp [8]byte
	i := 8
	for v > 0 || i == 8 {
		i--
		tmp[i] = byte(v)
		v >>= 8
		if i == 0 {
			break
		}
	}
	out := make([]byte, 8-i)
	copy(out, tmp[i:])
	if len(out) == 0 {
		out = []byte{0}
	}
	return out
}

// Atom encodes an Atom value.
func (e *Encoder) Atom(index int) { e.writeTagged(tagAtom, index) }

// Label encodes a Label value.
func (e *Encoder) Label(index int) { e.writeTagged(tagLabel, index) }

// XReg encodes an XReg value.
func (e *Encoder) XReg(index int) { e.writeTagged(tagXReg, index) }

// YReg encodes a YReg value.
func (e *Encoder) YReg(index int) { e.writeTagged(tagYReg, index) }

// Char encodes a Char value.
func (e *Encoder) Char(r rune) { e.writeTagged(tagChar, int(r)) }

// Literal encodes a Literal (table index) value.
func (e *Encoder) Literal(index int) { e.writeTagged(tagLiteral, index) }

// Integer encodes a signed integer, using the 4-bit/11-bit immediate forms
// when possible and a two's-complement byte string otherwise.
func (e *Encoder) Integer(v int64) {
	e.BigInteger(big.NewInt(v))
}

// BigInteger encodes an arbitrary-precision signed integer. Values that fit
// in the 4-bit or 11-bit immediate forms use them; everything else is
// written as a two's-complement byte string sized to carry the sign bit
// and at least two bytes long, using the 9-byte-length extension (§4.B)
// once the byte string is 9 or more bytes long.
func (e *Encoder) BigInteger(v *big.Int) {
	if v.IsInt64() {
		n := v.Int64()
		if n >= 0 && n < 0x800 {
			e.writeTagged(tagInteger, int(n))
			return
		}
	}
	b := twosComplementBytes(v)
	if len(b) < 2 {
		// The shortest byte-string form holds two bytes; sign-extend.
		pad := byte(0)
		if v.Sign() < 0 {
			pad = 0xFF
		}
		b = append([]byte{pad}, b...)
	}
	e.writeByteStringHeader(tagInteger, len(b))
	e.buf.Write(b)
}

func twosComplementBytes(v *big.Int) []byte {
	if v.Sign() >= 0 {
		b := v.Bytes()
		if len(b) == 0 {
			b = []byte{0}
		}
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	mag := new(big.Int).Neg(v)
	b := mag.Bytes()
	width := len(b)
	if b[0]&0x80 == 0 {
		// keep width; sign bit already clear means we still need the
		// complement to carry a set high bit to mark negative.
	} else {
		width++
	}
	full := make([]byte, width)
	copy(full[width-len(b):], b)
	out := make([]byte, width)
	var carry uint16 = 1
	for i := width - 1; i >= 0; i-- {
		x := uint16(^full[i]) + carry
		out[i] = byte(x)
		carry = x >> 8
	}
	return out
}

// FPReg encodes the extended fp-reg term.
func (e *Encoder) FPReg(index int) {
	e.buf.WriteByte(extFPReg)
	e.writeCount(index)
}

// TypedReg encodes the extended typed-reg term.
func (e *Encoder) TypedReg(reg value.Value, typeIndex int) {
	e.buf.WriteByte(extTypedReg)
	e.writeValue(reg)
	e.writeCount(typeIndex)
}

// List encodes the extended list term.
func (e *Encoder) List(items []value.Value) {
	e.buf.WriteByte(extList)
	e.writeCount(len(items))
	for _, v := range items {
		e.writeValue(v)
	}
}

// AllocList encodes the extended alloc-list term.
func (e *Encoder) AllocList(pairs []value.AllocPair) {
	e.buf.WriteByte(extAllocList)
	e.writeCount(len(pairs))
	for _, p := range pairs {
		e.writeValue(p.Key)
		e.writeValue(p.Val)
	}
}

func (e *Encoder) writeValue(v value.Value) {
	switch v.Kind {
	case value.KindAtom:
		e.Atom(v.Index)
	case value.KindLiteral:
		e.Literal(v.Index)
	case value.KindLabel:
		e.Label(v.Index)
	case value.KindXReg:
		e.XReg(v.Index)
	case value.KindYReg:
		e.YReg(v.Index)
	case value.KindFPReg:
		e.FPReg(v.Index)
	case value.KindChar:
		e.Char(v.Codepoint)
	case value.KindInteger:
		e.BigInteger(v.Big)
	case value.KindTypedReg:
		e.TypedReg(*v.Reg, v.TypeIndex)
	case value.KindExtList:
		e.List(v.List)
	case value.KindExtAllocList:
		e.AllocList(v.Pairs)
	case value.KindNil:
		e.Atom(0)
	}
}
