// Package compact decodes the variable-length "compact term" operand
// encoding used throughout a module's code chunk.
package compact

import (
	"io"

	"github.com/beamdis/beamdis/internal/value"
	"github.com/beamdis/beamdis/internal/xerrors"
)

const (
	tagLiteral = 0
	tagInteger = 1
	tagAtom    = 2
	tagXReg    = 3
	tagYReg    = 4
	tagLabel   = 5
	tagChar    = 6

	extList      = 0x17
	extFPReg     = 0x27
	extAllocList = 0x37
	extLiteral   = 0x47
	extTypedReg  = 0x57
)

// Reader decodes a stream of compact terms, tracking byte position the way
// wasm/internal/binary.Reader does so errors can report an offset.
type Reader struct {
	r   io.ByteReader
	pos int
}

// NewReader wraps an io.ByteReader for compact-term decoding.
func NewReader(r io.ByteReader) *Reader {
	return &Reader{r: r}
}

// Position returns the number of bytes consumed so far.
func (r *Reader) Position() int { return r.pos }

// ReadByte reads one raw, untagged byte and advances the position. Used by
// the instruction decoder to read the opcode byte that precedes a compact
// term operand stream.
func (r *Reader) ReadByte() (byte, error) {
	return r.readByte()
}

func (r *Reader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

func (r *Reader) readBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

// Read decodes a single value from the stream.
func (r *Reader) Read() (value.Value, error) {
	b0, err := r.readByte()
	if err != nil {
		return value.Value{}, err
	}

	if b0&0x07 == 0x07 {
		return r.readExtended(b0)
	}
	return r.readBase(b0)
}

func (r *Reader) readExtended(b0 byte) (value.Value, error) {
	switch b0 {
	case extList:
		n, err := r.readCount()
		if err != nil {
			return value.Value{}, err
		}
		items := make([]value.Value, 0, n)
		for i := 0; i < n; i++ {
			v, err := r.Read()
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.ExtList(items), nil
	case extFPReg:
		n, err := r.readCount()
		if err != nil {
			return value.Value{}, err
		}
		return value.FPReg(n), nil
	case extAllocList:
		n, err := r.readCount()
		if err != nil {
			return value.Value{}, err
		}
		pairs := make([]value.AllocPair, 0, n)
		for i := 0; i < n; i++ {
			k, err := r.Read()
			if err != nil {
				return value.Value{}, err
			}
			v, err := r.Read()
			if err != nil {
				return value.Value{}, err
			}
			pairs = append(pairs, value.AllocPair{Key: k, Val: v})
		}
		return value.ExtAllocList(pairs), nil
	case extLiteral:
		v, err := r.Read()
		if err != nil {
			return value.Value{}, err
		}
		return v, nil
	case extTypedReg:
		reg, err := r.Read()
		if err != nil {
			return value.Value{}, err
		}
		typeInfo, err := r.Read()
		if err != nil {
			return value.Value{}, err
		}
		return value.TypedReg(reg, typeInfo.Index), nil
	default:
		return value.Value{}, xerrors.UnsupportedCompactTerm(b0).AtOffset(r.pos)
	}
}

// readCount reads a nested compact term and returns its numeric payload,
// used for the list/alloc-list/fp-reg length prefixes.
func (r *Reader) readCount() (int, error) {
	v, err := r.Read()
	if err != nil {
		return 0, err
	}
	switch v.Kind {
	case value.KindInteger:
		return int(v.Big.Int64()), nil
	default:
		return v.Index, nil
	}
}

func (r *Reader) readBase(b0 byte) (value.Value, error) {
	tag := b0 & 0x07

	var payload []byte
	var small int
	var haveSmall bool

	switch {
	case b0&0x08 == 0:
		small = int(b0 >> 4)
		haveSmall = true
	case b0&0x10 == 0:
		next, err := r.readByte()
		if err != nil {
			return value.Value{}, err
		}
		small = (int(b0&0xE0) << 3) | int(next)
		haveSmall = true
	case b0>>5 != 7:
		n := int(b0>>5) + 2
		b, err := r.readBytes(n)
		if err != nil {
			return value.Value{}, err
		}
		payload = b
	default:
		n, err := r.readCount()
		if err != nil {
			return value.Value{}, err
		}
		b, err := r.readBytes(n + 9)
		if err != nil {
			return value.Value{}, err
		}
		payload = b
	}

	if tag == tagInteger {
		if haveSmall {
			return value.Integer(int64(small)), nil
		}
		return value.IntegerFromBytes(payload), nil
	}

	var index int
	if haveSmall {
		index = small
	} else {
		index = value.IndexFromBytes(payload)
	}

	switch tag {
	case tagLiteral:
		return value.Literal(index), nil
	case tagAtom:
		return value.Atom(index), nil
	case tagXReg:
		return value.XReg(index), nil
	case tagYReg:
		return value.YReg(index), nil
	case tagLabel:
		return value.Label(index), nil
	case tagChar:
		return value.Char(rune(index)), nil
	default:
		return value.Value{}, xerrors.Newf(xerrors.PhaseCompactTerm, xerrors.KindUnsupportedTag, "unreachable base tag %d", tag).AtOffset(r.pos)
	}
}
