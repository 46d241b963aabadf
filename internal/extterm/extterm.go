// Package extterm decodes the canonical external term format used inside
// the literal chunk.
package extterm

import (
	"encoding/binary"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/beamdis/beamdis/internal/xerrors"
)

const versionMarker = 131

const (
	tagNewFloat      = 70
	tagAtomCacheRef  = 82
	tagSmallInteger  = 97
	tagInteger       = 98
	tagAtom          = 100
	tagSmallTuple    = 104
	tagLargeTuple    = 105
	tagNil           = 106
	tagString        = 107
	tagList          = 108
	tagBinary        = 109
	tagSmallBig      = 110
	tagExport        = 113
	tagSmallAtom     = 115
	tagMap           = 116
	tagAtomUtf8      = 118
	tagSmallAtomUtf8 = 119
)

// Kind discriminates the decoded Term variants.
type Kind byte

const (
	KindFloat Kind = iota
	KindAtomCacheRef
	KindSmallInt
	KindInt
	KindAtom
	KindTuple
	KindNil
	KindString
	KindList
	KindBinary
	KindBigInt
	KindExport
	KindMap
)

// MapEntry is one key/value pair of a decoded Map term.
type MapEntry struct {
	Key Term
	Val Term
}

// Term is the decoded representation of one external term.
type Term struct {
	Big      *big.Int // KindBigInt
	Tail     *Term    // KindList: improper-list tail (nil if proper, terminated by a Nil element)
	Elements []Term   // KindTuple, KindList
	Pairs    []MapEntry
	Export   *ExportRef // KindExport
	Atom     string     // KindAtom
	Bytes    []byte     // KindString, KindBinary
	Float    float64
	Int      int32
	CacheRef byte
	Kind     Kind
}

// ExportRef is the decoded (module, function, arity) triple of a Kind 113
// Export term.
type ExportRef struct {
	Module   Term
	Function Term
	Arity    Term
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

// Read decodes a single external term. If the leading byte is the version
// marker (131), it is consumed before decoding the tag; nested terms omit
// the marker.
func Read(r byteReader) (Term, error) {
	b0, err := r.ReadByte()
	if err != nil {
		return Term{}, err
	}
	if b0 == versionMarker {
		b0, err = r.ReadByte()
		if err != nil {
			return Term{}, err
		}
	}
	return readTagged(r, b0)
}

func readTagged(r byteReader, tag byte) (Term, error) {
	switch tag {
	case tagNewFloat:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Term{}, err
		}
		bits := binary.BigEndian.Uint64(buf[:])
		return Term{Kind: KindFloat, Float: math.Float64frombits(bits)}, nil

	case tagAtomCacheRef:
		b, err := r.ReadByte()
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: KindAtomCacheRef, CacheRef: b}, nil

	case tagSmallInteger:
		b, err := r.ReadByte()
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: KindSmallInt, Int: int32(b)}, nil

	case tagInteger:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Term{}, err
		}
		return Term{Kind: KindInt, Int: int32(binary.BigEndian.Uint32(buf[:]))}, nil

	case tagAtom:
		name, err := readLenPrefixed16(r)
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: KindAtom, Atom: string(name)}, nil

	case tagSmallAtom:
		name, err := readLenPrefixed8(r)
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: KindAtom, Atom: string(name)}, nil

	case tagAtomUtf8:
		name, err := readLenPrefixed16(r)
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: KindAtom, Atom: string(name)}, nil

	case tagSmallAtomUtf8:
		name, err := readLenPrefixed8(r)
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: KindAtom, Atom: string(name)}, nil

	case tagSmallTuple:
		n, err := r.ReadByte()
		if err != nil {
			return Term{}, err
		}
		elems, err := readN(r, int(n))
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: KindTuple, Elements: elems}, nil

	case tagLargeTuple:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Term{}, err
		}
		n := binary.BigEndian.Uint32(buf[:])
		elems, err := readN(r, int(n))
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: KindTuple, Elements: elems}, nil

	case tagNil:
		return Term{Kind: KindNil}, nil

	case tagString:
		data, err := readLenPrefixed16(r)
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: KindString, Bytes: data}, nil

	case tagBinary:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Term{}, err
		}
		n := binary.BigEndian.Uint32(buf[:])
		data := make([]byte, n)
		if _, err := io.ReadFull(r, data); err != nil {
			return Term{}, err
		}
		return Term{Kind: KindBinary, Bytes: data}, nil

	case tagSmallBig:
		n, err := r.ReadByte()
		if err != nil {
			return Term{}, err
		}
		sign, err := r.ReadByte()
		if err != nil {
			return Term{}, err
		}
		magLE := make([]byte, n)
		if _, err := io.ReadFull(r, magLE); err != nil {
			return Term{}, err
		}
		magBE := make([]byte, n)
		for i, b := range magLE {
			magBE[int(n)-1-i] = b
		}
		v := new(big.Int).SetBytes(magBE)
		if sign != 0 {
			v.Neg(v)
		}
		return Term{Kind: KindBigInt, Big: v}, nil

	case tagList:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Term{}, err
		}
		n := binary.BigEndian.Uint32(buf[:])
		elems, err := readN(r, int(n))
		if err != nil {
			return Term{}, err
		}
		tail, err := Read(r)
		if err != nil {
			return Term{}, err
		}
		t := Term{Kind: KindList, Elements: elems}
		if tail.Kind != KindNil {
			t.Tail = &tail
		}
		return t, nil

	case tagExport:
		mod, err := Read(r)
		if err != nil {
			return Term{}, err
		}
		fn, err := Read(r)
		if err != nil {
			return Term{}, err
		}
		arity, err := Read(r)
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: KindExport, Export: &ExportRef{Module: mod, Function: fn, Arity: arity}}, nil

	case tagMap:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Term{}, err
		}
		n := binary.BigEndian.Uint32(buf[:])
		pairs := make([]MapEntry, 0, n)
		for i := uint32(0); i < n; i++ {
			k, err := Read(r)
			if err != nil {
				return Term{}, err
			}
			v, err := Read(r)
			if err != nil {
				return Term{}, err
			}
			pairs = append(pairs, MapEntry{Key: k, Val: v})
		}
		return Term{Kind: KindMap, Pairs: pairs}, nil

	default:
		return Term{}, xerrors.UnsupportedExtTag(tag)
	}
}

func readN(r byteReader, n int) ([]Term, error) {
	out := make([]Term, 0, n)
	for i := 0; i < n; i++ {
		t, err := Read(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func readLenPrefixed16(r byteReader) ([]byte, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint16(buf[:])
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Render gives a short textual form of a decoded term, used by the module
// renderer to back-tick-quote literal table entries. Not part of the
// canonical external term format — just a compact debug-style rendering.
func (t Term) Render() string {
	switch t.Kind {
	case KindFloat:
		return strconv.FormatFloat(t.Float, 'g', -1, 64)
	case KindAtomCacheRef:
		return "cache#" + strconv.Itoa(int(t.CacheRef))
	case KindSmallInt, KindInt:
		return strconv.Itoa(int(t.Int))
	case KindBigInt:
		if t.Big == nil {
			return "0"
		}
		return t.Big.String()
	case KindAtom:
		return t.Atom
	case KindNil:
		return "[]"
	case KindString:
		return strconv.Quote(string(t.Bytes))
	case KindBinary:
		return "<<" + strconv.Itoa(len(t.Bytes)) + " bytes>>"
	case KindTuple:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			parts[i] = e.Render()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindList:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			parts[i] = e.Render()
		}
		body := strings.Join(parts, ", ")
		if t.Tail != nil {
			return "[" + body + " | " + t.Tail.Render() + "]"
		}
		return "[" + body + "]"
	case KindMap:
		parts := make([]string, len(t.Pairs))
		for i, p := range t.Pairs {
			parts[i] = p.Key.Render() + " => " + p.Val.Render()
		}
		return "#{" + strings.Join(parts, ", ") + "}"
	case KindExport:
		if t.Export == nil {
			return "fun"
		}
		return "fun " + t.Export.Module.Render() + ":" + t.Export.Function.Render() + "/" + t.Export.Arity.Render()
	default:
		return "?"
	}
}

func readLenPrefixed8(r byteReader) ([]byte, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
