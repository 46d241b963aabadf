// Package value defines the primitive operand types produced by the
// compact-term and external-term readers. A Value carries no rendering
// logic of its own; resolving an Atom or Literal index to a string is the
// module context's job (see package analysis).
package value

import "math/big"

// Kind discriminates the Value variants.
type Kind byte

const (
	KindAtom Kind = iota
	KindInteger
	KindLiteral
	KindLabel
	KindXReg
	KindYReg
	KindFPReg
	KindChar
	KindTypedReg
	KindExtList
	KindExtAllocList
	KindNil
)

func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindInteger:
		return "integer"
	case KindLiteral:
		return "literal"
	case KindLabel:
		return "label"
	case KindXReg:
		return "x"
	case KindYReg:
		return "y"
	case KindFPReg:
		return "fp"
	case KindChar:
		return "char"
	case KindTypedReg:
		return "typed_reg"
	case KindExtList:
		return "ext_list"
	case KindExtAllocList:
		return "ext_alloc_list"
	case KindNil:
		return "nil"
	default:
		return "unknown"
	}
}

// AllocPair is one (key, value) entry of an ExtAllocList.
type AllocPair struct {
	Key Value
	Val Value
}

// Value is the sum type consumed by the renderer. Exactly one of the
// payload fields is meaningful for a given Kind.
type Value struct {
	Big       *big.Int    // KindInteger
	Index     int         // KindAtom, KindLiteral, KindLabel: table index. KindXReg/YReg/KindFPReg: register number.
	Codepoint rune        // KindChar
	Reg       *Value      // KindTypedReg: the wrapped register
	TypeIndex int         // KindTypedReg: type-info literal index
	List      []Value     // KindExtList
	Pairs     []AllocPair // KindExtAllocList
	Kind      Kind
}

// Nil is the shared representation of the empty atom (atom index 0).
var Nil = Value{Kind: KindNil}

func Atom(index int) Value    { return Value{Kind: KindAtom, Index: index} }
func Literal(index int) Value { return Value{Kind: KindLiteral, Index: index} }
func Label(index int) Value   { return Value{Kind: KindLabel, Index: index} }
func XReg(index int) Value    { return Value{Kind: KindXReg, Index: index} }
func YReg(index int) Value    { return Value{Kind: KindYReg, Index: index} }
func FPReg(index int) Value   { return Value{Kind: KindFPReg, Index: index} }
func Char(r rune) Value       { return Value{Kind: KindChar, Codepoint: r} }

// Integer wraps a native int64 as an arbitrary-precision Value.
func Integer(v int64) Value {
	return Value{Kind: KindInteger, Big: big.NewInt(v)}
}

// IntegerFromBytes decodes a two's-complement big-endian byte string, as
// produced by the compact-term reader, into a signed arbitrary-precision
// integer. A set high bit on the first byte indicates a negative value,
// matching the compact-term encoder's two's-complement convention.
func IntegerFromBytes(b []byte) Value {
	if len(b) == 0 {
		return Value{Kind: KindInteger, Big: big.NewInt(0)}
	}
	if b[0]&0x80 == 0 {
		n := new(big.Int).SetBytes(b)
		return Value{Kind: KindInteger, Big: n}
	}
	// Negative: two's-complement over the byte string's bit width.
	width := len(b) * 8
	n := new(big.Int).SetBytes(b)
	full := new(big.Int).Lsh(big.NewInt(1), uint(width))
	n.Sub(n, full)
	return Value{Kind: KindInteger, Big: n}
}

// IndexFromBytes decodes an unsigned big-endian byte string into a plain
// table index (used for Atom/Literal/Label/reg payloads wider than 11 bits).
func IndexFromBytes(b []byte) int {
	n := new(big.Int).SetBytes(b)
	return int(n.Int64())
}

func TypedReg(reg Value, typeIndex int) Value {
	r := reg
	return Value{Kind: KindTypedReg, Reg: &r, TypeIndex: typeIndex}
}

func ExtList(items []Value) Value {
	return Value{Kind: KindExtList, List: items}
}

func ExtAllocList(pairs []AllocPair) Value {
	return Value{Kind: KindExtAllocList, Pairs: pairs}
}

// Equal reports structural equality for test and dedup use. Two Integer
// values compare by numeric value, not pointer identity.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindInteger:
		if v.Big == nil || other.Big == nil {
			return v.Big == other.Big
		}
		return v.Big.Cmp(other.Big) == 0
	case KindAtom, KindLiteral, KindLabel, KindXReg, KindYReg, KindFPReg:
		return v.Index == other.Index
	case KindChar:
		return v.Codepoint == other.Codepoint
	case KindTypedReg:
		if v.Reg == nil || other.Reg == nil {
			return v.Reg == other.Reg
		}
		return v.TypeIndex == other.TypeIndex && v.Reg.Equal(*other.Reg)
	case KindExtList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	case KindExtAllocList:
		if len(v.Pairs) != len(other.Pairs) {
			return false
		}
		for i := range v.Pairs {
			if !v.Pairs[i].Key.Equal(other.Pairs[i].Key) || !v.Pairs[i].Val.Equal(other.Pairs[i].Val) {
				return false
			}
		}
		return true
	case KindNil:
		return true
	default:
		return false
	}
}
