package compact_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/beamdis/beamdis/internal/compact"
	"github.com/beamdis/beamdis/internal/value"
)

func readOne(t *testing.T, b []byte) value.Value {
	t.Helper()
	r := compact.NewReader(bytes.NewReader(b))
	v, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return v
}

func TestRoundTripAtomLabelReg(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
	}{
		{"atom small", value.Atom(3)},
		{"atom 11bit", value.Atom(500)},
		{"atom wide", value.Atom(1 << 20)},
		{"label small", value.Label(7)},
		{"xreg small", value.XReg(0)},
		{"yreg 11bit", value.YReg(1000)},
		{"char", value.Char('a')},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := compact.NewEncoder()
			switch tt.v.Kind {
			case value.KindAtom:
				enc.Atom(tt.v.Index)
			case value.KindLabel:
				enc.Label(tt.v.Index)
			case value.KindXReg:
				enc.XReg(tt.v.Index)
			case value.KindYReg:
				enc.YReg(tt.v.Index)
			case value.KindChar:
				enc.Char(tt.v.Codepoint)
			}
			got := readOne(t, enc.Bytes())
			if !got.Equal(tt.v) {
				t.Errorf("round trip: got %+v, want %+v", got, tt.v)
			}
		})
	}
}

func TestRoundTripInteger(t *testing.T) {
	for _, n := range []int64{0, 1, 15, 16, 2047, 2048, -1, -2048, 1 << 40, -(1 << 40)} {
		enc := compact.NewEncoder()
		enc.Integer(n)
		got := readOne(t, enc.Bytes())
		if got.Kind != value.KindInteger {
			t.Fatalf("expected integer kind, got %v", got.Kind)
		}
		if got.Big.Cmp(big.NewInt(n)) != 0 {
			t.Errorf("round trip %d: got %s", n, got.Big.String())
		}
	}
}

func TestRoundTripTypedReg(t *testing.T) {
	enc := compact.NewEncoder()
	enc.TypedReg(value.XReg(2), 4)
	got := readOne(t, enc.Bytes())
	if got.Kind != value.KindTypedReg {
		t.Fatalf("expected typed reg, got %v", got.Kind)
	}
	if got.Reg.Kind != value.KindXReg || got.Reg.Index != 2 || got.TypeIndex != 4 {
		t.Errorf("unexpected typed reg: %+v", got)
	}
}

func TestRoundTripExtList(t *testing.T) {
	items := []value.Value{value.Literal(1), value.Label(10), value.Literal(2), value.Label(11)}
	enc := compact.NewEncoder()
	enc.List(items)
	got := readOne(t, enc.Bytes())
	if got.Kind != value.KindExtList {
		t.Fatalf("expected ext list, got %v", got.Kind)
	}
	if len(got.List) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(got.List))
	}
	for i := range items {
		if !got.List[i].Equal(items[i]) {
			t.Errorf("item %d: got %+v, want %+v", i, got.List[i], items[i])
		}
	}
}

func TestRoundTripExtAllocList(t *testing.T) {
	pairs := []value.AllocPair{
		{Key: value.Literal(0), Val: value.Literal(3)},
		{Key: value.Literal(1), Val: value.Literal(5)},
	}
	enc := compact.NewEncoder()
	enc.AllocList(pairs)
	got := readOne(t, enc.Bytes())
	if got.Kind != value.KindExtAllocList {
		t.Fatalf("expected ext alloc list, got %v", got.Kind)
	}
	for i := range pairs {
		if !got.Pairs[i].Key.Equal(pairs[i].Key) || !got.Pairs[i].Val.Equal(pairs[i].Val) {
			t.Errorf("pair %d mismatch: got %+v, want %+v", i, got.Pairs[i], pairs[i])
		}
	}
}

func TestFPReg(t *testing.T) {
	enc := compact.NewEncoder()
	enc.FPReg(3)
	got := readOne(t, enc.Bytes())
	if got.Kind != value.KindFPReg || got.Index != 3 {
		t.Errorf("expected FPReg(3), got %+v", got)
	}
}

func TestUnsupportedExtendedTag(t *testing.T) {
	_, err := compact.NewReader(bytes.NewReader([]byte{0x67})).Read()
	if err == nil {
		t.Fatal("expected error for unsupported extended tag")
	}
}

func Test9ByteLiteralLengthExtension(t *testing.T) {
	// 2^80 needs 11 bytes (its top byte 0x01 leaves the sign bit clear, so
	// no extra sign byte), past the 9-byte threshold, forcing the
	// "length = count+9" extension (§4.B).
	want := new(big.Int).Lsh(big.NewInt(1), 80)
	enc := compact.NewEncoder()
	enc.BigInteger(want)

	encoded := enc.Bytes()
	b0 := encoded[0]
	if b0&0x07 != 1 {
		t.Fatalf("expected integer tag, got tag %d", b0&0x07)
	}
	if b0>>5 != 7 {
		t.Fatalf("expected the 9-byte-length extension marker, got %d", b0>>5)
	}

	got := readOne(t, encoded)
	if got.Kind != value.KindInteger {
		t.Fatalf("expected integer kind, got %v", got.Kind)
	}
	if got.Big.Cmp(want) != 0 {
		t.Errorf("round trip 2^80: got %s, want %s", got.Big.String(), want.String())
	}
}
