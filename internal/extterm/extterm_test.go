package extterm_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/beamdis/beamdis/internal/extterm"
)

func TestReadSmallInteger(t *testing.T) {
	term, err := extterm.Read(bytes.NewReader([]byte{97, 42}))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if term.Kind != extterm.KindSmallInt || term.Int != 42 {
		t.Errorf("got %+v, want SmallInt(42)", term)
	}
}

func TestReadAtom(t *testing.T) {
	data := append([]byte{100, 0, 3}, []byte("foo")...)
	term, err := extterm.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if term.Kind != extterm.KindAtom || term.Atom != "foo" {
		t.Errorf("got %+v, want Atom(foo)", term)
	}
}

func TestReadSmallTuple(t *testing.T) {
	// {foo, 42}
	data := []byte{104, 2}
	data = append(data, 100, 0, 3)
	data = append(data, []byte("foo")...)
	data = append(data, 97, 42)

	term, err := extterm.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if term.Kind != extterm.KindTuple || len(term.Elements) != 2 {
		t.Fatalf("got %+v, want a 2-tuple", term)
	}
	if term.Elements[0].Atom != "foo" || term.Elements[1].Int != 42 {
		t.Errorf("unexpected tuple contents: %+v", term.Elements)
	}
}

func TestReadSmallBig2e80(t *testing.T) {
	want := new(big.Int).Lsh(big.NewInt(1), 80)
	magLE := want.Bytes()
	for i, j := 0, len(magLE)-1; i < j; i, j = i+1, j-1 {
		magLE[i], magLE[j] = magLE[j], magLE[i]
	}
	data := []byte{110, byte(len(magLE)), 0}
	data = append(data, magLE...)

	term, err := extterm.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if term.Kind != extterm.KindBigInt {
		t.Fatalf("got kind %v, want BigInt", term.Kind)
	}
	if term.Big.Cmp(want) != 0 {
		t.Errorf("got %s, want %s", term.Big.String(), want.String())
	}
}

func TestReadNegativeSmallBig(t *testing.T) {
	data := []byte{110, 1, 1, 5} // -5
	term, err := extterm.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if term.Big.Cmp(big.NewInt(-5)) != 0 {
		t.Errorf("got %s, want -5", term.Big.String())
	}
}

func TestReadListWithTail(t *testing.T) {
	// [1 | 2] : improper list, one element, tail SmallInteger(2)
	data := []byte{108, 0, 0, 0, 1, 97, 1, 97, 2}
	term, err := extterm.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if term.Kind != extterm.KindList || len(term.Elements) != 1 {
		t.Fatalf("got %+v", term)
	}
	if term.Tail == nil || term.Tail.Int != 2 {
		t.Errorf("expected tail SmallInteger(2), got %+v", term.Tail)
	}
}

func TestReadProperListEndsNil(t *testing.T) {
	data := []byte{108, 0, 0, 0, 1, 97, 1, 106}
	term, err := extterm.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if term.Tail != nil {
		t.Errorf("expected nil tail for proper list, got %+v", term.Tail)
	}
}

func TestVersionMarkerSkipped(t *testing.T) {
	data := []byte{131, 97, 9}
	term, err := extterm.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if term.Kind != extterm.KindSmallInt || term.Int != 9 {
		t.Errorf("got %+v", term)
	}
}

func TestUnsupportedTag(t *testing.T) {
	_, err := extterm.Read(bytes.NewReader([]byte{255}))
	if err == nil {
		t.Fatal("expected error for unsupported tag")
	}
}

func TestReadExport(t *testing.T) {
	data := []byte{113}
	data = append(data, 100, 0, 1)
	data = append(data, []byte("m")...)
	data = append(data, 100, 0, 1)
	data = append(data, []byte("f")...)
	data = append(data, 97, 0)

	term, err := extterm.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if term.Kind != extterm.KindExport {
		t.Fatalf("got %+v", term)
	}
	if term.Export.Module.Atom != "m" || term.Export.Function.Atom != "f" || term.Export.Arity.Int != 0 {
		t.Errorf("unexpected export: %+v", term.Export)
	}
}
