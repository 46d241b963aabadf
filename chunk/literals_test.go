package chunk_test

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/beamdis/beamdis/chunk"
	"github.com/beamdis/beamdis/internal/extterm"
)

func smallTupleFooForty2() []byte {
	var buf bytes.Buffer
	buf.WriteByte(131) // version marker
	buf.WriteByte(104) // small tuple
	buf.WriteByte(2)   // arity
	buf.WriteByte(100) // atom
	binary.Write(&buf, binary.BigEndian, uint16(3))
	buf.WriteString("foo")
	buf.WriteByte(97) // small integer
	buf.WriteByte(42)
	return buf.Bytes()
}

func smallBig2e80() []byte {
	v := new(big.Int).Lsh(big.NewInt(1), 80)
	magBE := v.Bytes()
	magLE := make([]byte, len(magBE))
	for i, b := range magBE {
		magLE[len(magBE)-1-i] = b
	}
	var buf bytes.Buffer
	buf.WriteByte(131)
	buf.WriteByte(110) // small big
	buf.WriteByte(byte(len(magLE)))
	buf.WriteByte(0) // sign
	buf.Write(magLE)
	return buf.Bytes()
}

func buildLiteralChunkBody(t *testing.T, entries ...[]byte) []byte {
	t.Helper()
	var inner bytes.Buffer
	inner.Write(u32(len(entries)))
	for _, e := range entries {
		inner.Write(u32(len(e))) // opaque per-entry size, ignored by the reader
		inner.Write(e)
	}

	var compressed bytes.Buffer
	fw := zlib.NewWriter(&compressed)
	if _, err := fw.Write(inner.Bytes()); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}

	var body bytes.Buffer
	body.Write(u32(inner.Len()))
	body.Write(compressed.Bytes())
	return body.Bytes()
}

func TestParseLiteralsTupleAndBigInt(t *testing.T) {
	body := buildLiteralChunkBody(t, smallTupleFooForty2(), smallBig2e80())

	table, err := chunk.ParseLiterals(body)
	if err != nil {
		t.Fatalf("ParseLiterals: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 literals, got %d", len(table))
	}

	tuple, ok := table.Get(0)
	if !ok || tuple.Kind != extterm.KindTuple || len(tuple.Elements) != 2 {
		t.Fatalf("unexpected literal 0: %+v", tuple)
	}
	if tuple.Elements[0].Atom != "foo" || tuple.Elements[1].Int != 42 {
		t.Errorf("unexpected tuple contents: %+v", tuple.Elements)
	}

	big80, ok := table.Get(1)
	if !ok || big80.Kind != extterm.KindBigInt {
		t.Fatalf("unexpected literal 1: %+v", big80)
	}
	want := new(big.Int).Lsh(big.NewInt(1), 80)
	if big80.Big.Cmp(want) != 0 {
		t.Errorf("literal 1 = %s, want %s", big80.Big.String(), want.String())
	}
}

func TestParseLiteralsRejectsOversizedDeclaration(t *testing.T) {
	var inner bytes.Buffer
	inner.Write(u32(0))
	var compressed bytes.Buffer
	fw := zlib.NewWriter(&compressed)
	fw.Write(inner.Bytes())
	fw.Close()

	var body bytes.Buffer
	body.Write(u32(chunk.MaxLiteralSize + 1))
	body.Write(compressed.Bytes())

	if _, err := chunk.ParseLiterals(body.Bytes()); err == nil {
		t.Fatal("expected size-limit error")
	}
}
