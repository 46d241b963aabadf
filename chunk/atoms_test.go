package chunk_test

import (
	"bytes"
	"testing"

	"github.com/beamdis/beamdis/chunk"
	"github.com/beamdis/beamdis/internal/compact"
)

func TestParseAtomsOneBytePrefix(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(u32(2))
	buf.WriteByte(1)
	buf.WriteString("m")
	buf.WriteByte(3)
	buf.WriteString("foo")

	atoms, err := chunk.ParseAtoms(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseAtoms: %v", err)
	}
	if name, ok := atoms.Name(1); !ok || name != "m" {
		t.Errorf("atom 1 = %q, %v", name, ok)
	}
	if name, ok := atoms.Name(2); !ok || name != "foo" {
		t.Errorf("atom 2 = %q, %v", name, ok)
	}
	if _, ok := atoms.Name(0); ok {
		t.Error("atom 0 should be unresolvable (reserved)")
	}
}

func TestParseAtomsNegativeCountUsesCompactLengths(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(u32(-1))
	enc := compact.NewEncoder()
	enc.Literal(3)
	buf.Write(enc.Bytes())
	buf.WriteString("bar")

	atoms, err := chunk.ParseAtoms(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseAtoms: %v", err)
	}
	if name, ok := atoms.Name(1); !ok || name != "bar" {
		t.Errorf("atom 1 = %q, %v", name, ok)
	}
}
