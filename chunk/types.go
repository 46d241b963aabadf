package chunk

import (
	"github.com/beamdis/beamdis/internal/extterm"
	"github.com/beamdis/beamdis/opcode"
)

// AtomTable is an ordered sequence of atom names, 1-based by convention
// (index 0 is reserved and never populated by ParseAtoms). Lookups outside
// the table should be reported by the caller, not the table itself.
type AtomTable []string

// Name resolves a 1-based atom index, returning ok=false out of range.
func (t AtomTable) Name(index int) (string, bool) {
	if index < 1 || index >= len(t) {
		return "", false
	}
	return t[index], true
}

// ImportEntry is one (module, function, arity) import reference, each field
// an atom-table index.
type ImportEntry struct {
	Module   int
	Function int
	Arity    int
}

type ImportTable []ImportEntry

// Get looks up a 0-based import table index.
func (t ImportTable) Get(index int) (ImportEntry, bool) {
	if index < 0 || index >= len(t) {
		return ImportEntry{}, false
	}
	return t[index], true
}

// ExportEntry is one (name, arity, entry-label) export declaration.
type ExportEntry struct {
	Name  int
	Arity int
	Label int
}

type ExportTable []ExportEntry

// FunctionEntry is one local function table row.
type FunctionEntry struct {
	Name       int
	Arity      int
	Entry      int
	Index      int
	NumFree    int
	OldUnique  int
}

type FunctionTable []FunctionEntry

// LiteralTable is the decoded contents of the LitT chunk: one external term
// per entry, looked up by 0-based index.
type LiteralTable []extterm.Term

func (t LiteralTable) Get(index int) (extterm.Term, bool) {
	if index < 0 || index >= len(t) {
		return extterm.Term{}, false
	}
	return t[index], true
}

// Render resolves a literal index to its short textual form, falling back
// to a raw index marker when the index is out of range (§7: resolution
// failures are never fatal).
func (t LiteralTable) Render(index int) string {
	term, ok := t.Get(index)
	if !ok {
		return "literal#" + itoa(index)
	}
	return term.Render()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// LineRef is one (filename-index, line-number) entry of the line table.
type LineRef struct {
	FilenameIndex int
	Line          int
}

// LineTable is the decoded Line chunk: a sentinel-prefixed sequence of line
// references plus the pool of filenames they index into. Filename index 0
// is reserved ("invalid location") and never present in Filenames.
type LineTable struct {
	Refs      []LineRef
	Filenames []string
}

// CodeSection is the decoded Code chunk: its header words plus the full
// instruction stream, undivided into blocks (itemization is package
// analysis's job).
type CodeSection struct {
	Instructions   []opcode.Instruction
	Version        int
	InstructionSet int
	MaxOpcode      int
	LabelCount     int
	FunctionCount  int
}
