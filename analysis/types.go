// Package analysis itemizes a parsed module's code section into labeled
// blocks, attributes blocks to functions, builds the per-function control
// flow graph, resolves cross-module call references, and renders the
// annotated disassembly. Grounded on linker/internal/graph.Graph's
// index-keyed, build-once style, generalized from a component-dependency
// graph to a label-indexed one.
package analysis

import (
	"github.com/beamdis/beamdis/container"
	"github.com/beamdis/beamdis/opcode"
)

// Edge is one outgoing control-flow edge: the instruction that declared the
// jump and the label id it targets.
type Edge struct {
	Instr  opcode.Instruction
	Target int
}

// CodeBlock is a maximal run of instructions beginning at a label and
// ending before the next label. The leading label instruction itself is
// not stored in Instructions — it is implied by Label (§3 invariant; see
// the block-partition testable property).
type CodeBlock struct {
	Label           int
	Instructions    []opcode.Instruction
	Incoming        []int
	Outgoing        []Edge
	ExternalCallers []string
	Annotations     []string
	// InstrNotes maps an instruction's index within Instructions to a
	// trailing comment (e.g. a resolved call target), rendered after the
	// instruction's own operands.
	InstrNotes map[int]string
	Next       int
	HasNext    bool
}

func newBlock(label int) *CodeBlock {
	return &CodeBlock{Label: label, Next: -1}
}

func (b *CodeBlock) addIncoming(from int) {
	for _, existing := range b.Incoming {
		if existing == from {
			return
		}
	}
	b.Incoming = append(b.Incoming, from)
}

func (b *CodeBlock) addAnnotation(text string) {
	for _, existing := range b.Annotations {
		if existing == text {
			return
		}
	}
	b.Annotations = append(b.Annotations, text)
}

func (b *CodeBlock) setInstrNote(idx int, text string) {
	if b.InstrNotes == nil {
		b.InstrNotes = make(map[int]string)
	}
	b.InstrNotes[idx] = text
}

func (b *CodeBlock) addExternalCaller(signature string) {
	for _, existing := range b.ExternalCallers {
		if existing == signature {
			return
		}
	}
	b.ExternalCallers = append(b.ExternalCallers, signature)
}

func (b *CodeBlock) lastInstruction() (opcode.Instruction, bool) {
	if len(b.Instructions) == 0 {
		return opcode.Instruction{}, false
	}
	return b.Instructions[len(b.Instructions)-1], true
}

// FunctionInfo is one local function: its identity (module/name atom
// indices and arity) plus the ordered list of block labels it owns.
// Blocks[0] is the administrative block holding the func_info
// pseudo-instruction; Blocks[1:] are the function's real body blocks.
type FunctionInfo struct {
	Module int
	Name   int
	Arity  int
	Blocks []int
}

// EntryBlock returns the label of the function's first real body block, or
// false if the function has no body (a func_info with no following block,
// which should not occur in a well-formed module).
func (f *FunctionInfo) EntryBlock() (int, bool) {
	if len(f.Blocks) < 2 {
		return 0, false
	}
	return f.Blocks[1], true
}

// Module is the analyzed form of a parsed container.Module: its block
// index, block order, and function list. Construct with Analyze.
type Module struct {
	Source     *container.Module
	Blocks     map[int]*CodeBlock
	BlockOrder []int
	Functions  []*FunctionInfo
	adminBlock map[int]bool // label -> true if it is some function's Blocks[0]
	entryFn    map[int]*FunctionInfo
	blockFunc  map[int]*FunctionInfo // label -> owning function, any block
}

// AtomName implements opcode.Resolver, quoting a resolved atom and falling
// back to a raw marker for an out-of-range index (§7).
func (m *Module) AtomName(index int) string {
	if index == 0 {
		return "nil"
	}
	name, ok := m.Source.Atoms.Name(index)
	if !ok {
		return "atom#" + itoa(index)
	}
	return "'" + name + "'"
}

// LiteralString implements opcode.Resolver.
func (m *Module) LiteralString(index int) string {
	return m.Source.Literals.Render(index)
}

// Signature formats the <module:name/arity> cross-reference key for a
// function, resolving through this module's own atom table.
func (m *Module) Signature(f *FunctionInfo) string {
	return m.AtomNameBare(f.Module) + ":" + m.AtomNameBare(f.Name) + "/" + itoa(f.Arity)
}

// AtomNameBare resolves an atom without the quoting AtomName applies, for
// use inside cross-reference signatures.
func (m *Module) AtomNameBare(index int) string {
	if index == 0 {
		return "nil"
	}
	name, ok := m.Source.Atoms.Name(index)
	if !ok {
		return "atom#" + itoa(index)
	}
	return name
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
