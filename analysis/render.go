package analysis

import (
	"sort"
	"strings"

	"github.com/beamdis/beamdis/opcode"
)

// Render formats the module header followed by every non-administrative
// block in label order: its annotations, external-caller comments,
// incoming-label comment, "labelN:" marker, and one tab-indented line per
// instruction. Output is stable under identical input (§6).
func Render(m *Module) string {
	var b strings.Builder
	b.WriteString("; Module: ")
	b.WriteString(m.Source.Name())
	b.WriteByte('\n')

	for _, label := range m.BlockOrder {
		if m.adminBlock[label] {
			continue
		}
		renderBlock(&b, m, m.Blocks[label])
	}
	return b.String()
}

// RenderFunction formats a single function's body blocks (its Blocks[0]
// administrative func_info block is skipped, same as Render), for use by a
// browser that displays one function at a time rather than a whole module.
func RenderFunction(m *Module, fn *FunctionInfo) string {
	var b strings.Builder
	b.WriteString("; Function: ")
	b.WriteString(m.Signature(fn))
	b.WriteByte('\n')
	for _, label := range fn.Blocks {
		if m.adminBlock[label] {
			continue
		}
		renderBlock(&b, m, m.Blocks[label])
	}
	return b.String()
}

func renderBlock(b *strings.Builder, m *Module, block *CodeBlock) {
	for _, annotation := range block.Annotations {
		b.WriteString(annotation)
		b.WriteByte('\n')
	}
	for _, caller := range block.ExternalCallers {
		b.WriteString(caller)
		b.WriteByte('\n')
	}
	if len(block.Incoming) > 0 {
		incoming := append([]int(nil), block.Incoming...)
		sort.Ints(incoming)
		labels := make([]string, len(incoming))
		for i, in := range incoming {
			labels[i] = "label" + itoa(in)
		}
		b.WriteString("; => Called from ")
		b.WriteString(strings.Join(labels, ", "))
		b.WriteByte('\n')
	}

	b.WriteString("label")
	b.WriteString(itoa(block.Label))
	b.WriteString(":\n")

	for idx, instr := range block.Instructions {
		b.WriteByte('\t')
		b.WriteString(opcode.Render(instr, m))
		if note, ok := block.InstrNotes[idx]; ok {
			b.WriteString("  ")
			b.WriteString(note)
		}
		b.WriteByte('\n')
	}
}

// FindMergingBlock follows the "next" fall-through chain from each of a and
// b until a terminal block (one with no Next) is reached, collecting
// visited labels, and returns the first label common to both paths. This
// implements the documented intended behavior (walk label ids, look up
// blocks by id) rather than a source quirk that dereferences a
// reassigned id as if it were still a block object.
func (m *Module) FindMergingBlock(a, b int) (int, bool) {
	visitedA := m.walkNextChain(a)
	seen := make(map[int]bool, len(visitedA))
	for _, label := range visitedA {
		seen[label] = true
	}
	for _, label := range m.walkNextChain(b) {
		if seen[label] {
			return label, true
		}
	}
	return 0, false
}

func (m *Module) walkNextChain(start int) []int {
	var path []int
	visited := make(map[int]bool)
	current := start
	for {
		if visited[current] {
			break // defend against a next-chain cycle
		}
		visited[current] = true
		path = append(path, current)
		block, ok := m.Blocks[current]
		if !ok || !block.HasNext {
			break
		}
		current = block.Next
	}
	return path
}
