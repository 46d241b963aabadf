package analysis

import (
	"github.com/beamdis/beamdis/container"
	"github.com/beamdis/beamdis/internal/value"
)

// Analyze itemizes a parsed module's code section into blocks, attributes
// them to functions, and builds the per-function control-flow graph. It
// does not perform cross-module annotation — call Annotate afterwards once
// every peer module has been analyzed.
func Analyze(source *container.Module) *Module {
	m := &Module{Source: source}
	itemize(m)
	findFunctions(m)
	buildCFG(m)
	return m
}

// itemize walks the code instruction stream; every label instruction opens
// a new block, and every other instruction joins the block currently open.
func itemize(m *Module) {
	blocks := make(map[int]*CodeBlock)
	var order []int

	var current *CodeBlock
	for _, instr := range m.Source.Code.Instructions {
		if instr.Mnemonic() == "label" && len(instr.Operands) == 1 {
			label := instr.Operands[0].Index
			current = newBlock(label)
			blocks[label] = current
			order = append(order, label)
			continue
		}
		if current == nil {
			// Instructions before any label (should not occur in a
			// well-formed module); collect them under a sentinel block
			// so nothing is silently dropped.
			current = newBlock(0)
			blocks[0] = current
			order = append(order, 0)
		}
		current.Instructions = append(current.Instructions, instr)
	}

	m.Blocks = blocks
	m.BlockOrder = order

	for i, label := range order {
		b := blocks[label]
		last, ok := b.lastInstruction()
		if ok && last.IsTerminal() {
			continue
		}
		if i+1 < len(order) {
			b.Next = order[i+1]
			b.HasNext = true
		}
	}
}

// findFunctions groups the module's blocks, in order, into functions split
// at each func_info pseudo-instruction.
func findFunctions(m *Module) {
	var out []*FunctionInfo
	m.adminBlock = make(map[int]bool)
	m.entryFn = make(map[int]*FunctionInfo)
	m.blockFunc = make(map[int]*FunctionInfo)

	var pending []int
	var current *FunctionInfo

	flush := func(next *FunctionInfo) {
		if current != nil {
			current.Blocks = pending
			out = append(out, current)
			if len(current.Blocks) > 0 {
				m.adminBlock[current.Blocks[0]] = true
			}
			if entry, ok := current.EntryBlock(); ok {
				m.entryFn[entry] = current
			}
			for _, lbl := range current.Blocks {
				m.blockFunc[lbl] = current
			}
		}
		current = next
		pending = nil
	}

	for _, label := range m.BlockOrder {
		b := m.Blocks[label]
		if info, ok := funcInfoOperands(b); ok {
			flush(&FunctionInfo{Module: info[0].Index, Name: info[1].Index, Arity: funcInfoArity(info[2])})
		}
		pending = append(pending, label)
	}
	flush(nil)

	m.Functions = out
}

// funcInfoOperands returns the three func_info operands if the block's
// first instruction is a func_info pseudo-instruction.
func funcInfoOperands(b *CodeBlock) ([]value.Value, bool) {
	if len(b.Instructions) == 0 {
		return nil, false
	}
	first := b.Instructions[0]
	if first.Mnemonic() != "func_info" || len(first.Operands) != 3 {
		return nil, false
	}
	return first.Operands, true
}

func funcInfoArity(v value.Value) int {
	if v.Big != nil {
		return int(v.Big.Int64())
	}
	return v.Index
}

// buildCFG adds outgoing/incoming edges for every instruction that declares
// jump targets. A target outside the source instruction's own function is
// tolerated — tail calls and shared error blocks legitimately cross
// function boundaries — and still linked.
func buildCFG(m *Module) {
	for _, label := range m.BlockOrder {
		src := m.Blocks[label]
		for _, instr := range src.Instructions {
			targets := instr.JumpTargets()
			if len(targets) == 0 {
				continue
			}
			for _, target := range targets {
				src.Outgoing = append(src.Outgoing, Edge{Instr: instr, Target: target})
				if dst, ok := m.Blocks[target]; ok {
					dst.addIncoming(label)
				}
			}
		}
	}
}
