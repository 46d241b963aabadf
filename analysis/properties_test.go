package analysis_test

import (
	"testing"

	"github.com/beamdis/beamdis/analysis"
	"github.com/beamdis/beamdis/chunk"
	"github.com/beamdis/beamdis/container"
	"github.com/beamdis/beamdis/internal/value"
	"github.com/beamdis/beamdis/opcode"
)

func buildTwoFunctions() *container.Module {
	return &container.Module{
		Atoms: chunk.AtomTable{"", "m", "f", "g"},
		Code: chunk.CodeSection{Instructions: []opcode.Instruction{
			instr(1, value.Label(1)),
			instr(2, value.Atom(1), value.Atom(2), value.Integer(0)),
			instr(1, value.Label(2)),
			instr(19),
			instr(1, value.Label(3)),
			instr(2, value.Atom(1), value.Atom(3), value.Integer(0)),
			instr(1, value.Label(4)),
			instr(19),
		}},
	}
}

func TestFunctionCoverage(t *testing.T) {
	mod := analysis.Analyze(buildTwoFunctions())
	if len(mod.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(mod.Functions))
	}

	owned := make(map[int]int)
	for _, fn := range mod.Functions {
		for _, label := range fn.Blocks {
			owned[label]++
		}
	}
	for label := range mod.Blocks {
		if owned[label] != 1 {
			t.Errorf("block %d owned by %d functions, want exactly 1", label, owned[label])
		}
	}
}

func TestCFGClosure(t *testing.T) {
	mod := analysis.Analyze(buildTwoFunctions())
	analysis.Annotate([]*analysis.Module{mod})

	for label, block := range mod.Blocks {
		for _, edge := range block.Outgoing {
			dst, ok := mod.Blocks[edge.Target]
			if !ok {
				continue
			}
			found := false
			for _, in := range dst.Incoming {
				if in == label {
					found = true
				}
			}
			if !found {
				t.Errorf("outgoing edge %d -> %d has no matching incoming edge", label, edge.Target)
			}
		}
	}
}

func TestAnnotationIdempotence(t *testing.T) {
	mod := analysis.Analyze(buildTwoFunctions())
	analysis.Annotate([]*analysis.Module{mod})
	first := analysis.Render(mod)
	analysis.Annotate([]*analysis.Module{mod})
	second := analysis.Render(mod)
	if first != second {
		t.Errorf("re-running Annotate changed the render:\n%q\nvs\n%q", first, second)
	}
}

func TestFindMergingBlock(t *testing.T) {
	// label1 (func_info) -> label2 -> label3 -> label4 (terminal); blocks 2
	// and 3 are empty, so each falls through to the next label.
	m := &container.Module{
		Atoms: chunk.AtomTable{"", "m", "f"},
		Code: chunk.CodeSection{Instructions: []opcode.Instruction{
			instr(1, value.Label(1)),
			instr(2, value.Atom(1), value.Atom(2), value.Integer(0)),
			instr(1, value.Label(2)),
			instr(1, value.Label(3)),
			instr(1, value.Label(4)),
			instr(19),
		}},
	}
	mod := analysis.Analyze(m)

	// Next is lexical-order fallthrough, so block 2's chain (2,3,4) and
	// block 3's chain (3,4) first meet at 3.
	merge, ok := mod.FindMergingBlock(2, 3)
	if !ok || merge != 3 {
		t.Errorf("FindMergingBlock(2, 3) = %d, %v; want 3, true", merge, ok)
	}
}
