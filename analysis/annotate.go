package analysis

import (
	"github.com/beamdis/beamdis/internal/value"
	"github.com/beamdis/beamdis/opcode"
)

// peerTarget is where a resolved <module:name/arity> signature lives among
// the peer set: which analyzed module, and which block is its entry point.
type peerTarget struct {
	Module *Module
	Block  int
}

// Annotate resolves cross-references for m against a peer set (every
// analyzed module it might call into or be called from, typically
// including m itself). It is safe to call once all peers have been
// Analyze()'d; annotation only ever appends, so running it twice with the
// same peer set is idempotent (§8 Annotation idempotence).
func Annotate(peers []*Module) {
	sig := make(map[string]peerTarget)
	for _, peer := range peers {
		for _, fn := range peer.Functions {
			entry, ok := fn.EntryBlock()
			if !ok {
				continue
			}
			sig[peer.Signature(fn)] = peerTarget{Module: peer, Block: entry}
		}
	}

	for _, m := range peers {
		annotateFunctionHeaders(m)
		annotateModule(m, sig)
	}
}

func annotateFunctionHeaders(m *Module) {
	for entry, fn := range m.entryFn {
		block, ok := m.Blocks[entry]
		if !ok {
			continue
		}
		block.addAnnotation("; Function: " + m.Signature(fn))
	}
}

func annotateModule(m *Module, sig map[string]peerTarget) {
	for _, label := range m.BlockOrder {
		block := m.Blocks[label]
		caller := m.blockFunc[label]
		for idx, instr := range block.Instructions {
			switch instr.Mnemonic() {
			case "call", "call_only":
				annotateLocalCall(m, block, idx, instr, 1)
			case "call_last":
				annotateLocalCall(m, block, idx, instr, 1)
			case "call_ext", "call_ext_only":
				annotateExternalCall(m, block, idx, instr, 1, caller, sig)
			case "call_ext_last":
				annotateExternalCall(m, block, idx, instr, 1, caller, sig)
			case "select_val", "select_tuple_arity":
				annotateSelect(m, label, instr)
			}
		}
	}
}

func annotateLocalCall(m *Module, block *CodeBlock, idx int, instr opcode.Instruction, operand int) {
	if operand >= len(instr.Operands) {
		return
	}
	target := instr.Operands[operand]
	if target.Kind != value.KindLabel {
		return
	}
	callee, ok := m.entryFn[target.Index]
	if !ok {
		return
	}
	block.setInstrNote(idx, "; => Calls "+m.Signature(callee))
}

func annotateExternalCall(m *Module, block *CodeBlock, idx int, instr opcode.Instruction, operand int, caller *FunctionInfo, sig map[string]peerTarget) {
	if operand >= len(instr.Operands) {
		return
	}
	importIdx := instr.Operands[operand].Index
	imp, ok := m.Source.Imports.Get(importIdx)
	if !ok {
		return
	}
	key := m.AtomNameBare(imp.Module) + ":" + m.AtomNameBare(imp.Function) + "/" + itoa(imp.Arity)
	target, ok := sig[key]
	if !ok {
		return
	}
	calleeBlock, ok := target.Module.Blocks[target.Block]
	if !ok {
		return
	}
	callerSig := "<unknown>"
	if caller != nil {
		callerSig = m.Signature(caller)
	}
	calleeBlock.addExternalCaller("; => Externally called from <" + callerSig + ">")
	block.setInstrNote(idx, "; => Calls "+key)
}

func annotateSelect(m *Module, caller int, instr opcode.Instruction) {
	if len(instr.Operands) < 3 {
		return
	}
	list := instr.Operands[2]
	if list.Kind != value.KindExtList {
		return
	}
	for i := 0; i+1 < len(list.List); i += 2 {
		caseValue := list.List[i]
		label := list.List[i+1]
		if label.Kind != value.KindLabel {
			continue
		}
		block, ok := m.Blocks[label.Index]
		if !ok {
			continue
		}
		block.addAnnotation("; Case " + caseValueText(m, caseValue) + " from label" + itoa(caller))
	}
}

func caseValueText(m *Module, v value.Value) string {
	switch v.Kind {
	case value.KindLiteral:
		return m.LiteralString(v.Index)
	case value.KindInteger:
		if v.Big != nil {
			return v.Big.String()
		}
		return "0"
	case value.KindAtom:
		return m.AtomName(v.Index)
	default:
		return itoa(v.Index)
	}
}
