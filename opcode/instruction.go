package opcode

import (
	"github.com/beamdis/beamdis/internal/compact"
	"github.com/beamdis/beamdis/internal/value"
	"github.com/beamdis/beamdis/internal/xerrors"
)

// Instruction is a decoded code-chunk instruction: one opcode byte plus
// its fixed-arity compact-term operands.
type Instruction struct {
	Operands []value.Value
	Opcode   byte
}

// Info looks up the instruction's registry entry. Ok is false for an
// opcode absent from the registry — DecodeOne and DecodeAll never produce
// such an Instruction, but callers that construct one by hand should
// still check.
func (i Instruction) Info() (Info, bool) {
	return Lookup(i.Opcode)
}

// Mnemonic returns the instruction's mnemonic, or "unknown" for an
// unregistered opcode.
func (i Instruction) Mnemonic() string {
	if info, ok := Lookup(i.Opcode); ok {
		return info.Mnemonic
	}
	return "unknown"
}

// IsTerminal reports whether the instruction unconditionally exits the
// function (return, raise, int_code_end, ...).
func (i Instruction) IsTerminal() bool {
	info, ok := Lookup(i.Opcode)
	return ok && info.Terminal
}

// IsConditional reports whether the instruction is a branch-flagged
// instruction with at least one jump target.
func (i Instruction) IsConditional() bool {
	info, ok := Lookup(i.Opcode)
	return ok && info.IsConditional()
}

// IsUnconditionalJump reports whether control always leaves this
// instruction for one of its jump targets (e.g. `jump`).
func (i Instruction) IsUnconditionalJump() bool {
	info, ok := Lookup(i.Opcode)
	return ok && info.IsUnconditionalJump()
}

// JumpTargets collects the label ids referenced by the instruction's
// jump-ref operands. An ExtList operand contributes every Label-kind
// element it holds (switch tables).
func (i Instruction) JumpTargets() []int {
	info, ok := Lookup(i.Opcode)
	if !ok {
		return nil
	}
	var targets []int
	for _, idx := range info.JumpRefs {
		if idx < 0 || idx >= len(i.Operands) {
			continue
		}
		op := i.Operands[idx]
		switch op.Kind {
		case value.KindLabel:
			targets = append(targets, op.Index)
		case value.KindExtList:
			for _, elem := range op.List {
				if elem.Kind == value.KindLabel {
					targets = append(targets, elem.Index)
				}
			}
		}
	}
	return targets
}

// DecodeOne reads one opcode byte and its fixed-arity operand stream from
// r. Returns *xerrors.Error wrapping KindUnknownOpcode for an opcode not
// in the registry.
func DecodeOne(r *compact.Reader) (Instruction, error) {
	op, err := r.ReadByte()
	if err != nil {
		return Instruction{}, err
	}
	info, ok := Lookup(op)
	if !ok {
		return Instruction{}, xerrors.UnknownOpcode(op).AtOffset(r.Position() - 1)
	}
	operands := make([]value.Value, 0, info.Arity)
	for i := 0; i < info.Arity; i++ {
		v, err := r.Read()
		if err != nil {
			return Instruction{}, err
		}
		operands = append(operands, v)
	}
	return Instruction{Opcode: op, Operands: operands}, nil
}

// DecodeAll decodes a stream of instructions until the reader reaches
// io.EOF at an instruction boundary.
func DecodeAll(r *compact.Reader, atEOF func(err error) bool) ([]Instruction, error) {
	var out []Instruction
	for {
		start := r.Position()
		instr, err := DecodeOne(r)
		if err != nil {
			if r.Position() == start && atEOF(err) {
				return out, nil
			}
			return out, err
		}
		out = append(out, instr)
	}
}
