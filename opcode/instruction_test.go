package opcode_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/beamdis/beamdis/internal/compact"
	"github.com/beamdis/beamdis/internal/value"
	"github.com/beamdis/beamdis/opcode"
)

// encodeInstruction writes an opcode byte followed by each operand's
// compact-term encoding, mirroring how the code chunk actually lays out
// an instruction stream.
func encodeInstruction(t *testing.T, op byte, operands ...value.Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(op)
	for _, v := range operands {
		enc := compact.NewEncoder()
		encodeValue(enc, v)
		buf.Write(enc.Bytes())
	}
	return buf.Bytes()
}

func encodeValue(enc *compact.Encoder, v value.Value) {
	switch v.Kind {
	case value.KindAtom:
		enc.Atom(v.Index)
	case value.KindLiteral:
		enc.Literal(v.Index)
	case value.KindLabel:
		enc.Label(v.Index)
	case value.KindXReg:
		enc.XReg(v.Index)
	case value.KindYReg:
		enc.YReg(v.Index)
	case value.KindExtList:
		enc.List(v.List)
	default:
		enc.Literal(0)
	}
}

func TestDecodeOneLabel(t *testing.T) {
	data := encodeInstruction(t, 1, value.Label(5))
	r := compact.NewReader(bytes.NewReader(data))
	instr, err := opcode.DecodeOne(r)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if instr.Mnemonic() != "label" {
		t.Errorf("mnemonic = %q, want label", instr.Mnemonic())
	}
	if len(instr.Operands) != 1 || instr.Operands[0].Index != 5 {
		t.Errorf("unexpected operands: %+v", instr.Operands)
	}
}

func TestDecodeFuncInfo(t *testing.T) {
	data := encodeInstruction(t, 2, value.Atom(1), value.Atom(2), value.Integer(0))
	r := compact.NewReader(bytes.NewReader(data))
	instr, err := opcode.DecodeOne(r)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if instr.Mnemonic() != "func_info" || len(instr.Operands) != 3 {
		t.Fatalf("unexpected instruction: %+v", instr)
	}
}

func TestJumpTargetsConditionalBranch(t *testing.T) {
	data := encodeInstruction(t, 43, value.Label(7), value.XReg(0), value.Atom(3))
	r := compact.NewReader(bytes.NewReader(data))
	instr, err := opcode.DecodeOne(r)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	targets := instr.JumpTargets()
	if len(targets) != 1 || targets[0] != 7 {
		t.Errorf("JumpTargets = %v, want [7]", targets)
	}
	if !instr.IsConditional() {
		t.Error("expected conditional instruction")
	}
}

func TestJumpTargetsSwitchTable(t *testing.T) {
	list := value.ExtList([]value.Value{
		value.Literal(1), value.Label(10),
		value.Literal(2), value.Label(11),
	})
	data := encodeInstruction(t, 59, value.XReg(0), value.Label(9), list)
	r := compact.NewReader(bytes.NewReader(data))
	instr, err := opcode.DecodeOne(r)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	targets := instr.JumpTargets()
	if len(targets) != 2 || targets[0] != 10 || targets[1] != 11 {
		t.Errorf("JumpTargets = %v, want [10 11]", targets)
	}
}

func TestUnknownOpcodeFails(t *testing.T) {
	r := compact.NewReader(bytes.NewReader([]byte{0xFE}))
	if _, err := opcode.DecodeOne(r); err == nil {
		t.Fatal("expected error for unregistered opcode")
	}
}

type stubResolver struct{}

func (stubResolver) AtomName(index int) string      { return "'atom" + itoaTest(index) + "'" }
func (stubResolver) LiteralString(index int) string { return "lit" + itoaTest(index) }

func itoaTest(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestRenderSwitchTable(t *testing.T) {
	list := value.ExtList([]value.Value{
		value.Literal(1), value.Label(10),
		value.Literal(2), value.Label(11),
	})
	data := encodeInstruction(t, 59, value.XReg(0), value.Label(9), list)
	r := compact.NewReader(bytes.NewReader(data))
	instr, err := opcode.DecodeOne(r)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	got := opcode.Render(instr, stubResolver{})
	wantField := "select_val" + strings.Repeat(" ", 20-len("select_val"))
	want := wantField + "X 0, label9, [`lit1` => label10, `lit2` => label11]"
	if got != want {
		t.Errorf("Render =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderTypedReg(t *testing.T) {
	instr := opcode.Instruction{Opcode: 64, Operands: []value.Value{value.TypedReg(value.XReg(2), 4), value.XReg(0)}}
	got := opcode.Render(instr, stubResolver{})
	wantField := "move" + strings.Repeat(" ", 20-len("move"))
	want := wantField + "X2<4>, X 0"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}
