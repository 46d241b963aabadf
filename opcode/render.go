package opcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beamdis/beamdis/internal/value"
)

// Resolver turns table indices into their textual names. Implemented by
// the module context (package analysis), which owns the atom and literal
// tables; the opcode package knows nothing about module layout.
type Resolver interface {
	// AtomName resolves an atom table index. Index 0 is NIL.
	AtomName(index int) string
	// LiteralString resolves a literal table index to a short textual
	// form of the decoded external term.
	LiteralString(index int) string
}

// RenderValue formats one operand the way the module's disassembly does:
// Atom -> 'name', Literal -> `value`, Label -> labelN, XReg/YReg/FPReg ->
// "X n"/"Y n"/"FR n", TypedReg -> reg<type-idx>, ExtList -> bracketed
// comma-separated resolved items. An unresolvable index still renders —
// resolution failures are never fatal (§7).
func RenderValue(v value.Value, r Resolver) string {
	switch v.Kind {
	case value.KindNil:
		return "nil"
	case value.KindAtom:
		return r.AtomName(v.Index)
	case value.KindLiteral:
		return "`" + r.LiteralString(v.Index) + "`"
	case value.KindLabel:
		return "label" + strconv.Itoa(v.Index)
	case value.KindXReg:
		return "X " + strconv.Itoa(v.Index)
	case value.KindYReg:
		return "Y " + strconv.Itoa(v.Index)
	case value.KindFPReg:
		return "FR " + strconv.Itoa(v.Index)
	case value.KindChar:
		return "$" + string(v.Codepoint)
	case value.KindInteger:
		if v.Big == nil {
			return "0"
		}
		return v.Big.String()
	case value.KindTypedReg:
		return renderRegCompact(*v.Reg) + "<" + strconv.Itoa(v.TypeIndex) + ">"
	case value.KindExtList:
		items := make([]string, len(v.List))
		for i, item := range v.List {
			items[i] = RenderValue(item, r)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case value.KindExtAllocList:
		items := make([]string, len(v.Pairs))
		for i, p := range v.Pairs {
			items[i] = RenderValue(p.Key, r) + " => " + RenderValue(p.Val, r)
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return fmt.Sprintf("<?%d>", v.Kind)
	}
}

// renderRegCompact renders the register wrapped by a TypedReg without the
// space used by a bare register operand, matching the decoder's
// `X2<4>`-style annotation for type-carrying registers.
func renderRegCompact(v value.Value) string {
	switch v.Kind {
	case value.KindXReg:
		return "X" + strconv.Itoa(v.Index)
	case value.KindYReg:
		return "Y" + strconv.Itoa(v.Index)
	case value.KindFPReg:
		return "FR" + strconv.Itoa(v.Index)
	default:
		return fmt.Sprintf("<?%d>", v.Kind)
	}
}

// renderPaired renders an ExtList operand as "value => labelN" pairs for
// switch-type instructions (select_val, select_tuple_arity), consuming
// the list two elements at a time.
func renderPaired(v value.Value, r Resolver) string {
	if v.Kind != value.KindExtList {
		return RenderValue(v, r)
	}
	items := make([]string, 0, len(v.List)/2)
	for i := 0; i+1 < len(v.List); i += 2 {
		items = append(items, RenderValue(v.List[i], r)+" => "+RenderValue(v.List[i+1], r))
	}
	return "[" + strings.Join(items, ", ") + "]"
}

// Render formats the full instruction line: a 20-column mnemonic field
// followed by comma-separated, resolved operands.
func Render(i Instruction, r Resolver) string {
	info, ok := Lookup(i.Opcode)
	mnemonic := "unknown"
	if ok {
		mnemonic = info.Mnemonic
	}

	operands := make([]string, len(i.Operands))
	for idx, op := range i.Operands {
		if ok && containsInt(info.PairRender, idx) {
			operands[idx] = renderPaired(op, r)
			continue
		}
		operands[idx] = RenderValue(op, r)
	}

	field := mnemonic
	if len(field) < 20 {
		field += strings.Repeat(" ", 20-len(field))
	} else {
		field += " "
	}
	return strings.TrimRight(field+strings.Join(operands, ", "), " ")
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
