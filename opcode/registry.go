// Package opcode is the static, compile-time-built registry mapping a
// numeric opcode to its arity and flags, plus the decoder and renderer that
// use it. A dispatch table over a single tagged Instruction, rather than a
// class hierarchy, keeps decoding branch-free on the hot path and makes the
// registry exhaustively checkable (see Check).
package opcode

// Info describes one opcode: its mnemonic, fixed operand arity, which
// operand positions carry jump references, and whether the instruction is
// terminal (exits the function) or a conditional branch.
type Info struct {
	Mnemonic string
	// JumpRefs lists operand indices that contain CFG label targets. If
	// such an operand is itself an ExtList, every Label-kind element it
	// contains is also a target (switch tables).
	JumpRefs []int
	// PairRender lists operand indices whose ExtList contents should be
	// rendered as "value => labelN" pairs rather than a flat list (switch
	// tables).
	PairRender []int
	Arity      int
	Opcode     byte
	Terminal   bool
	Branch     bool
}

// IsConditional reports whether the instruction is a true conditional
// branch: branch-flagged with at least one jump target. An unconditional
// jump has jump targets but Branch is false.
func (i Info) IsConditional() bool {
	return i.Branch && len(i.JumpRefs) > 0
}

// IsUnconditionalJump reports whether the instruction always transfers
// control away (not a fallthrough, not terminal) — e.g. `jump`.
func (i Info) IsUnconditionalJump() bool {
	return !i.Branch && !i.Terminal && len(i.JumpRefs) > 0
}

var registry = map[byte]Info{}

func reg(opcode byte, mnemonic string, arity int, opts ...func(*Info)) {
	info := Info{Opcode: opcode, Mnemonic: mnemonic, Arity: arity}
	for _, opt := range opts {
		opt(&info)
	}
	registry[opcode] = info
}

func jumpRefs(idx ...int) func(*Info) {
	return func(i *Info) { i.JumpRefs = idx }
}

func pairRender(idx ...int) func(*Info) {
	return func(i *Info) { i.PairRender = idx }
}

func terminal() func(*Info) {
	return func(i *Info) { i.Terminal = true }
}

func branch() func(*Info) {
	return func(i *Info) { i.Branch = true }
}

// Lookup returns the registered Info for opcode, if any.
func Lookup(op byte) (Info, bool) {
	info, ok := registry[op]
	return info, ok
}

// Mnemonics returns every registered mnemonic, for diagnostics and tests.
func Mnemonics() []string {
	out := make([]string, 0, len(registry))
	for _, info := range registry {
		out = append(out, info.Mnemonic)
	}
	return out
}

// Check verifies every registered entry has a non-empty mnemonic, a
// non-negative arity, and jump-ref/pair-render indices within [0, arity).
// Exercised by TestRegistryIsWellFormed so a bad registration fails the
// test suite rather than surfacing at decode time.
func Check() []string {
	var problems []string
	for op, info := range registry {
		if info.Mnemonic == "" {
			problems = append(problems, fmtProblem(op, "empty mnemonic"))
		}
		if info.Arity < 0 {
			problems = append(problems, fmtProblem(op, "negative arity"))
		}
		for _, idx := range info.JumpRefs {
			if idx < 0 || idx >= info.Arity {
				problems = append(problems, fmtProblem(op, "jump-ref index out of range"))
			}
		}
		for _, idx := range info.PairRender {
			if idx < 0 || idx >= info.Arity {
				problems = append(problems, fmtProblem(op, "pair-render index out of range"))
			}
		}
	}
	return problems
}

func fmtProblem(op byte, msg string) string {
	return "opcode " + itoa(int(op)) + ": " + msg
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

func init() {
	// Control flow and function boundaries.
	reg(1, "label", 1)
	reg(2, "func_info", 3)
	reg(3, "int_code_end", 0, terminal())

	reg(4, "call", 2)
	reg(5, "call_last", 3)
	reg(6, "call_only", 2)
	reg(7, "call_ext", 2)
	reg(8, "call_ext_last", 3)
	reg(78, "call_ext_only", 2)
	reg(75, "call_fun", 1)
	reg(178, "call_fun2", 3)

	reg(9, "bif0", 2)
	reg(10, "bif1", 4, jumpRefs(0))
	reg(11, "bif2", 5, jumpRefs(0))

	reg(12, "allocate", 2)
	reg(13, "allocate_heap", 3)
	reg(14, "allocate_zero", 2)
	reg(15, "allocate_heap_zero", 3)
	reg(16, "test_heap", 2)
	reg(17, "init", 1)
	reg(18, "deallocate", 1)
	reg(19, "return", 0, terminal())

	reg(20, "send", 0)
	reg(21, "remove_message", 0)
	reg(22, "timeout", 0)
	reg(23, "loop_rec", 2, jumpRefs(0), branch())
	reg(24, "loop_rec_end", 1, jumpRefs(0))
	reg(25, "wait", 1, jumpRefs(0))
	reg(26, "wait_timeout", 2, jumpRefs(0), branch())

	// is_* type tests: branch-flagged, jump-ref at operand 0.
	reg(39, "is_lt", 3, jumpRefs(0), branch())
	reg(40, "is_ge", 3, jumpRefs(0), branch())
	reg(41, "is_eq", 3, jumpRefs(0), branch())
	reg(42, "is_ne", 3, jumpRefs(0), branch())
	reg(43, "is_eq_exact", 3, jumpRefs(0), branch())
	reg(44, "is_ne_exact", 3, jumpRefs(0), branch())
	reg(45, "is_integer", 2, jumpRefs(0), branch())
	reg(46, "is_float", 2, jumpRefs(0), branch())
	reg(47, "is_number", 2, jumpRefs(0), branch())
	reg(48, "is_atom", 2, jumpRefs(0), branch())
	reg(49, "is_pid", 2, jumpRefs(0), branch())
	reg(50, "is_reference", 2, jumpRefs(0), branch())
	reg(51, "is_port", 2, jumpRefs(0), branch())
	reg(52, "is_nil", 2, jumpRefs(0), branch())
	reg(53, "is_binary", 2, jumpRefs(0), branch())
	reg(55, "is_list", 2, jumpRefs(0), branch())
	reg(56, "is_nonempty_list", 2, jumpRefs(0), branch())
	reg(57, "is_tuple", 2, jumpRefs(0), branch())
	reg(58, "test_arity", 3, jumpRefs(0), branch())
	reg(77, "is_function", 2, jumpRefs(0), branch())
	reg(114, "is_boolean", 2, jumpRefs(0), branch())
	reg(115, "is_function2", 3)
	reg(129, "is_bitstr", 2, jumpRefs(0), branch())
	reg(156, "is_map", 2, jumpRefs(0), branch())
	reg(159, "is_tagged_tuple", 4, jumpRefs(0), branch())

	reg(59, "select_val", 3, jumpRefs(2), pairRender(2), branch())
	reg(60, "select_tuple_arity", 3, jumpRefs(2), pairRender(2), branch())
	reg(61, "jump", 1, jumpRefs(0))

	reg(62, "catch", 2)
	reg(63, "catch_end", 1)
	reg(104, "try", 2)
	reg(105, "try_end", 1)
	reg(106, "try_case", 1)
	reg(107, "try_case_end", 1, terminal())
	reg(108, "raise", 2, terminal())
	reg(160, "build_stacktrace", 0)
	reg(161, "raw_raise", 0, terminal())

	reg(64, "move", 2)
	reg(65, "get_list", 3)
	reg(66, "get_tuple_element", 3)
	reg(67, "set_tuple_element", 3)
	reg(69, "put_list", 3)
	reg(70, "put_tuple", 2)
	reg(71, "put", 1)
	reg(162, "get_hd", 2)
	reg(163, "get_tl", 2)
	reg(164, "put_tuple2", 2)

	reg(72, "badmatch", 1, terminal())
	reg(73, "if_end", 0, terminal())
	reg(74, "case_end", 1, terminal())

	reg(94, "fclearerror", 0)
	reg(95, "fcheckerror", 1)
	reg(96, "fmove", 2)
	reg(97, "fconv", 2)
	reg(98, "fadd", 4)
	reg(99, "fsub", 4)
	reg(100, "fmul", 4)
	reg(101, "fdiv", 4)
	reg(102, "fnegate", 3)

	reg(103, "make_fun2", 1)
	reg(171, "make_fun3", 3)

	reg(154, "put_map_assoc", 5)
	reg(155, "put_map_exact", 5)
	reg(157, "has_map_fields", 3, jumpRefs(0), branch())
	reg(158, "get_map_elements", 3, jumpRefs(0), branch())

	reg(89, "bs_put_integer", 5)
	reg(90, "bs_put_binary", 5)
	reg(91, "bs_put_float", 5)
	reg(92, "bs_put_string", 2)
	reg(109, "bs_init2", 6)
	reg(111, "bs_add", 5)
	reg(112, "apply", 1)
	reg(113, "apply_last", 2)
	reg(117, "bs_get_integer2", 7, jumpRefs(0), branch())
	reg(118, "bs_get_float2", 7, jumpRefs(0), branch())
	reg(119, "bs_get_binary2", 7, jumpRefs(0), branch())
	reg(120, "bs_skip_bits2", 5, jumpRefs(0), branch())
	reg(121, "bs_test_tail2", 3, jumpRefs(0), branch())
	reg(131, "bs_test_unit", 3, jumpRefs(0), branch())
	reg(132, "bs_match_string", 4, jumpRefs(0), branch())
	reg(133, "bs_init_writable", 0)
	reg(134, "bs_append", 8)
	reg(135, "bs_private_append", 6)
	reg(137, "bs_init_bits", 6)
	reg(138, "bs_get_utf8", 5, jumpRefs(0), branch())
	reg(139, "bs_skip_utf8", 4, jumpRefs(0), branch())
	reg(140, "bs_get_utf16", 5, jumpRefs(0), branch())
	reg(141, "bs_skip_utf16", 4, jumpRefs(0), branch())
	reg(142, "bs_get_utf32", 5, jumpRefs(0), branch())
	reg(143, "bs_skip_utf32", 4, jumpRefs(0), branch())
	reg(144, "bs_utf8_size", 3)
	reg(145, "bs_put_utf8", 3)
	reg(146, "bs_utf16_size", 3)
	reg(147, "bs_put_utf16", 3)
	reg(148, "bs_put_utf32", 3)
	reg(165, "bs_get_tail", 3)
	reg(166, "bs_start_match3", 4, jumpRefs(0), branch())
	reg(167, "bs_get_position", 3)
	reg(168, "bs_set_position", 2)
	reg(170, "bs_start_match4", 4, jumpRefs(0), branch())
	reg(177, "bs_create_bin", 6)
	reg(182, "bs_match", 3)

	reg(124, "gc_bif1", 5)
	reg(125, "gc_bif2", 6)
	reg(152, "gc_bif3", 7)

	reg(136, "trim", 2)
	reg(150, "recv_mark", 1)
	reg(151, "recv_set", 1)
	reg(173, "recv_marker_bind", 2)
	reg(174, "recv_marker_clear", 1)
	reg(175, "recv_marker_reserve", 1)
	reg(176, "recv_marker_user", 1)

	reg(149, "on_load", 0)
	reg(153, "line", 1)
	reg(169, "swap", 2)
	reg(172, "init_yregs", 1)
	reg(179, "nif_start", 0)
	reg(180, "badrecord", 1, terminal())
	reg(181, "update_record", 5)
}
