// Package hir implements plcc's high-level intermediate representation:
// three-address operations over an unbounded virtual register file, plus
// the machine-level operand kinds the x86-64 backend reuses for its own
// instruction stream.
//
// This supersedes the teacher's own ir/lir package wholesale rather than
// adapting it: VSL's LIR is block-structured, typed (int/float) and
// carries globals/strings/calls, while this spec's HIR is a flat
// per-program instruction list over one scalar integer type with no
// basic blocks. See DESIGN.md for the full justification. What does
// carry over from ir/lir's idiom is the shape: a small tagged Value/
// Operand type, an instruction with a fixed small operand count, and a
// textual String() printer built with strings.Builder (ir/lir/print.go).
package hir

// Opcode is the operation code of an Instruction.
type Opcode int

const (
	LocalAddr Opcode = iota
	LoadIConst
	LoadInt
	StoreInt
	IntAdd
	IntSub
	IntMul
	IntDiv
	IntMod
	IntCompare
	Jump
	JE
	JNE
	JLT
	JLTE
	JGT
	JGTE
	ReadInt
	WriteInt
	Nop
)

var opcodeNames = map[Opcode]string{
	LocalAddr:  "LOCALADDR",
	LoadIConst: "LOAD_ICONST",
	LoadInt:    "LOAD_INT",
	StoreInt:   "STORE_INT",
	IntAdd:     "INT_ADD",
	IntSub:     "INT_SUB",
	IntMul:     "INT_MUL",
	IntDiv:     "INT_DIV",
	IntMod:     "INT_MOD",
	IntCompare: "INT_COMPARE",
	Jump:       "JUMP",
	JE:         "JE",
	JNE:        "JNE",
	JLT:        "JLT",
	JLTE:       "JLTE",
	JGT:        "JGT",
	JGTE:       "JGTE",
	ReadInt:    "READ_INT",
	WriteInt:   "WRITE_INT",
	Nop:        "NOP",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "?"
}

// Cmp identifies a source-level comparison operator, used only to look
// up the jump opcode pair below — kept distinct from Opcode so it can't
// be confused with a machine-level jump opcode.
type Cmp int

const (
	CmpEq Cmp = iota
	CmpNeq
	CmpLt
	CmpLte
	CmpGt
	CmpGte
)

var cmpJumps = map[Cmp][2]Opcode{}

func init() {
	cmpJumps = map[Cmp][2]Opcode{
		CmpEq:  {JE, JNE},
		CmpNeq: {JNE, JE},
		CmpLt:  {JLT, JGTE},
		CmpLte: {JLTE, JGT},
		CmpGt:  {JGT, JLTE},
		CmpGte: {JGTE, JLT},
	}
}

// JumpForCmp returns the jump opcode for comparison cmp with the given
// inverted polarity.
func JumpForCmp(cmp Cmp, inverted bool) Opcode {
	pair := cmpJumps[cmp]
	if inverted {
		return pair[1]
	}
	return pair[0]
}
