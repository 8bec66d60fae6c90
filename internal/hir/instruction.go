package hir

import "strings"

// Instruction is a single HIR or assembly operation: an opcode, up to
// three operands, and an optional trailing comment (spec §3).
type Instruction struct {
	Op       Opcode
	Operands []Operand
	Comment  string
}

// NewInstruction builds an Instruction with the given opcode and
// operands (0 to 3, per spec §3).
func NewInstruction(op Opcode, operands ...Operand) *Instruction {
	return &Instruction{Op: op, Operands: operands}
}

// Operand returns instruction i's i'th operand.
func (ins *Instruction) Operand(i int) Operand {
	return ins.Operands[i]
}

// WithComment sets ins's trailing comment and returns ins, for chaining.
func (ins *Instruction) WithComment(c string) *Instruction {
	ins.Comment = c
	return ins
}

// String renders ins in the HIR/assembly-independent textual form used
// by internal/printer's HIR dump.
func (ins *Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(ins.Op.String())
	for i, o := range ins.Operands {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(o.String())
	}
	if ins.Comment != "" {
		sb.WriteString("  // ")
		sb.WriteString(ins.Comment)
	}
	return sb.String()
}

// InstructionSequence is an ordered list of instructions with labels
// interleaved: a side mapping from instruction index to the label
// defined immediately before it, plus a slot for a label with no
// following instruction (spec §3, §4.4).
type InstructionSequence struct {
	instructions []*Instruction
	labelsBefore map[int]string
	endLabel     string
	hasEndLabel  bool
	defined      map[string]bool
	pending      string
	hasPending   bool
}

// NewSequence returns an empty InstructionSequence.
func NewSequence() *InstructionSequence {
	return &InstructionSequence{
		labelsBefore: make(map[int]string),
		defined:      make(map[string]bool),
	}
}

// Add appends ins to the sequence and returns its index. If a label was
// defined since the last Add, it is attached to this instruction.
func (s *InstructionSequence) Add(ins *Instruction) int {
	idx := len(s.instructions)
	s.instructions = append(s.instructions, ins)
	if s.hasPending {
		s.labelsBefore[idx] = s.pending
		s.hasPending = false
	}
	return idx
}

// DefineLabel defines label to land immediately before the next
// instruction added to the sequence, or at the end of the sequence if no
// further instruction is ever added (spec §4.4). Defining the same label
// twice is a programmer error: spec §3 guarantees "each label is defined
// at most once."
func (s *InstructionSequence) DefineLabel(label string) {
	if s.defined[label] {
		panic("hir: label " + label + " defined more than once")
	}
	s.defined[label] = true
	if s.hasPending {
		// A previous label is still waiting for a landing instruction
		// (e.g. an IF's end label directly followed by a WHILE's
		// condition label). It lands on a NOP of its own, which falls
		// through to wherever the new label lands.
		s.Add(NewInstruction(Nop))
	}
	s.pending = label
	s.hasPending = true
}

// Finalize must be called after all instructions and labels have been
// added. If a label is still pending (defined but never followed by an
// instruction), it becomes the sequence's end label.
func (s *InstructionSequence) Finalize() {
	if s.hasPending {
		s.endLabel = s.pending
		s.hasEndLabel = true
		s.hasPending = false
	}
}

// Len returns the number of instructions in the sequence.
func (s *InstructionSequence) Len() int {
	return len(s.instructions)
}

// Instruction returns the i'th instruction.
func (s *InstructionSequence) Instruction(i int) *Instruction {
	return s.instructions[i]
}

// LabelAt returns the label defined immediately before instruction i, if
// any.
func (s *InstructionSequence) LabelAt(i int) (string, bool) {
	l, ok := s.labelsBefore[i]
	return l, ok
}

// EndLabel returns the label defined with no following instruction, if
// any. Valid only after Finalize.
func (s *InstructionSequence) EndLabel() (string, bool) {
	return s.endLabel, s.hasEndLabel
}
