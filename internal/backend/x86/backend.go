// Package x86 lowers a finished HIR instruction sequence to GNU-assembler
// text for x86-64 Linux.
//
// Grounded on original_source/assign04/context.cpp's AssemblyCodeGen: the
// same opcode-by-opcode translation table (HINS_LOCALADDR -> leaq/movq,
// HINS_INT_ADD -> movq/movq/addq/movq, ...), the same register discipline
// (%r10/%r11 scratch, %rax/%rdx for IDIVQ, %rdi/%rsi for scanf/printf),
// and the same flat-frame layout with no register allocator. The
// line-buffering idiom (one Writer, Ins1/Ins2/Ins3/Label helpers) is
// adapted from the teacher's backend/arm/function.go, with the
// concurrent worker-thread handoff in util.Writer stripped per spec §5.
package x86

import (
	"plcc/internal/hir"
	"plcc/internal/ioutil"
)

const wordSize = 8

// FrameLayout describes one compiled program's stack frame (spec §4.3).
type FrameLayout struct {
	LocalSize int // declared variable/array/record storage, in bytes
	MaxVReg   int // highest vreg index used anywhere in the program
	Total     int // total bytes reserved by subq/addq at entry/exit
}

// NewFrameLayout computes the frame for a program with localSize bytes of
// declared storage and vregs numbered 0..maxVReg.
//
// Total = local_size + 8*(max_vreg+1); if that is a multiple of 16, 8
// more bytes are added so the frame size is always ≡ 8 (mod 16) — at
// function entry %rsp is 16-byte aligned before the call to main, and
// the System V ABI requires it 16-byte aligned again at every `call`
// site inside main, so subtracting an odd multiple of 8 restores that
// alignment.
func NewFrameLayout(localSize, maxVReg int) FrameLayout {
	total := localSize + wordSize*(maxVReg+1)
	if total%16 == 0 {
		total += wordSize
	}
	return FrameLayout{LocalSize: localSize, MaxVReg: maxVReg, Total: total}
}

// vregSlot returns the byte displacement of vreg n's stack slot from
// %rsp, per the frame layout in spec §4.3: one 8-byte slot per vreg,
// starting immediately after declared storage.
func (f FrameLayout) vregSlot(n int) int64 {
	return int64(f.LocalSize + wordSize*n)
}

const (
	readFmt  = "s_readint_fmt"
	writeFmt = "s_writeint_fmt"
)

// Generate renders seq into complete GNU-assembler source text.
func Generate(seq *hir.InstructionSequence, frame FrameLayout) string {
	w := ioutil.NewWriter()
	emitPreamble(w)
	emitPrologue(w, frame)

	for i := 0; i < seq.Len(); i++ {
		if label, ok := seq.LabelAt(i); ok {
			w.Label(label)
		}
		emitInstruction(w, frame, seq.Instruction(i))
	}
	if label, ok := seq.EndLabel(); ok {
		w.Label(label)
	}

	emitEpilogue(w, frame)
	return w.String()
}

func emitPreamble(w *ioutil.Writer) {
	w.Write(".data\n")
	w.Write("%s:\n\t.string \"%%ld\"\n", readFmt)
	w.Write("%s:\n\t.string \"%%ld\\n\"\n", writeFmt)
	w.Write("\n.text\n")
	w.Write(".globl main\n")
}

func emitPrologue(w *ioutil.Writer, frame FrameLayout) {
	w.Label("main")
	w.Ins2("subq", imm(int64(frame.Total)), "%rsp")
}

func emitEpilogue(w *ioutil.Writer, frame FrameLayout) {
	w.Ins2("addq", imm(int64(frame.Total)), "%rsp")
	w.Write("\tmovl\t$0, %%eax\n")
	w.Write("\tret\n")
}

func imm(v int64) string {
	return "$" + itoa(v)
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [24]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func emitInstruction(w *ioutil.Writer, frame FrameLayout, ins *hir.Instruction) {
	switch ins.Op {
	case hir.LocalAddr:
		emitLocalAddr(w, frame, ins)
	case hir.LoadIConst:
		emitLoadIConst(w, frame, ins)
	case hir.LoadInt:
		emitLoadInt(w, frame, ins)
	case hir.StoreInt:
		emitStoreInt(w, frame, ins)
	case hir.IntAdd:
		emitBinary(w, frame, ins, "addq")
	case hir.IntSub:
		emitBinary(w, frame, ins, "subq")
	case hir.IntMul:
		emitBinary(w, frame, ins, "imulq")
	case hir.IntDiv:
		emitDivMod(w, frame, ins, false)
	case hir.IntMod:
		emitDivMod(w, frame, ins, true)
	case hir.IntCompare:
		emitCompare(w, frame, ins)
	case hir.Jump:
		w.Ins1("jmp", ins.Operand(0).Name)
	case hir.JE:
		w.Ins1("je", ins.Operand(0).Name)
	case hir.JNE:
		w.Ins1("jne", ins.Operand(0).Name)
	case hir.JLT:
		w.Ins1("jl", ins.Operand(0).Name)
	case hir.JLTE:
		w.Ins1("jle", ins.Operand(0).Name)
	case hir.JGT:
		w.Ins1("jg", ins.Operand(0).Name)
	case hir.JGTE:
		w.Ins1("jge", ins.Operand(0).Name)
	case hir.ReadInt:
		emitReadInt(w, frame, ins)
	case hir.WriteInt:
		emitWriteInt(w, frame, ins)
	case hir.Nop:
		w.Write("\tnop\n")
	default:
		panic("x86: unhandled opcode " + ins.Op.String())
	}
}

// slotRef renders the stack-slot memory operand of vreg n.
func slotRef(frame FrameLayout, n int) string {
	return itoa(frame.vregSlot(n)) + "(%rsp)"
}

// loadOperand emits code that materializes op's value into register reg
// (%r10, %r11, %rax or %rsi): a vreg is loaded from its slot, an immediate is moved
// directly. Callers never pass a Label or address-kind operand here —
// hirgen always resolves those to a vreg before emitting an arithmetic
// or compare instruction.
func loadOperand(w *ioutil.Writer, frame FrameLayout, op hir.Operand, reg string) {
	switch op.Kind {
	case hir.VReg:
		w.Ins2("movq", slotRef(frame, op.Reg), reg)
	case hir.IntLiteral:
		w.Ins2("movq", imm(op.Disp), reg)
	default:
		panic("x86: unexpected operand kind in loadOperand")
	}
}

func emitLocalAddr(w *ioutil.Writer, frame FrameLayout, ins *hir.Instruction) {
	dest := ins.Operand(0)
	offset := ins.Operand(1)
	w.Ins2("leaq", itoa(offset.Disp)+"(%rsp)", "%r10")
	w.Ins2("movq", "%r10", slotRef(frame, dest.Reg))
}

func emitLoadIConst(w *ioutil.Writer, frame FrameLayout, ins *hir.Instruction) {
	dest := ins.Operand(0)
	val := ins.Operand(1)
	w.Ins2("movq", imm(val.Disp), "%r10")
	w.Ins2("movq", "%r10", slotRef(frame, dest.Reg))
}

// emitLoadInt: LOAD_INT vD, vS. vS's slot holds an address; dereference
// it and store the loaded value into vD's slot.
func emitLoadInt(w *ioutil.Writer, frame FrameLayout, ins *hir.Instruction) {
	dest, src := ins.Operand(0), ins.Operand(1)
	w.Ins2("movq", slotRef(frame, src.Reg), "%r11")
	w.Ins2("movq", "(%r11)", "%r11")
	w.Ins2("movq", "%r11", slotRef(frame, dest.Reg))
}

// emitStoreInt: STORE_INT vD, vS. vD's slot holds an address; store vS's
// value there.
func emitStoreInt(w *ioutil.Writer, frame FrameLayout, ins *hir.Instruction) {
	destAddr, src := ins.Operand(0), ins.Operand(1)
	loadOperand(w, frame, src, "%r11")
	w.Ins2("movq", slotRef(frame, destAddr.Reg), "%r10")
	w.Ins2("movq", "%r11", "(%r10)")
}

// emitBinary lowers INT_ADD/INT_SUB/INT_MUL: dest, a, b -> dest = a op b.
// Either operand may be an immediate (array-index scaling, record-field-
// offset addressing) or a vreg; loadOperand handles both uniformly.
func emitBinary(w *ioutil.Writer, frame FrameLayout, ins *hir.Instruction, op string) {
	dest, a, b := ins.Operand(0), ins.Operand(1), ins.Operand(2)
	loadOperand(w, frame, a, "%r10")
	loadOperand(w, frame, b, "%r11")
	w.Ins2(op, "%r11", "%r10")
	w.Ins2("movq", "%r10", slotRef(frame, dest.Reg))
}

// emitDivMod lowers INT_DIV/INT_MOD: dividend into %rax, cqto sign-
// extends into %rdx, idivq by the divisor in %r10, store %rax (div) or
// %rdx (mod) into dest's slot.
func emitDivMod(w *ioutil.Writer, frame FrameLayout, ins *hir.Instruction, mod bool) {
	dest, a, b := ins.Operand(0), ins.Operand(1), ins.Operand(2)
	loadOperand(w, frame, a, "%rax")
	loadOperand(w, frame, b, "%r10")
	w.Write("\tcqto\n")
	w.Ins1("idivq", "%r10")
	if mod {
		w.Ins2("movq", "%rdx", slotRef(frame, dest.Reg))
	} else {
		w.Ins2("movq", "%rax", slotRef(frame, dest.Reg))
	}
}

// emitCompare: INT_COMPARE a, b -> cmpq so the next jump reflects a-vs-b.
func emitCompare(w *ioutil.Writer, frame FrameLayout, ins *hir.Instruction) {
	a, b := ins.Operand(0), ins.Operand(1)
	loadOperand(w, frame, a, "%r10")
	loadOperand(w, frame, b, "%r11")
	w.Ins2("cmpq", "%r11", "%r10")
}

func emitReadInt(w *ioutil.Writer, frame FrameLayout, ins *hir.Instruction) {
	dest := ins.Operand(0)
	w.Ins2("leaq", slotRef(frame, dest.Reg), "%rsi")
	w.Ins2("leaq", readFmt+"(%rip)", "%rdi")
	w.Ins1("call", "scanf")
}

func emitWriteInt(w *ioutil.Writer, frame FrameLayout, ins *hir.Instruction) {
	val := ins.Operand(0)
	loadOperand(w, frame, val, "%rsi")
	w.Ins2("leaq", writeFmt+"(%rip)", "%rdi")
	w.Ins1("call", "printf")
}
