package x86

import (
	"strings"
	"testing"

	"plcc/internal/hir"
)

// TestNewFrameLayoutAlignment checks spec §4.3's 16-byte alignment rule:
// the total frame size must never itself be a multiple of 16, since one
// word of it is consumed by the return address pushed by `call`.
func TestNewFrameLayoutAlignment(t *testing.T) {
	cases := []struct {
		localSize, maxVReg int
		wantTotal          int
	}{
		{localSize: 0, maxVReg: -1, wantTotal: 8},  // 0 vregs, 0 bytes is a multiple of 16, bumped to 8
		{localSize: 8, maxVReg: 0, wantTotal: 24},  // 8 + 8*1 = 16, bumped to 24
		{localSize: 0, maxVReg: 1, wantTotal: 24},  // 0 + 8*2 = 16, bumped to 24
		{localSize: 16, maxVReg: 1, wantTotal: 40}, // 16 + 16 = 32, %16==0, bumped to 40
	}
	for _, c := range cases {
		got := NewFrameLayout(c.localSize, c.maxVReg)
		if got.Total != c.wantTotal {
			t.Errorf("NewFrameLayout(%d, %d).Total = %d, want %d", c.localSize, c.maxVReg, got.Total, c.wantTotal)
		}
		if got.Total%16 == 0 {
			t.Errorf("NewFrameLayout(%d, %d).Total = %d must not be a multiple of 16", c.localSize, c.maxVReg, got.Total)
		}
	}
}

// TestEmitBinaryOperandOrder pins the AT&T source-then-destination operand
// order for a two-operand instruction: `op src, dst`, not the reversed
// order a naive port from an Intel-syntax or ARM-style backend would
// produce.
func TestEmitBinaryOperandOrder(t *testing.T) {
	seq := hir.NewSequence()
	seq.Add(hir.NewInstruction(hir.IntAdd, hir.VRegOp(2), hir.VRegOp(0), hir.VRegOp(1)))
	seq.Finalize()
	frame := NewFrameLayout(0, 2)

	out := Generate(seq, frame)
	if !strings.Contains(out, "\taddq\t%r11, %r10\n") {
		t.Errorf("expected addq to read src (%%r11) then dst (%%r10), got:\n%s", out)
	}
	// The result must be written back to vreg 2's slot, not vreg 0's or 1's.
	wantStore := "\tmovq\t%r10, " + slotRef(frame, 2) + "\n"
	if !strings.Contains(out, wantStore) {
		t.Errorf("expected result stored to vreg 2's slot, got:\n%s", out)
	}
}

// TestEmitLocalAddrRoutesThroughScratch checks that LOCALADDR computes the
// address with `leaq` into a scratch register before storing it to the
// destination vreg's own slot — the address is data, not a target.
func TestEmitLocalAddrRoutesThroughScratch(t *testing.T) {
	seq := hir.NewSequence()
	seq.Add(hir.NewInstruction(hir.LocalAddr, hir.VRegOp(0), hir.Imm(16)))
	seq.Finalize()
	frame := NewFrameLayout(24, 0)

	out := Generate(seq, frame)
	if !strings.Contains(out, "\tleaq\t16(%rsp), %r10\n") {
		t.Errorf("expected leaq of the declared offset into %%r10, got:\n%s", out)
	}
	wantStore := "\tmovq\t%r10, " + slotRef(frame, 0) + "\n"
	if !strings.Contains(out, wantStore) {
		t.Errorf("expected the computed address stored into vreg 0's own slot, got:\n%s", out)
	}
}

// TestEmitDivModOperandOrder checks that INT_DIV and INT_MOD both run the
// same idivq but read back different halves of the result: %rax for a
// quotient, %rdx for a remainder.
func TestEmitDivModOperandOrder(t *testing.T) {
	frame := NewFrameLayout(0, 2)

	div := hir.NewSequence()
	div.Add(hir.NewInstruction(hir.IntDiv, hir.VRegOp(2), hir.VRegOp(0), hir.VRegOp(1)))
	div.Finalize()
	divOut := Generate(div, frame)
	if !strings.Contains(divOut, "\tcqto\n") || !strings.Contains(divOut, "\tidivq\t%r10\n") {
		t.Errorf("expected cqto+idivq sequence for INT_DIV, got:\n%s", divOut)
	}
	if !strings.Contains(divOut, "\tmovq\t%rax, "+slotRef(frame, 2)+"\n") {
		t.Errorf("expected INT_DIV to store the quotient (%%rax), got:\n%s", divOut)
	}

	mod := hir.NewSequence()
	mod.Add(hir.NewInstruction(hir.IntMod, hir.VRegOp(2), hir.VRegOp(0), hir.VRegOp(1)))
	mod.Finalize()
	modOut := Generate(mod, frame)
	if !strings.Contains(modOut, "\tmovq\t%rdx, "+slotRef(frame, 2)+"\n") {
		t.Errorf("expected INT_MOD to store the remainder (%%rdx), got:\n%s", modOut)
	}
}

// TestEmitCompareThenJump checks that INT_COMPARE lowers to a single cmpq
// with its operands in the same a,b order as the source comparison, so
// the following conditional jump's sense matches spec §4.3's table.
func TestEmitCompareThenJump(t *testing.T) {
	seq := hir.NewSequence()
	seq.Add(hir.NewInstruction(hir.IntCompare, hir.VRegOp(0), hir.VRegOp(1)))
	seq.Add(hir.NewInstruction(hir.JLT, hir.LabelOp(".L0")))
	seq.Finalize()
	frame := NewFrameLayout(0, 1)

	out := Generate(seq, frame)
	if !strings.Contains(out, "\tcmpq\t%r11, %r10\n") {
		t.Errorf("expected cmpq %%r11, %%r10 (b then a, AT&T order), got:\n%s", out)
	}
	if !strings.Contains(out, "\tjl\t.L0\n") {
		t.Errorf("expected JLT to lower to jl, got:\n%s", out)
	}
}

// TestGenerateLabelsAtCorrectInstructions checks that a label defined
// before an instruction is emitted immediately before it, and that the
// sequence's dangling end label is emitted after the last real
// instruction but before the epilogue.
func TestGenerateLabelsAtCorrectInstructions(t *testing.T) {
	seq := hir.NewSequence()
	seq.Add(hir.NewInstruction(hir.Jump, hir.LabelOp(".L0")))
	seq.DefineLabel(".L0")
	seq.Finalize()
	frame := NewFrameLayout(0, -1)

	out := Generate(seq, frame)
	idxJump := strings.Index(out, "\tjmp\t.L0\n")
	idxLabel := strings.Index(out, "\n.L0:\n")
	idxEpilogue := strings.Index(out, "addq\t"+imm(int64(frame.Total)))
	if idxJump < 0 || idxLabel < 0 || idxEpilogue < 0 {
		t.Fatalf("expected jmp, label and epilogue all present, got:\n%s", out)
	}
	if !(idxJump < idxLabel && idxLabel < idxEpilogue) {
		t.Errorf("expected order jmp < label < epilogue, got jmp=%d label=%d epilogue=%d:\n%s", idxJump, idxLabel, idxEpilogue, out)
	}
}

// TestReadWriteCallingConvention checks spec §4.3's fixed scanf/printf
// argument registers: %rdi always carries the format string, %rsi the
// single integer argument (an address for READ_INT, a value for
// WRITE_INT).
func TestReadWriteCallingConvention(t *testing.T) {
	seq := hir.NewSequence()
	seq.Add(hir.NewInstruction(hir.ReadInt, hir.VRegOp(0)))
	seq.Add(hir.NewInstruction(hir.WriteInt, hir.VRegOp(0)))
	seq.Finalize()
	frame := NewFrameLayout(0, 0)

	out := Generate(seq, frame)
	if !strings.Contains(out, "\tleaq\t"+readFmt+"(%rip), %rdi\n") {
		t.Errorf("expected READ_INT to load the scanf format into %%rdi, got:\n%s", out)
	}
	if !strings.Contains(out, "\tcall\tscanf\n") {
		t.Errorf("expected a call to scanf, got:\n%s", out)
	}
	if !strings.Contains(out, "\tleaq\t"+writeFmt+"(%rip), %rdi\n") {
		t.Errorf("expected WRITE_INT to load the printf format into %%rdi, got:\n%s", out)
	}
	if !strings.Contains(out, "\tcall\tprintf\n") {
		t.Errorf("expected a call to printf, got:\n%s", out)
	}
}
