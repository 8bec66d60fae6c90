// Package llvmdump implements plcc's supplemental `-l` mode: a textual
// LLVM IR rendering of a compiled program's HIR, built with the LLVM C
// API bindings rather than emitted as hand-written text.
//
// Grounded on the teacher's ir/llvm/transform.go: a fresh llvm.Context,
// one llvm.Module, one llvm.Builder, all released with defer Dispose.
// The teacher parallelizes global/function translation across
// opt.Threads worker goroutines feeding a shared symTab guarded by a
// sync.RWMutex; that concurrency is dropped per spec §5, and there is
// only ever one function (`main`) to translate, so no worker pool is
// needed regardless.
package llvmdump

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"plcc/internal/backend/x86"
	"plcc/internal/hir"
)

// Dump translates seq into an LLVM module sized by frame and returns its
// textual IR representation.
func Dump(seq *hir.InstructionSequence, frame x86.FrameLayout) string {
	ctx := llvm.NewContext()
	defer ctx.Dispose()

	builder := ctx.NewBuilder()
	defer builder.Dispose()

	mod := ctx.NewModule("plcc")
	defer mod.Dispose()

	d := &dumper{
		ctx:       ctx,
		builder:   builder,
		mod:       mod,
		i64:       ctx.Int64Type(),
		slotWords: frame.Total / 8,
	}
	d.run(seq)
	return mod.String()
}

type dumper struct {
	ctx       llvm.Context
	builder   llvm.Builder
	mod       llvm.Module
	i64       llvm.Type
	slotWords int

	frame   llvm.Value // alloca of [slotWords x i64]
	arrTy   llvm.Type
	lastA   llvm.Value
	lastB   llvm.Value
	hasLast bool
}

func (d *dumper) run(seq *hir.InstructionSequence) {
	fnTy := llvm.FunctionType(d.ctx.Int32Type(), nil, false)
	fn := llvm.AddFunction(d.mod, "main", fnTy)

	entry := d.ctx.AddBasicBlock(fn, "entry")
	d.builder.SetInsertPointAtEnd(entry)

	d.arrTy = llvm.ArrayType(d.i64, d.slotWords)
	d.frame = d.builder.CreateAlloca(d.arrTy, "frame")

	n := seq.Len()
	blocks := make([]llvm.BasicBlock, n+1)
	for i := 0; i <= n; i++ {
		blocks[i] = d.ctx.AddBasicBlock(fn, fmt.Sprintf("i%d", i))
	}
	d.builder.CreateBr(blocks[0])

	labelBlock := make(map[string]llvm.BasicBlock)
	for i := 0; i < n; i++ {
		if label, ok := seq.LabelAt(i); ok {
			labelBlock[label] = blocks[i]
		}
	}
	if label, ok := seq.EndLabel(); ok {
		labelBlock[label] = blocks[n]
	}

	for i := 0; i < n; i++ {
		d.builder.SetInsertPointAtEnd(blocks[i])
		d.translate(seq.Instruction(i), labelBlock, blocks[i+1])
	}

	d.builder.SetInsertPointAtEnd(blocks[n])
	d.builder.CreateRet(llvm.ConstInt(d.ctx.Int32Type(), 0, false))
}

func (d *dumper) slotPtr(idx int) llvm.Value {
	zero := llvm.ConstInt(d.ctx.Int32Type(), 0, false)
	i := llvm.ConstInt(d.ctx.Int32Type(), uint64(idx), false)
	return d.builder.CreateGEP(d.arrTy, d.frame, []llvm.Value{zero, i}, "slot")
}

func (d *dumper) loadSlot(n int) llvm.Value {
	return d.builder.CreateLoad(d.i64, d.slotPtr(n), "v")
}

func (d *dumper) storeSlot(n int, v llvm.Value) {
	d.builder.CreateStore(v, d.slotPtr(n))
}

// loadOperand materializes op's value: a vreg is loaded from its slot,
// an immediate becomes a constant.
func (d *dumper) loadOperand(op hir.Operand) llvm.Value {
	switch op.Kind {
	case hir.VReg:
		return d.loadSlot(op.Reg)
	case hir.IntLiteral:
		return llvm.ConstInt(d.i64, uint64(op.Disp), true)
	default:
		panic("llvmdump: unexpected operand kind")
	}
}

func (d *dumper) translate(ins *hir.Instruction, labelBlock map[string]llvm.BasicBlock, next llvm.BasicBlock) {
	switch ins.Op {
	case hir.LocalAddr:
		dest, offset := ins.Operand(0), ins.Operand(1)
		ptr := d.slotPtr(int(offset.Disp) / 8)
		addr := d.builder.CreatePtrToInt(ptr, d.i64, "addr")
		d.storeSlot(dest.Reg, addr)
	case hir.LoadIConst:
		dest, val := ins.Operand(0), ins.Operand(1)
		d.storeSlot(dest.Reg, llvm.ConstInt(d.i64, uint64(val.Disp), true))
	case hir.LoadInt:
		dest, src := ins.Operand(0), ins.Operand(1)
		addr := d.loadSlot(src.Reg)
		ptr := d.builder.CreateIntToPtr(addr, llvm.PointerType(d.i64, 0), "p")
		d.storeSlot(dest.Reg, d.builder.CreateLoad(d.i64, ptr, "val"))
	case hir.StoreInt:
		destAddr, src := ins.Operand(0), ins.Operand(1)
		addr := d.loadSlot(destAddr.Reg)
		ptr := d.builder.CreateIntToPtr(addr, llvm.PointerType(d.i64, 0), "p")
		d.builder.CreateStore(d.loadOperand(src), ptr)
	case hir.IntAdd:
		d.binary(ins, d.builder.CreateAdd)
	case hir.IntSub:
		d.binary(ins, d.builder.CreateSub)
	case hir.IntMul:
		d.binary(ins, d.builder.CreateMul)
	case hir.IntDiv:
		d.binary(ins, d.builder.CreateSDiv)
	case hir.IntMod:
		d.binary(ins, d.builder.CreateSRem)
	case hir.IntCompare:
		d.lastA = d.loadOperand(ins.Operand(0))
		d.lastB = d.loadOperand(ins.Operand(1))
		d.hasLast = true
	case hir.Jump:
		d.builder.CreateBr(labelBlock[ins.Operand(0).Name])
		return
	case hir.JE, hir.JNE, hir.JLT, hir.JLTE, hir.JGT, hir.JGTE:
		d.condBranch(ins, labelBlock, next)
		return
	case hir.ReadInt:
		d.emitScanf(ins)
	case hir.WriteInt:
		d.emitPrintf(ins)
	case hir.Nop:
		// No LLVM instruction needed; the unconditional fallthrough below
		// still gives this HIR instruction a landing block.
	default:
		panic("llvmdump: unhandled opcode " + ins.Op.String())
	}
	d.builder.CreateBr(next)
}

func (d *dumper) binary(ins *hir.Instruction, op func(llvm.Value, llvm.Value, string) llvm.Value) {
	dest, a, b := ins.Operand(0), ins.Operand(1), ins.Operand(2)
	d.storeSlot(dest.Reg, op(d.loadOperand(a), d.loadOperand(b), "t"))
}

var predicates = map[hir.Opcode]llvm.IntPredicate{
	hir.JE:   llvm.IntEQ,
	hir.JNE:  llvm.IntNE,
	hir.JLT:  llvm.IntSLT,
	hir.JLTE: llvm.IntSLE,
	hir.JGT:  llvm.IntSGT,
	hir.JGTE: llvm.IntSGE,
}

func (d *dumper) condBranch(ins *hir.Instruction, labelBlock map[string]llvm.BasicBlock, next llvm.BasicBlock) {
	pred := predicates[ins.Op]
	cond := d.builder.CreateICmp(pred, d.lastA, d.lastB, "cmp")
	target := labelBlock[ins.Operand(0).Name]
	d.builder.CreateCondBr(cond, target, next)
}

func (d *dumper) emitScanf(ins *hir.Instruction) {
	scanf := d.mod.NamedFunction("scanf")
	if scanf.IsNil() {
		ty := llvm.FunctionType(d.ctx.Int32Type(), []llvm.Type{llvm.PointerType(d.ctx.Int8Type(), 0)}, true)
		scanf = llvm.AddFunction(d.mod, "scanf", ty)
	}
	dest := ins.Operand(0)
	fmtStr := d.builder.CreateGlobalStringPtr("%ld", "readfmt")
	ptr := d.slotPtr(dest.Reg)
	d.builder.CreateCall(scanf.GlobalValueType(), scanf, []llvm.Value{fmtStr, ptr}, "")
}

func (d *dumper) emitPrintf(ins *hir.Instruction) {
	printf := d.mod.NamedFunction("printf")
	if printf.IsNil() {
		ty := llvm.FunctionType(d.ctx.Int32Type(), []llvm.Type{llvm.PointerType(d.ctx.Int8Type(), 0)}, true)
		printf = llvm.AddFunction(d.mod, "printf", ty)
	}
	val := d.loadOperand(ins.Operand(0))
	fmtStr := d.builder.CreateGlobalStringPtr("%ld\n", "writefmt")
	d.builder.CreateCall(printf.GlobalValueType(), printf, []llvm.Value{fmtStr, val}, "")
}
