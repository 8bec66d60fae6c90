// Package hirgen lowers an analyzed syntax tree into the flat HIR
// instruction sequence internal/backend/x86 consumes.
//
// Grounded 1:1 on original_source/assign04/context.cpp's
// HighLevelCodeGen visitor: one visit method per statement/expression
// node, a virtual-register counter that resets to -1 after every
// top-level statement (so the backend's frame layout only ever needs to
// reserve slots for the deepest single statement's working set, not the
// whole program), and one flat monotonic label counter for the whole
// program. Record field reference lowering (`p.x`) has no original to
// port — context.cpp leaves it unimplemented (only a comment flags it).
// It is designed here by analogy to array-element addressing: the same
// base-address-plus-byte-offset shape, but with a compile-time-constant
// field offset in place of a runtime index multiply.
package hirgen

import (
	"fmt"

	"plcc/internal/ast"
	"plcc/internal/hir"
	"plcc/internal/symbols"
)

// Generator lowers one analyzed program into an InstructionSequence.
type Generator struct {
	global *symbols.Scope
	seq    *hir.InstructionSequence

	vreg      int
	maxVReg   int
	labelNext int
}

// New returns a Generator that resolves variable offsets against global.
func New(global *symbols.Scope) *Generator {
	return &Generator{global: global, seq: hir.NewSequence(), vreg: -1}
}

// Generate lowers root (a Program node) and returns the finished
// instruction sequence together with the highest virtual register index
// used anywhere in the program — the backend needs the latter to size
// the per-statement vreg slot area of the stack frame (spec §4.3).
func Generate(root *ast.Node, global *symbols.Scope) (*hir.InstructionSequence, int) {
	g := New(global)
	g.genStmtList(root.Kid(1))
	g.seq.Finalize()
	return g.seq, g.maxVReg
}

func (g *Generator) newVReg() int {
	g.vreg++
	if g.vreg > g.maxVReg {
		g.maxVReg = g.vreg
	}
	return g.vreg
}

func (g *Generator) resetVReg() {
	g.vreg = -1
}

func (g *Generator) newLabel() string {
	s := fmt.Sprintf(".L%d", g.labelNext)
	g.labelNext++
	return s
}

func (g *Generator) emit(op hir.Opcode, operands ...hir.Operand) *hir.Instruction {
	ins := hir.NewInstruction(op, operands...)
	g.seq.Add(ins)
	return ins
}

func (g *Generator) genStmtList(n *ast.Node) {
	for _, s := range n.Children {
		g.genStmt(s)
		g.resetVReg()
	}
}

func (g *Generator) genStmt(n *ast.Node) {
	switch n.Tag {
	case ast.Assign:
		addr := g.genLvalueAddr(n.Kid(0))
		val := g.genExpr(n.Kid(1))
		g.emit(hir.StoreInt, addr, val)
	case ast.Read:
		addr := g.genLvalueAddr(n.Kid(0))
		dest := g.newVReg()
		g.emit(hir.ReadInt, hir.VRegOp(dest))
		g.emit(hir.StoreInt, addr, hir.VRegOp(dest))
	case ast.Write:
		val := g.genExpr(n.Kid(0))
		g.emit(hir.WriteInt, val)
	case ast.If:
		g.genIf(n)
	case ast.IfElse:
		g.genIfElse(n)
	case ast.While:
		g.genWhile(n)
	case ast.RepeatUntil:
		g.genRepeatUntil(n)
	default:
		panic("hirgen: unhandled statement tag " + ast.TagName(n.Tag))
	}
}

// genIf: IF cond THEN body END. Skip body when cond is false.
func (g *Generator) genIf(n *ast.Node) {
	end := g.newLabel()
	g.genCondition(n.Kid(0), true, end)
	g.genStmtList(n.Kid(1))
	g.seq.DefineLabel(end)
}

// genIfElse: IF cond THEN then ELSE els END. A NOP always follows the
// out label so it lands on a real instruction even when the else-branch
// is itself the last statement in its enclosing block.
func (g *Generator) genIfElse(n *ast.Node) {
	elseLabel := g.newLabel()
	out := g.newLabel()
	g.genCondition(n.Kid(0), true, elseLabel)
	g.genStmtList(n.Kid(1))
	g.emit(hir.Jump, hir.LabelOp(out))
	g.seq.DefineLabel(elseLabel)
	g.genStmtList(n.Kid(2))
	g.seq.DefineLabel(out)
	g.emit(hir.Nop)
}

// genWhile: WHILE cond DO body END. The head jumps straight to the
// condition so the loop is entered by testing it once, with the branch
// back to body on a held (non-inverted) condition doing all repeat work.
func (g *Generator) genWhile(n *ast.Node) {
	body := g.newLabel()
	cond := g.newLabel()
	g.emit(hir.Jump, hir.LabelOp(cond))
	g.seq.DefineLabel(body)
	g.genStmtList(n.Kid(1))
	g.seq.DefineLabel(cond)
	g.genCondition(n.Kid(0), false, body)
}

// genRepeatUntil: REPEAT body UNTIL cond. Body always runs once; the
// inverted condition loops back to body while it is still false.
func (g *Generator) genRepeatUntil(n *ast.Node) {
	body := g.newLabel()
	cond := g.newLabel()
	g.seq.DefineLabel(body)
	g.genStmtList(n.Kid(0))
	g.seq.DefineLabel(cond)
	g.genCondition(n.Kid(1), true, body)
}

// genCondition lowers a comparison node into INT_COMPARE followed by a
// conditional jump to label. inverted selects which half of the
// direct/negated jump pair is used: IF, IF/ELSE and REPEAT/UNTIL pass
// true (jump when the condition does not hold), WHILE passes false
// (jump back to the body when the condition holds).
func (g *Generator) genCondition(n *ast.Node, inverted bool, label string) {
	lhs := g.genExpr(n.Kid(0))
	rhs := g.genExpr(n.Kid(1))
	g.emit(hir.IntCompare, lhs, rhs)
	cmp := cmpForTag(n.Tag)
	g.emit(hir.JumpForCmp(cmp, inverted), hir.LabelOp(label))
}

func cmpForTag(tag ast.Tag) hir.Cmp {
	switch tag {
	case ast.CompareEq:
		return hir.CmpEq
	case ast.CompareNeq:
		return hir.CmpNeq
	case ast.CompareLt:
		return hir.CmpLt
	case ast.CompareLte:
		return hir.CmpLte
	case ast.CompareGt:
		return hir.CmpGt
	case ast.CompareGte:
		return hir.CmpGte
	default:
		panic("hirgen: not a comparison tag")
	}
}

// genExpr lowers an expression node to an operand carrying its value:
// always a vreg holding the loaded/computed result (integer literals are
// first loaded with LOAD_ICONST).
func (g *Generator) genExpr(n *ast.Node) hir.Operand {
	switch n.Tag {
	case ast.IntLiteral:
		dest := g.newVReg()
		g.emit(hir.LoadIConst, hir.VRegOp(dest), hir.Imm(int64(n.IVal)))
		return hir.VRegOp(dest)
	case ast.VarRef, ast.ArrayElementRef, ast.FieldRef:
		addr := g.genLvalueAddr(n)
		dest := g.newVReg()
		g.emit(hir.LoadInt, hir.VRegOp(dest), addr)
		return hir.VRegOp(dest)
	case ast.Add, ast.Subtract, ast.Multiply, ast.Divide, ast.Modulus:
		lhs := g.genExpr(n.Kid(0))
		rhs := g.genExpr(n.Kid(1))
		dest := g.newVReg()
		g.emit(arithOp(n.Tag), hir.VRegOp(dest), lhs, rhs)
		return hir.VRegOp(dest)
	default:
		panic("hirgen: unhandled expression tag " + ast.TagName(n.Tag))
	}
}

func arithOp(tag ast.Tag) hir.Opcode {
	switch tag {
	case ast.Add:
		return hir.IntAdd
	case ast.Subtract:
		return hir.IntSub
	case ast.Multiply:
		return hir.IntMul
	case ast.Divide:
		return hir.IntDiv
	case ast.Modulus:
		return hir.IntMod
	default:
		panic("hirgen: not an arithmetic tag")
	}
}

// genLvalueAddr lowers a VarRef/ArrayElementRef/FieldRef node to an
// operand holding the address it denotes — never its value.
func (g *Generator) genLvalueAddr(n *ast.Node) hir.Operand {
	switch n.Tag {
	case ast.VarRef:
		return g.genIdentAddr(n.Kid(0))
	case ast.ArrayElementRef:
		return g.genArrayElementAddr(n)
	case ast.FieldRef:
		return g.genFieldAddr(n)
	default:
		panic("hirgen: not an lvalue tag " + ast.TagName(n.Tag))
	}
}

// genIdentAddr emits LOCALADDR for a simple variable name, resolved
// against the program's single flat global scope: this language has no
// nested procedures, so every variable lives at a fixed offset from the
// frame base (spec §4.3).
func (g *Generator) genIdentAddr(ident *ast.Node) hir.Operand {
	sym, ok := g.global.Lookup(ident.Lexeme)
	if !ok {
		panic("hirgen: undefined variable '" + ident.Lexeme + "' reached codegen unresolved")
	}
	dest := g.newVReg()
	g.emit(hir.LocalAddr, hir.VRegOp(dest), hir.Imm(int64(sym.Offset)))
	return hir.VRegOp(dest)
}

// genArrayElementAddr lowers `a[i]`'s address: base + i * elemSize.
func (g *Generator) genArrayElementAddr(n *ast.Node) hir.Operand {
	identNode, idxNode := n.Kid(0), n.Kid(1)
	base := g.genIdentAddr(identNode)
	idx := g.genExpr(idxNode)
	elemSize := identNode.Type.ElemType.Size()
	scaled := g.newVReg()
	g.emit(hir.IntMul, hir.VRegOp(scaled), idx, hir.Imm(int64(elemSize)))
	addr := g.newVReg()
	g.emit(hir.IntAdd, hir.VRegOp(addr), base, hir.VRegOp(scaled))
	return hir.VRegOp(addr)
}

// genFieldAddr lowers `p.x`'s address: base + staticFieldOffset. Unlike
// the array case the offset is known at compile time, so no
// multiplication is emitted — only the one INT_ADD.
func (g *Generator) genFieldAddr(n *ast.Node) hir.Operand {
	identNode := n.Kid(0)
	base := g.genIdentAddr(identNode)
	addr := g.newVReg()
	g.emit(hir.IntAdd, hir.VRegOp(addr), base, hir.Imm(int64(n.FieldOffset)))
	return hir.VRegOp(addr)
}
