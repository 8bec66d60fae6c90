// Package sema implements plcc's analyzer: the first syntax tree walker.
// It builds the global symbol table, resolves named types, stamps a
// Type on every declaration and expression node, and assigns each
// declared name a byte offset within its scope.
//
// Grounded 1:1 on original_source/assign04/context.cpp's
// SymbolTableBuilder visitor: visit_constant_def, visit_var_def,
// visit_type_def, visit_named_type, visit_array_type, visit_record_type,
// visit_var_ref and visit_int_literal map directly to the methods below,
// translated from a fatal-printing C++ visitor into one that returns
// *diag.Error. Array-element and record-field reference type checking is
// new: the original leaves both "unimplemented" and spec §9 asks the
// reimplementation to add it.
package sema

import (
	"strconv"
	"strings"

	"plcc/internal/ast"
	"plcc/internal/diag"
	"plcc/internal/symbols"
	"plcc/internal/types"
)

// Analyzer walks a syntax tree and builds its symbol table.
type Analyzer struct {
	file   string
	global *symbols.Scope
	scope  *symbols.Scope
}

// New returns an Analyzer for a program read from file.
func New(file string) *Analyzer {
	g := symbols.NewGlobal()
	return &Analyzer{file: file, global: g, scope: g}
}

// Global returns the analyzer's global (root) scope.
func (a *Analyzer) Global() *symbols.Scope {
	return a.global
}

// Analyze walks root (a Program node) and returns the first fatal error
// encountered, if any. Per spec §1/§7 there is no error recovery: the
// first error aborts the walk.
func (a *Analyzer) Analyze(root *ast.Node) error {
	return a.visit(root)
}

func (a *Analyzer) errf(pos diag.Pos, format string, args ...interface{}) error {
	return diag.Fatalf(pos, format, args...)
}

func (a *Analyzer) visit(n *ast.Node) error {
	switch n.Tag {
	case ast.Program:
		if err := a.visit(n.Kid(0)); err != nil {
			return err
		}
		return a.visit(n.Kid(1))
	case ast.Declarations:
		for _, k := range n.Children {
			if err := a.visit(k); err != nil {
				return err
			}
		}
		return nil
	case ast.ConstDef:
		return a.visitDef(n, symbols.Const)
	case ast.VarDef:
		return a.visitVarDef(n)
	case ast.TypeDef:
		return a.visitDef(n, symbols.TypeSym)
	case ast.NamedType:
		return a.visitNamedType(n)
	case ast.ArrayType:
		return a.visitArrayType(n)
	case ast.RecordType:
		return a.visitRecordType(n)
	case ast.StmtList:
		for _, k := range n.Children {
			if err := a.visit(k); err != nil {
				return err
			}
		}
		return nil
	case ast.Assign:
		if err := a.visit(n.Kid(0)); err != nil {
			return err
		}
		return a.visit(n.Kid(1))
	case ast.Read:
		return a.visit(n.Kid(0))
	case ast.Write:
		return a.visit(n.Kid(0))
	case ast.If:
		if err := a.visit(n.Kid(0)); err != nil {
			return err
		}
		return a.visit(n.Kid(1))
	case ast.IfElse:
		if err := a.visit(n.Kid(0)); err != nil {
			return err
		}
		if err := a.visit(n.Kid(1)); err != nil {
			return err
		}
		return a.visit(n.Kid(2))
	case ast.While:
		if err := a.visit(n.Kid(0)); err != nil {
			return err
		}
		return a.visit(n.Kid(1))
	case ast.RepeatUntil:
		if err := a.visit(n.Kid(0)); err != nil {
			return err
		}
		return a.visit(n.Kid(1))
	case ast.CompareEq, ast.CompareNeq, ast.CompareLt, ast.CompareLte, ast.CompareGt, ast.CompareGte,
		ast.Add, ast.Subtract, ast.Multiply, ast.Divide, ast.Modulus:
		if err := a.visit(n.Kid(0)); err != nil {
			return err
		}
		if err := a.visit(n.Kid(1)); err != nil {
			return err
		}
		n.SetType(types.Integer)
		return nil
	case ast.VarRef:
		return a.visitVarRef(n)
	case ast.Identifier:
		return a.visitIdentifier(n)
	case ast.ArrayElementRef:
		return a.visitArrayElementRef(n)
	case ast.FieldRef:
		return a.visitFieldRef(n)
	case ast.IntLiteral:
		return a.visitIntLiteral(n)
	default:
		panic("sema: unhandled node tag " + ast.TagName(n.Tag))
	}
}

// visitDef handles CONST and TYPE definitions: `name = rhs`. Both share
// the single-identifier-on-the-left shape; VAR definitions allow a list
// and are handled separately in visitVarDef.
func (a *Analyzer) visitDef(n *ast.Node, kind symbols.Kind) error {
	left, right := n.Kid(0), n.Kid(1)
	if err := a.visit(right); err != nil {
		return err
	}
	typ := right.Type
	name := left.Lexeme
	if _, err := a.scope.Insert(name, typ, kind); err != nil {
		return a.errf(left.Pos, "Name '%s' is already defined", name)
	}
	return nil
}

func (a *Analyzer) visitVarDef(n *ast.Node) error {
	left, right := n.Kid(0), n.Kid(1)
	if err := a.visit(right); err != nil {
		return err
	}
	typ := right.Type
	for _, id := range left.Children {
		if _, err := a.scope.Insert(id.Lexeme, typ, symbols.Variable); err != nil {
			return a.errf(id.Pos, "Name '%s' is already defined", id.Lexeme)
		}
	}
	return nil
}

func (a *Analyzer) visitNamedType(n *ast.Node) error {
	nameNode := n.Kid(0)
	name := nameNode.Lexeme
	var t *types.Type
	switch strings.ToUpper(name) {
	case "INTEGER":
		t = types.Integer
	case "CHAR":
		t = types.Char
	default:
		sym, ok := a.scope.Lookup(name)
		if !ok {
			return a.errf(nameNode.Pos, "Unknown type '%s'", name)
		}
		t = sym.Type
	}
	n.SetType(t)
	return nil
}

func (a *Analyzer) visitArrayType(n *ast.Node) error {
	sizeNode, elemNode := n.Kid(0), n.Kid(1)
	if err := a.visit(sizeNode); err != nil {
		return err
	}
	if err := a.visit(elemNode); err != nil {
		return err
	}
	size := sizeNode.IVal
	n.SetType(types.NewArray(size, elemNode.Type))
	return nil
}

func (a *Analyzer) visitRecordType(n *ast.Node) error {
	parent := a.scope
	recordScope := parent.NewChild()
	a.scope = recordScope
	for _, field := range n.Children {
		if err := a.visitVarDef(field); err != nil {
			a.scope = parent
			return err
		}
	}
	a.scope = parent
	n.SetType(types.NewRecord(recordScope))
	return nil
}

func (a *Analyzer) visitVarRef(n *ast.Node) error {
	ident := n.Kid(0)
	if err := a.visitIdentifierLookupOnly(ident); err != nil {
		return err
	}
	n.SetType(ident.Type)
	return nil
}

// visitIdentifier resolves and stamps a bare identifier use. Grounded on
// visit_identifier in context.cpp, which resolves the symbol purely for
// its offset; visitIdentifierLookupOnly below shares the lookup but is
// also used from contexts (array/field base) that need the symbol's type
// without re-deriving it through a VarRef wrapper.
func (a *Analyzer) visitIdentifier(n *ast.Node) error {
	return a.visitIdentifierLookupOnly(n)
}

func (a *Analyzer) visitIdentifierLookupOnly(n *ast.Node) error {
	sym, ok := a.scope.Lookup(n.Lexeme)
	if !ok {
		return a.errf(n.Pos, "Undefined variable '%s'", n.Lexeme)
	}
	n.SetType(sym.Type)
	return nil
}

func (a *Analyzer) visitArrayElementRef(n *ast.Node) error {
	identNode, indexNode := n.Kid(0), n.Kid(1)
	if err := a.visitIdentifierLookupOnly(identNode); err != nil {
		return err
	}
	if identNode.Type.Kind != types.Array {
		return a.errf(identNode.Pos, "'%s' is not an array", identNode.Lexeme)
	}
	if err := a.visit(indexNode); err != nil {
		return err
	}
	if indexNode.Type != types.Integer {
		return a.errf(indexNode.Pos, "array index must be INTEGER")
	}
	n.SetType(identNode.Type.ElemType)
	return nil
}

func (a *Analyzer) visitFieldRef(n *ast.Node) error {
	identNode, fieldNode := n.Kid(0), n.Kid(1)
	if err := a.visitIdentifierLookupOnly(identNode); err != nil {
		return err
	}
	if identNode.Type.Kind != types.Record {
		return a.errf(identNode.Pos, "'%s' is not a record", identNode.Lexeme)
	}
	scope := identNode.Type.Scope.(*symbols.Scope)
	sym, ok := scope.LookupLocal(fieldNode.Lexeme)
	if !ok {
		return a.errf(fieldNode.Pos, "record has no field '%s'", fieldNode.Lexeme)
	}
	fieldNode.SetType(sym.Type)
	n.SetType(sym.Type)
	n.FieldOffset = sym.Offset
	return nil
}

func (a *Analyzer) visitIntLiteral(n *ast.Node) error {
	v, err := strconv.ParseInt(n.Lexeme, 10, 64)
	if err != nil {
		return a.errf(n.Pos, "invalid integer literal '%s'", n.Lexeme)
	}
	n.IVal = int(v)
	n.SetType(types.Integer)
	return nil
}
