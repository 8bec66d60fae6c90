// Package ast defines the syntax tree produced by internal/parser and
// annotated in place by internal/sema.
//
// Grounded on original_source/assign04's Node class, which carries its
// type annotation directly as a mutable field rather than through a
// side table — spec §9's design note offers a keyed-map alternative,
// but a node that owns its own annotation slot is what the system being
// specified actually does, and is the simpler Go shape. internal/hirgen
// resolves HIR operands and comparison polarity as it walks the tree
// rather than stamping them back onto nodes, so those two annotations
// from the original live only as hirgen's own local state.
package ast

import (
	"plcc/internal/diag"
	"plcc/internal/types"
)

// Tag identifies the syntactic form of a Node.
type Tag int

const (
	Program Tag = iota
	Declarations

	ConstDef
	VarDef
	TypeDef

	NamedType
	ArrayType
	RecordType

	StmtList
	Assign
	Read
	Write
	If
	IfElse
	While
	RepeatUntil

	CompareEq
	CompareNeq
	CompareLt
	CompareLte
	CompareGt
	CompareGte

	Add
	Subtract
	Multiply
	Divide
	Modulus

	VarRef
	Identifier
	IdentList
	ArrayElementRef
	FieldRef
	IntLiteral
)

var tagNames = map[Tag]string{
	Program:         "PROGRAM",
	Declarations:    "DECLARATIONS",
	ConstDef:        "CONST_DEF",
	VarDef:          "VAR_DEF",
	TypeDef:         "TYPE_DEF",
	NamedType:       "NAMED_TYPE",
	ArrayType:       "ARRAY_TYPE",
	RecordType:      "RECORD_TYPE",
	StmtList:        "STMT_LIST",
	Assign:          "ASSIGN",
	Read:            "READ",
	Write:           "WRITE",
	If:              "IF",
	IfElse:          "IF_ELSE",
	While:           "WHILE",
	RepeatUntil:     "REPEAT_UNTIL",
	CompareEq:       "COMPARE_EQ",
	CompareNeq:      "COMPARE_NEQ",
	CompareLt:       "COMPARE_LT",
	CompareLte:      "COMPARE_LTE",
	CompareGt:       "COMPARE_GT",
	CompareGte:      "COMPARE_GTE",
	Add:             "ADD",
	Subtract:        "SUBTRACT",
	Multiply:        "MULTIPLY",
	Divide:          "DIVIDE",
	Modulus:         "MODULUS",
	VarRef:          "VAR_REF",
	Identifier:      "IDENTIFIER",
	IdentList:       "IDENT_LIST",
	ArrayElementRef: "ARRAY_ELEMENT_REF",
	FieldRef:        "FIELD_REF",
	IntLiteral:      "INT_LITERAL",
}

// TagName returns the textual name of tag, for use by tree/DOT printers.
func TagName(tag Tag) string {
	if s, ok := tagNames[tag]; ok {
		return s
	}
	return "UNKNOWN"
}

// Node is one syntax tree node. Annotation fields (Type, FieldOffset)
// are written by later passes; they are zero until the relevant pass
// runs. internal/hirgen resolves HIR operands and comparison polarity
// functionally as it walks the tree rather than stamping them back onto
// the node, so this Node carries no Operand/Inverted slots for them.
type Node struct {
	Tag      Tag
	Lexeme   string
	IVal     int
	Pos      diag.Pos
	Children []*Node

	Type        *types.Type
	FieldOffset int // valid only for FieldRef, after sema
}

// New creates a Node with the given tag, position and children.
func New(tag Tag, pos diag.Pos, children ...*Node) *Node {
	return &Node{Tag: tag, Pos: pos, Children: children}
}

// Kid returns the i'th child of n.
func (n *Node) Kid(i int) *Node {
	return n.Children[i]
}

// NumKids returns the number of children of n.
func (n *Node) NumKids() int {
	return len(n.Children)
}

// SetType stamps n's resolved type.
func (n *Node) SetType(t *types.Type) {
	n.Type = t
}
