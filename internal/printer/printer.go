// Package printer renders the observable-only diagnostic views spec §6
// names: an indented syntax tree, a DOT/graphviz graph of the same tree,
// a flattened symbol-table dump, and a textual HIR listing. None of
// these feed back into the compiler; they exist purely for the `-p`,
// `-g`, `-s` and `-h` command-line modes.
//
// Grounded on the teacher's ir/lir/print.go idiom: a strings.Builder
// accumulator walked recursively, one String()-shaped render function
// per data kind, fmt.Sprintf for field interpolation.
package printer

import (
	"fmt"
	"strings"

	"plcc/internal/ast"
	"plcc/internal/hir"
	"plcc/internal/symbols"
	"plcc/internal/types"
)

// Tree renders root as an indented syntax tree, two spaces per level.
func Tree(root *ast.Node) string {
	var sb strings.Builder
	writeTree(&sb, root, 0)
	return sb.String()
}

func writeTree(sb *strings.Builder, n *ast.Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(ast.TagName(n.Tag))
	if n.Lexeme != "" {
		fmt.Fprintf(sb, " %q", n.Lexeme)
	}
	if n.Type != nil {
		fmt.Fprintf(sb, " : %s", n.Type.String())
	}
	sb.WriteString("\n")
	for _, k := range n.Children {
		writeTree(sb, k, depth+1)
	}
}

// DOT renders root as a graphviz digraph.
func DOT(root *ast.Node) string {
	var sb strings.Builder
	sb.WriteString("digraph AST {\n")
	id := 0
	writeDOT(&sb, root, &id)
	sb.WriteString("}\n")
	return sb.String()
}

func writeDOT(sb *strings.Builder, n *ast.Node, id *int) int {
	self := *id
	*id++
	label := ast.TagName(n.Tag)
	if n.Lexeme != "" {
		label += "\\n" + n.Lexeme
	}
	fmt.Fprintf(sb, "  n%d [label=\"%s\"];\n", self, label)
	for _, k := range n.Children {
		child := writeDOT(sb, k, id)
		fmt.Fprintf(sb, "  n%d -> n%d;\n", self, child)
	}
	return self
}

// SymbolTable renders scope's symbols top-down, one line per symbol:
// `depth,kind,name,type` (spec §6). Record-typed symbols print their
// inner field table first, and print with kind RECORD rather than TYPE —
// the fourth kind label spec §6 names that the three-valued symbols.Kind
// enum doesn't carry on its own.
func SymbolTable(scope *symbols.Scope) string {
	var sb strings.Builder
	writeScope(&sb, scope)
	return sb.String()
}

func writeScope(sb *strings.Builder, scope *symbols.Scope) {
	for _, sym := range scope.Symbols() {
		if sym.Type.Kind == types.Record {
			if rs, ok := sym.Type.Scope.(*symbols.Scope); ok {
				writeScope(sb, rs)
			}
		}
		fmt.Fprintf(sb, "%d,%s,%s,%s\n", scope.Depth(), printKind(sym), sym.Name, sym.Type.String())
	}
}

// printKind returns the symbol's print-kind: CONST/VAR normally, but
// RECORD in place of TYPE when the named type itself denotes a record.
func printKind(sym *symbols.Symbol) string {
	if sym.Kind == symbols.TypeSym && sym.Type.Kind == types.Record {
		return "RECORD"
	}
	return sym.Kind.String()
}

// HIR renders seq as a flat textual instruction listing, one line per
// label or instruction.
func HIR(seq *hir.InstructionSequence) string {
	var sb strings.Builder
	for i := 0; i < seq.Len(); i++ {
		if label, ok := seq.LabelAt(i); ok {
			fmt.Fprintf(&sb, "%s:\n", label)
		}
		fmt.Fprintf(&sb, "\t%s\n", seq.Instruction(i).String())
	}
	if label, ok := seq.EndLabel(); ok {
		fmt.Fprintf(&sb, "%s:\n", label)
	}
	return sb.String()
}
