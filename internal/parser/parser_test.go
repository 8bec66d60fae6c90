package parser

import (
	"testing"

	"plcc/internal/ast"
	"plcc/internal/lexer"
)

func parseSrc(t *testing.T, src string) *ast.Node {
	t.Helper()
	toks, err := lexer.Lex("t.pas", src)
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	root, err := Parse("t.pas", toks)
	if err != nil {
		t.Fatalf("Parse returned error: %s", err)
	}
	return root
}

// TestParseProgramShape checks the top-level Program/Declarations/
// StmtList nesting spec §2 and internal/hirgen both assume.
func TestParseProgramShape(t *testing.T) {
	root := parseSrc(t, "var x : integer;\nbegin\n\tx := 1\nend.\n")
	if root.Tag != ast.Program {
		t.Fatalf("expected Program root, got %s", ast.TagName(root.Tag))
	}
	if root.NumKids() != 2 {
		t.Fatalf("expected 2 children (Declarations, StmtList), got %d", root.NumKids())
	}
	if root.Kid(0).Tag != ast.Declarations {
		t.Errorf("expected Kid(0) == Declarations, got %s", ast.TagName(root.Kid(0).Tag))
	}
	if root.Kid(1).Tag != ast.StmtList {
		t.Errorf("expected Kid(1) == StmtList, got %s", ast.TagName(root.Kid(1).Tag))
	}
}

// TestParseUnaryMinus checks that a leading `-` is desugared into
// `0 - operand` (spec §2), never carried as a distinct unary-minus node.
func TestParseUnaryMinus(t *testing.T) {
	root := parseSrc(t, "var x : integer;\nbegin\n\tx := -x\nend.\n")
	assign := root.Kid(1).Kid(0)
	if assign.Tag != ast.Assign {
		t.Fatalf("expected Assign, got %s", ast.TagName(assign.Tag))
	}
	rhs := assign.Kid(1)
	if rhs.Tag != ast.Subtract {
		t.Fatalf("expected unary minus to desugar to Subtract, got %s", ast.TagName(rhs.Tag))
	}
	if rhs.Kid(0).Tag != ast.IntLiteral || rhs.Kid(0).Lexeme != "0" {
		t.Errorf("expected left operand to be literal 0, got %s %q", ast.TagName(rhs.Kid(0).Tag), rhs.Kid(0).Lexeme)
	}
}

// TestParseArrayElementRef checks that `a[1]` parses as an
// ArrayElementRef rather than a bare VarRef; TestParseFieldRef covers
// the FieldRef form.
func TestParseArrayElementRef(t *testing.T) {
	root := parseSrc(t, "var a : array 3 of integer;\nbegin\n\ta[1] := 2\nend.\n")
	assign := root.Kid(1).Kid(0)
	lv := assign.Kid(0)
	if lv.Tag != ast.ArrayElementRef {
		t.Fatalf("expected ArrayElementRef, got %s", ast.TagName(lv.Tag))
	}
	if lv.Kid(0).Lexeme != "a" {
		t.Errorf("expected base identifier 'a', got %q", lv.Kid(0).Lexeme)
	}
}

func TestParseFieldRef(t *testing.T) {
	root := parseSrc(t, "type point = record x, y : integer; end;\nvar p : point;\nbegin\n\tp.x := 1\nend.\n")
	assign := root.Kid(1).Kid(0)
	lv := assign.Kid(0)
	if lv.Tag != ast.FieldRef {
		t.Fatalf("expected FieldRef, got %s", ast.TagName(lv.Tag))
	}
	if lv.Kid(1).Lexeme != "x" {
		t.Errorf("expected field name 'x', got %q", lv.Kid(1).Lexeme)
	}
}

// TestParsePrecedence checks that `*` binds tighter than `+`.
func TestParsePrecedence(t *testing.T) {
	root := parseSrc(t, "var x : integer;\nbegin\n\tx := 1 + 2 * 3\nend.\n")
	rhs := root.Kid(1).Kid(0).Kid(1)
	if rhs.Tag != ast.Add {
		t.Fatalf("expected top-level Add, got %s", ast.TagName(rhs.Tag))
	}
	if rhs.Kid(1).Tag != ast.Multiply {
		t.Fatalf("expected right operand Multiply, got %s", ast.TagName(rhs.Kid(1).Tag))
	}
}

// TestParseIfElseHasThreeKids distinguishes If (2 kids) from IfElse
// (3 kids), the shape internal/hirgen's genStmt switch depends on.
func TestParseIfElseHasThreeKids(t *testing.T) {
	root := parseSrc(t, "var x : integer;\nbegin\n\tif x = 0 then x := 1 else x := 2 end\nend.\n")
	stmt := root.Kid(1).Kid(0)
	if stmt.Tag != ast.IfElse {
		t.Fatalf("expected IfElse, got %s", ast.TagName(stmt.Tag))
	}
	if stmt.NumKids() != 3 {
		t.Fatalf("expected 3 children, got %d", stmt.NumKids())
	}
}

func TestParseMissingConditionError(t *testing.T) {
	toks, err := lexer.Lex("t.pas", "var x : integer;\nbegin\n\tif then x := 1 end\nend.\n")
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	if _, err := Parse("t.pas", toks); err == nil {
		t.Fatalf("expected a parse error for a missing condition expression")
	}
}
