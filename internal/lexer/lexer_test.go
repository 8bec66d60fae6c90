package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"plcc/internal/token"
)

// TestLex verifies that a small sample program is tokenized in the
// expected order, mirroring the teacher's hand-captured expected-token-
// slice style in frontend/lexer_test.go, adapted to a synchronous
// Lex call instead of a goroutine-fed channel.
func TestLex(t *testing.T) {
	src := `var x, y : integer;
begin
	x := 1 + 2 * 3;
	if x <> 0 then
		write x
	end
end.
`
	toks, err := Lex("t.pas", src)
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}

	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}

	want := []token.Kind{
		token.KwVar, token.Ident, token.Comma, token.Ident, token.Colon, token.Ident, token.Semi,
		token.KwBegin,
		token.Ident, token.Assign, token.IntLit, token.Plus, token.IntLit, token.Star, token.IntLit, token.Semi,
		token.KwIf, token.Ident, token.Neq, token.IntLit, token.KwThen,
		token.KwWrite, token.Ident,
		token.KwEnd,
		token.KwEnd, token.Dot,
		token.EOF,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
}

// TestLexKeywordCaseInsensitive verifies that keyword matching folds case:
// upper-, lower- and mixed-case spellings all scan as the same keyword.
func TestLexKeywordCaseInsensitive(t *testing.T) {
	toks, err := Lex("t.pas", "VAR BEGIN end")
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	want := []token.Kind{token.KwVar, token.KwBegin, token.KwEnd, token.EOF}
	var got []token.Kind
	for _, tok := range toks {
		got = append(got, tok.Kind)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("keyword folding mismatch (-want +got):\n%s", diff)
	}
}

// TestLexIntegerIsIdentifier checks that INTEGER/CHAR scan as plain
// identifiers, since this language has no reserved type-name keywords.
func TestLexIntegerIsIdentifier(t *testing.T) {
	toks, err := Lex("t.pas", "integer")
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	if len(toks) < 1 || toks[0].Kind != token.Ident {
		t.Fatalf("expected INTEGER to lex as an identifier, got %v", toks)
	}
	if toks[0].Text != "integer" {
		t.Errorf("expected original-case lexeme %q preserved, got %q", "integer", toks[0].Text)
	}
}

func TestLexPosition(t *testing.T) {
	toks, err := Lex("t.pas", "x\n  y")
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	if toks[0].Line != 1 || toks[0].Col != 1 {
		t.Errorf("expected x at 1:1, got %d:%d", toks[0].Line, toks[0].Col)
	}
	if toks[1].Line != 2 || toks[1].Col != 3 {
		t.Errorf("expected y at 2:3, got %d:%d", toks[1].Line, toks[1].Col)
	}
}
