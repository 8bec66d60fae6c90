// Package parser implements plcc's hand-written recursive-descent
// parser. It consumes the token stream produced by internal/lexer and
// produces the *ast.Node tree internal/sema and internal/hirgen walk.
//
// The teacher repo (hhramberg-go-vslc) parses with a goyacc-generated
// grammar whose .y source was not retrieved into this pack, so this
// parser is instead grounded on other_examples/dodobyte-plzero's
// hand-written recursive-descent PL/0 front end: one method per grammar
// production, a one-token lookahead held in the parser struct, and
// `expect` helpers that report file:line:col errors instead of panicking.
package parser

import (
	"plcc/internal/ast"
	"plcc/internal/diag"
	"plcc/internal/token"
)

// Parser holds a token stream and the current lookahead position.
type Parser struct {
	file string
	toks []token.Token
	pos  int
}

// New returns a Parser over toks, read from file (used for error
// positions).
func New(file string, toks []token.Token) *Parser {
	return &Parser{file: file, toks: toks}
}

// Parse parses a complete program and returns its syntax tree.
func Parse(file string, toks []token.Token) (*ast.Node, error) {
	p := New(file, toks)
	return p.parseProgram()
}

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) pos0() diag.Pos {
	t := p.cur()
	return diag.Pos{File: p.file, Line: t.Line, Col: t.Col}
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) errf(format string, args ...interface{}) error {
	return diag.Fatalf(p.pos0(), format, args...)
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if !p.at(k) {
		return token.Token{}, p.errf("expected %s, found %s", k, p.cur().Kind)
	}
	return p.advance(), nil
}

// parseProgram: declarations BEGIN statement-list END .
func (p *Parser) parseProgram() (*ast.Node, error) {
	pos := p.pos0()
	decls, err := p.parseDeclarations()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwBegin); err != nil {
		return nil, err
	}
	stmts, err := p.parseStmtList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwEnd); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Dot); err != nil {
		return nil, err
	}
	return ast.New(ast.Program, pos, decls, stmts), nil
}

// parseDeclarations: { CONST-def | VAR-def | TYPE-def }
func (p *Parser) parseDeclarations() (*ast.Node, error) {
	pos := p.pos0()
	var kids []*ast.Node
	for {
		switch p.cur().Kind {
		case token.KwConst:
			n, err := p.parseConstDef()
			if err != nil {
				return nil, err
			}
			kids = append(kids, n)
		case token.KwVar:
			n, err := p.parseVarDef()
			if err != nil {
				return nil, err
			}
			kids = append(kids, n)
		case token.KwType:
			n, err := p.parseTypeDef()
			if err != nil {
				return nil, err
			}
			kids = append(kids, n)
		default:
			return ast.New(ast.Declarations, pos, kids...), nil
		}
	}
}

// parseConstDef: CONST name = intlit ;
func (p *Parser) parseConstDef() (*ast.Node, error) {
	pos := p.pos0()
	p.advance() // CONST
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Eq); err != nil {
		return nil, err
	}
	lit, err := p.expect(token.IntLit)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	ident := ast.New(ast.Identifier, diag.Pos{File: p.file, Line: name.Line, Col: name.Col})
	ident.Lexeme = name.Text
	lit_n := ast.New(ast.IntLiteral, diag.Pos{File: p.file, Line: lit.Line, Col: lit.Col})
	lit_n.Lexeme = lit.Text
	return ast.New(ast.ConstDef, pos, ident, lit_n), nil
}

// parseVarDef: [VAR] name {, name} : type ; — the VAR keyword is absent
// for a RECORD field definition.
func (p *Parser) parseVarDef() (*ast.Node, error) {
	pos := p.pos0()
	if p.at(token.KwVar) {
		p.advance() // VAR
	}
	idsPos := p.pos0()
	var ids []*ast.Node
	for {
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		id := ast.New(ast.Identifier, diag.Pos{File: p.file, Line: name.Line, Col: name.Col})
		id.Lexeme = name.Text
		ids = append(ids, id)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	identList := ast.New(ast.IdentList, idsPos, ids...)
	return ast.New(ast.VarDef, pos, identList, typ), nil
}

// parseTypeDef: TYPE name = type ;
func (p *Parser) parseTypeDef() (*ast.Node, error) {
	pos := p.pos0()
	p.advance() // TYPE
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Eq); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	ident := ast.New(ast.Identifier, diag.Pos{File: p.file, Line: name.Line, Col: name.Col})
	ident.Lexeme = name.Text
	return ast.New(ast.TypeDef, pos, ident, typ), nil
}

// parseType: INTEGER | CHAR | name | ARRAY intlit OF type | RECORD field{;field} END
func (p *Parser) parseType() (*ast.Node, error) {
	pos := p.pos0()
	switch p.cur().Kind {
	case token.KwArray:
		p.advance()
		lit, err := p.expect(token.IntLit)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.KwOf); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		lit_n := ast.New(ast.IntLiteral, diag.Pos{File: p.file, Line: lit.Line, Col: lit.Col})
		lit_n.Lexeme = lit.Text
		return ast.New(ast.ArrayType, pos, lit_n, elem), nil
	case token.KwRecord:
		p.advance()
		var fields []*ast.Node
		for !p.at(token.KwEnd) {
			f, err := p.parseVarDef()
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
		p.advance() // END
		return ast.New(ast.RecordType, pos, fields...), nil
	case token.Ident:
		name := p.advance()
		ident := ast.New(ast.Identifier, pos)
		ident.Lexeme = name.Text
		return ast.New(ast.NamedType, pos, ident), nil
	default:
		return nil, p.errf("expected a type, found %s", p.cur().Kind)
	}
}

// parseStmtList: stmt {; stmt}
func (p *Parser) parseStmtList() (*ast.Node, error) {
	pos := p.pos0()
	var kids []*ast.Node
	s, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	kids = append(kids, s)
	for p.at(token.Semi) {
		p.advance()
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		kids = append(kids, s)
	}
	return ast.New(ast.StmtList, pos, kids...), nil
}

func (p *Parser) parseStmt() (*ast.Node, error) {
	switch p.cur().Kind {
	case token.KwRead:
		return p.parseRead()
	case token.KwWrite:
		return p.parseWrite()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwRepeat:
		return p.parseRepeat()
	case token.Ident:
		return p.parseAssign()
	default:
		return nil, p.errf("expected a statement, found %s", p.cur().Kind)
	}
}

func (p *Parser) parseAssign() (*ast.Node, error) {
	pos := p.pos0()
	lv, err := p.parseLvalue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.Assign, pos, lv, rhs), nil
}

func (p *Parser) parseRead() (*ast.Node, error) {
	pos := p.pos0()
	p.advance() // READ
	lv, err := p.parseLvalue()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.Read, pos, lv), nil
}

func (p *Parser) parseWrite() (*ast.Node, error) {
	pos := p.pos0()
	p.advance() // WRITE
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.Write, pos, e), nil
}

func (p *Parser) parseIf() (*ast.Node, error) {
	pos := p.pos0()
	p.advance() // IF
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwThen); err != nil {
		return nil, err
	}
	then, err := p.parseStmtList()
	if err != nil {
		return nil, err
	}
	if p.at(token.KwElse) {
		p.advance()
		els, err := p.parseStmtList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.KwEnd); err != nil {
			return nil, err
		}
		return ast.New(ast.IfElse, pos, cond, then, els), nil
	}
	if _, err := p.expect(token.KwEnd); err != nil {
		return nil, err
	}
	return ast.New(ast.If, pos, cond, then), nil
}

func (p *Parser) parseWhile() (*ast.Node, error) {
	pos := p.pos0()
	p.advance() // WHILE
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwDo); err != nil {
		return nil, err
	}
	body, err := p.parseStmtList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwEnd); err != nil {
		return nil, err
	}
	return ast.New(ast.While, pos, cond, body), nil
}

func (p *Parser) parseRepeat() (*ast.Node, error) {
	pos := p.pos0()
	p.advance() // REPEAT
	body, err := p.parseStmtList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwUntil); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.RepeatUntil, pos, body, cond), nil
}

// parseLvalue: identifier [ [ expr ] | . identifier ]
func (p *Parser) parseLvalue() (*ast.Node, error) {
	pos := p.pos0()
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	ident := ast.New(ast.Identifier, diag.Pos{File: p.file, Line: name.Line, Col: name.Col})
	ident.Lexeme = name.Text
	switch p.cur().Kind {
	case token.LBracket:
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return nil, err
		}
		return ast.New(ast.ArrayElementRef, pos, ident, idx), nil
	case token.Dot:
		p.advance()
		field, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		fieldNode := ast.New(ast.Identifier, diag.Pos{File: p.file, Line: field.Line, Col: field.Col})
		fieldNode.Lexeme = field.Text
		return ast.New(ast.FieldRef, pos, ident, fieldNode), nil
	default:
		return ast.New(ast.VarRef, pos, ident), nil
	}
}

// parseExpr: term [ (= | <> | < | <= | > | >=) term ]
func (p *Parser) parseExpr() (*ast.Node, error) {
	pos := p.pos0()
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	tag, ok := compareTag(p.cur().Kind)
	if !ok {
		return lhs, nil
	}
	p.advance()
	rhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return ast.New(tag, pos, lhs, rhs), nil
}

func compareTag(k token.Kind) (ast.Tag, bool) {
	switch k {
	case token.Eq:
		return ast.CompareEq, true
	case token.Neq:
		return ast.CompareNeq, true
	case token.Lt:
		return ast.CompareLt, true
	case token.Lte:
		return ast.CompareLte, true
	case token.Gt:
		return ast.CompareGt, true
	case token.Gte:
		return ast.CompareGte, true
	default:
		return 0, false
	}
}

// parseTerm: factor { (+ | - ) factor }
func (p *Parser) parseTerm() (*ast.Node, error) {
	pos := p.pos0()
	lhs, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.at(token.Plus) || p.at(token.Minus) {
		tag := ast.Add
		if p.at(token.Minus) {
			tag = ast.Subtract
		}
		p.advance()
		rhs, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		lhs = ast.New(tag, pos, lhs, rhs)
	}
	return lhs, nil
}

// parseFactor: unary { (* | / | MOD) unary }
func (p *Parser) parseFactor() (*ast.Node, error) {
	pos := p.pos0()
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(token.Star) || p.at(token.Slash) || p.at(token.KwMod) {
		var tag ast.Tag
		switch p.cur().Kind {
		case token.Star:
			tag = ast.Multiply
		case token.Slash:
			tag = ast.Divide
		case token.KwMod:
			tag = ast.Modulus
		}
		p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = ast.New(tag, pos, lhs, rhs)
	}
	return lhs, nil
}

// parseUnary: [-] atom, lowered to (0 - atom) for a leading minus.
func (p *Parser) parseUnary() (*ast.Node, error) {
	if p.at(token.Minus) {
		pos := p.pos0()
		p.advance()
		operand, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		zero := ast.New(ast.IntLiteral, pos)
		zero.Lexeme = "0"
		return ast.New(ast.Subtract, pos, zero, operand), nil
	}
	return p.parseAtom()
}

// parseAtom: intlit | ( expr ) | lvalue
func (p *Parser) parseAtom() (*ast.Node, error) {
	pos := p.pos0()
	switch p.cur().Kind {
	case token.IntLit:
		t := p.advance()
		n := ast.New(ast.IntLiteral, pos)
		n.Lexeme = t.Text
		return n, nil
	case token.LParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return e, nil
	case token.Ident:
		return p.parseLvalue()
	default:
		return nil, p.errf("expected an expression, found %s", p.cur().Kind)
	}
}
