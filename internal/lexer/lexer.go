// Package lexer scans plcc source text into a token stream.
//
// The state-function design is adapted from Rob Pike's lexer talk, the
// same pattern the teacher's frontend/lexer.go and lexerStates.go use.
// Unlike the teacher, which runs the lexer on its own goroutine and hands
// tokens to a concurrently running parser over a channel, this lexer runs
// to completion synchronously and returns a token slice: spec §5 rules
// out coroutines and cooperative suspension anywhere in the pipeline.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"plcc/internal/token"
)

const eof = -1

type stateFunc func(*lexer) stateFunc

// lexer traverses a source stream rune by rune and accumulates tokens.
type lexer struct {
	file        string
	input       string
	start       int
	pos         int
	width       int
	line        int
	startOnLine int
	startLine   int
	toks        []token.Token
	err         error
}

// Lex scans the entirety of src and returns the resulting token stream,
// terminated by an token.EOF token. It returns the first lexical error
// encountered, if any.
func Lex(file, src string) ([]token.Token, error) {
	l := &lexer{
		file:        file,
		input:       src,
		line:        1,
		startOnLine: 1,
		startLine:   1,
	}
	for state := stateFunc(lexGlobal); state != nil && l.err == nil; {
		state = state(l)
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.toks, nil
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

func (l *lexer) backup() {
	l.pos -= l.width
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) ignore() {
	l.startOnLine += l.pos - l.start
	l.start = l.pos
	l.startLine = l.line
}

func (l *lexer) emit(k token.Kind) {
	l.toks = append(l.toks, token.Token{
		Kind: k,
		Text: l.input[l.start:l.pos],
		Line: l.startLine,
		Col:  l.startOnLine,
	})
	l.startOnLine += l.pos - l.start
	l.start = l.pos
	l.startLine = l.line
}

func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	l.err = fmt.Errorf("%s:%d:%d: Error: %s", l.file, l.line, l.startOnLine, fmt.Sprintf(format, args...))
	return nil
}

func isAlpha(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\f'
}

// lexGlobal is the default lexer state.
func lexGlobal(l *lexer) stateFunc {
	for {
		r := l.next()
		switch {
		case r == eof:
			l.emit(token.EOF)
			return nil
		case r == '\n':
			l.ignore()
			l.line++
			l.startOnLine = 1
			l.startLine = l.line
		case isSpace(r):
			l.ignore()
		case r == '{':
			// Brace comments, matching the bracketed-comment convention
			// used by the original Pascal-family source programs.
			for {
				c := l.next()
				if c == eof {
					return l.errorf("unterminated comment")
				}
				if c == '\n' {
					l.line++
				}
				if c == '}' {
					break
				}
			}
			l.ignore()
		case isAlpha(r):
			return lexWord
		case isDigit(r):
			return lexNumber
		case r == ':' && l.peek() == '=':
			l.next()
			l.emit(token.Assign)
		case r == ':':
			l.emit(token.Colon)
		case r == '<' && l.peek() == '=':
			l.next()
			l.emit(token.Lte)
		case r == '<' && l.peek() == '>':
			l.next()
			l.emit(token.Neq)
		case r == '<':
			l.emit(token.Lt)
		case r == '>' && l.peek() == '=':
			l.next()
			l.emit(token.Gte)
		case r == '>':
			l.emit(token.Gt)
		case r == '=':
			l.emit(token.Eq)
		case r == '+':
			l.emit(token.Plus)
		case r == '-':
			l.emit(token.Minus)
		case r == '*':
			l.emit(token.Star)
		case r == '/':
			l.emit(token.Slash)
		case r == '.':
			l.emit(token.Dot)
		case r == ',':
			l.emit(token.Comma)
		case r == ';':
			l.emit(token.Semi)
		case r == '(':
			l.emit(token.LParen)
		case r == ')':
			l.emit(token.RParen)
		case r == '[':
			l.emit(token.LBracket)
		case r == ']':
			l.emit(token.RBracket)
		default:
			return l.errorf("unexpected character %q", r)
		}
	}
}

// lexWord scans an identifier or keyword.
func lexWord(l *lexer) stateFunc {
	for {
		r := l.next()
		if !isAlpha(r) && !isDigit(r) {
			l.backup()
			break
		}
	}
	word := l.input[l.start:l.pos]
	if kw, ok := token.Keywords[strings.ToUpper(word)]; ok {
		l.emit(kw)
	} else {
		l.emit(token.Ident)
	}
	return lexGlobal
}

// lexNumber scans a decimal integer literal.
func lexNumber(l *lexer) stateFunc {
	for {
		r := l.next()
		if !isDigit(r) {
			l.backup()
			break
		}
	}
	l.emit(token.IntLit)
	return lexGlobal
}
