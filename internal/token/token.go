// Package token defines the lexical token kinds produced by internal/lexer.
package token

import "fmt"

// Kind differentiates the tokens scanned from source.
type Kind int

const (
	EOF Kind = iota
	Error

	Ident
	IntLit

	// Keywords.
	KwVar
	KwConst
	KwType
	KwBegin
	KwEnd
	KwIf
	KwThen
	KwElse
	KwWhile
	KwDo
	KwRepeat
	KwUntil
	KwRead
	KwWrite
	KwArray
	KwOf
	KwRecord
	KwMod

	// Operators and punctuation.
	Assign // :=
	Eq     // =
	Neq    // <>
	Lt     // <
	Lte    // <=
	Gt     // >
	Gte    // >=
	Plus
	Minus
	Star
	Slash
	Dot
	Comma
	Semi
	Colon
	LParen
	RParen
	LBracket
	RBracket
)

var names = map[Kind]string{
	EOF:      "EOF",
	Error:    "ERROR",
	Ident:    "IDENT",
	IntLit:   "INTLIT",
	KwVar:    "VAR",
	KwConst:  "CONST",
	KwType:   "TYPE",
	KwBegin:  "BEGIN",
	KwEnd:    "END",
	KwIf:     "IF",
	KwThen:   "THEN",
	KwElse:   "ELSE",
	KwWhile:  "WHILE",
	KwDo:     "DO",
	KwRepeat: "REPEAT",
	KwUntil:  "UNTIL",
	KwRead:   "READ",
	KwWrite:  "WRITE",
	KwArray:  "ARRAY",
	KwOf:     "OF",
	KwRecord: "RECORD",
	KwMod:    "MOD",
	Assign:   ":=",
	Eq:       "=",
	Neq:      "<>",
	Lt:       "<",
	Lte:      "<=",
	Gt:       ">",
	Gte:      ">=",
	Plus:     "+",
	Minus:    "-",
	Star:     "*",
	Slash:    "/",
	Dot:      ".",
	Comma:    ",",
	Semi:     ";",
	Colon:    ":",
	LParen:   "(",
	RParen:   ")",
	LBracket: "[",
	RBracket: "]",
}

// Keywords maps the upper-case spelling of each reserved word to its Kind.
var Keywords = map[string]Kind{
	"VAR":    KwVar,
	"CONST":  KwConst,
	"TYPE":   KwType,
	"BEGIN":  KwBegin,
	"END":    KwEnd,
	"IF":     KwIf,
	"THEN":   KwThen,
	"ELSE":   KwElse,
	"WHILE":  KwWhile,
	"DO":     KwDo,
	"REPEAT": KwRepeat,
	"UNTIL":  KwUntil,
	"READ":   KwRead,
	"WRITE":  KwWrite,
	"ARRAY":  KwArray,
	"OF":     KwOf,
	"RECORD": KwRecord,
	"MOD":    KwMod,
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single scanned lexeme with its source position.
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q (line %d:%d)", t.Kind, t.Text, t.Line, t.Col)
}
