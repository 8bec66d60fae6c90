// Package symbols implements plcc's lexically scoped symbol table: an
// ordered list of symbols per scope, linked to an optional parent scope.
//
// Grounded on original_source/assign03/symtab.h+.cpp (insert/lookup/
// s_exists) generalized to the parent-chain lookup spec §3 specifies
// (the retrieved assign03 table has no parent link; assign04's
// context.cpp calls scope->lookup/s_exists against what must be a
// chained table, since records nest scopes — spec §3 is the tie-breaker
// for the chain-walking behavior). The concurrency primitives present in
// the teacher's own ir/symtab.go (SymTab's sync.Mutex, parallel worker
// threads populating it) are dropped per spec §5: batch, single-threaded.
package symbols

import (
	"fmt"

	"plcc/internal/types"
)

// Kind differentiates constant, variable and type symbols.
type Kind int

const (
	Const Kind = iota
	Variable
	TypeSym
)

func (k Kind) String() string {
	switch k {
	case Const:
		return "CONST"
	case Variable:
		return "VAR"
	case TypeSym:
		return "TYPE"
	default:
		return "?"
	}
}

// Symbol is one entry in a Scope: a name, its Type, its Kind, and its
// byte offset within the owning scope.
type Symbol struct {
	Name   string
	Type   *types.Type
	Kind   Kind
	Offset int
}

// Scope is an ordered symbol table for one lexical nesting level. The
// zero value is not usable; construct with NewGlobal or NewChild.
type Scope struct {
	parent  *Scope
	depth   int
	order   []*Symbol
	byName  map[string]*Symbol
	offset  int // running byte offset for the next inserted symbol
}

// NewGlobal returns a fresh root scope (depth 0, no parent).
func NewGlobal() *Scope {
	return &Scope{byName: make(map[string]*Symbol)}
}

// NewChild returns a fresh scope nested one level below parent, with its
// own independent offset counter starting at 0 (spec §4.1: "Record field
// offsets are allocated within the record's own scope... independently
// of the enclosing scope's offset counter" — the same rule applies to
// any child scope, records being the only child scopes this language
// creates).
func (s *Scope) NewChild() *Scope {
	return &Scope{parent: s, depth: s.depth + 1, byName: make(map[string]*Symbol)}
}

// Depth returns s's nesting depth; the root scope is depth 0.
func (s *Scope) Depth() int {
	return s.depth
}

// Parent returns s's enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// NextOffset returns the byte offset the next symbol inserted into s
// would receive.
func (s *Scope) NextOffset() int {
	return s.offset
}

// existsInChain reports whether name is defined in s or any ancestor.
func (s *Scope) existsInChain(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.byName[name]; ok {
			return true
		}
	}
	return false
}

// Insert allocates a Symbol for name with the given type and kind at s's
// current offset, advances the offset by typ.Size(), and inserts it.
// Insertion fails if name is already defined anywhere on the parent
// chain (spec §3: redefinition error).
func (s *Scope) Insert(name string, typ *types.Type, kind Kind) (*Symbol, error) {
	if s.existsInChain(name) {
		return nil, fmt.Errorf("name '%s' is already defined", name)
	}
	sym := &Symbol{Name: name, Type: typ, Kind: kind, Offset: s.offset}
	s.offset += typ.Size()
	s.order = append(s.order, sym)
	s.byName[name] = sym
	return sym, nil
}

// Lookup searches s in insertion order, then s's parent chain.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.byName[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal searches only s itself, not its ancestors. Used by record
// field resolution, which must not leak into the enclosing scope's
// variables (spec §4.1: field lookup happens "in the record's own
// scope").
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.byName[name]
	return sym, ok
}

// Symbols returns s's own symbols in declaration order.
func (s *Scope) Symbols() []*Symbol {
	return s.order
}

// TotalSize returns the sum of the declared sizes of every symbol
// inserted into s — satisfies types.FieldScope for Record types, and is
// the invariant checked in spec §8: "offset + size <= total size" for
// every symbol.
func (s *Scope) TotalSize() int {
	total := 0
	for _, sym := range s.order {
		total += sym.Type.Size()
	}
	return total
}

// FieldNames returns the ordered field names of s, for types.FieldScope.
func (s *Scope) FieldNames() []string {
	names := make([]string, len(s.order))
	for i, sym := range s.order {
		names[i] = sym.Name
	}
	return names
}

// FieldType returns the Type of the field named name, or nil if absent.
func (s *Scope) FieldType(name string) *types.Type {
	if sym, ok := s.byName[name]; ok {
		return sym.Type
	}
	return nil
}
