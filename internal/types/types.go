// Package types implements plcc's type registry: primitive, array and
// record types, interned so structurally identical types compare and
// print identically.
//
// Grounded on original_source/assign04/type.h's Type struct (a tagged
// union of PRIMITIVE/ARRAY/RECORD carrying arraySize/arrayElementType/
// size/symtab fields), reshaped into a Go value type per spec §9's design
// note: "represent by value equality of a small enum, not pointer
// identity." internal/symbols.Scope is referenced by pointer from Record
// types; symbols imports types for field Type, so the Record's Scope
// field is declared as an opaque interface here to avoid an import
// cycle, and internal/symbols supplies the concrete *symbols.Scope.
package types

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Kind discriminates the Type variants.
type Kind int

const (
	Primitive Kind = iota
	Array
	Record
)

// FieldScope is the subset of internal/symbols.Scope's API that the type
// registry needs to print and size a record, without importing symbols
// (which itself holds *Type values and would otherwise form a cycle).
type FieldScope interface {
	FieldNames() []string
	FieldType(name string) *Type
	TotalSize() int
}

// Type is a tagged value type: exactly one of the field groups below is
// meaningful, selected by Kind.
type Type struct {
	Kind Kind

	// Primitive.
	Name string
	size int

	// Array.
	ElemType  *Type
	ElemCount int

	// Record.
	Scope FieldScope
}

// Integer and Char are the two process-wide canonical primitive types.
// Spec §9: CHAR is declared but never distinguished from INTEGER by any
// lowering; both report Size() == wordSize so every stack slot the
// backend allocates is uniformly 8 bytes (spec §4.3), while Name/size
// still record the declared identity/width for printing (spec §6).
var (
	Integer = &Type{Kind: Primitive, Name: "INTEGER", size: 8}
	Char    = &Type{Kind: Primitive, Name: "CHAR", size: 1}
)

const wordSize = 8

// internTable deduplicates structurally identical Array/Record types by
// the xxhash of their canonical signature string, so two occurrences of
// e.g. "ARRAY 3 OF INTEGER" share one *Type.
var internTable = map[uint64]*Type{}

func intern(sig string, make func() *Type) *Type {
	h := xxhash.Sum64String(sig)
	if t, ok := internTable[h]; ok {
		return t
	}
	t := make()
	internTable[h] = t
	return t
}

// NewArray returns the interned Array type of count elements of elem.
func NewArray(count int, elem *Type) *Type {
	sig := fmt.Sprintf("ARRAY %d OF %s", count, elem.String())
	return intern(sig, func() *Type {
		return &Type{Kind: Array, ElemCount: count, ElemType: elem}
	})
}

// NewRecord returns a fresh Record type backed by scope. Records are not
// interned on structural identity the way arrays are: two textually
// identical RECORD declarations at different source points are distinct
// user-defined types with their own field scopes, per spec §3's "records
// own their own scope" invariant.
func NewRecord(scope FieldScope) *Type {
	return &Type{Kind: Record, Scope: scope}
}

// Size returns the byte size of t, computed in constant time from the
// variant's recorded fields (spec §3's size invariant).
func (t *Type) Size() int {
	switch t.Kind {
	case Primitive:
		return wordSize
	case Array:
		return t.ElemCount * t.ElemType.Size()
	case Record:
		return t.Scope.TotalSize()
	default:
		panic("types: unknown Kind")
	}
}

// DeclaredSize returns the type's declared width ignoring the backend's
// uniform 8-byte slot convention. Nothing in the compiler calls it; the
// printers print type names, not widths.
func (t *Type) DeclaredSize() int {
	if t.Kind == Primitive {
		return t.size
	}
	return t.Size()
}

// String renders t the way spec §6 requires for symbol-table printing.
func (t *Type) String() string {
	switch t.Kind {
	case Primitive:
		return t.Name
	case Array:
		return fmt.Sprintf("ARRAY %d OF %s", t.ElemCount, t.ElemType.String())
	case Record:
		fields := t.Scope.FieldNames()
		parts := make([]string, len(fields))
		for i, name := range fields {
			parts[i] = fmt.Sprintf("%s:%s", name, t.Scope.FieldType(name).String())
		}
		return fmt.Sprintf("RECORD (%s)", strings.Join(parts, ", "))
	default:
		return "?"
	}
}
