// Package object implements the concrete heap object variants layered on
// top of package value's tagged Value/Obj types: strings, functions,
// closures, upvalues, arrays, classes, instances, bound methods, and
// native functions. Allocation bookkeeping (the intrusive object list,
// mark bits, GC) lives in package heap, which is the only thing that
// needs to know these objects share a heap; object itself just defines
// their shapes.
package object

import (
	"strings"

	"github.com/kristofer/loxvm/internal/value"
)

// ObjString is an immutable, interned byte sequence. The runtime
// guarantees at most one ObjString per distinct content: two strings
// with the same bytes are always the same object, which is what lets
// value.Equal and map keys use pointer identity instead of content
// comparison.
type ObjString struct {
	value.ObjHeader
	Chars string
	Hash  uint32
}

// NewString builds an ObjString for chars. It does not intern — interning
// (the "at most one ObjString per content" guarantee) is the heap
// allocator's job, since it alone owns the strings table.
func NewString(chars string) *ObjString {
	return &ObjString{
		ObjHeader: value.ObjHeader{Kind: value.ObjString},
		Chars:     chars,
		Hash:      HashString(chars),
	}
}

// HashString computes a 32-bit FNV-1a hash, used both as the ObjString's
// cached Hash and as the probe seed in the interned-string table.
func HashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// Bytes and HashCode satisfy package table's StringKey interface, letting
// the hash table probe by content without importing package object.
func (s *ObjString) Bytes() string { return s.Chars }
func (s *ObjString) HashCode() uint32 { return s.Hash }

func (s *ObjString) String() string { return s.Chars }

// Quoted renders the string wrapped in double quotes, distinguishing a
// string from its bare contents.
func (s *ObjString) Quoted() string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(s.Chars)
	b.WriteByte('"')
	return b.String()
}
