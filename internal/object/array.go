package object

import (
	"strings"

	"github.com/kristofer/loxvm/internal/value"
)

// ObjArray is a growable, heterogeneously-typed sequence, the one
// built-in compound type the language offers besides class instances.
// Indexing and length are VM-level operations (OP_GET_ARRAY,
// OP_SET_ARRAY, the `.length` property fast path); ObjArray itself is
// just the backing storage.
type ObjArray struct {
	value.ObjHeader
	Values []value.Value
}

// NewArray returns an array holding exactly elems, taking ownership of
// the slice rather than copying it.
func NewArray(elems []value.Value) *ObjArray {
	return &ObjArray{
		ObjHeader: value.ObjHeader{Kind: value.ObjArray},
		Values:    elems,
	}
}

// Append grows the array by one element.
func (a *ObjArray) Append(v value.Value) {
	a.Values = append(a.Values, v)
}

// Get and Set perform bounds-checked element access; the caller (the
// VM) is responsible for turning a false ok into an "index out of
// range" runtime error.
func (a *ObjArray) Get(index int) (value.Value, bool) {
	if index < 0 || index >= len(a.Values) {
		return value.Nil, false
	}
	return a.Values[index], true
}

func (a *ObjArray) Set(index int, v value.Value) bool {
	if index < 0 || index >= len(a.Values) {
		return false
	}
	a.Values[index] = v
	return true
}

func (a *ObjArray) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range a.Values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteByte(']')
	return b.String()
}
