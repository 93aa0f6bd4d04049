package object

import "github.com/kristofer/loxvm/internal/value"

// NativeFn is the signature every native function implements. It
// returns an error instead of signaling failure some other way so the
// VM's call path can treat a native error exactly like a runtime error
// raised from bytecode, with one call-stack unwind routine for both.
type NativeFn func(args []value.Value) (value.Value, error)

// ObjNative wraps a Go function so it can sit in a Value and be called
// through the same OP_CALL path as any Lox closure.
type ObjNative struct {
	value.ObjHeader
	Name  string
	Arity int
	Fn    NativeFn
}

// NewNative wraps fn as a callable native value named name.
func NewNative(name string, arity int, fn NativeFn) *ObjNative {
	return &ObjNative{
		ObjHeader: value.ObjHeader{Kind: value.ObjNative},
		Name:      name,
		Arity:     arity,
		Fn:        fn,
	}
}

func (n *ObjNative) String() string { return "<native fn " + n.Name + ">" }
