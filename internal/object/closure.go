package object

import "github.com/kristofer/loxvm/internal/value"

// ObjClosure pairs a compiled function with the upvalues it captured at
// the moment it was created. Every callable value the VM ever pushes is
// a closure, never a bare ObjFunction — OP_CLOSURE wraps even a function
// with zero free variables, so OP_CALL has one shape to handle.
type ObjClosure struct {
	value.ObjHeader
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

// NewClosure wraps fn, allocating an Upvalues slice sized for its
// declared upvalue count. Slots are filled in by the VM's OP_CLOSURE
// handler, one capture at a time.
func NewClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{
		ObjHeader: value.ObjHeader{Kind: value.ObjClosure},
		Function:  fn,
		Upvalues:  make([]*ObjUpvalue, fn.UpvalueCount()),
	}
}

func (c *ObjClosure) String() string { return c.Function.String() }
