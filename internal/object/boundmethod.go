package object

import "github.com/kristofer/loxvm/internal/value"

// ObjBoundMethod is what OP_GET_PROPERTY produces when the property
// named turns out to be a method rather than a field: the receiver and
// the method closure packaged together, so a later OP_CALL on the
// result reinstates the receiver as slot 0 without the call site having
// to know it's looking at a method at all.
type ObjBoundMethod struct {
	value.ObjHeader
	Receiver value.Value
	Method   *ObjClosure
}

// NewBoundMethod binds method to receiver.
func NewBoundMethod(receiver value.Value, method *ObjClosure) *ObjBoundMethod {
	return &ObjBoundMethod{
		ObjHeader: value.ObjHeader{Kind: value.ObjBoundMethod},
		Receiver:  receiver,
		Method:    method,
	}
}

func (b *ObjBoundMethod) String() string { return b.Method.String() }
