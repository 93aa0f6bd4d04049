package object

import "github.com/kristofer/loxvm/internal/value"

// ObjUpvalue is the indirection a closure uses to share a captured
// local with the frame that declared it. While the owning frame is
// still on the call stack, Location points directly into that frame's
// stack slot, so writes through either the local or the upvalue are
// immediately visible to the other. Once the frame returns, Close
// copies the value into Closed and repoints Location at it, so the
// closure keeps working after the local it closed over has gone out of
// scope.
type ObjUpvalue struct {
	value.ObjHeader
	Location *value.Value
	Closed   value.Value

	// NextOpen threads this upvalue into the VM's open-upvalues list,
	// kept sorted by descending stack slot so captures can be found and
	// closed in a single pass over the list. It has nothing to do with
	// ObjHeader.Next, which threads the separate all-objects GC list.
	NextOpen *ObjUpvalue
}

// NewUpvalue returns an open upvalue pointing at slot, a stack address.
func NewUpvalue(slot *value.Value) *ObjUpvalue {
	return &ObjUpvalue{
		ObjHeader: value.ObjHeader{Kind: value.ObjUpvalue},
		Location:  slot,
	}
}

// IsClosed reports whether Close has already run.
func (u *ObjUpvalue) IsClosed() bool { return u.Location == &u.Closed }

// Close hoists the captured value off the stack and onto the heap.
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

func (u *ObjUpvalue) String() string { return "upvalue" }
