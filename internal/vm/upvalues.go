package vm

import (
	"unsafe"

	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/value"
)

// slotAddr gives open upvalues a total order over stack slots. The
// value stack is a fixed array embedded in *VM that never reallocates,
// so comparing raw addresses is equivalent to comparing slot indices —
// Go has no other way to ask "which of these two stack slots comes
// first" without threading an index through every call site instead of
// a bare pointer.
func slotAddr(v *value.Value) uintptr {
	return uintptr(unsafe.Pointer(v))
}

// captureUpvalue returns the open upvalue for the stack slot at local,
// reusing an existing one if a closure already captured that exact
// slot (so two closures capturing the same variable share one cell).
// vm.openUpvalues is kept sorted by descending slot address.
func (vm *VM) captureUpvalue(local *value.Value) *object.ObjUpvalue {
	var prev *object.ObjUpvalue
	upvalue := vm.openUpvalues

	for upvalue != nil && slotAddr(upvalue.Location) > slotAddr(local) {
		prev = upvalue
		upvalue = upvalue.NextOpen
	}
	if upvalue != nil && upvalue.Location == local {
		return upvalue
	}

	created := vm.heap.NewUpvalue(local)
	created.NextOpen = upvalue
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues hoists every open upvalue at or above last off the
// stack and onto the heap, run whenever a scope or a call frame whose
// locals were captured goes away.
func (vm *VM) closeUpvalues(last *value.Value) {
	for vm.openUpvalues != nil && slotAddr(vm.openUpvalues.Location) >= slotAddr(last) {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = uv.NextOpen
	}
}
