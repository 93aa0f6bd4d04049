package heap

import (
	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/value"
)

// InternString returns the canonical ObjString for chars, allocating a
// new one only if this exact content hasn't been seen before. Every
// caller — the compiler interning a string literal, OP_ADD concatenating
// two strings, the compiler interning an identifier name — goes through
// here, which is what makes value.Equal on two strings a pointer
// comparison.
func (h *Heap) InternString(chars string) *object.ObjString {
	hash := object.HashString(chars)
	if existing, ok := h.strings.FindString(chars, hash); ok {
		return existing.(*object.ObjString)
	}
	s := object.NewString(chars)
	h.track(s, objSize(value.ObjString)+int64(len(chars)))
	h.strings.Set(s, value.Bool(true))
	return s
}

// NewFunction allocates an empty function for the compiler to emit
// into.
func (h *Heap) NewFunction() *object.ObjFunction {
	fn := object.NewFunction()
	h.track(fn, objSize(value.ObjFunction))
	return fn
}

// NewClosure wraps fn as a closure ready to have its upvalue slots
// filled in.
func (h *Heap) NewClosure(fn *object.ObjFunction) *object.ObjClosure {
	c := object.NewClosure(fn)
	h.track(c, objSize(value.ObjClosure))
	return c
}

// NewUpvalue allocates an open upvalue pointing at slot.
func (h *Heap) NewUpvalue(slot *value.Value) *object.ObjUpvalue {
	u := object.NewUpvalue(slot)
	h.track(u, objSize(value.ObjUpvalue))
	return u
}

// NewArray allocates an array owning elems.
func (h *Heap) NewArray(elems []value.Value) *object.ObjArray {
	a := object.NewArray(elems)
	h.track(a, objSize(value.ObjArray)+int64(len(elems))*16)
	return a
}

// NewClass allocates a class named name with an empty method table.
func (h *Heap) NewClass(name *object.ObjString) *object.ObjClass {
	c := object.NewClass(name)
	h.track(c, objSize(value.ObjClass))
	return c
}

// NewInstance allocates a fresh instance of class.
func (h *Heap) NewInstance(class *object.ObjClass) *object.ObjInstance {
	i := object.NewInstance(class)
	h.track(i, objSize(value.ObjInstance))
	return i
}

// NewBoundMethod binds method to receiver.
func (h *Heap) NewBoundMethod(receiver value.Value, method *object.ObjClosure) *object.ObjBoundMethod {
	b := object.NewBoundMethod(receiver, method)
	h.track(b, objSize(value.ObjBoundMethod))
	return b
}

// NewNative wraps fn as a callable native value.
func (h *Heap) NewNative(name string, arity int, fn object.NativeFn) *object.ObjNative {
	n := object.NewNative(name, arity, fn)
	h.track(n, objSize(value.ObjNative))
	return n
}
