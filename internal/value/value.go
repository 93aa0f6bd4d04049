// Package value defines the tagged runtime value representation shared by
// the compiler, the VM, and the garbage collector.
//
// A Value is a small tagged union over four variants: nil, bool, number
// (float64), and object-reference. The first three are stored inline;
// the fourth is a non-owning handle into the GC heap (an Obj). Keeping
// Value a plain comparable-by-field struct (rather than boxing every
// number and bool behind an interface) mirrors the tagged-union design
// the language's bytecode VM is built around: a stack of these is the
// VM's entire working memory.
package value

// Kind identifies which variant of Value is populated.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// ObjKind identifies which variant of HeapObject an Obj is. It lets the
// VM and GC dispatch on object type without a full Go type switch in the
// hot paths (e.g. checking "is this a string" before OP_ADD coercion).
type ObjKind uint8

const (
	ObjString ObjKind = iota
	ObjFunction
	ObjClosure
	ObjUpvalue
	ObjArray
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjNative
)

func (k ObjKind) String() string {
	switch k {
	case ObjString:
		return "string"
	case ObjFunction:
		return "function"
	case ObjClosure:
		return "closure"
	case ObjUpvalue:
		return "upvalue"
	case ObjArray:
		return "array"
	case ObjClass:
		return "class"
	case ObjInstance:
		return "instance"
	case ObjBoundMethod:
		return "bound method"
	case ObjNative:
		return "native function"
	default:
		return "unrecognized object kind"
	}
}

// ObjHeader is the fixed header every heap object variant embeds. It
// carries the GC mark bit and the intrusive "next" pointer that threads
// every live allocation into the heap's single linked list, which is
// exactly what the sweep phase walks.
//
// Embedding ObjHeader (rather than requiring each variant to redeclare
// these fields) is what lets every concrete object type satisfy the Obj
// interface for free via Go's method promotion.
type ObjHeader struct {
	Kind   ObjKind
	Marked bool
	Next   Obj
}

// Header returns the object's shared header. It exists so code that only
// has an Obj interface value can still reach the mark bit and the next
// pointer without a type switch.
func (h *ObjHeader) Header() *ObjHeader { return h }

// Obj is satisfied by every heap object variant (ObjString, ObjFunction,
// ObjClosure, ObjUpvalue, ObjArray, ObjClass, ObjInstance,
// ObjBoundMethod, ObjNative — all defined in package object). Value
// itself never depends on package object; this interface is the only
// contract it needs, which keeps the dependency direction one-way
// (object imports value, not the reverse).
type Obj interface {
	Header() *ObjHeader
	String() string
}

// Value is the tagged value every VM stack slot, local, global, and
// struct field holds.
type Value struct {
	kind   Kind
	boolean bool
	number  float64
	obj     Obj
}

// Nil is the singular nil value.
var Nil = Value{kind: KindNil}

// Bool wraps a boolean as a Value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number wraps a float64 as a Value.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// FromObj wraps a heap object reference as a Value.
func FromObj(o Obj) Value { return Value{kind: KindObj, obj: o} }

// IsNil reports whether v holds nil.
func (v Value) IsNil() bool { return v.kind == KindNil }

// IsBool reports whether v holds a bool.
func (v Value) IsBool() bool { return v.kind == KindBool }

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsObj reports whether v holds a heap object reference.
func (v Value) IsObj() bool { return v.kind == KindObj }

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload. Callers must check IsBool first;
// like the VM this package supports, there is no runtime tag check here
// — that belongs to whichever caller is about to raise a type error.
func (v Value) AsBool() bool { return v.boolean }

// AsNumber returns the number payload.
func (v Value) AsNumber() float64 { return v.number }

// AsObj returns the object payload.
func (v Value) AsObj() Obj { return v.obj }

// ObjIs reports whether v is a heap object of the given kind.
func (v Value) ObjIs(kind ObjKind) bool {
	return v.kind == KindObj && v.obj.Header().Kind == kind
}

// IsFalsey implements Lox truthiness: nil and false are falsey,
// everything else — including 0 and the empty string — is truthy.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equal implements Lox's `==`. Same-variant comparison; objects
// (including strings, which are interned) compare by reference
// identity, which for a Go interface holding pointer-typed variants is
// exactly what `==` already does.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number == b.number
	case KindObj:
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders v the way the `print` statement and error messages do.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.number)
	case KindObj:
		return v.obj.String()
	default:
		return "<unrecognized value kind>"
	}
}
