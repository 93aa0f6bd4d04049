// Package heap is the single allocation funnel and garbage collector
// for every value on the language's heap. Every object the compiler or
// the VM creates — strings, functions, closures, upvalues, arrays,
// classes, instances, bound methods, natives — is born here, which is
// what lets Collect walk "every live object" without any other package
// needing to know the heap's internal bookkeeping.
//
// Packages compiler and vm each hold a *Heap and register their own GC
// roots with AddRootMarker; Heap itself never imports either, which is
// what keeps the dependency graph acyclic (the same problem clox solves
// with one global vm struct, solved here with explicit root injection
// instead).
package heap

import (
	"github.com/rs/zerolog"

	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/table"
	"github.com/kristofer/loxvm/internal/value"
)

// growFactor is how much nextGC scales by after each collection, the
// same heuristic clox's memory.c uses to keep collections from running
// back-to-back as the live set grows.
const growFactor = 2

// initialNextGC is the byte threshold the first collection waits for.
const initialNextGC = 1024 * 1024

// rootMarker is a callback a heap owner registers so Collect can walk
// its roots without heap needing to know what a compiler or a VM is.
type rootMarker struct {
	id int
	fn func(mark func(value.Value))
}

// Heap owns every live object, the interned-string table, and the
// bytes-allocated/next-collection bookkeeping that drives when a
// collection runs.
type Heap struct {
	objects value.Obj // head of the intrusive all-objects list
	strings *table.Table

	bytesAllocated int64
	nextGC         int64
	stressGC       bool

	roots    []rootMarker
	nextRoot int
	gray     []value.Obj

	log zerolog.Logger

	// InitString is the interned initializer name ("init"), the one
	// string the heap itself roots: Collect marks it on every cycle,
	// regardless of whether any compiled program still references it.
	InitString *object.ObjString

	// Collections is incremented once per completed Collect call,
	// purely so tests can assert a GC actually ran under --stress-gc.
	Collections int
}

// New returns an empty heap. log may be zerolog.Nop(); the CLI wires in
// a real logger when --trace-gc is set.
func New(log zerolog.Logger) *Heap {
	h := &Heap{
		strings: table.New(),
		nextGC:  initialNextGC,
		log:     log,
	}
	h.InitString = h.InternString(object.InitMethodName)
	return h
}

// SetStressGC, when enabled, makes every single allocation trigger a
// full collection. It exists for testing GC correctness — a program
// that runs identically under stress and non-stress GC has no GC bugs
// reachable by the objects it allocated — not for production use.
func (h *Heap) SetStressGC(on bool) { h.stressGC = on }

// SetNextGC overrides the byte threshold the first collection waits
// for, exposed as the CLI's --heap-min flag so a small program can be
// made to collect promptly without resorting to --stress-gc.
func (h *Heap) SetNextGC(n int64) { h.nextGC = n }

// AddRootMarker registers fn as a source of GC roots: during Collect,
// fn is called with a mark function the caller should invoke on every
// value.Value it considers reachable. It returns a remove function so
// a compiler instance (whose roots are only valid while it's compiling)
// can unregister itself when done.
func (h *Heap) AddRootMarker(fn func(mark func(value.Value))) (remove func()) {
	id := h.nextRoot
	h.nextRoot++
	h.roots = append(h.roots, rootMarker{id: id, fn: fn})
	return func() {
		for i, r := range h.roots {
			if r.id == id {
				h.roots = append(h.roots[:i], h.roots[i+1:]...)
				return
			}
		}
	}
}

// track links obj into the all-objects list and charges its estimated
// size against the allocation budget, collecting first if the budget
// (or the --stress-gc flag) calls for it.
func (h *Heap) track(obj value.Obj, size int64) {
	if h.stressGC {
		h.Collect()
	} else if h.bytesAllocated+size > h.nextGC {
		h.Collect()
	}
	h.bytesAllocated += size
	obj.Header().Next = h.objects
	h.objects = obj
}

// BytesAllocated reports the current live-allocation estimate, exposed
// for diagnostics and tests.
func (h *Heap) BytesAllocated() int64 { return h.bytesAllocated }

// objSize is deliberately coarse — the collector only needs an
// ordering-preserving estimate to decide when to run, not an exact byte
// count.
func objSize(kind value.ObjKind) int64 {
	switch kind {
	case value.ObjString:
		return 40
	case value.ObjFunction:
		return 64
	case value.ObjClosure:
		return 48
	case value.ObjUpvalue:
		return 32
	case value.ObjArray:
		return 48
	case value.ObjClass:
		return 48
	case value.ObjInstance:
		return 48
	case value.ObjBoundMethod:
		return 32
	case value.ObjNative:
		return 32
	default:
		return 16
	}
}
