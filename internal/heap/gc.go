package heap

import (
	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/table"
	"github.com/kristofer/loxvm/internal/value"
)

// Collect runs one full mark-sweep cycle: mark every root and trace the
// graph to blacken everything reachable, drop interned strings nothing
// marked, then sweep every heap object still white.
func (h *Heap) Collect() {
	before := h.bytesAllocated
	h.log.Debug().Int64("bytes_before", before).Msg("gc.collect.start")

	h.markRoots()
	h.mark(value.FromObj(h.InitString))
	h.traceReferences()
	h.strings.RemoveWhite(func(key table.StringKey) bool {
		return key.Header().Marked
	})
	freed := h.sweep()

	h.bytesAllocated -= freed
	h.nextGC = h.bytesAllocated * growFactor
	if h.nextGC < initialNextGC {
		h.nextGC = initialNextGC
	}
	h.Collections++

	h.log.Debug().
		Int64("bytes_after", h.bytesAllocated).
		Int64("freed", freed).
		Int64("next_gc", h.nextGC).
		Msg("gc.collect.done")
}

func (h *Heap) markRoots() {
	mark := h.mark
	for _, r := range h.roots {
		r.fn(mark)
	}
}

// mark is the callback root markers and blackening both use: marking a
// non-object value is a no-op, marking an already-gray-or-black object
// is a no-op, and marking a fresh white object flips its bit and queues
// it for blackening.
func (h *Heap) mark(v value.Value) {
	if !v.IsObj() {
		return
	}
	obj := v.AsObj()
	if obj == nil {
		return
	}
	header := obj.Header()
	if header.Marked {
		return
	}
	header.Marked = true
	h.gray = append(h.gray, obj)
}

// traceReferences drains the gray worklist, blackening each object by
// marking everything it points to, until nothing gray remains.
func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		obj := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(obj)
	}
}

// blacken marks every value a given object directly references. It is
// the one place in the package that needs to know the concrete object
// variants, which is why heap (unlike table or chunk) imports object.
func (h *Heap) blacken(obj value.Obj) {
	switch o := obj.(type) {
	case *object.ObjString:
		// no outgoing references
	case *object.ObjNative:
		// no outgoing references
	case *object.ObjUpvalue:
		h.mark(*o.Location)
	case *object.ObjFunction:
		if o.Name != nil {
			h.mark(value.FromObj(o.Name))
		}
		for _, c := range o.Chunk.Constants {
			h.mark(c)
		}
	case *object.ObjClosure:
		h.mark(value.FromObj(o.Function))
		for _, uv := range o.Upvalues {
			if uv != nil {
				h.mark(value.FromObj(uv))
			}
		}
	case *object.ObjArray:
		for _, elem := range o.Values {
			h.mark(elem)
		}
	case *object.ObjClass:
		h.mark(value.FromObj(o.Name))
		h.mark(o.Initializer)
		o.Methods.ForEach(func(key table.StringKey, v value.Value) {
			h.mark(value.FromObj(key))
			h.mark(v)
		})
	case *object.ObjInstance:
		h.mark(value.FromObj(o.Class))
		o.Fields.ForEach(func(key table.StringKey, v value.Value) {
			h.mark(value.FromObj(key))
			h.mark(v)
		})
	case *object.ObjBoundMethod:
		h.mark(o.Receiver)
		h.mark(value.FromObj(o.Method))
	}
}

// sweep unlinks every still-white object from the all-objects list and
// returns an estimate of the bytes reclaimed.
func (h *Heap) sweep() int64 {
	var freed int64
	var prev value.Obj
	obj := h.objects
	for obj != nil {
		header := obj.Header()
		if header.Marked {
			header.Marked = false
			prev = obj
			obj = header.Next
			continue
		}
		unreached := obj
		obj = header.Next
		if prev != nil {
			prev.Header().Next = obj
		} else {
			h.objects = obj
		}
		freed += objSize(unreached.Header().Kind)
	}
	return freed
}
