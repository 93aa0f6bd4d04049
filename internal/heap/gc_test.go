package heap_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/kristofer/loxvm/internal/heap"
	"github.com/kristofer/loxvm/internal/value"
)

func TestCollectSweepsUnrootedString(t *testing.T) {
	h := heap.New(zerolog.Nop())

	first := h.InternString("gone")
	h.Collect()
	second := h.InternString("gone")

	assert.NotSame(t, first, second, "an unrooted interned string should not survive a collection")
	assert.Equal(t, 1, h.Collections)
}

func TestCollectKeepsRootedString(t *testing.T) {
	h := heap.New(zerolog.Nop())

	kept := h.InternString("kept")
	remove := h.AddRootMarker(func(mark func(value.Value)) {
		mark(value.FromObj(kept))
	})
	defer remove()

	h.Collect()
	again := h.InternString("kept")

	assert.Same(t, kept, again, "a rooted interned string must survive a collection")
}

func TestCollectTracesThroughArray(t *testing.T) {
	h := heap.New(zerolog.Nop())

	elem := h.InternString("inside")
	arr := h.NewArray([]value.Value{value.FromObj(elem)})

	remove := h.AddRootMarker(func(mark func(value.Value)) {
		mark(value.FromObj(arr))
	})
	defer remove()

	h.Collect()
	again := h.InternString("inside")

	assert.Same(t, elem, again, "a string reachable only via a rooted array must survive")
}

func TestStressGCCollectsOnEveryAllocation(t *testing.T) {
	h := heap.New(zerolog.Nop())
	h.SetStressGC(true)

	for i := 0; i < 5; i++ {
		h.InternString(string(rune('a' + i)))
	}

	assert.GreaterOrEqual(t, h.Collections, 5)
}

func TestSetNextGCOverridesDefaultThreshold(t *testing.T) {
	h := heap.New(zerolog.Nop())
	h.SetNextGC(1)

	h.InternString("triggers-immediately")
	h.InternString("second-allocation-should-collect-first")

	assert.GreaterOrEqual(t, h.Collections, 1)
}
