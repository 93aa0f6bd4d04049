package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/value"
)

func TestArrayGetSetBounds(t *testing.T) {
	arr := object.NewArray([]value.Value{value.Number(1), value.Number(2)})

	v, ok := arr.Get(1)
	assert.True(t, ok)
	assert.Equal(t, float64(2), v.AsNumber())

	_, ok = arr.Get(2)
	assert.False(t, ok)
	_, ok = arr.Get(-1)
	assert.False(t, ok)

	assert.True(t, arr.Set(0, value.Number(99)))
	v, _ = arr.Get(0)
	assert.Equal(t, float64(99), v.AsNumber())

	assert.False(t, arr.Set(5, value.Number(1)))
}

func TestArrayAppendGrows(t *testing.T) {
	arr := object.NewArray(nil)
	arr.Append(value.Number(1))
	arr.Append(value.Number(2))

	assert.Equal(t, 2, len(arr.Values))
	v, ok := arr.Get(1)
	assert.True(t, ok)
	assert.Equal(t, float64(2), v.AsNumber())
}

func TestArrayStringFormatting(t *testing.T) {
	arr := object.NewArray([]value.Value{value.Number(1), value.Number(2)})
	assert.Equal(t, "[1, 2]", arr.String())
}
