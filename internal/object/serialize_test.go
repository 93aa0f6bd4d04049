package object_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/loxvm/internal/chunk"
	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/value"
)

// fakeAllocator satisfies object.Allocator without pulling in package
// heap, which itself imports object — the same structural-interface
// trick package table uses for StringKey.
type fakeAllocator struct {
	strings map[string]*object.ObjString
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{strings: map[string]*object.ObjString{}}
}

func (a *fakeAllocator) InternString(chars string) *object.ObjString {
	if s, ok := a.strings[chars]; ok {
		return s
	}
	s := object.NewString(chars)
	a.strings[chars] = s
	return s
}

func (a *fakeAllocator) NewFunction() *object.ObjFunction {
	return object.NewFunction()
}

func TestSerializeRoundTripsFlatFunction(t *testing.T) {
	fn := object.NewFunction()
	fn.Arity = 2
	fn.Name = object.NewString("add")
	fn.SetUpvalueCount(0)
	fn.Chunk.WriteOp(chunk.OpGetLocal, 1)
	fn.Chunk.Write(0, 1)
	fn.Chunk.WriteOp(chunk.OpGetLocal, 1)
	fn.Chunk.Write(1, 1)
	fn.Chunk.WriteOp(chunk.OpAdd, 1)
	fn.Chunk.WriteOp(chunk.OpReturn, 1)
	idx, ok := fn.Chunk.AddConstant(value.Number(42))
	require.True(t, ok)
	_ = idx

	var buf bytes.Buffer
	require.NoError(t, object.SerializeFunction(fn, &buf))

	alloc := newFakeAllocator()
	got, err := object.DeserializeFunction(&buf, alloc)
	require.NoError(t, err)

	assert.Equal(t, fn.Arity, got.Arity)
	assert.Equal(t, fn.UpvalueCount(), got.UpvalueCount())
	assert.Equal(t, fn.Name.Chars, got.Name.Chars)
	assert.Equal(t, fn.Chunk.Code, got.Chunk.Code)
	assert.Equal(t, fn.Chunk.Lines, got.Chunk.Lines)
	require.Len(t, got.Chunk.Constants, 1)
	assert.Equal(t, float64(42), got.Chunk.Constants[0].AsNumber())
}

func TestSerializeRoundTripsNestedFunctionConstant(t *testing.T) {
	inner := object.NewFunction()
	inner.Name = object.NewString("inner")
	inner.Chunk.WriteOp(chunk.OpNil, 1)
	inner.Chunk.WriteOp(chunk.OpReturn, 1)

	outer := object.NewFunction()
	outer.Name = object.NewString("outer")
	_, ok := outer.Chunk.AddConstant(value.FromObj(inner))
	require.True(t, ok)
	outer.Chunk.WriteOp(chunk.OpClosure, 1)
	outer.Chunk.Write(0, 1)
	outer.Chunk.WriteOp(chunk.OpReturn, 1)

	var buf bytes.Buffer
	require.NoError(t, object.SerializeFunction(outer, &buf))

	alloc := newFakeAllocator()
	got, err := object.DeserializeFunction(&buf, alloc)
	require.NoError(t, err)

	require.Len(t, got.Chunk.Constants, 1)
	nested, ok := got.Chunk.Constants[0].AsObj().(*object.ObjFunction)
	require.True(t, ok)
	assert.Equal(t, "inner", nested.Name.Chars)
}

func TestSerializeRejectsBadMagic(t *testing.T) {
	_, err := object.DeserializeFunction(bytes.NewReader([]byte("nope")), newFakeAllocator())
	assert.Error(t, err)
}
