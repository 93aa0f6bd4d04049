package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/value"
)

func dummyClosure() value.Value {
	fn := object.NewFunction()
	return value.FromObj(object.NewClosure(fn))
}

// Keys in package table's hash table are matched by pointer identity,
// not content — the runtime relies on every ObjString being interned
// through the heap so "hi" always means the same instance. These tests
// reuse one *ObjString per name to honor that invariant the same way
// real compiled code (which always reads names back out of the
// constant pool) does.
func TestDefineMethodCachesInitializer(t *testing.T) {
	class := object.NewClass(object.NewString("Point"))
	assert.True(t, class.Initializer.IsNil())

	initName := object.NewString(object.InitMethodName)
	init := dummyClosure()
	class.DefineMethod(initName, init)

	assert.False(t, class.Initializer.IsNil())
	found, ok := class.FindMethod(initName)
	require.True(t, ok)
	assert.Equal(t, init, found)
}

func TestInheritCopiesMethodsAndInitializer(t *testing.T) {
	hiName := object.NewString("hi")
	initName := object.NewString(object.InitMethodName)

	parent := object.NewClass(object.NewString("A"))
	hi := dummyClosure()
	parent.DefineMethod(hiName, hi)
	init := dummyClosure()
	parent.DefineMethod(initName, init)

	child := object.NewClass(object.NewString("B"))
	child.Inherit(parent)

	found, ok := child.FindMethod(hiName)
	require.True(t, ok)
	assert.Equal(t, hi, found)
	assert.Equal(t, init, child.Initializer)
}

func TestChildOverridesParentMethod(t *testing.T) {
	hiName := object.NewString("hi")

	parent := object.NewClass(object.NewString("A"))
	parent.DefineMethod(hiName, dummyClosure())

	child := object.NewClass(object.NewString("B"))
	child.Inherit(parent)
	override := dummyClosure()
	child.DefineMethod(hiName, override)

	found, ok := child.FindMethod(hiName)
	require.True(t, ok)
	assert.Equal(t, override, found)
}
