package compiler_test

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/loxvm/internal/compiler"
	"github.com/kristofer/loxvm/internal/heap"
)

func TestCompileSimpleExpression(t *testing.T) {
	h := heap.New(zerolog.Nop())
	fn, err := compiler.Compile("print 1 + 2;", h)
	require.NoError(t, err)
	assert.Equal(t, "<script>", fn.String())
	assert.Contains(t, fn.Chunk.Disassemble("test"), "OP_ADD")
}

func TestCompileReportsUndefinedSyntaxError(t *testing.T) {
	h := heap.New(zerolog.Nop())
	_, err := compiler.Compile("print 1 +;", h)
	require.Error(t, err)

	cerr, ok := err.(*compiler.CompileError)
	require.True(t, ok)
	assert.NotEmpty(t, cerr.Messages)
}

func TestCompileRejectsInvalidAssignmentTarget(t *testing.T) {
	h := heap.New(zerolog.Nop())
	_, err := compiler.Compile("1 + 2 = 3;", h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid assignment target.")
}

func TestCompileRejectsTopLevelReturn(t *testing.T) {
	h := heap.New(zerolog.Nop())
	_, err := compiler.Compile("return 1;", h)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "return"))
}

func TestCompileNestedFunctionEmitsClosure(t *testing.T) {
	h := heap.New(zerolog.Nop())
	fn, err := compiler.Compile(`
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`, h)
	require.NoError(t, err)
	assert.Contains(t, fn.Chunk.Disassemble("test"), "OP_CLOSURE")
}

func TestCompileClassWithSuperclass(t *testing.T) {
	h := heap.New(zerolog.Nop())
	_, err := compiler.Compile(`
		class A {}
		class B < A {
			hi() { return super.hi(); }
		}
	`, h)
	require.NoError(t, err)
}

func TestCompileRejectsLocalReadInOwnInitializer(t *testing.T) {
	h := heap.New(zerolog.Nop())
	_, err := compiler.Compile(`
		fun f() {
			var a = a;
		}
	`, h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't read local variable in its own initializer.")
}

func TestCompileSynchronizesAfterErrorAndReportsSubsequentOnes(t *testing.T) {
	h := heap.New(zerolog.Nop())
	_, err := compiler.Compile(`
		var x = ;
		var y = ;
	`, h)
	require.Error(t, err)
	cerr := err.(*compiler.CompileError)
	assert.GreaterOrEqual(t, len(cerr.Messages), 2)
}
