package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/loxvm/internal/heap"
	"github.com/kristofer/loxvm/internal/vm"
)

func run(t *testing.T, source string) string {
	t.Helper()
	var out bytes.Buffer
	h := heap.New(zerolog.Nop())
	machine := vm.New(h, &out, zerolog.Nop())
	require.NoError(t, machine.Interpret(source))
	return out.String()
}

func TestArithmeticPrecedence(t *testing.T) {
	assert.Equal(t, "7\n", run(t, "print 1 + 2 * 3;"))
}

func TestStringConcatenation(t *testing.T) {
	assert.Equal(t, "hello\n", run(t, `var a = "he"; var b = "llo"; print a + b;`))
}

func TestClosureCounterSharesUpvalue(t *testing.T) {
	src := `
		fun makeCounter() {
			var n = 0;
			fun inc() {
				n = n + 1;
				return n;
			}
			return inc;
		}
		var c = makeCounter();
		print c();
		print c();
		print c();
	`
	assert.Equal(t, "1\n2\n3\n", run(t, src))
}

func TestClassWithInitializerAndMethod(t *testing.T) {
	src := `
		class Point {
			init(x, y) {
				this.x = x;
				this.y = y;
			}
			sum() {
				return this.x + this.y;
			}
		}
		print Point(3, 4).sum();
	`
	assert.Equal(t, "7\n", run(t, src))
}

func TestSingleInheritanceAndSuper(t *testing.T) {
	src := `
		class A {
			hi() { return "A"; }
		}
		class B < A {
			hi() { return super.hi() + "B"; }
		}
		print B().hi();
	`
	assert.Equal(t, "AB\n", run(t, src))
}

func TestUserDefinedAppendMethodIsNotShadowedByArrayIntrinsic(t *testing.T) {
	src := `
		class Stack {
			init() { this.label = "custom"; }
			append(x) { return this.label + "-" + x; }
		}
		print Stack().append("v");

		var a = [];
		a.append(1);
		a.append(2);
		print a.length;
	`
	assert.Equal(t, "custom-v\n2\n", run(t, src))
}

func TestArrayLiteralIndexAssignAndLength(t *testing.T) {
	src := `
		var a = [10, 20, 30];
		a[1] = 99;
		print a[0];
		print a[1];
		print a.length;
	`
	assert.Equal(t, "10\n99\n3\n", run(t, src))
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	h := heap.New(zerolog.Nop())
	machine := vm.New(h, &out, zerolog.Nop())

	err := machine.Interpret("print nope;")
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Contains(t, rerr.Message, "Undefined variable")
}

func TestClassInheritingFromItselfIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	h := heap.New(zerolog.Nop())
	machine := vm.New(h, &out, zerolog.Nop())

	err := machine.Interpret("class Oops < Oops {}")
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Contains(t, rerr.Message, "A class can't inherit from itself.")
}

func TestArityMismatchResetsStack(t *testing.T) {
	var out bytes.Buffer
	h := heap.New(zerolog.Nop())
	machine := vm.New(h, &out, zerolog.Nop())

	require.NoError(t, machine.Interpret("fun f(a, b) { return a + b; }"))
	err := machine.Interpret("f(1);")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected 2 arguments but got 1.")

	// the VM must still be usable afterward — the stack/frame reset
	// that a runtime error performs has to leave it in a clean state.
	require.NoError(t, machine.Interpret(`print "still alive";`))
	assert.True(t, strings.Contains(out.String(), "still alive"))
}

func TestTypeMismatchOnAddIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	h := heap.New(zerolog.Nop())
	machine := vm.New(h, &out, zerolog.Nop())

	err := machine.Interpret(`print 1 + "x";`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestStressGCProducesIdenticalOutput(t *testing.T) {
	src := `
		class Node {
			init(value) {
				this.value = value;
			}
		}
		fun makeAdder(x) {
			fun add(y) {
				return x + y;
			}
			return add;
		}
		var nodes = [];
		for (var i = 0; i < 20; i = i + 1) {
			nodes.append(Node(i).value);
		}
		var add5 = makeAdder(5);
		for (var i = 0; i < 20; i = i + 1) {
			print add5(nodes[i]);
		}
	`

	runWith := func(stress bool) string {
		var out bytes.Buffer
		h := heap.New(zerolog.Nop())
		h.SetStressGC(stress)
		machine := vm.New(h, &out, zerolog.Nop())
		require.NoError(t, machine.Interpret(src))
		return out.String()
	}

	assert.Equal(t, runWith(false), runWith(true))
}
