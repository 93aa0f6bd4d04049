package vm

import (
	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/value"
)

// call pushes a new frame for closure, checking arity and call-stack
// depth first. argCount values plus the callee itself are already on
// the stack, in the layout OP_CALL left them: [..., callee, arg0, ...,
// argN-1].
func (vm *VM) call(closure *object.ObjClosure, argCount int) *RuntimeError {
	if argCount != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
	}
	if vm.frameCount == FramesMax {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames[vm.frameCount] = callFrame{
		closure: closure,
		ip:      0,
		slots:   vm.sp - argCount - 1,
	}
	vm.frameCount++
	return nil
}

// callValue dispatches OP_CALL by the callee's runtime type: a closure
// calls normally, a native runs immediately, a class constructs an
// instance (and runs its initializer if it has one), and a bound
// method reinstates its receiver at the call's slot 0 before calling
// through to the underlying closure.
func (vm *VM) callValue(callee value.Value, argCount int) *RuntimeError {
	if callee.IsObj() {
		switch callee := callee.AsObj().(type) {
		case *object.ObjClosure:
			return vm.call(callee, argCount)

		case *object.ObjNative:
			if argCount != callee.Arity {
				return vm.runtimeError("Expected %d arguments but got %d.", callee.Arity, argCount)
			}
			args := vm.stack[vm.sp-argCount : vm.sp]
			result, err := callee.Fn(args)
			if err != nil {
				return vm.runtimeError("%s", err.Error())
			}
			vm.sp -= argCount + 1
			vm.push(result)
			return nil

		case *object.ObjClass:
			instance := vm.heap.NewInstance(callee)
			vm.stack[vm.sp-argCount-1] = value.FromObj(instance)
			if !callee.Initializer.IsNil() {
				return vm.call(callee.Initializer.AsObj().(*object.ObjClosure), argCount)
			}
			if argCount != 0 {
				return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
			}
			return nil

		case *object.ObjBoundMethod:
			vm.stack[vm.sp-argCount-1] = callee.Receiver
			return vm.call(callee.Method, argCount)
		}
	}
	return vm.runtimeError("Can only call functions and classes.")
}

// invoke fuses the common `receiver.name(args)` shape into one
// instruction: it skips allocating a BoundMethod when the method is
// about to be called immediately anyway. A field shadowing a method of
// the same name is still honored first. Arrays have no method table,
// so `append` is resolved here as a runtime intrinsic on the receiver's
// kind rather than as a compile-time special case — a class that
// defines its own `append` method is dispatched normally.
func (vm *VM) invoke(name *object.ObjString, argCount int) *RuntimeError {
	receiver := vm.peek(argCount)
	if !receiver.IsObj() {
		return vm.runtimeError("Only instances have methods.")
	}

	switch recv := receiver.AsObj().(type) {
	case *object.ObjInstance:
		if field, ok := recv.Fields.Get(name); ok {
			vm.stack[vm.sp-argCount-1] = field
			return vm.callValue(field, argCount)
		}
		return vm.invokeFromClass(recv.Class, name, argCount)
	case *object.ObjArray:
		if name.Chars == "append" {
			return vm.invokeArrayAppend(recv, argCount)
		}
		return vm.runtimeError("Arrays have no method '%s'.", name.Chars)
	default:
		return vm.runtimeError("Only instances have methods.")
	}
}

// invokeArrayAppend implements `arr.append(v)` reached through OP_INVOKE:
// pop the argument and the receiver off the stack (the layout OP_INVOKE
// leaves), grow arr, and push nil as the call's result.
func (vm *VM) invokeArrayAppend(arr *object.ObjArray, argCount int) *RuntimeError {
	if argCount != 1 {
		return vm.runtimeError("Expected 1 arguments but got %d.", argCount)
	}
	v := vm.pop()
	vm.pop()
	arr.Append(v)
	vm.push(value.Nil)
	return nil
}

func (vm *VM) invokeFromClass(class *object.ObjClass, name *object.ObjString, argCount int) *RuntimeError {
	method, ok := class.FindMethod(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	return vm.call(method.AsObj().(*object.ObjClosure), argCount)
}

// bindMethod looks up name on class and, if found, wraps it with the
// current top-of-stack receiver into a BoundMethod, replacing the
// receiver on the stack with the bound value.
func (vm *VM) bindMethod(class *object.ObjClass, name *object.ObjString) *RuntimeError {
	method, ok := class.FindMethod(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	bound := vm.heap.NewBoundMethod(vm.peek(0), method.AsObj().(*object.ObjClosure))
	vm.pop()
	vm.push(value.FromObj(bound))
	return nil
}

// defineMethod takes the closure on top of the stack and installs it
// under name in the class just beneath it — the layout OP_METHOD
// always sees while a class body is being compiled.
func (vm *VM) defineMethod(name *object.ObjString) {
	method := vm.peek(0)
	class := vm.peek(1).AsObj().(*object.ObjClass)
	class.DefineMethod(name, method)
	vm.pop()
}

// getProperty implements OP_GET_PROPERTY: field lookup first, then
// method lookup (producing a BoundMethod), with the array length
// intrinsic handled as its own receiver type entirely.
func (vm *VM) getProperty(frame *callFrame) *RuntimeError {
	name := vm.readString(frame)
	receiver := vm.peek(0)

	switch recv := receiver.AsObj().(type) {
	case *object.ObjInstance:
		if v, ok := recv.Fields.Get(name); ok {
			vm.pop()
			vm.push(v)
			return nil
		}
		return vm.bindMethod(recv.Class, name)
	case *object.ObjArray:
		if name.Chars == "length" {
			vm.pop()
			vm.push(value.Number(float64(len(recv.Values))))
			return nil
		}
		return vm.runtimeError("Arrays have no property '%s'.", name.Chars)
	default:
		return vm.runtimeError("Only instances have properties.")
	}
}

func (vm *VM) setProperty(frame *callFrame) *RuntimeError {
	name := vm.readString(frame)
	receiver := vm.peek(1)

	instance, ok := receiver.AsObj().(*object.ObjInstance)
	if !ok {
		return vm.runtimeError("Only instances have fields.")
	}
	instance.Fields.Set(name, vm.peek(0))
	v := vm.pop()
	vm.pop()
	vm.push(v)
	return nil
}

// add implements OP_ADD: numeric addition, or string concatenation
// when both operands are strings. Mixed-type + is a runtime error
// rather than an implicit coercion.
func (vm *VM) add() *RuntimeError {
	b := vm.peek(0)
	a := vm.peek(1)

	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
		return nil
	case a.ObjIs(value.ObjString) && b.ObjIs(value.ObjString):
		as := a.AsObj().(*object.ObjString)
		bs := b.AsObj().(*object.ObjString)
		// Leave both operands on the stack (still rooted by the sp scan)
		// until InternString, which can itself allocate and trigger a
		// collection, has returned; then push the result at once, since
		// it isn't reachable from any root yet.
		concatenated := vm.heap.InternString(as.Chars + bs.Chars)
		vm.pop()
		vm.pop()
		vm.push(value.FromObj(concatenated))
		return nil
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}

func (vm *VM) binaryNumeric(op func(a, b float64) value.Value) *RuntimeError {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(op(a, b))
	return nil
}

func (vm *VM) getArrayElement() *RuntimeError {
	indexVal := vm.pop()
	arrVal := vm.pop()
	arr, ok := arrVal.AsObj().(*object.ObjArray)
	if !ok {
		return vm.runtimeError("Only arrays can be indexed.")
	}
	if !indexVal.IsNumber() {
		return vm.runtimeError("Array index must be a number.")
	}
	elem, ok := arr.Get(int(indexVal.AsNumber()))
	if !ok {
		return vm.runtimeError("Array index out of range.")
	}
	vm.push(elem)
	return nil
}

func (vm *VM) setArrayElement() *RuntimeError {
	v := vm.pop()
	indexVal := vm.pop()
	arrVal := vm.pop()
	arr, ok := arrVal.AsObj().(*object.ObjArray)
	if !ok {
		return vm.runtimeError("Only arrays can be indexed.")
	}
	if !indexVal.IsNumber() {
		return vm.runtimeError("Array index must be a number.")
	}
	if !arr.Set(int(indexVal.AsNumber()), v) {
		return vm.runtimeError("Array index out of range.")
	}
	vm.push(v)
	return nil
}

