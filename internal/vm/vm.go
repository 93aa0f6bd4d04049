package vm

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/kristofer/loxvm/internal/chunk"
	"github.com/kristofer/loxvm/internal/compiler"
	"github.com/kristofer/loxvm/internal/heap"
	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/table"
	"github.com/kristofer/loxvm/internal/value"
)

// FramesMax bounds call-stack depth; exceeding it is the "Stack
// overflow." runtime error rather than a Go stack overflow.
const FramesMax = 64

// StackMax is the total value-stack capacity across every frame.
const StackMax = FramesMax * 256

// callFrame is one activation record: the closure being executed, its
// instruction pointer, and the stack index its local slots start at.
type callFrame struct {
	closure *object.ObjClosure
	ip      int
	slots   int
}

// VM executes compiled chunks. Its value stack is a fixed-size array
// embedded directly in the struct rather than a slice, so the
// addresses open upvalues point at never move for the VM's lifetime —
// growing a slice would invalidate every live upvalue pointing into it.
type VM struct {
	stack [StackMax]value.Value
	sp    int

	frames     [FramesMax]callFrame
	frameCount int

	globals      *table.Table
	openUpvalues *object.ObjUpvalue

	heap *heap.Heap
	out  io.Writer

	Trace   bool
	TraceGC bool
	log     zerolog.Logger
}

// New returns a VM ready to run compiled programs. out receives every
// `print` statement's output; log receives the per-instruction dispatch
// trace when Trace is set (GC events are logged by the heap's own
// logger).
func New(h *heap.Heap, out io.Writer, log zerolog.Logger) *VM {
	vm := &VM{
		heap:    h,
		globals: table.New(),
		out:     out,
		log:     log,
	}
	h.AddRootMarker(vm.markRoots)
	vm.defineNative("clock", 0, clockNative)
	return vm
}

// markRoots is registered with the heap once, for the VM's whole
// lifetime: the value stack, every active frame's closure, the open
// upvalue chain, and every global (key and value).
func (vm *VM) markRoots(mark func(value.Value)) {
	for i := 0; i < vm.sp; i++ {
		mark(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		mark(value.FromObj(vm.frames[i].closure))
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.NextOpen {
		mark(value.FromObj(uv))
	}
	vm.globals.ForEach(func(key table.StringKey, v value.Value) {
		mark(value.FromObj(key))
		mark(v)
	})
}

// Interpret compiles and runs source against this VM's existing global
// state — the REPL calls this once per line, so earlier declarations
// stay visible to later ones even though each call gets a fresh stack
// and call-frame chain.
func (vm *VM) Interpret(source string) error {
	fn, err := compiler.Compile(source, vm.heap)
	if err != nil {
		return err
	}
	return vm.InterpretFunction(fn)
}

// InterpretFunction runs an already-compiled top-level function, the
// path `loxvm <file.loxc>` takes after deserializing a chunk instead
// of compiling source.
func (vm *VM) InterpretFunction(fn *object.ObjFunction) error {
	vm.resetStack()
	vm.push(value.FromObj(fn))
	closure := vm.heap.NewClosure(fn)
	vm.pop()
	vm.push(value.FromObj(closure))
	if rerr := vm.call(closure, 0); rerr != nil {
		return rerr
	}

	return vm.run()
}

func (vm *VM) resetStack() {
	vm.sp = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() value.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VM) currentFrame() *callFrame {
	return &vm.frames[vm.frameCount-1]
}

// runtimeError builds a *RuntimeError carrying the current call stack,
// innermost frame first, the way every opcode handler that detects a
// type or arity violation reports failure.
func (vm *VM) runtimeError(format string, args ...interface{}) *RuntimeError {
	msg := fmt.Sprintf(format, args...)

	trace := make([]StackFrame, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		fn := f.closure.Function
		line := 0
		if f.ip-1 >= 0 && f.ip-1 < len(fn.Chunk.Lines) {
			line = fn.Chunk.Lines[f.ip-1]
		}
		name := "script"
		if fn.Name != nil {
			name = fn.Name.Chars + "()"
		}
		trace = append(trace, StackFrame{Name: name, Line: line})
	}

	vm.resetStack()
	return newRuntimeError(msg, trace)
}

func (vm *VM) defineNative(name string, arity int, fn object.NativeFn) {
	native := vm.heap.NewNative(name, arity, fn)
	// Push/pop around the table insert: the allocator-GC coordination
	// rule requires a fresh allocation be reachable from a root before
	// any further allocation can run a collection that would reclaim it,
	// and InternString below is itself an allocation.
	vm.push(value.FromObj(native))
	nameObj := vm.heap.InternString(name)
	vm.globals.Set(nameObj, vm.peek(0))
	vm.pop()
}

// --- bytecode reads -----------------------------------------------------

func (vm *VM) readByte(f *callFrame) byte {
	b := f.closure.Function.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readUint16(f *callFrame) uint16 {
	v := f.closure.Function.Chunk.ReadUint16(f.ip)
	f.ip += 2
	return v
}

func (vm *VM) readConstant(f *callFrame) value.Value {
	return f.closure.Function.Chunk.Constants[vm.readByte(f)]
}

func (vm *VM) readString(f *callFrame) *object.ObjString {
	return vm.readConstant(f).AsObj().(*object.ObjString)
}

// run is the dispatch loop: fetch one opcode, act on it, repeat until
// OP_RETURN unwinds the outermost frame or a runtime error aborts it.
func (vm *VM) run() error {
	frame := vm.currentFrame()

	for {
		if vm.Trace {
			line, _ := frame.closure.Function.Chunk.DisassembleInstruction(frame.ip)
			vm.log.Debug().Str("stack", vm.stackTraceText()).Msg(line)
		}

		op := chunk.OpCode(vm.readByte(frame))
		switch op {
		case chunk.OpConstant:
			vm.push(vm.readConstant(frame))

		case chunk.OpNil:
			vm.push(value.Nil)
		case chunk.OpTrue:
			vm.push(value.Bool(true))
		case chunk.OpFalse:
			vm.push(value.Bool(false))

		case chunk.OpPop:
			vm.pop()
		case chunk.OpPopN:
			n := int(vm.readByte(frame))
			vm.sp -= n

		case chunk.OpGetLocal:
			slot := int(vm.readByte(frame))
			vm.push(vm.stack[frame.slots+slot])
		case chunk.OpSetLocal:
			slot := int(vm.readByte(frame))
			vm.stack[frame.slots+slot] = vm.peek(0)

		case chunk.OpGetGlobal:
			name := vm.readString(frame)
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case chunk.OpDefineGlobal:
			name := vm.readString(frame)
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case chunk.OpSetGlobal:
			name := vm.readString(frame)
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case chunk.OpGetUpvalue:
			slot := vm.readByte(frame)
			vm.push(*frame.closure.Upvalues[slot].Location)
		case chunk.OpSetUpvalue:
			slot := vm.readByte(frame)
			*frame.closure.Upvalues[slot].Location = vm.peek(0)
		case chunk.OpCloseUpvalue:
			vm.closeUpvalues(&vm.stack[vm.sp-1])
			vm.pop()

		case chunk.OpGetProperty:
			if err := vm.getProperty(frame); err != nil {
				return err
			}
		case chunk.OpSetProperty:
			if err := vm.setProperty(frame); err != nil {
				return err
			}
		case chunk.OpGetSuper:
			name := vm.readString(frame)
			super := vm.pop().AsObj().(*object.ObjClass)
			if err := vm.bindMethod(super, name); err != nil {
				return err
			}

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case chunk.OpGreater:
			if err := vm.binaryNumeric(func(a, b float64) value.Value { return value.Bool(a > b) }); err != nil {
				return err
			}
		case chunk.OpLess:
			if err := vm.binaryNumeric(func(a, b float64) value.Value { return value.Bool(a < b) }); err != nil {
				return err
			}

		case chunk.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case chunk.OpSubtract:
			if err := vm.binaryNumeric(func(a, b float64) value.Value { return value.Number(a - b) }); err != nil {
				return err
			}
		case chunk.OpMultiply:
			if err := vm.binaryNumeric(func(a, b float64) value.Value { return value.Number(a * b) }); err != nil {
				return err
			}
		case chunk.OpDivide:
			if err := vm.binaryNumeric(func(a, b float64) value.Value { return value.Number(a / b) }); err != nil {
				return err
			}
		case chunk.OpNot:
			vm.push(value.Bool(vm.pop().IsFalsey()))
		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case chunk.OpPrint:
			fmt.Fprintln(vm.out, vm.pop().String())

		case chunk.OpJump:
			offset := vm.readUint16(frame)
			frame.ip += int(offset)
		case chunk.OpJumpIfFalse:
			offset := vm.readUint16(frame)
			if vm.peek(0).IsFalsey() {
				frame.ip += int(offset)
			}
		case chunk.OpLoop:
			offset := vm.readUint16(frame)
			frame.ip -= int(offset)

		case chunk.OpCall:
			argCount := int(vm.readByte(frame))
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
			frame = vm.currentFrame()

		case chunk.OpInvoke:
			name := vm.readString(frame)
			argCount := int(vm.readByte(frame))
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
			frame = vm.currentFrame()

		case chunk.OpSuperInvoke:
			name := vm.readString(frame)
			argCount := int(vm.readByte(frame))
			super := vm.pop().AsObj().(*object.ObjClass)
			if err := vm.invokeFromClass(super, name, argCount); err != nil {
				return err
			}
			frame = vm.currentFrame()

		case chunk.OpClosure:
			fn := vm.readConstant(frame).AsObj().(*object.ObjFunction)
			closure := vm.heap.NewClosure(fn)
			vm.push(value.FromObj(closure))
			for i := range closure.Upvalues {
				isLocal := vm.readByte(frame)
				index := vm.readByte(frame)
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(&vm.stack[frame.slots+int(index)])
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case chunk.OpClass:
			name := vm.readString(frame)
			vm.push(value.FromObj(vm.heap.NewClass(name)))
		case chunk.OpInherit:
			superVal := vm.peek(1)
			if !superVal.ObjIs(value.ObjClass) {
				return vm.runtimeError("Superclass must be a class.")
			}
			sub := vm.peek(0).AsObj().(*object.ObjClass)
			super := superVal.AsObj().(*object.ObjClass)
			if sub == super {
				return vm.runtimeError("A class can't inherit from itself.")
			}
			sub.Inherit(super)
			vm.pop()
		case chunk.OpMethod:
			vm.defineMethod(vm.readString(frame))

		case chunk.OpCreateArray:
			count := int(vm.readByte(frame))
			elems := make([]value.Value, count)
			copy(elems, vm.stack[vm.sp-count:vm.sp])
			// Leave the elements on the stack (still rooted by the sp
			// scan) until after NewArray, which can itself allocate and
			// trigger a collection — the same discipline add() uses.
			arr := vm.heap.NewArray(elems)
			vm.sp -= count
			vm.push(value.FromObj(arr))
		case chunk.OpGetArray:
			if err := vm.getArrayElement(); err != nil {
				return err
			}
		case chunk.OpSetArray:
			if err := vm.setArrayElement(); err != nil {
				return err
			}

		case chunk.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(&vm.stack[frame.slots])
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.sp = frame.slots
			vm.push(result)
			frame = vm.currentFrame()

		default:
			return vm.runtimeError("Unrecognized instruction %d.", op)
		}
	}
}

func (vm *VM) stackTraceText() string {
	var vals []string
	for i := 0; i < vm.sp; i++ {
		vals = append(vals, "["+vm.stack[i].String()+"]")
	}
	s := ""
	for _, v := range vals {
		s += v
	}
	return s
}
