package compiler

import (
	"github.com/kristofer/loxvm/internal/chunk"
	"github.com/kristofer/loxvm/internal/lexer"
	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/value"
)

func (c *compiler) emitByte(b byte) {
	c.chunk().Write(b, c.previous.Line)
}

func (c *compiler) emitOp(op chunk.OpCode) {
	c.chunk().WriteOp(op, c.previous.Line)
}

func (c *compiler) emitOpByte(op chunk.OpCode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *compiler) emitOps(a, b chunk.OpCode) {
	c.emitOp(a)
	c.emitOp(b)
}

// emitPopN discards n values off the stack in one instruction where
// possible, matching the batched-pop shape OP_POP_N exists for.
func (c *compiler) emitPopN(n int) {
	switch {
	case n <= 0:
	case n == 1:
		c.emitOp(chunk.OpPop)
	default:
		c.emitOpByte(chunk.OpPopN, byte(n))
	}
}

// emitJump emits a jump instruction with a placeholder 16-bit offset
// and returns the offset of that placeholder for patchJump to fill in
// once the jump target is known.
func (c *compiler) emitJump(op chunk.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

// patchJump backpatches the placeholder at offset with the distance
// from just after it to the current end of the chunk.
func (c *compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
		return
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

// emitLoop emits OP_LOOP with the backward offset to loopStart.
func (c *compiler) emitLoop(loopStart int) {
	c.emitOp(chunk.OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
		return
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *compiler) emitConstant(v value.Value) {
	idx, ok := c.chunk().AddConstant(v)
	if !ok {
		c.error("Too many constants in one chunk.")
		return
	}
	c.emitOpByte(chunk.OpConstant, byte(idx))
}

// emitReturn emits the implicit return every function falls through to.
// An initializer implicitly returns `this` (slot 0) rather than nil, so
// `var x = Foo();` works even when init has no explicit `return`.
func (c *compiler) emitReturn() {
	if c.fc.kind == TypeInitializer {
		c.emitOpByte(chunk.OpGetLocal, 0)
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.emitOp(chunk.OpReturn)
}

// identifierConstant interns name's lexeme and adds it to the current
// chunk's constant pool, returning the index used to reference it from
// OP_*_GLOBAL/OP_*_PROPERTY instructions.
func (c *compiler) identifierConstant(tok lexer.Token) byte {
	s := c.heap.InternString(tok.Lexeme)
	idx, ok := c.chunk().AddConstant(value.FromObj(s))
	if !ok {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

// endCompiler finalizes the current function: it emits the implicit
// return, records the upvalue count the closure it will be wrapped in
// needs, and pops back to the enclosing funcCompiler.
func (c *compiler) endCompiler() *object.ObjFunction {
	c.emitReturn()
	fn := c.fc.function
	fn.SetUpvalueCount(len(c.fc.upvalues))
	c.fc = c.fc.enclosing
	return fn
}
