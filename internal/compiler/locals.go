package compiler

import "github.com/kristofer/loxvm/internal/chunk"

const maxLocals = 256
const maxUpvalues = 256

func (c *compiler) beginScope() { c.fc.scopeDepth++ }

// endScope pops every local declared in the scope just ended. Captured
// locals are closed one at a time (OP_CLOSE_UPVALUE hoists them to the
// heap); each run of uncaptured locals between them is discarded by one
// emitPopN (OP_POP_N, or a plain OP_POP for a single local).
func (c *compiler) endScope() {
	c.fc.scopeDepth--

	pending := 0
	locals := c.fc.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > c.fc.scopeDepth {
		last := locals[len(locals)-1]
		if last.isCaptured {
			c.emitPopN(pending)
			pending = 0
			c.emitOp(chunk.OpCloseUpvalue)
		} else {
			pending++
		}
		locals = locals[:len(locals)-1]
	}
	c.emitPopN(pending)
	c.fc.locals = locals
}

func (c *compiler) declareVariable() {
	if c.fc.scopeDepth == 0 {
		return
	}
	name := c.previous.Lexeme
	for i := len(c.fc.locals) - 1; i >= 0; i-- {
		l := c.fc.locals[i]
		if l.depth != -1 && l.depth < c.fc.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *compiler) addLocal(name string) {
	if len(c.fc.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.fc.locals = append(c.fc.locals, local{name: name, depth: -1})
}

func (c *compiler) markInitialized() {
	if c.fc.scopeDepth == 0 {
		return
	}
	c.fc.locals[len(c.fc.locals)-1].depth = c.fc.scopeDepth
}

// resolveLocal looks up name in fc's own locals, newest first. A local
// whose depth is still -1 is mid-initialization — its own initializer
// expression referring back to it is a compile error, not a read of
// stack garbage.
func (c *compiler) resolveLocal(fc *funcCompiler, name string) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name == name {
			if fc.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue finds name in an enclosing function's locals (or its
// own upvalues, recursively), threading a fresh upvalue through every
// funcCompiler between the declaration and this one.
func (c *compiler) resolveUpvalue(fc *funcCompiler, name string) int {
	if fc.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(fc.enclosing, name); local != -1 {
		fc.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(fc, byte(local), true)
	}
	if up := c.resolveUpvalue(fc.enclosing, name); up != -1 {
		return c.addUpvalue(fc, byte(up), false)
	}
	return -1
}

func (c *compiler) addUpvalue(fc *funcCompiler, index byte, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fc.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues = append(fc.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fc.upvalues) - 1
}
