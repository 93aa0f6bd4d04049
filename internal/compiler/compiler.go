// Package compiler turns Lox source directly into bytecode in a single
// pass: there is no intermediate AST. Parsing and code generation are
// interleaved through a Pratt parser — each grammar production both
// consumes tokens and emits the instructions for what it just parsed.
//
// The package never imports package vm. Instead it shares package heap
// with the VM: both register a GC root marker on the same *heap.Heap so
// a function still under construction (reachable only from the
// compiler's own call stack, not yet wired into any chunk the VM has
// executed OP_CLOSURE on) survives a collection triggered mid-compile.
package compiler

import (
	"fmt"

	"github.com/kristofer/loxvm/internal/chunk"
	"github.com/kristofer/loxvm/internal/heap"
	"github.com/kristofer/loxvm/internal/lexer"
	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/value"
)

// FunctionType distinguishes the four contexts a chunk of bytecode can
// be compiled for, each with slightly different rules around slot 0
// and bare `return`.
type FunctionType int

const (
	TypeFunction FunctionType = iota
	TypeInitializer
	TypeMethod
	TypeScript
)

// local is a resolved-at-compile-time stack slot. depth of -1 means
// "declared but its initializer hasn't run yet" — resolving a local in
// that state is the "read local in its own initializer" error.
type local struct {
	name       string
	depth      int
	isCaptured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// funcCompiler tracks the state for one function body being compiled:
// its emitted function object, its locals, and the upvalues it
// captures from enclosing functions. Nesting a function pushes a new
// funcCompiler onto the chain via enclosing.
type funcCompiler struct {
	enclosing  *funcCompiler
	function   *object.ObjFunction
	kind       FunctionType
	locals     []local
	scopeDepth int
	upvalues   []upvalueRef
}

// classCompiler tracks the nesting of class declarations, needed so
// `this` and `super` can be rejected outside a class body and so a
// class with no superclass can reject `super`.
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// compiler is the parser/code-generator driving one Compile call. The
// exported entry point is the package-level Compile function; compiler
// itself is unexported because nothing outside the package ever needs
// to hold one.
type compiler struct {
	scan *lexer.Scanner
	heap *heap.Heap

	current  lexer.Token
	previous lexer.Token

	hadError  bool
	panicMode bool
	errs      []string

	fc *funcCompiler
	cc *classCompiler
}

// CompileError reports that source failed to compile; Messages holds
// one formatted diagnostic per error, in source order.
type CompileError struct {
	Messages []string
}

func (e *CompileError) Error() string {
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	return fmt.Sprintf("%d compile errors, first: %s", len(e.Messages), e.Messages[0])
}

// Compile compiles source into the implicit top-level script function.
// On failure it returns a *CompileError carrying every diagnostic
// collected before the parser gave up trying to resynchronize.
func Compile(source string, h *heap.Heap) (*object.ObjFunction, error) {
	c := &compiler{
		scan: lexer.New(source),
		heap: h,
	}
	c.fc = newFuncCompiler(nil, TypeScript, h, "")

	remove := h.AddRootMarker(c.markRoots)
	defer remove()

	c.advance()
	for !c.match(lexer.TokenEOF) {
		c.declaration()
	}
	fn := c.endCompiler()

	if c.hadError {
		return nil, &CompileError{Messages: c.errs}
	}
	return fn, nil
}

func newFuncCompiler(enclosing *funcCompiler, kind FunctionType, h *heap.Heap, name string) *funcCompiler {
	fc := &funcCompiler{enclosing: enclosing, kind: kind, function: h.NewFunction()}
	if name != "" {
		fc.function.Name = h.InternString(name)
	}
	// Slot 0 is reserved: for methods and initializers it holds the
	// receiver (`this`), for plain functions and the top-level script
	// it's simply unused but still costs a slot, matching the layout
	// OP_CALL assumes (arguments start at slot 1).
	reserved := ""
	if kind == TypeMethod || kind == TypeInitializer {
		reserved = "this"
	}
	fc.locals = append(fc.locals, local{name: reserved, depth: 0})
	return fc
}

// markRoots walks every function currently under construction — the
// active one plus every enclosing one still waiting for its nested
// function to finish — since none of them are reachable from the VM
// yet.
func (c *compiler) markRoots(mark func(value.Value)) {
	for fc := c.fc; fc != nil; fc = fc.enclosing {
		mark(value.FromObj(fc.function))
	}
}

func (c *compiler) chunk() *chunk.Chunk { return c.fc.function.Chunk }

// --- token stream -----------------------------------------------------

func (c *compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scan.Scan()
		if c.current.Kind != lexer.TokenError {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *compiler) consume(kind lexer.Kind, msg string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *compiler) check(kind lexer.Kind) bool { return c.current.Kind == kind }

func (c *compiler) match(kind lexer.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *compiler) errorAt(tok lexer.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	where := fmt.Sprintf("at '%s'", tok.Lexeme)
	if tok.Kind == lexer.TokenEOF {
		where = "at end"
	} else if tok.Kind == lexer.TokenError {
		where = ""
	}

	var line string
	if where == "" {
		line = fmt.Sprintf("[line %d] Error: %s", tok.Line, msg)
	} else {
		line = fmt.Sprintf("[line %d] Error %s: %s", tok.Line, where, msg)
	}
	c.errs = append(c.errs, line)
	c.hadError = true
}

// synchronize discards tokens after a parse error until it reaches a
// point likely to be a statement boundary, so one mistake reports
// exactly one error instead of cascading into dozens.
func (c *compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != lexer.TokenEOF {
		if c.previous.Kind == lexer.TokenSemicolon {
			return
		}
		switch c.current.Kind {
		case lexer.TokenClass, lexer.TokenFun, lexer.TokenVar, lexer.TokenFor,
			lexer.TokenIf, lexer.TokenWhile, lexer.TokenPrint, lexer.TokenReturn:
			return
		}
		c.advance()
	}
}
