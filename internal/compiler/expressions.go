package compiler

import (
	"strconv"
	"strings"

	"github.com/kristofer/loxvm/internal/chunk"
	"github.com/kristofer/loxvm/internal/lexer"
	"github.com/kristofer/loxvm/internal/value"
)

func number(c *compiler, canAssign bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func stringLiteral(c *compiler, canAssign bool) {
	raw := c.previous.Lexeme
	// Strip the surrounding quotes the scanner left in place; the
	// language has no escape sequences, so the rest is the literal
	// content verbatim.
	contents := strings.TrimSuffix(strings.TrimPrefix(raw, `"`), `"`)
	s := c.heap.InternString(contents)
	c.emitConstant(value.FromObj(s))
}

func literal(c *compiler, canAssign bool) {
	switch c.previous.Kind {
	case lexer.TokenFalse:
		c.emitOp(chunk.OpFalse)
	case lexer.TokenTrue:
		c.emitOp(chunk.OpTrue)
	case lexer.TokenNil:
		c.emitOp(chunk.OpNil)
	}
}

func grouping(c *compiler, canAssign bool) {
	c.expression()
	c.consume(lexer.TokenRightParen, "Expect ')' after expression.")
}

func unary(c *compiler, canAssign bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(PrecUnary)
	switch opKind {
	case lexer.TokenMinus:
		c.emitOp(chunk.OpNegate)
	case lexer.TokenBang:
		c.emitOp(chunk.OpNot)
	}
}

func binary(c *compiler, canAssign bool) {
	opKind := c.previous.Kind
	r := getRule(opKind)
	c.parsePrecedence(r.precedence + 1)

	switch opKind {
	case lexer.TokenPlus:
		c.emitOp(chunk.OpAdd)
	case lexer.TokenMinus:
		c.emitOp(chunk.OpSubtract)
	case lexer.TokenStar:
		c.emitOp(chunk.OpMultiply)
	case lexer.TokenSlash:
		c.emitOp(chunk.OpDivide)
	case lexer.TokenBangEqual:
		c.emitOps(chunk.OpEqual, chunk.OpNot)
	case lexer.TokenEqualEqual:
		c.emitOp(chunk.OpEqual)
	case lexer.TokenGreater:
		c.emitOp(chunk.OpGreater)
	case lexer.TokenGreaterEqual:
		c.emitOps(chunk.OpLess, chunk.OpNot)
	case lexer.TokenLess:
		c.emitOp(chunk.OpLess)
	case lexer.TokenLessEqual:
		c.emitOps(chunk.OpGreater, chunk.OpNot)
	}
}

// and_ and or_ implement short-circuit evaluation by jumping around the
// right operand's bytecode rather than by emitting a full boolean op —
// the right side's side effects must not run when the left already
// decides the result.
func and_(c *compiler, canAssign bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func or_(c *compiler, canAssign bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)
	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func variable(c *compiler, canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *compiler) namedVariable(name lexer.Token, canAssign bool) {
	var getOp, setOp chunk.OpCode
	var arg int

	if arg = c.resolveLocal(c.fc, name.Lexeme); arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else if arg = c.resolveUpvalue(c.fc, name.Lexeme); arg != -1 {
		getOp, setOp = chunk.OpGetUpvalue, chunk.OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(lexer.TokenEqual) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

func this_(c *compiler, canAssign bool) {
	if c.cc == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariable(c.previous, false)
}

func super_(c *compiler, canAssign bool) {
	if c.cc == nil {
		c.error("Can't use 'super' outside of a class.")
		return
	} else if !c.cc.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(lexer.TokenDot, "Expect '.' after 'super'.")
	c.consume(lexer.TokenIdentifier, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)

	c.namedVariable(syntheticToken("this"), false)
	if c.match(lexer.TokenLeftParen) {
		argc := c.argumentList()
		c.namedVariable(syntheticToken("super"), false)
		c.emitOp(chunk.OpSuperInvoke)
		c.emitByte(name)
		c.emitByte(argc)
	} else {
		c.namedVariable(syntheticToken("super"), false)
		c.emitOpByte(chunk.OpGetSuper, name)
	}
}

func syntheticToken(text string) lexer.Token {
	return lexer.Token{Kind: lexer.TokenIdentifier, Lexeme: text}
}

func call(c *compiler, canAssign bool) {
	argc := c.argumentList()
	c.emitOpByte(chunk.OpCall, argc)
}

func (c *compiler) argumentList() byte {
	argc := 0
	if !c.check(lexer.TokenRightParen) {
		for {
			c.expression()
			if argc == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.consume(lexer.TokenRightParen, "Expect ')' after arguments.")
	return byte(argc)
}

// dot handles both property access/assignment and method invocation.
// `arr.append(v)` compiles through the same OP_INVOKE as any other
// method call; the VM dispatches on the receiver's runtime kind, the
// same way OP_GET_PROPERTY's `length` is an array-only intrinsic
// resolved at runtime rather than at compile time. This keeps a
// user-defined `append` method on a class from being shadowed by a
// compile-time special case that can't see the receiver's type yet.
func dot(c *compiler, canAssign bool) {
	c.consume(lexer.TokenIdentifier, "Expect property name after '.'.")
	name := c.previous

	nameConst := c.identifierConstant(name)
	switch {
	case canAssign && c.match(lexer.TokenEqual):
		c.expression()
		c.emitOpByte(chunk.OpSetProperty, nameConst)
	case c.match(lexer.TokenLeftParen):
		argc := c.argumentList()
		c.emitOp(chunk.OpInvoke)
		c.emitByte(nameConst)
		c.emitByte(argc)
	default:
		c.emitOpByte(chunk.OpGetProperty, nameConst)
	}
}

func arrayLiteral(c *compiler, canAssign bool) {
	count := 0
	if !c.check(lexer.TokenRightBracket) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 elements in an array literal.")
			}
			count++
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.consume(lexer.TokenRightBracket, "Expect ']' after array elements.")
	c.emitOpByte(chunk.OpCreateArray, byte(count))
}

func arrayIndex(c *compiler, canAssign bool) {
	c.expression()
	c.consume(lexer.TokenRightBracket, "Expect ']' after index.")
	if canAssign && c.match(lexer.TokenEqual) {
		c.expression()
		c.emitOp(chunk.OpSetArray)
	} else {
		c.emitOp(chunk.OpGetArray)
	}
}
