package compiler

import "github.com/kristofer/loxvm/internal/lexer"

// Precedence orders binding strength from loosest to tightest, the
// standard Pratt-parser ladder.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *compiler, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is indexed by lexer.Kind; zero-value entries (nil prefix, nil
// infix, PrecNone) are tokens with no expression role at all.
var rules = buildRules()

func buildRules() map[lexer.Kind]rule {
	r := make(map[lexer.Kind]rule)
	r[lexer.TokenLeftParen] = rule{prefix: grouping, infix: call, precedence: PrecCall}
	r[lexer.TokenLeftBracket] = rule{prefix: arrayLiteral, infix: arrayIndex, precedence: PrecCall}
	r[lexer.TokenDot] = rule{infix: dot, precedence: PrecCall}
	r[lexer.TokenMinus] = rule{prefix: unary, infix: binary, precedence: PrecTerm}
	r[lexer.TokenPlus] = rule{infix: binary, precedence: PrecTerm}
	r[lexer.TokenSlash] = rule{infix: binary, precedence: PrecFactor}
	r[lexer.TokenStar] = rule{infix: binary, precedence: PrecFactor}
	r[lexer.TokenBang] = rule{prefix: unary}
	r[lexer.TokenBangEqual] = rule{infix: binary, precedence: PrecEquality}
	r[lexer.TokenEqualEqual] = rule{infix: binary, precedence: PrecEquality}
	r[lexer.TokenGreater] = rule{infix: binary, precedence: PrecComparison}
	r[lexer.TokenGreaterEqual] = rule{infix: binary, precedence: PrecComparison}
	r[lexer.TokenLess] = rule{infix: binary, precedence: PrecComparison}
	r[lexer.TokenLessEqual] = rule{infix: binary, precedence: PrecComparison}
	r[lexer.TokenIdentifier] = rule{prefix: variable}
	r[lexer.TokenString] = rule{prefix: stringLiteral}
	r[lexer.TokenNumber] = rule{prefix: number}
	r[lexer.TokenAnd] = rule{infix: and_, precedence: PrecAnd}
	r[lexer.TokenOr] = rule{infix: or_, precedence: PrecOr}
	r[lexer.TokenFalse] = rule{prefix: literal}
	r[lexer.TokenTrue] = rule{prefix: literal}
	r[lexer.TokenNil] = rule{prefix: literal}
	r[lexer.TokenThis] = rule{prefix: this_}
	r[lexer.TokenSuper] = rule{prefix: super_}
	return r
}

func getRule(kind lexer.Kind) rule { return rules[kind] }

// parsePrecedence is the Pratt-parser core: parse a prefix expression,
// then keep folding in infix operators as long as the next token binds
// at least as tightly as prec.
func (c *compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Kind).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Kind).precedence {
		c.advance()
		infix := getRule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(lexer.TokenEqual) {
		c.error("Invalid assignment target.")
	}
}

func (c *compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}
