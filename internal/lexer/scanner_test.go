package lexer

import "testing"

func TestScanBasicTokens(t *testing.T) {
	input := `( ) { } [ ] , . - + ; * /`

	tests := []struct {
		kind   Kind
		lexeme string
	}{
		{TokenLeftParen, "("},
		{TokenRightParen, ")"},
		{TokenLeftBrace, "{"},
		{TokenRightBrace, "}"},
		{TokenLeftBracket, "["},
		{TokenRightBracket, "]"},
		{TokenComma, ","},
		{TokenDot, "."},
		{TokenMinus, "-"},
		{TokenPlus, "+"},
		{TokenSemicolon, ";"},
		{TokenStar, "*"},
		{TokenSlash, "/"},
		{TokenEOF, ""},
	}

	s := New(input)
	for i, tt := range tests {
		tok := s.Scan()
		if tok.Kind != tt.kind {
			t.Fatalf("tests[%d] - kind wrong. expected=%v, got=%v", i, tt.kind, tok.Kind)
		}
		if tok.Lexeme != tt.lexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.lexeme, tok.Lexeme)
		}
	}
}

func TestScanOperators(t *testing.T) {
	input := `! != = == < <= > >=`

	tests := []struct {
		kind   Kind
		lexeme string
	}{
		{TokenBang, "!"},
		{TokenBangEqual, "!="},
		{TokenEqual, "="},
		{TokenEqualEqual, "=="},
		{TokenLess, "<"},
		{TokenLessEqual, "<="},
		{TokenGreater, ">"},
		{TokenGreaterEqual, ">="},
		{TokenEOF, ""},
	}

	s := New(input)
	for i, tt := range tests {
		tok := s.Scan()
		if tok.Kind != tt.kind {
			t.Fatalf("tests[%d] - kind wrong. expected=%v, got=%v", i, tt.kind, tok.Kind)
		}
		if tok.Lexeme != tt.lexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.lexeme, tok.Lexeme)
		}
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	input := `var x = fun class this super nil true false and or if else for while return print hello2`

	tests := []struct {
		kind   Kind
		lexeme string
	}{
		{TokenVar, "var"},
		{TokenIdentifier, "x"},
		{TokenEqual, "="},
		{TokenFun, "fun"},
		{TokenClass, "class"},
		{TokenThis, "this"},
		{TokenSuper, "super"},
		{TokenNil, "nil"},
		{TokenTrue, "true"},
		{TokenFalse, "false"},
		{TokenAnd, "and"},
		{TokenOr, "or"},
		{TokenIf, "if"},
		{TokenElse, "else"},
		{TokenFor, "for"},
		{TokenWhile, "while"},
		{TokenReturn, "return"},
		{TokenPrint, "print"},
		{TokenIdentifier, "hello2"},
		{TokenEOF, ""},
	}

	s := New(input)
	for i, tt := range tests {
		tok := s.Scan()
		if tok.Kind != tt.kind {
			t.Fatalf("tests[%d] - kind wrong. expected=%v, got=%v", i, tt.kind, tok.Kind)
		}
		if tok.Lexeme != tt.lexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.lexeme, tok.Lexeme)
		}
	}
}

func TestScanStringAndNumber(t *testing.T) {
	input := `"hello world" 3.14 42`

	s := New(input)

	str := s.Scan()
	if str.Kind != TokenString || str.Lexeme != `"hello world"` {
		t.Fatalf("string token wrong: %+v", str)
	}

	float := s.Scan()
	if float.Kind != TokenNumber || float.Lexeme != "3.14" {
		t.Fatalf("number token wrong: %+v", float)
	}

	integer := s.Scan()
	if integer.Kind != TokenNumber || integer.Lexeme != "42" {
		t.Fatalf("number token wrong: %+v", integer)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	s := New(`"oops`)
	tok := s.Scan()
	if tok.Kind != TokenError {
		t.Fatalf("expected error token, got %+v", tok)
	}
}

func TestScanSkipsCommentsAndTracksLines(t *testing.T) {
	input := "var a = 1; // a comment\nvar b = 2;"
	s := New(input)

	for i := 0; i < 5; i++ {
		s.Scan() // var a = 1 ;
	}
	tok := s.Scan() // var, on line 2
	if tok.Line != 2 {
		t.Fatalf("expected line 2 after comment, got %d", tok.Line)
	}
}
