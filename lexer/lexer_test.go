package lexer

import (
	"strings"
	"testing"

	"github.com/oddbirdflies/osprey/token"
)

func kinds(tokens []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.TokenType
	}
	return out
}

func assertKinds(t *testing.T, input string, want []token.TokenType) {
	t.Helper()
	lex := New(input)
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan(%q) returned error: %v", input, err)
	}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("Scan(%q) = %v, want %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Scan(%q)[%d] = %v, want %v", input, i, got[i], want[i])
		}
	}
}

func TestOperatorsSuccess(t *testing.T) {
	assertKinds(t, "==/=*+>-<!=<=>=!&&||->", []token.TokenType{
		token.Equality, token.Divide, token.Assign, token.Asterisk, token.Plus,
		token.Gt, token.Minus, token.Lt, token.NotEquality, token.LtEq,
		token.GtEq, token.Exclamation, token.And, token.Or, token.RightArrow,
		token.EOF,
	})
}

func TestScanSuccess(t *testing.T) {
	assertKinds(t, "(){}**;+!=<=", []token.TokenType{
		token.LeftParen, token.RightParen, token.LeftCurly, token.RightCurly,
		token.Asterisk, token.Asterisk, token.Semicolon, token.Plus,
		token.NotEquality, token.LtEq, token.EOF,
	})
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	assertKinds(t, "return if i32 mut x main add2", []token.TokenType{
		token.Return, token.If, token.I32, token.Mutable,
		token.Identifier, token.Identifier, token.Identifier,
		token.EOF,
	})
}

func TestIntegerLiteral(t *testing.T) {
	lex := New("42")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("Scan(\"42\") produced %d tokens, want 2", len(tokens))
	}
	if tokens[0].TokenType != token.I32 || tokens[0].Value != 42 {
		t.Errorf("Scan(\"42\")[0] = %+v, want I32 literal with Value=42", tokens[0])
	}
}

func TestTabAdvancesColumnByFour(t *testing.T) {
	lex := New("\tx")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if tokens[0].Column != 4 {
		t.Errorf("Scan(\"\\tx\")[0].Column = %d, want 4", tokens[0].Column)
	}
}

func TestNewlineResetsColumnAndAdvancesLine(t *testing.T) {
	lex := New("x\ny")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if tokens[1].Line != 1 {
		t.Errorf("second token Line = %d, want 1", tokens[1].Line)
	}
}

func TestUnexpectedCharacterFails(t *testing.T) {
	lex := New("x @ y")
	_, err := lex.Scan()
	if err == nil {
		t.Fatalf("Scan(\"x @ y\") should have failed")
	}
	tokErr, ok := err.(TokenizationError)
	if !ok {
		t.Fatalf("Scan error = %T, want TokenizationError", err)
	}
	if tokErr.Line != 0 || tokErr.Column != 2 {
		t.Errorf("error position = (%d,%d), want (0,2)", tokErr.Line, tokErr.Column)
	}
}

func TestLoneAmpersandFails(t *testing.T) {
	lex := New("a & b")
	if _, err := lex.Scan(); err == nil {
		t.Fatalf("Scan(\"a & b\") should have failed")
	}
}

func TestLexemeRoundTrip(t *testing.T) {
	source := "main : = ( ) -> i32 { return 1 + 2 * 3 ; }"
	first, err := New(source).Scan()
	if err != nil {
		t.Fatalf("Scan(%q) error: %v", source, err)
	}

	lexemes := make([]string, 0, len(first))
	for _, tok := range first {
		if tok.TokenType == token.EOF {
			continue
		}
		lexemes = append(lexemes, tok.Lexeme)
	}
	second, err := New(strings.Join(lexemes, " ")).Scan()
	if err != nil {
		t.Fatalf("re-Scan error: %v", err)
	}

	got, want := kinds(second), kinds(first)
	if len(got) != len(want) {
		t.Fatalf("re-Scan produced %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("re-Scan[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMinusNotFollowedByArrow(t *testing.T) {
	assertKinds(t, "- > - -x", []token.TokenType{
		token.Minus, token.Gt, token.Minus, token.Minus, token.Identifier, token.EOF,
	})
}
