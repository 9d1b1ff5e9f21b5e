package lexer

import (
	"testing"

	"github.com/tj-mc/tilde-sub001/internal/token"
)

type expectedToken struct {
	typ     token.TokenType
	literal string
}

func assertTokens(t *testing.T, input string, expected []expectedToken) {
	t.Helper()
	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ {
			t.Fatalf("token %d: expected type %s, got %s (%q)", i, want.typ, tok.Type, tok.Literal)
		}
		if tok.Literal != want.literal {
			t.Fatalf("token %d: expected literal %q, got %q", i, want.literal, tok.Literal)
		}
	}
}

func TestAssignmentTokens(t *testing.T) {
	assertTokens(t, `~count is 5`, []expectedToken{
		{token.VARIABLE, "count"},
		{token.IS, "is"},
		{token.NUMBER, "5"},
		{token.EOF, ""},
	})
}

func TestOperators(t *testing.T) {
	assertTokens(t, `+ - * / \ % == != < > <= >=`, []expectedToken{
		{token.PLUS, "+"},
		{token.MINUS, "-"},
		{token.ASTERISK, "*"},
		{token.SLASH, "/"},
		{token.BACKSLASH, `\`},
		{token.PERCENT, "%"},
		{token.EQ, "=="},
		{token.NOT_EQ, "!="},
		{token.LT, "<"},
		{token.GT, ">"},
		{token.LT_EQ, "<="},
		{token.GT_EQ, ">="},
		{token.EOF, ""},
	})
}

func TestKeywords(t *testing.T) {
	assertTokens(t, `if else loop break-loop for-each in action give and or up down attempt rescue true false null`, []expectedToken{
		{token.IF, "if"},
		{token.ELSE, "else"},
		{token.LOOP, "loop"},
		{token.BREAKLOOP, "break-loop"},
		{token.FOREACH, "for-each"},
		{token.IN, "in"},
		{token.ACTION, "action"},
		{token.GIVE, "give"},
		{token.AND, "and"},
		{token.OR, "or"},
		{token.UP, "up"},
		{token.DOWN, "down"},
		{token.ATTEMPT, "attempt"},
		{token.RESCUE, "rescue"},
		{token.TRUE, "true"},
		{token.FALSE, "false"},
		{token.NULL, "null"},
		{token.EOF, ""},
	})
}

func TestKebabCaseIdentifiers(t *testing.T) {
	assertTokens(t, `index-of ~list 3`, []expectedToken{
		{token.IDENT, "index-of"},
		{token.VARIABLE, "list"},
		{token.NUMBER, "3"},
		{token.EOF, ""},
	})
}

func TestHyphenBetweenSpacesIsMinus(t *testing.T) {
	assertTokens(t, `~a - ~b`, []expectedToken{
		{token.VARIABLE, "a"},
		{token.MINUS, "-"},
		{token.VARIABLE, "b"},
		{token.EOF, ""},
	})
}

func TestNegativeNumbers(t *testing.T) {
	assertTokens(t, `-3.5 -7`, []expectedToken{
		{token.NUMBER, "-3.5"},
		{token.NUMBER, "-7"},
		{token.EOF, ""},
	})
}

func TestDecimalNumberAndPropertyAccess(t *testing.T) {
	assertTokens(t, `~obj.name 1.25`, []expectedToken{
		{token.VARIABLE, "obj"},
		{token.PERIOD, "."},
		{token.IDENT, "name"},
		{token.NUMBER, "1.25"},
		{token.EOF, ""},
	})
}

func TestStringEscapes(t *testing.T) {
	assertTokens(t, `"line\nnext\t\"quoted\""`, []expectedToken{
		{token.STRING, "line\nnext\t\"quoted\""},
		{token.EOF, ""},
	})
}

func TestUnterminatedString(t *testing.T) {
	assertTokens(t, `"open`, []expectedToken{
		{token.ILLEGAL, "unterminated string"},
	})
}

func TestInterpolatedStringToken(t *testing.T) {
	assertTokens(t, "\"hi `~name`!\"", []expectedToken{
		{token.INTERP, "hi `~name`!"},
		{token.EOF, ""},
	})
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "~x is 1 # trailing comment\n# full line\n~y is 2"
	assertTokens(t, input, []expectedToken{
		{token.VARIABLE, "x"},
		{token.IS, "is"},
		{token.NUMBER, "1"},
		{token.NEWLINE, "\n\n"},
		{token.VARIABLE, "y"},
		{token.IS, "is"},
		{token.NUMBER, "2"},
		{token.EOF, ""},
	})
}

func TestNewlinesCollapse(t *testing.T) {
	assertTokens(t, "1\n\n\n2", []expectedToken{
		{token.NUMBER, "1"},
		{token.NEWLINE, "\n\n\n"},
		{token.NUMBER, "2"},
		{token.EOF, ""},
	})
}

func TestDelimiters(t *testing.T) {
	assertTokens(t, `( ) { } [ ] , : . |`, []expectedToken{
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.LBRACKET, "["},
		{token.RBRACKET, "]"},
		{token.COMMA, ","},
		{token.COLON, ":"},
		{token.PERIOD, "."},
		{token.PIPE, "|"},
		{token.EOF, ""},
	})
}

func TestBareTildeIsIllegal(t *testing.T) {
	l := New("~ 5")
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %s", tok.Type)
	}
}

func TestTokenPositions(t *testing.T) {
	l := New(`~a is 10`)
	positions := []int{0, 3, 6, 8}
	for i, want := range positions {
		tok := l.NextToken()
		if tok.Position != want {
			t.Fatalf("token %d: expected position %d, got %d", i, want, tok.Position)
		}
	}
}

func TestUnicodeInStringsAndIdentifiers(t *testing.T) {
	assertTokens(t, `~café is "héllo"`, []expectedToken{
		{token.VARIABLE, "café"},
		{token.IS, "is"},
		{token.STRING, "héllo"},
		{token.EOF, ""},
	})
}

func TestTokensEndsWithEOF(t *testing.T) {
	tokens := New("~x is 1").Tokens()
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(tokens))
	}
	if tokens[len(tokens)-1].Type != token.EOF {
		t.Fatalf("expected trailing EOF, got %s", tokens[len(tokens)-1].Type)
	}
}
