package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tj-mc/tilde-sub001/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokens materializes the whole token stream, ending with an EOF token.
func (l *Lexer) Tokens() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	startPosition := l.position

	switch l.ch {
	case '\n':
		literal := ""
		for l.ch == '\n' {
			literal += "\n"
			l.readChar()
			l.skipWhitespace()
		}
		return token.Token{Type: token.NEWLINE, Literal: literal, Position: startPosition}
	case '~':
		if isLetter(l.peekChar()) {
			l.readChar()
			tok.Literal = l.readIdentifier()
			tok.Type = token.VARIABLE
			tok.Position = startPosition
			return tok
		}
		tok = newToken(token.ILLEGAL, l.ch, startPosition)
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.EQ, Literal: "==", Position: startPosition}
		} else {
			tok = newToken(token.ILLEGAL, l.ch, startPosition)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NOT_EQ, Literal: "!=", Position: startPosition}
		} else {
			tok = newToken(token.ILLEGAL, l.ch, startPosition)
		}
	case '+':
		tok = newToken(token.PLUS, l.ch, startPosition)
	case '-':
		if isDigit(l.peekChar()) {
			return l.readNumberToken(startPosition)
		}
		tok = newToken(token.MINUS, l.ch, startPosition)
	case '*':
		tok = newToken(token.ASTERISK, l.ch, startPosition)
	case '/':
		tok = newToken(token.SLASH, l.ch, startPosition)
	case '\\':
		tok = newToken(token.BACKSLASH, l.ch, startPosition)
	case '%':
		tok = newToken(token.PERCENT, l.ch, startPosition)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.LT_EQ, Literal: "<=", Position: startPosition}
		} else {
			tok = newToken(token.LT, l.ch, startPosition)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GT_EQ, Literal: ">=", Position: startPosition}
		} else {
			tok = newToken(token.GT, l.ch, startPosition)
		}
	case '.':
		tok = newToken(token.PERIOD, l.ch, startPosition)
	case ',':
		tok = newToken(token.COMMA, l.ch, startPosition)
	case ':':
		tok = newToken(token.COLON, l.ch, startPosition)
	case '|':
		tok = newToken(token.PIPE, l.ch, startPosition)
	case '(':
		tok = newToken(token.LPAREN, l.ch, startPosition)
	case ')':
		tok = newToken(token.RPAREN, l.ch, startPosition)
	case '{':
		tok = newToken(token.LBRACE, l.ch, startPosition)
	case '}':
		tok = newToken(token.RBRACE, l.ch, startPosition)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, startPosition)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, startPosition)
	case '"':
		return l.readStringToken(startPosition)
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		tok.Position = startPosition
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Position = startPosition
			return tok
		} else if isDigit(l.ch) {
			return l.readNumberToken(startPosition)
		}
		tok = newToken(token.ILLEGAL, l.ch, startPosition)
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '#':
			l.skipToLineEnd()
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier covers kebab-case names: a hyphen stays in the
// identifier only when another identifier rune follows it.
func (l *Lexer) readIdentifier() string {
	start := l.position
	for {
		if isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
			continue
		}
		if l.ch == '-' && (isLetter(l.peekChar()) || isDigit(l.peekChar())) {
			l.readChar()
			continue
		}
		break
	}
	return l.input[start:l.position]
}

// readNumberToken handles an optional leading minus and at most one decimal point.
func (l *Lexer) readNumberToken(startPosition int) token.Token {
	literal := ""
	if l.ch == '-' {
		literal += "-"
		l.readChar()
	}
	for isDigit(l.ch) {
		literal += string(l.ch)
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		literal += "."
		l.readChar()
		for isDigit(l.ch) {
			literal += string(l.ch)
			l.readChar()
		}
	}
	return token.Token{Type: token.NUMBER, Literal: literal, Position: startPosition}
}

// readStringToken reads a double-quoted string. Strings containing backtick
// spans become INTERP tokens whose literal keeps the backticks for the parser.
func (l *Lexer) readStringToken(startPosition int) token.Token {
	l.readChar() // consume the opening quote

	var out strings.Builder
	hasBackticks := false
	for l.ch != '"' {
		if l.ch == 0 {
			return token.Token{Type: token.ILLEGAL, Literal: "unterminated string", Position: startPosition}
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case 'r':
				out.WriteByte('\r')
			case '"':
				out.WriteByte('"')
			case '\\':
				out.WriteByte('\\')
			default:
				out.WriteByte('\\')
				out.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		if l.ch == '`' {
			hasBackticks = true
		}
		out.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume the closing quote

	typ := token.TokenType(token.STRING)
	if hasBackticks {
		typ = token.INTERP
	}
	return token.Token{Type: typ, Literal: out.String(), Position: startPosition}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}

func newToken(tokenType token.TokenType, ch rune, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Position: position}
}
