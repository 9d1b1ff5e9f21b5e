package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers + literals
	IDENT    = "IDENT"    // say, map, kebab-case-name, ...
	VARIABLE = "VARIABLE" // ~name
	NUMBER   = "NUMBER"   // 42, 3.14, -7
	STRING   = "STRING"   // "hello"
	INTERP   = "INTERP"   // "value: `~x`" (carries raw parts; split by the parser)

	// Operators
	PLUS      = "+"
	MINUS     = "-"
	ASTERISK  = "*"
	SLASH     = "/"
	BACKSLASH = "\\"
	PERCENT   = "%"

	LT    = "<"
	LT_EQ = "<="
	GT    = ">"
	GT_EQ = ">="

	EQ     = "=="
	NOT_EQ = "!="

	// Delimiters
	PERIOD = "."
	COMMA  = ","
	COLON  = ":"
	PIPE   = "|"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	IS        = "IS"
	IF        = "IF"
	ELSE      = "ELSE"
	LOOP      = "LOOP"
	BREAKLOOP = "BREAK_LOOP"
	FOREACH   = "FOR_EACH"
	IN        = "IN"
	ACTION    = "ACTION"
	GIVE      = "GIVE"
	AND       = "AND"
	OR        = "OR"
	UP        = "UP"
	DOWN      = "DOWN"
	ATTEMPT   = "ATTEMPT"
	RESCUE    = "RESCUE"
	TRUE      = "TRUE"
	FALSE     = "FALSE"
	NULL      = "NULL"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src byte index of the token
}

var keywords = map[string]TokenType{
	// constants
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,

	// binding
	"is": IS,

	// flow control
	"if":         IF,
	"else":       ELSE,
	"loop":       LOOP,
	"break-loop": BREAKLOOP,
	"for-each":   FOREACH,
	"in":         IN,

	// actions
	"action": ACTION,
	"give":   GIVE,

	// logic
	"and": AND,
	"or":  OR,

	// increment / decrement
	"up":   UP,
	"down": DOWN,

	// error handling
	"attempt": ATTEMPT,
	"rescue":  RESCUE,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
