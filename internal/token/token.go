package token

import "fmt"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
	Offset  int // byte offset of the first character
	End     int // byte offset just past the last character
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Literals
	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	IMAG   TokenType = "IMAG"
	CHAR   TokenType = "CHAR"
	STRING TokenType = "STRING"

	// Mini-language keywords
	FOR  TokenType = "FOR"
	IN   TokenType = "IN"
	IF   TokenType = "IF"
	ELSE TokenType = "ELSE"

	// Range operators (only meaningful in iterable position)
	DOTDOT   TokenType = ".."
	DOTDOTEQ TokenType = "..="

	// Delimiters
	COMMA     TokenType = ","
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	DOT       TokenType = "."
	ELLIPSIS  TokenType = "..."

	// Anything else that belongs to a host expression: Go operators and
	// Go keywords such as func, map, chan, struct.
	OPERATOR TokenType = "OPERATOR"
	KEYWORD  TokenType = "KEYWORD"
)

var keywords = map[string]TokenType{
	"for":  FOR,
	"in":   IN,
	"if":   IF,
	"else": ELSE,
}

// hostKeywords are Go keywords that can legally appear inside an expression
// fragment. They are passed through untouched.
var hostKeywords = map[string]bool{
	"func":        true,
	"map":         true,
	"chan":        true,
	"struct":      true,
	"interface":   true,
	"return":      true,
	"range":       true,
	"var":         true,
	"switch":      true,
	"case":        true,
	"default":     true,
	"break":       true,
	"continue":    true,
	"go":          true,
	"defer":       true,
	"select":      true,
	"type":        true,
	"const":       true,
	"fallthrough": true,
	"goto":        true,
}

// LookupIdent classifies an identifier-shaped word.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if hostKeywords[ident] {
		return KEYWORD
	}
	return IDENT
}

// IsOpening reports whether the token opens a bracketed group.
func (t TokenType) IsOpening() bool {
	return t == LPAREN || t == LBRACKET || t == LBRACE
}

// IsClosing reports whether the token closes a bracketed group.
func (t TokenType) IsClosing() bool {
	return t == RPAREN || t == RBRACKET || t == RBRACE
}

// Closer returns the matching closing token for an opening one.
func (t TokenType) Closer() TokenType {
	switch t {
	case LPAREN:
		return RPAREN
	case LBRACKET:
		return RBRACKET
	case LBRACE:
		return RBRACE
	}
	return ILLEGAL
}
