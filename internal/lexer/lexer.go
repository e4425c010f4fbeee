package lexer

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/comprehend/internal/token"
)

// Lexer splits comprehension source into tokens. It knows enough of Go's
// lexical grammar to keep host expression fragments intact (literals,
// operators, brackets) and adds the range operators `..` and `..=`.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

// operators lists Go operators longest first, so the first prefix match is
// the maximal munch.
var operators = []string{
	"&^=", "<<=", ">>=",
	"&&", "||", "<-", "++", "--", "==", "!=", "<=", ">=", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "&^",
	"+", "-", "*", "/", "%", "&", "|", "^", "<", ">", "=", "!", "~",
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	startLine, startCol, start := l.line, l.column, l.position

	switch {
	case l.ch == 0:
		return token.Token{Type: token.EOF, Line: startLine, Column: startCol, Offset: start, End: start}
	case isLetter(l.ch):
		ident := l.readIdentifier()
		return l.tokenFrom(token.LookupIdent(ident), start, startLine, startCol, nil)
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		return l.readNumber()
	case l.ch == '"':
		lit, err := l.readString()
		if err != nil {
			return l.tokenFrom(token.ILLEGAL, start, startLine, startCol, err.Error())
		}
		return l.tokenFrom(token.STRING, start, startLine, startCol, lit)
	case l.ch == '`':
		lit, err := l.readRawString()
		if err != nil {
			return l.tokenFrom(token.ILLEGAL, start, startLine, startCol, err.Error())
		}
		return l.tokenFrom(token.STRING, start, startLine, startCol, lit)
	case l.ch == '\'':
		if err := l.readCharLiteral(); err != nil {
			return l.tokenFrom(token.ILLEGAL, start, startLine, startCol, err.Error())
		}
		return l.tokenFrom(token.CHAR, start, startLine, startCol, nil)
	}

	var typ token.TokenType
	switch l.ch {
	case '.':
		if l.peekChar() == '.' {
			l.readChar() // .
			if l.peekChar() == '.' {
				l.readChar()
				typ = token.ELLIPSIS
			} else if l.peekChar() == '=' {
				l.readChar()
				typ = token.DOTDOTEQ
			} else {
				typ = token.DOTDOT
			}
		} else {
			typ = token.DOT
		}
	case ',':
		typ = token.COMMA
	case '(':
		typ = token.LPAREN
	case ')':
		typ = token.RPAREN
	case '[':
		typ = token.LBRACKET
	case ']':
		typ = token.RBRACKET
	case '{':
		typ = token.LBRACE
	case '}':
		typ = token.RBRACE
	case ';':
		typ = token.SEMICOLON
	case ':':
		if l.peekChar() == '=' {
			l.readChar()
			typ = token.OPERATOR
		} else {
			typ = token.COLON
		}
	default:
		op := l.matchOperator()
		if op == "" {
			ch := l.ch
			l.readChar()
			return l.tokenFrom(token.ILLEGAL, start, startLine, startCol, fmt.Sprintf("illegal character %q", ch))
		}
		// The first character is current; skip the rest of the operator.
		for i := 1; i < len(op); i++ {
			l.readChar()
		}
		typ = token.OPERATOR
	}

	l.readChar()
	return l.tokenFrom(typ, start, startLine, startCol, nil)
}

func (l *Lexer) matchOperator() string {
	rest := l.input[l.position:]
	for _, op := range operators {
		if len(rest) >= len(op) && rest[:len(op)] == op {
			return op
		}
	}
	return ""
}

// tokenFrom builds a token whose lexeme spans input[start:l.position].
func (l *Lexer) tokenFrom(typ token.TokenType, start, line, col int, literal interface{}) token.Token {
	lexeme := l.input[start:l.position]
	if literal == nil {
		literal = lexeme
	}
	return token.Token{
		Type:    typ,
		Lexeme:  lexeme,
		Literal: literal,
		Line:    line,
		Column:  col,
		Offset:  start,
		End:     l.position,
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a Go numeric literal. A '.' directly followed by another
// '.' ends the number, which is what makes `0..10` a range and not a float.
func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	typ := token.INT

	isBaseDigit := isDigit
	if l.ch == '0' {
		switch l.peekChar() {
		case 'x', 'X':
			isBaseDigit = isHexDigit
			l.readChar()
			l.readChar()
		case 'b', 'B', 'o', 'O':
			l.readChar()
			l.readChar()
		}
	}

	for isBaseDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	if l.ch == '.' && l.peekChar() != '.' {
		typ = token.FLOAT
		l.readChar()
		for isBaseDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' || l.ch == 'p' || l.ch == 'P' {
		typ = token.FLOAT
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}

	if l.ch == 'i' {
		typ = token.IMAG
		l.readChar()
	}

	lexeme := l.input[position:l.position]
	tok := token.Token{Type: typ, Lexeme: lexeme, Literal: lexeme, Line: startLine, Column: startCol, Offset: position, End: l.position}
	if typ == token.INT {
		if _, err := strconv.ParseInt(lexeme, 0, 64); err != nil {
			if _, uerr := strconv.ParseUint(lexeme, 0, 64); uerr != nil {
				tok.Type = token.ILLEGAL
				tok.Literal = "malformed integer literal " + lexeme
			}
		}
	}
	return tok
}

func (l *Lexer) readString() (string, error) {
	start := l.position
	l.readChar() // opening "
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return "", fmt.Errorf("unterminated string literal")
		}
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	l.readChar() // closing "
	s, err := strconv.Unquote(l.input[start:l.position])
	if err != nil {
		return "", fmt.Errorf("invalid string literal: %v", err)
	}
	return s, nil
}

func (l *Lexer) readRawString() (string, error) {
	l.readChar() // opening `
	start := l.position
	for l.ch != '`' {
		if l.ch == 0 {
			return "", fmt.Errorf("unterminated raw string literal")
		}
		l.readChar()
	}
	content := l.input[start:l.position]
	l.readChar() // closing `
	return content, nil
}

func (l *Lexer) readCharLiteral() error {
	l.readChar() // opening '
	n := 0
	for l.ch != '\'' {
		if l.ch == 0 || l.ch == '\n' {
			return fmt.Errorf("unterminated character literal, expected '")
		}
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
		n++
	}
	l.readChar() // closing '
	if n == 0 {
		return fmt.Errorf("empty character literal")
	}
	return nil
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		// Handle comments
		if l.ch == '/' {
			if l.peekChar() == '/' {
				l.readChar() // consume first /
				l.readChar() // consume second /
				for l.ch != '\n' && l.ch != 0 {
					l.readChar()
				}
				continue
			} else if l.peekChar() == '*' {
				l.readChar() // consume /
				l.readChar() // consume *
				for l.ch != 0 {
					if l.ch == '*' && l.peekChar() == '/' {
						l.readChar() // consume *
						l.readChar() // consume /
						break
					}
					l.readChar()
				}
				continue
			}
		}
		break
	}
}
