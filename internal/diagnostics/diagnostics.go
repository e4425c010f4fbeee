package diagnostics

import (
	"fmt"

	"github.com/funvibe/comprehend/internal/token"
)

type ErrorCode string

const (
	// Parser
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // malformed host expression
	ErrP003 ErrorCode = "P003" // malformed pattern
	ErrP004 ErrorCode = "P004" // missing keyword or fragment

	// Capture analysis
	ErrC001 ErrorCode = "C001" // borrowed source below the outermost level

	// Semantic checks
	ErrA001 ErrorCode = "A001" // key/value arity mismatch
	ErrU001 ErrorCode = "U001" // unsupported iterable shape

	// Internal failures that are not the user's fault
	ErrI001 ErrorCode = "I001"
)

var descriptions = map[ErrorCode]string{
	ErrP001: "unexpected token",
	ErrP002: "malformed expression",
	ErrP003: "malformed pattern",
	ErrP004: "missing keyword",
	ErrC001: "capture rejected",
	ErrA001: "arity mismatch",
	ErrU001: "unsupported iterable",
	ErrI001: "internal error",
}

// Describe returns a short human readable title for a code.
func (c ErrorCode) Describe() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return "error"
}

// DiagnosticError is a positioned compile error. Every failure of the
// compiler is reported as one of these; none of them are recoverable.
type DiagnosticError struct {
	Code    ErrorCode
	File    string
	Line    int
	Column  int
	Message string
}

func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: message,
	}
}

func NewErrorf(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, tok, fmt.Sprintf(format, args...))
}

func (e *DiagnosticError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	if e.Line == 0 {
		return fmt.Sprintf("%s: [%s] %s", file, e.Code, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: [%s] %s", file, e.Line, e.Column, e.Code, e.Message)
}
