package comprehend

import (
	"fmt"
	"strings"

	"github.com/funvibe/comprehend/internal/diagnostics"
)

// Diagnostic is one positioned compile error.
type Diagnostic struct {
	// Code is one of P001-P004, C001, A001, U001 or I001.
	Code    string
	File    string
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	file := d.File
	if file == "" {
		file = "<input>"
	}
	if d.Line == 0 {
		return fmt.Sprintf("%s: [%s] %s", file, d.Code, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: [%s] %s", file, d.Line, d.Column, d.Code, d.Message)
}

// Error is returned by every failed compilation. No code is produced
// when any diagnostic is reported.
type Error struct {
	Diagnostics []Diagnostic
}

func newError(errs []*diagnostics.DiagnosticError) *Error {
	e := &Error{Diagnostics: make([]Diagnostic, len(errs))}
	for i, d := range errs {
		e.Diagnostics[i] = Diagnostic{
			Code:    string(d.Code),
			File:    d.File,
			Line:    d.Line,
			Column:  d.Column,
			Message: d.Message,
		}
	}
	return e
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Code returns the code of the first diagnostic.
func (e *Error) Code() string {
	if len(e.Diagnostics) == 0 {
		return ""
	}
	return e.Diagnostics[0].Code
}
