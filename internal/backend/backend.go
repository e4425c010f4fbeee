// Package backend lowers an analyzed comprehension into a Go expression.
// Two backends share the work: Eager builds a container, Lazy builds an
// iter.Seq pipeline.
package backend

import (
	"github.com/funvibe/comprehend/internal/ast"
	"github.com/funvibe/comprehend/internal/capture"
	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/sink"
)

// Backend is the interface for code generation backends
type Backend interface {
	// Generate emits the expression for c following the capture plan a.
	Generate(c *ast.Comprehension, a *capture.Analysis) (*Result, error)

	// Name returns the backend name for display
	Name() string
}

// Result is one generated expression and the import paths it needs.
type Result struct {
	Code string
	// Type is the Go type of Code.
	Type    string
	Imports []string
}

// New selects the backend for a target.
func New(target sink.Target, opts config.Options) Backend {
	if target.Lazy {
		return NewLazy(opts)
	}
	return NewEager(target.Kind, opts)
}
