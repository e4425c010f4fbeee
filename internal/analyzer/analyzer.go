// Package analyzer runs the semantic checks that sit between parsing and
// code generation: key/value arity against the target and capture analysis.
package analyzer

import (
	"github.com/funvibe/comprehend/internal/ast"
	"github.com/funvibe/comprehend/internal/capture"
	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/diagnostics"
	"github.com/funvibe/comprehend/internal/sink"
)

// CheckArity verifies the mapping against the target. Arity-1 sinks reject
// a value, arity-2 sinks require one, and an else branch must agree with
// the main branch in both backends.
func CheckArity(m *ast.Mapping, target sink.Target) *diagnostics.DiagnosticError {
	if !target.Lazy {
		policy := sink.Lookup(target.Kind)
		switch {
		case policy.Arity == 1 && m.HasValue():
			return diagnostics.NewErrorf(diagnostics.ErrA001, m.LeftValue.Token,
				"%s collects single values, but the mapping produces a key/value pair", policy.Name)
		case policy.Arity == 2 && !m.HasValue():
			return diagnostics.NewErrorf(diagnostics.ErrA001, m.LeftKey.Token,
				"%s needs a key/value mapping such as `k, v`, got %s", policy.Name, m.LeftKey.Source)
		}
	}

	if me := m.RightExpr; me != nil {
		switch {
		case m.HasValue() && me.ElseValue == nil:
			return diagnostics.NewErrorf(diagnostics.ErrA001, me.ElseKey.Token,
				"else branch produces a single value, but the mapping produces a key/value pair")
		case !m.HasValue() && me.ElseValue != nil:
			return diagnostics.NewErrorf(diagnostics.ErrA001, me.ElseValue.Token,
				"else branch produces a key/value pair, but the mapping produces a single value")
		}
	}
	return nil
}

// Analyze checks arity, then plans captures for the backend selected by
// target.
func Analyze(c *ast.Comprehension, target sink.Target, dup config.DupPolicy) (*capture.Analysis, *diagnostics.DiagnosticError) {
	if err := CheckArity(c.Mapping, target); err != nil {
		return nil, err
	}
	if target.Lazy {
		return capture.AnalyzeLazy(c)
	}
	return capture.AnalyzeEager(c, dup)
}
