// Package capture decides, for every nesting level of a comprehension,
// whether its iterable is used as written, duplicated per pass, or
// rejected. The analysis is a pure function of the tree; each call returns
// a fresh Analysis.
package capture

import (
	"sort"

	"github.com/funvibe/comprehend/internal/ast"
	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/diagnostics"
)

// Decision is what a backend does with a level's iterable.
type Decision int

const (
	// UseDirectly ranges over the iterable as written.
	UseDirectly Decision = iota
	// Duplicate ranges over a shadow copy declared for every outer pass.
	Duplicate
	// Snapshot ranges over a view taken when the lazy sequence is built.
	Snapshot
)

func (d Decision) String() string {
	switch d {
	case UseDirectly:
		return "use-directly"
	case Duplicate:
		return "duplicate"
	case Snapshot:
		return "snapshot"
	}
	return "unknown"
}

// ShadowKind selects the declaration a shadow emits.
type ShadowKind int

const (
	// ShadowClone is `x := rt.Clone(x)`.
	ShadowClone ShadowKind = iota
	// ShadowRebind is `x := x`: a fresh variable over the same elements.
	ShadowRebind
	// ShadowSnapshot is `x := rt.Snapshot(x)`.
	ShadowSnapshot
)

// Outside is the Scope of a shadow declared before the outermost loop.
const Outside = -1

// Shadow is one compiler-inserted declaration.
type Shadow struct {
	Kind ShadowKind
	Name string
	// Scope is the level whose loop body holds the declaration, or Outside.
	// Declarations open the body, ahead of the nested loop.
	Scope int
	// Level is the first level that consumes the shadow.
	Level int
}

// LevelPlan is the decision for one nesting level.
type LevelPlan struct {
	Clause   *ast.IterClause
	Class    Class
	Form     Form
	Decision Decision
	// Source is what the loop ranges over before any duplication: the
	// binding name, the expression, or the operand of a reference.
	Source string
}

// Analysis is the capture plan of one comprehension, levels and shadows
// both outermost first.
type Analysis struct {
	Levels  []LevelPlan
	Shadows []Shadow
	Dup     config.DupPolicy
}

// ShadowsIn returns the shadows declared in scope, in declaration order.
func (a *Analysis) ShadowsIn(scope int) []Shadow {
	var out []Shadow
	for _, s := range a.Shadows {
		if s.Scope == scope {
			out = append(out, s)
		}
	}
	return out
}

const referenceMsg = "cannot use a reference as a non-outermost source; obtain a value-type source instead"

// AnalyzeEager plans the eager backend. Named bindings below the outermost
// level are duplicated once per enclosing pass; a reference below the
// outermost level is rejected.
func AnalyzeEager(c *ast.Comprehension, dup config.DupPolicy) (*Analysis, *diagnostics.DiagnosticError) {
	a := &Analysis{Levels: make([]LevelPlan, len(c.Clauses)), Dup: dup}

	// Innermost first. Shadows are collected in reverse and flipped at the
	// end so the accumulator is the only state threaded through the walk.
	var shadows []Shadow
	for i := len(c.Clauses) - 1; i >= 0; i-- {
		clause := c.Clauses[i]
		it := clause.ForIn.Iterable
		class, form := Classify(it)
		plan := LevelPlan{Clause: clause, Class: class, Form: form, Source: it.Source}

		switch class {
		case Unsupported:
			return nil, unsupported(it, "")
		case Reference:
			if i > 0 {
				return nil, diagnostics.NewErrorf(diagnostics.ErrC001, it.Token, "%s: %s", referenceMsg, it.Source)
			}
			plan.Source = referenceOperand(it)
		case NamedBinding:
			plan.Source = bindingName(it)
			if i > 0 {
				plan.Decision = Duplicate
				shadows = append(shadows, eagerShadow(c, i, plan.Source, dup))
			}
		}
		a.Levels[i] = plan
	}

	a.Shadows = ordered(shadows)
	return a, nil
}

func eagerShadow(c *ast.Comprehension, level int, name string, dup config.DupPolicy) Shadow {
	if dup == config.Hoisted {
		return Shadow{Kind: ShadowRebind, Name: name, Scope: owner(c, level, name), Level: level}
	}
	return Shadow{Kind: ShadowClone, Name: name, Scope: level - 1, Level: level}
}

// AnalyzeLazy plans the lazy backend. Only ranges, named bindings and
// pre-iterated sources are supported. Every named binding is snapshotted
// when the sequence is built, or on each pass of the loop that binds it,
// and every named binding below the outermost level gets a fresh view per
// enclosing pass.
func AnalyzeLazy(c *ast.Comprehension) (*Analysis, *diagnostics.DiagnosticError) {
	a := &Analysis{Levels: make([]LevelPlan, len(c.Clauses))}

	var shadows []Shadow
	for i := len(c.Clauses) - 1; i >= 0; i-- {
		clause := c.Clauses[i]
		it := clause.ForIn.Iterable
		class, form := Classify(it)
		plan := LevelPlan{Clause: clause, Class: class, Form: form, Source: it.Source}

		switch class {
		case Unsupported:
			return nil, unsupported(it, "")
		case Reference:
			if i > 0 {
				return nil, diagnostics.NewErrorf(diagnostics.ErrC001, it.Token, "%s: %s", referenceMsg, it.Source)
			}
			return nil, unsupported(it, "; the lazy form snapshots named bindings itself, use the binding")
		case Computed:
			return nil, unsupported(it, "; bind it to a variable or wrap it in an iterator such as slices.Values")
		case NamedBinding:
			plan.Source = bindingName(it)
			plan.Decision = Snapshot
			if i > 0 {
				plan.Decision = Duplicate
				shadows = append(shadows, Shadow{Kind: ShadowRebind, Name: plan.Source, Scope: i - 1, Level: i})
			}
			shadows = append(shadows, Shadow{Kind: ShadowSnapshot, Name: plan.Source, Scope: owner(c, i, plan.Source), Level: i})
		}
		a.Levels[i] = plan
	}

	a.Shadows = ordered(shadows)
	return a, nil
}

// owner returns the deepest level above level whose pattern binds name,
// or Outside for a free variable.
func owner(c *ast.Comprehension, level int, name string) int {
	for j := level - 1; j >= 0; j-- {
		if c.Clauses[j].ForIn.Pattern.Binds(name) {
			return j
		}
	}
	return Outside
}

// ordered reverses the innermost-first accumulator into declaration
// order: by scope, outermost first, snapshots before other shadows. A name
// is declared at most once per scope; a snapshot already gives a fresh
// view, so it absorbs a rebind of the same name.
func ordered(rev []Shadow) []Shadow {
	type key struct {
		scope int
		name  string
	}
	snap := map[key]bool{}
	for _, s := range rev {
		if s.Kind == ShadowSnapshot {
			snap[key{s.Scope, s.Name}] = true
		}
	}

	var out []Shadow
	seen := map[key]bool{}
	for i := len(rev) - 1; i >= 0; i-- {
		s := rev[i]
		k := key{s.Scope, s.Name}
		if seen[k] || (snap[k] && s.Kind != ShadowSnapshot) {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Scope != out[j].Scope {
			return out[i].Scope < out[j].Scope
		}
		return out[i].Kind == ShadowSnapshot && out[j].Kind != ShadowSnapshot
	})
	return out
}

func unsupported(it *ast.Expr, hint string) *diagnostics.DiagnosticError {
	return diagnostics.NewErrorf(diagnostics.ErrU001, it.Token,
		"unsupported iterable %s: expected a range, a named binding or an iterator%s", it.Source, hint)
}
