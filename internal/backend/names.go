package backend

import (
	goast "go/ast"
	"strings"

	"github.com/funvibe/comprehend/internal/ast"
	"github.com/funvibe/comprehend/internal/capture"
	"github.com/funvibe/comprehend/internal/config"
)

// mentions reports whether a fragment refers to name. The field of a
// selector is not a reference.
func mentions(e *ast.Expr, name string) bool {
	if e == nil {
		return false
	}
	if e.Range != nil {
		return mentions(e.Range.Low, name) || mentions(e.Range.High, name)
	}
	found := false
	goast.Inspect(e.Node, func(n goast.Node) bool {
		if found {
			return false
		}
		switch x := n.(type) {
		case *goast.SelectorExpr:
			goast.Inspect(x.X, func(m goast.Node) bool {
				if id, ok := m.(*goast.Ident); ok && id.Name == name {
					found = true
				}
				return !found
			})
			return false
		case *goast.Ident:
			if x.Name == name {
				found = true
			}
		}
		return !found
	})
	return found
}

// mappingMentions checks every fragment of the body.
func mappingMentions(m *ast.Mapping, name string) bool {
	if mentions(m.LeftKey, name) || mentions(m.LeftValue, name) {
		return true
	}
	if me := m.RightExpr; me != nil {
		return mentions(me.Conditions, name) || mentions(me.ElseKey, name) || mentions(me.ElseValue, name)
	}
	return false
}

// used reports whether the name bound by level i is read anywhere in its
// scope: its own filter, the iterables and filters of deeper levels, or
// the body, stopping where a deeper pattern rebinds it.
func used(c *ast.Comprehension, i int, name string) bool {
	if name == "_" {
		return false
	}
	if f := c.Clauses[i].If; f != nil && mentions(f.Condition, name) {
		return true
	}
	for j := i + 1; j < len(c.Clauses); j++ {
		clause := c.Clauses[j]
		if mentions(clause.ForIn.Iterable, name) {
			return true
		}
		if clause.ForIn.Pattern.Binds(name) {
			return false
		}
		if clause.If != nil && mentions(clause.If.Condition, name) {
			return true
		}
	}
	return mappingMentions(c.Mapping, name)
}

// loopVars returns the pattern of level i with unread names blanked, so
// the generated loop never declares an unused variable.
func loopVars(c *ast.Comprehension, i int) []string {
	names := c.Clauses[i].ForIn.Pattern.Names
	vars := make([]string, len(names))
	for k, n := range names {
		if used(c, i, n) {
			vars[k] = n
		} else {
			vars[k] = "_"
		}
	}
	return vars
}

// rangeHeader writes the `for … range src {` line for a level.
func rangeHeader(form capture.Form, vars []string, src string) string {
	if len(vars) == 1 {
		switch {
		case vars[0] == "_":
			return "for range " + src + " {"
		case form == capture.FormCollection:
			return "for _, " + vars[0] + " := range " + src + " {"
		default:
			return "for " + vars[0] + " := range " + src + " {"
		}
	}
	switch {
	case vars[0] == "_" && vars[1] == "_":
		return "for range " + src + " {"
	case vars[1] == "_":
		return "for " + vars[0] + " := range " + src + " {"
	default:
		return "for " + vars[0] + ", " + vars[1] + " := range " + src + " {"
	}
}

// rangeSource is the expression a level's loop ranges over.
func rangeSource(plan capture.LevelPlan, dup config.DupPolicy) string {
	switch plan.Class {
	case capture.RangeLike:
		b := plan.Clause.ForIn.Iterable.Range
		fn := config.RangeFunc
		if b.Inclusive {
			fn = config.RangeInclusiveFunc
		}
		return config.RuntimePackage + "." + fn + "(" + b.Low.Source + ", " + b.High.Source + ")"
	case capture.NamedBinding:
		if plan.Decision == capture.Duplicate && dup == config.Hoisted {
			return config.RuntimePackage + "." + config.CloneFunc + "(" + plan.Source + ")"
		}
	}
	return plan.Source
}

// shadowDecl renders one shadow declaration.
func shadowDecl(s capture.Shadow) string {
	switch s.Kind {
	case capture.ShadowClone:
		return s.Name + " := " + config.RuntimePackage + "." + config.CloneFunc + "(" + s.Name + ")"
	case capture.ShadowSnapshot:
		return s.Name + " := " + config.RuntimePackage + "." + config.SnapshotFunc + "(" + s.Name + ")"
	}
	return s.Name + " := " + s.Name
}

func shadowLines(a *capture.Analysis, scope int) []node {
	var out []node
	for _, s := range a.ShadowsIn(scope) {
		out = append(out, line(shadowDecl(s)))
	}
	return out
}

// usesRuntime reports whether generated code calls into pkg/rt.
func usesRuntime(a *capture.Analysis, typeAndInit ...string) bool {
	if len(a.Shadows) > 0 {
		return true
	}
	for _, l := range a.Levels {
		if l.Class == capture.RangeLike || strings.HasPrefix(l.Source, config.RuntimePackage+".") {
			return true
		}
	}
	for _, s := range typeAndInit {
		if strings.Contains(s, config.RuntimePackage+".") {
			return true
		}
	}
	return false
}

// condOf returns a level's filter source, or "".
func condOf(clause *ast.IterClause) string {
	if clause.If == nil {
		return ""
	}
	return clause.If.Condition.Source
}
