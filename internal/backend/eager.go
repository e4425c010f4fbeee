package backend

import (
	"fmt"

	"github.com/funvibe/comprehend/internal/ast"
	"github.com/funvibe/comprehend/internal/capture"
	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/sink"
)

// Eager lowers a comprehension into nested loops that fill one container
// and return it:
//
//	func() []int {
//		__sink := []int{}
//		for _, x := range xs {
//			ys := rt.Clone(ys)
//			for _, y := range ys {
//				__sink = append(__sink, x*y)
//			}
//		}
//		return __sink
//	}()
type Eager struct {
	Policy  sink.Policy
	Options config.Options
}

func NewEager(kind sink.Kind, opts config.Options) *Eager {
	return &Eager{Policy: sink.Lookup(kind), Options: opts.WithDefaults()}
}

func (b *Eager) Name() string {
	return "eager:" + b.Policy.Name
}

func (b *Eager) Generate(c *ast.Comprehension, a *capture.Analysis) (*Result, error) {
	if len(a.Levels) != len(c.Clauses) {
		return nil, fmt.Errorf("eager: analysis covers %d levels, comprehension has %d", len(a.Levels), len(c.Clauses))
	}

	vars := b.vars("", "")
	typ := sink.Expand(b.Policy.Type, vars)
	init := sink.Expand(b.Policy.Init, vars)

	// Innermost first: each level wraps the statements built so far.
	nested := b.leaf(c.Mapping)
	for i := len(c.Clauses) - 1; i >= 0; i-- {
		plan := a.Levels[i]
		body := append(shadowLines(a, i), nested...)
		header := rangeHeader(plan.Form, loopVars(c, i), rangeSource(plan, a.Dup))
		nested = []node{&block{
			open:  header,
			body:  guarded(condOf(plan.Clause), body),
			close: "}",
		}}
	}

	fn := &block{open: "func() " + typ + " {", close: "}()"}
	fn.body = append(fn.body, line(config.SinkIdent+" := "+init))
	fn.body = append(fn.body, shadowLines(a, capture.Outside)...)
	fn.body = append(fn.body, nested...)
	fn.body = append(fn.body, line("return "+config.SinkIdent))

	res := &Result{Code: renderExpr(fn), Type: typ}
	if usesRuntime(a, typ, init) {
		res.Imports = []string{config.RuntimeImportPath}
	}
	return res, nil
}

// leaf is the innermost statement: one insertion, or an if/else choosing
// between the two branches of the mapping.
func (b *Eager) leaf(m *ast.Mapping) []node {
	insert := line(b.insert(m.LeftKey, m.LeftValue))
	if m.RightExpr == nil {
		return []node{insert}
	}
	me := m.RightExpr
	return []node{&ifElse{
		cond: me.Conditions.Source,
		then: []node{insert},
		els:  []node{line(b.insert(me.ElseKey, me.ElseValue))},
	}}
}

func (b *Eager) insert(key, value *ast.Expr) string {
	v := ""
	if value != nil {
		v = value.Source
	}
	return sink.Expand(b.Policy.Insert, b.vars(key.Source, v))
}

func (b *Eager) vars(k, v string) map[string]string {
	return map[string]string{
		"E": b.Options.Elem,
		"K": b.Options.Key,
		"V": b.Options.Value,
		"S": config.SinkIdent,
		"k": k,
		"v": v,
	}
}
