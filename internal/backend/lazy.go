package backend

import (
	"fmt"

	"github.com/funvibe/comprehend/internal/ast"
	"github.com/funvibe/comprehend/internal/capture"
	"github.com/funvibe/comprehend/internal/config"
)

// Lazy lowers a comprehension into a pull-based iter.Seq. Every level is a
// filter-map stage over its iterable; every level but the innermost yields
// the nested stage as a sub-sequence and is flattened by rt.Flatten, so a
// comprehension of depth N contains N-1 flattening joins. A mapping with a
// value produces an iter.Seq2 instead.
type Lazy struct {
	Options config.Options
}

func NewLazy(opts config.Options) *Lazy {
	return &Lazy{Options: opts.WithDefaults()}
}

func (b *Lazy) Name() string {
	return "lazy"
}

// seqVar holds a nested stage before it is yielded to the flattening join.
const seqVar = "__seq"

func (b *Lazy) Generate(c *ast.Comprehension, a *capture.Analysis) (*Result, error) {
	if len(a.Levels) != len(c.Clauses) {
		return nil, fmt.Errorf("lazy: analysis covers %d levels, comprehension has %d", len(a.Levels), len(c.Clauses))
	}
	pair := c.Mapping.HasValue()

	var stage *block
	if len(c.Clauses) == 0 {
		stage = &block{open: b.stageOpen(pair), body: b.leaf(c.Mapping), close: "})"}
	}
	for i := len(c.Clauses) - 1; i >= 0; i-- {
		plan := a.Levels[i]
		body := shadowLines(a, i)
		if stage == nil {
			// Innermost: yield results.
			body = append(body, b.leaf(c.Mapping)...)
		} else {
			// Outer: yield the nested stage as one sub-sequence.
			body = append(body,
				prefixed(stage, seqVar+" := "),
				&ifElse{cond: "!" + config.YieldIdent + "(" + seqVar + ")", then: []node{line("return")}},
			)
		}
		loop := &block{
			open:  rangeHeader(plan.Form, loopVars(c, i), rangeSource(plan, config.PerPass)),
			body:  guarded(condOf(plan.Clause), body),
			close: "}",
		}

		if stage == nil {
			stage = &block{open: b.stageOpen(pair), body: []node{loop}, close: "})"}
		} else {
			stage = &block{open: b.flattenOpen(pair), body: []node{loop}, close: "})"}
		}
	}

	fn := &block{open: "func() " + b.seqType(pair) + " {", close: "}()"}
	fn.body = append(fn.body, shadowLines(a, capture.Outside)...)
	fn.body = append(fn.body, prefixed(stage, "return "))

	res := &Result{Code: renderExpr(fn), Type: b.seqType(pair), Imports: []string{"iter"}}
	if len(c.Clauses) > 1 || usesRuntime(a) {
		res.Imports = append(res.Imports, config.RuntimeImportPath)
	}
	return res, nil
}

func (b *Lazy) seqType(pair bool) string {
	if pair {
		return "iter.Seq2[" + b.Options.Key + ", " + b.Options.Value + "]"
	}
	return "iter.Seq[" + b.Options.Elem + "]"
}

func (b *Lazy) yieldSig(pair bool) string {
	if pair {
		return "func(" + b.Options.Key + ", " + b.Options.Value + ") bool"
	}
	return "func(" + b.Options.Elem + ") bool"
}

// stageOpen starts the innermost filter-map stage.
func (b *Lazy) stageOpen(pair bool) string {
	return b.seqType(pair) + "(func(" + config.YieldIdent + " " + b.yieldSig(pair) + ") {"
}

// flattenOpen starts a stage whose sub-sequences are flattened.
func (b *Lazy) flattenOpen(pair bool) string {
	fn, args := config.FlattenFunc, b.Options.Elem
	if pair {
		fn, args = config.Flatten2Func, b.Options.Key+", "+b.Options.Value
	}
	return config.RuntimePackage + "." + fn + "[" + args + "](func(" + config.YieldIdent + " func(" + b.seqType(pair) + ") bool) {"
}

func (b *Lazy) leaf(m *ast.Mapping) []node {
	emit := b.yield(m.LeftKey, m.LeftValue)
	if m.RightExpr == nil {
		return []node{emit}
	}
	me := m.RightExpr
	return []node{&ifElse{
		cond: me.Conditions.Source,
		then: []node{emit},
		els:  []node{b.yield(me.ElseKey, me.ElseValue)},
	}}
}

// yield stops the traversal as soon as the consumer does.
func (b *Lazy) yield(key, value *ast.Expr) node {
	args := key.Source
	if value != nil {
		args += ", " + value.Source
	}
	return &ifElse{cond: "!" + config.YieldIdent + "(" + args + ")", then: []node{line("return")}}
}

// prefixed returns b with prefix put in front of its first line.
func prefixed(b *block, prefix string) *block {
	return &block{open: prefix + b.open, body: b.body, close: b.close}
}
