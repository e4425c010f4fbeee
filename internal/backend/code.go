package backend

import "strings"

// The backends build a small tree of lines and blocks innermost first and
// render it once at the end, so wrapping a nest in another loop never
// re-indents text.

type node interface {
	render(e *emitter)
}

// line is a single statement.
type line string

func (l line) render(e *emitter) { e.emitLine(string(l)) }

// block is `open`, an indented body, then `close`.
type block struct {
	open  string
	body  []node
	close string
}

func (b *block) render(e *emitter) {
	e.emitLine(b.open)
	e.incIndent()
	for _, n := range b.body {
		n.render(e)
	}
	e.decIndent()
	e.emitLine(b.close)
}

// ifElse renders `if cond { then } else { els }`; els may be empty.
type ifElse struct {
	cond string
	then []node
	els  []node
}

func (s *ifElse) render(e *emitter) {
	e.emitLine("if " + s.cond + " {")
	e.incIndent()
	for _, n := range s.then {
		n.render(e)
	}
	e.decIndent()
	if len(s.els) == 0 {
		e.emitLine("}")
		return
	}
	e.emitLine("} else {")
	e.incIndent()
	for _, n := range s.els {
		n.render(e)
	}
	e.decIndent()
	e.emitLine("}")
}

// guarded wraps body in `if cond { }` when cond is set.
func guarded(cond string, body []node) []node {
	if cond == "" {
		return body
	}
	return []node{&ifElse{cond: cond, then: body}}
}

type emitter struct {
	sb     strings.Builder
	indent int
}

func (e *emitter) emitLine(s string) {
	if s == "" {
		e.sb.WriteString("\n")
		return
	}
	e.sb.WriteString(e.indentStr())
	e.sb.WriteString(s)
	e.sb.WriteString("\n")
}

func (e *emitter) incIndent() { e.indent++ }
func (e *emitter) decIndent() { e.indent-- }

func (e *emitter) indentStr() string {
	return strings.Repeat("\t", e.indent)
}

// renderExpr renders n as an expression: the trailing newline is dropped.
func renderExpr(n node) string {
	e := &emitter{}
	n.render(e)
	return strings.TrimSuffix(e.sb.String(), "\n")
}
