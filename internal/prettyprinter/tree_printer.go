package prettyprinter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/funvibe/comprehend/internal/ast"
)

// --- Tree Printer (Output shows AST structure) ---

type TreePrinter struct {
	buf    bytes.Buffer
	indent int
	label  string
}

func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

func (p *TreePrinter) String() string {
	return p.buf.String()
}

func (p *TreePrinter) line(format string, args ...interface{}) {
	p.buf.WriteString(strings.Repeat("  ", p.indent))
	if p.label != "" {
		p.buf.WriteString(p.label + ": ")
		p.label = ""
	}
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteString("\n")
}

// child visits n one level deeper under a label.
func (p *TreePrinter) child(label string, n ast.Node) {
	p.indent++
	p.label = label
	n.Accept(p)
	p.indent--
}

func (p *TreePrinter) VisitComprehension(n *ast.Comprehension) {
	p.line("Comprehension (depth %d)", n.Depth())
	p.child("", n.Mapping)
	for _, c := range n.Clauses {
		p.child("", c)
	}
}

func (p *TreePrinter) VisitMapping(n *ast.Mapping) {
	p.line("Mapping")
	p.child("Key", n.LeftKey)
	if n.LeftValue != nil {
		p.child("Value", n.LeftValue)
	}
	if n.RightExpr != nil {
		p.child("", n.RightExpr)
	}
}

func (p *TreePrinter) VisitMappingElse(n *ast.MappingElse) {
	p.line("MappingElse")
	p.child("Cond", n.Conditions)
	p.child("Key", n.ElseKey)
	if n.ElseValue != nil {
		p.child("Value", n.ElseValue)
	}
}

func (p *TreePrinter) VisitIterClause(n *ast.IterClause) {
	p.line("IterClause")
	p.child("", n.ForIn)
	if n.If != nil {
		p.child("", n.If)
	}
}

func (p *TreePrinter) VisitForInClause(n *ast.ForInClause) {
	p.line("ForIn")
	p.child("Pattern", n.Pattern)
	p.child("Iterable", n.Iterable)
}

func (p *TreePrinter) VisitBareIfClause(n *ast.BareIfClause) {
	p.line("If")
	p.child("Cond", n.Condition)
}

func (p *TreePrinter) VisitExpr(n *ast.Expr) {
	if n.Range != nil {
		kind := "Range"
		if n.Range.Inclusive {
			kind = "RangeInclusive"
		}
		p.line("%s", kind)
		p.child("Low", n.Range.Low)
		p.child("High", n.Range.High)
		return
	}
	p.line("%s %q", nodeKind(n), n.Source)
}

func (p *TreePrinter) VisitPattern(n *ast.Pattern) {
	p.line("%s", strings.Join(n.Names, ", "))
}

// nodeKind names the go/ast node type without its package, e.g. "CallExpr".
func nodeKind(n *ast.Expr) string {
	if n.Node == nil {
		return "Expr"
	}
	name := fmt.Sprintf("%T", n.Node)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
