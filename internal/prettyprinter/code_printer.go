package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/funvibe/comprehend/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// CodePrinter prints a comprehension back in source form. Fragments are
// printed exactly as written; only the spacing between clauses is
// normalized. When the one-line form exceeds the line width every clause
// goes on its own line.
type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	lineWidth int // max line width (0 = unlimited)
	column    int // current column position
	broken    bool
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{indent: 0, lineWidth: 100, column: 0}
}

func NewCodePrinterWithWidth(width int) *CodePrinter {
	return &CodePrinter{indent: 0, lineWidth: width, column: 0}
}

func (p *CodePrinter) SetLineWidth(width int) {
	p.lineWidth = width
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
	p.column = p.indent * 4
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	// Track column position
	if idx := strings.LastIndex(s, "\n"); idx != -1 {
		p.column = len(s) - idx - 1
	} else {
		p.column += len(s)
	}
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
	p.column = 0
}

// clauseSep starts a clause: a space on one line, or a new indented line.
func (p *CodePrinter) clauseSep() {
	if p.broken {
		p.writeln()
		p.writeIndent()
		return
	}
	p.write(" ")
}

func (p *CodePrinter) VisitComprehension(n *ast.Comprehension) {
	if p.lineWidth > 0 && !p.broken {
		flat := NewCodePrinterWithWidth(0)
		n.Accept(flat)
		if len(flat.String()) > p.lineWidth && len(n.Clauses) > 0 {
			p.broken = true
		}
	}

	n.Mapping.Accept(p)
	p.indent++
	for _, clause := range n.Clauses {
		p.clauseSep()
		clause.Accept(p)
	}
	p.indent--
}

func (p *CodePrinter) VisitMapping(n *ast.Mapping) {
	n.LeftKey.Accept(p)
	if n.LeftValue != nil {
		p.write(", ")
		n.LeftValue.Accept(p)
	}
	if n.RightExpr != nil {
		p.write(" ")
		n.RightExpr.Accept(p)
	}
}

func (p *CodePrinter) VisitMappingElse(n *ast.MappingElse) {
	p.write("if ")
	n.Conditions.Accept(p)
	p.write(" else ")
	n.ElseKey.Accept(p)
	if n.ElseValue != nil {
		p.write(", ")
		n.ElseValue.Accept(p)
	}
}

func (p *CodePrinter) VisitIterClause(n *ast.IterClause) {
	n.ForIn.Accept(p)
	if n.If != nil {
		p.write(" ")
		n.If.Accept(p)
	}
}

func (p *CodePrinter) VisitForInClause(n *ast.ForInClause) {
	p.write("for ")
	n.Pattern.Accept(p)
	p.write(" in ")
	n.Iterable.Accept(p)
}

func (p *CodePrinter) VisitBareIfClause(n *ast.BareIfClause) {
	p.write("if ")
	n.Condition.Accept(p)
}

func (p *CodePrinter) VisitExpr(n *ast.Expr) {
	if n == nil {
		p.write("<???>")
		return
	}
	p.write(n.String())
}

func (p *CodePrinter) VisitPattern(n *ast.Pattern) {
	p.write(n.String())
}
