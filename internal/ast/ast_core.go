package ast

import (
	goast "go/ast"

	"github.com/funvibe/comprehend/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
	GetToken() token.Token
}

// Visitor walks a comprehension tree. Accept does not descend on its own;
// a visitor that wants children visits them itself.
type Visitor interface {
	VisitComprehension(c *Comprehension)
	VisitMapping(m *Mapping)
	VisitMappingElse(me *MappingElse)
	VisitIterClause(ic *IterClause)
	VisitForInClause(fc *ForInClause)
	VisitBareIfClause(bc *BareIfClause)
	VisitExpr(e *Expr)
	VisitPattern(p *Pattern)
}

// Expr is an opaque host expression fragment. Source is the exact text as
// written; Node is the go/ast form used to inspect its shape. An iterable
// written as `lo..hi` or `lo..=hi` has Range set and a nil Node.
type Expr struct {
	Token  token.Token // first token of the fragment
	Source string
	Node   goast.Expr
	Range  *RangeBounds
}

// RangeBounds are the bounds of an integer range iterable.
type RangeBounds struct {
	Low       *Expr
	High      *Expr
	Inclusive bool
}

func (e *Expr) Accept(v Visitor)     { v.VisitExpr(e) }
func (e *Expr) TokenLiteral() string { return e.Token.Lexeme }
func (e *Expr) GetToken() token.Token {
	if e == nil {
		return token.Token{}
	}
	return e.Token
}

// IsRange reports whether the fragment is a `..` or `..=` range.
func (e *Expr) IsRange() bool {
	return e != nil && e.Range != nil
}

func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	if e.Range != nil {
		op := ".."
		if e.Range.Inclusive {
			op = "..="
		}
		return e.Range.Low.String() + op + e.Range.High.String()
	}
	return e.Source
}

// Pattern is the binding of one clause: one name, or a pair.
// Paren records whether a pair was written as `(k, v)`.
type Pattern struct {
	Token token.Token
	Names []string
	Paren bool
}

func (p *Pattern) Accept(v Visitor)     { v.VisitPattern(p) }
func (p *Pattern) TokenLiteral() string { return p.Token.Lexeme }
func (p *Pattern) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// Binds reports whether name is bound by the pattern. The blank
// identifier binds nothing.
func (p *Pattern) Binds(name string) bool {
	if name == "_" {
		return false
	}
	for _, n := range p.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (p *Pattern) String() string {
	switch len(p.Names) {
	case 1:
		return p.Names[0]
	case 2:
		if p.Paren {
			return "(" + p.Names[0] + ", " + p.Names[1] + ")"
		}
		return p.Names[0] + ", " + p.Names[1]
	}
	return ""
}
