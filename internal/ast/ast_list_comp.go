package ast

import "github.com/funvibe/comprehend/internal/token"

// Comprehension is the root of one parsed comprehension.
// Syntax: mapping for pattern in iterable [if cond] ...
// Example: x * 2 for x in xs if x > 1
type Comprehension struct {
	Token   token.Token // first token of the mapping
	Mapping *Mapping
	Clauses []*IterClause // outermost first
}

func (c *Comprehension) Accept(v Visitor)     { v.VisitComprehension(c) }
func (c *Comprehension) TokenLiteral() string { return c.Token.Lexeme }
func (c *Comprehension) GetToken() token.Token {
	if c == nil {
		return token.Token{}
	}
	return c.Token
}

// Depth is the number of nesting levels.
func (c *Comprehension) Depth() int {
	return len(c.Clauses)
}

// Mapping is the comprehension body: `key[, value] [if cond else key[, value]]`.
type Mapping struct {
	Token     token.Token
	LeftKey   *Expr
	LeftValue *Expr        // nil unless the output is a key/value pair
	RightExpr *MappingElse // nil without an else branch
}

func (m *Mapping) Accept(v Visitor)     { v.VisitMapping(m) }
func (m *Mapping) TokenLiteral() string { return m.Token.Lexeme }
func (m *Mapping) GetToken() token.Token {
	if m == nil {
		return token.Token{}
	}
	return m.Token
}

// HasValue reports whether the body produces key/value pairs.
func (m *Mapping) HasValue() bool {
	return m.LeftValue != nil
}

// MappingElse is the `if conditions else else_key[, else_value]` alternative.
type MappingElse struct {
	Token      token.Token // the 'if' token
	Conditions *Expr
	ElseKey    *Expr
	ElseValue  *Expr
}

func (me *MappingElse) Accept(v Visitor)     { v.VisitMappingElse(me) }
func (me *MappingElse) TokenLiteral() string { return me.Token.Lexeme }
func (me *MappingElse) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}

// ForInClause binds Pattern to each element produced by Iterable.
type ForInClause struct {
	Token    token.Token // the 'for' token
	Pattern  *Pattern
	Iterable *Expr
}

func (fc *ForInClause) Accept(v Visitor)     { v.VisitForInClause(fc) }
func (fc *ForInClause) TokenLiteral() string { return fc.Token.Lexeme }
func (fc *ForInClause) GetToken() token.Token {
	if fc == nil {
		return token.Token{}
	}
	return fc.Token
}

// BareIfClause is the optional filter of one level.
type BareIfClause struct {
	Token     token.Token // the 'if' token
	Condition *Expr
}

func (bc *BareIfClause) Accept(v Visitor)     { v.VisitBareIfClause(bc) }
func (bc *BareIfClause) TokenLiteral() string { return bc.Token.Lexeme }
func (bc *BareIfClause) GetToken() token.Token {
	if bc == nil {
		return token.Token{}
	}
	return bc.Token
}

// IterClause is one nesting level.
type IterClause struct {
	ForIn *ForInClause
	If    *BareIfClause // nil when the level has no filter
}

func (ic *IterClause) Accept(v Visitor)     { v.VisitIterClause(ic) }
func (ic *IterClause) TokenLiteral() string { return ic.ForIn.TokenLiteral() }
func (ic *IterClause) GetToken() token.Token {
	if ic == nil {
		return token.Token{}
	}
	return ic.ForIn.GetToken()
}
