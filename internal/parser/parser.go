package parser

import (
	"fmt"
	goparser "go/parser"
	goscanner "go/scanner"
	gotoken "go/token"
	"strings"

	"github.com/funvibe/comprehend/internal/ast"
	"github.com/funvibe/comprehend/internal/diagnostics"
	"github.com/funvibe/comprehend/internal/pipeline"
	"github.com/funvibe/comprehend/internal/token"
)

// Parser builds a Comprehension from a token stream. Host expression
// fragments are delimited by keywords and commas at bracket depth 0 and
// handed to go/parser for their shape.
type Parser struct {
	stream pipeline.TokenStream
	ctx    *pipeline.PipelineContext

	curToken  token.Token
	peekToken token.Token
}

func New(stream pipeline.TokenStream, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{stream: stream, ctx: ctx}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.stream.Next()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) addError(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	p.ctx.AddError(diagnostics.NewErrorf(code, tok, format, args...))
}

// ParseComprehension parses `Mapping IterClause* EOF`. It returns nil
// after reporting the first syntax error.
func (p *Parser) ParseComprehension() *ast.Comprehension {
	comp := &ast.Comprehension{Token: p.curToken}

	mapping, ok := p.parseMapping()
	if !ok {
		return nil
	}
	comp.Mapping = mapping

	for p.curTokenIs(token.FOR) {
		clause, ok := p.parseIterClause()
		if !ok {
			return nil
		}
		comp.Clauses = append(comp.Clauses, clause)
	}

	if !p.curTokenIs(token.EOF) {
		p.unexpected(p.curToken, "after comprehension")
		return nil
	}
	return comp
}

func (p *Parser) parseMapping() (*ast.Mapping, bool) {
	m := &ast.Mapping{Token: p.curToken}

	key, ok := p.parseExpr("mapping")
	if !ok {
		return nil, false
	}
	m.LeftKey = key

	if p.curTokenIs(token.COMMA) {
		p.nextToken()
		if m.LeftValue, ok = p.parseExpr("mapping value"); !ok {
			return nil, false
		}
	}

	if p.curTokenIs(token.IF) {
		if m.RightExpr, ok = p.parseMappingElse(); !ok {
			return nil, false
		}
	}
	return m, true
}

func (p *Parser) parseMappingElse() (*ast.MappingElse, bool) {
	me := &ast.MappingElse{Token: p.curToken}
	p.nextToken() // if

	var ok bool
	if me.Conditions, ok = p.parseExpr("condition"); !ok {
		return nil, false
	}

	if !p.curTokenIs(token.ELSE) {
		p.addError(diagnostics.ErrP004, p.curToken, "expected 'else' after mapping condition, got %s", describe(p.curToken))
		return nil, false
	}
	p.nextToken() // else

	if me.ElseKey, ok = p.parseExpr("else branch"); !ok {
		return nil, false
	}
	if p.curTokenIs(token.COMMA) {
		p.nextToken()
		if me.ElseValue, ok = p.parseExpr("else value"); !ok {
			return nil, false
		}
	}
	return me, true
}

func (p *Parser) parseIterClause() (*ast.IterClause, bool) {
	forIn := &ast.ForInClause{Token: p.curToken}
	p.nextToken() // for

	pattern, ok := p.parsePattern(forIn.Token)
	if !ok {
		return nil, false
	}
	forIn.Pattern = pattern
	p.nextToken() // in

	if forIn.Iterable, ok = p.parseIterable(); !ok {
		return nil, false
	}
	if forIn.Iterable.IsRange() && len(pattern.Names) != 1 {
		p.addError(diagnostics.ErrP003, pattern.Token,
			"range %s yields single values; pattern %s needs one name", forIn.Iterable, pattern)
		return nil, false
	}

	clause := &ast.IterClause{ForIn: forIn}
	if p.curTokenIs(token.IF) {
		cond := &ast.BareIfClause{Token: p.curToken}
		p.nextToken() // if
		if cond.Condition, ok = p.parseExpr("filter"); !ok {
			return nil, false
		}
		clause.If = cond
	}
	return clause, true
}

// parsePattern reads the tokens between `for` and `in`. On success the
// current token is `in`.
func (p *Parser) parsePattern(forTok token.Token) (*ast.Pattern, bool) {
	var toks []token.Token
	for !p.curTokenIs(token.IN) {
		switch p.curToken.Type {
		case token.EOF, token.FOR, token.IF, token.ELSE:
			if len(toks) == 0 {
				p.addError(diagnostics.ErrP003, forTok, "expected pattern after 'for', got %s", describe(p.curToken))
			} else {
				p.addError(diagnostics.ErrP004, p.curToken, "expected 'in' after pattern, got %s", describe(p.curToken))
			}
			return nil, false
		}
		toks = append(toks, p.curToken)
		p.nextToken()
	}
	if len(toks) == 0 {
		p.addError(diagnostics.ErrP003, p.curToken, "expected pattern between 'for' and 'in'")
		return nil, false
	}

	pat := &ast.Pattern{Token: toks[0]}
	switch {
	case len(toks) == 1 && toks[0].Type == token.IDENT:
		pat.Names = []string{toks[0].Lexeme}
	case len(toks) == 3 && isPair(toks):
		pat.Names = []string{toks[0].Lexeme, toks[2].Lexeme}
	case len(toks) == 5 && toks[0].Type == token.LPAREN && toks[4].Type == token.RPAREN && isPair(toks[1:4]):
		pat.Names = []string{toks[1].Lexeme, toks[3].Lexeme}
		pat.Paren = true
	default:
		p.addError(diagnostics.ErrP003, toks[0],
			"malformed pattern %q: expected a name or a (key, value) pair", p.source(toks))
		return nil, false
	}

	if len(pat.Names) == 2 && pat.Names[0] == pat.Names[1] && pat.Names[0] != "_" {
		p.addError(diagnostics.ErrP003, toks[0], "pattern binds %s twice", pat.Names[0])
		return nil, false
	}
	return pat, true
}

func isPair(toks []token.Token) bool {
	return toks[0].Type == token.IDENT && toks[1].Type == token.COMMA && toks[2].Type == token.IDENT
}

// parseIterable parses `Expr`, `Expr .. Expr` or `Expr ..= Expr`.
func (p *Parser) parseIterable() (*ast.Expr, bool) {
	start := p.curToken
	lowToks, ok := p.readFragment()
	if !ok {
		return nil, false
	}

	if !p.curTokenIs(token.DOTDOT) && !p.curTokenIs(token.DOTDOTEQ) {
		return p.exprFrom(lowToks, "iterable")
	}

	opTok := p.curToken
	if len(lowToks) == 0 {
		p.addError(diagnostics.ErrP004, opTok, "expected lower bound before %s", opTok.Lexeme)
		return nil, false
	}
	low, ok := p.exprFrom(lowToks, "range bound")
	if !ok {
		return nil, false
	}
	p.nextToken() // .. or ..=

	highToks, ok := p.readFragment()
	if !ok {
		return nil, false
	}
	if len(highToks) == 0 {
		p.addError(diagnostics.ErrP004, p.curToken, "expected upper bound after %s", opTok.Lexeme)
		return nil, false
	}
	high, ok := p.exprFrom(highToks, "range bound")
	if !ok {
		return nil, false
	}

	all := append(append(append([]token.Token{}, lowToks...), opTok), highToks...)
	return &ast.Expr{
		Token:  start,
		Source: p.source(all),
		Range: &ast.RangeBounds{
			Low:       low,
			High:      high,
			Inclusive: opTok.Type == token.DOTDOTEQ,
		},
	}, true
}

func (p *Parser) parseExpr(what string) (*ast.Expr, bool) {
	toks, ok := p.readFragment()
	if !ok {
		return nil, false
	}
	return p.exprFrom(toks, what)
}

// isBoundary reports whether a token ends a fragment at bracket depth 0.
func isBoundary(t token.TokenType) bool {
	switch t {
	case token.EOF, token.FOR, token.IN, token.IF, token.ELSE, token.COMMA, token.DOTDOT, token.DOTDOTEQ:
		return true
	}
	return false
}

// readFragment consumes tokens up to the next boundary at bracket depth 0.
// The boundary becomes the current token.
func (p *Parser) readFragment() ([]token.Token, bool) {
	var toks []token.Token
	var closers []token.TokenType
	for {
		tok := p.curToken
		if len(closers) == 0 && isBoundary(tok.Type) {
			return toks, true
		}
		switch {
		case tok.Type == token.EOF:
			p.addError(diagnostics.ErrP001, tok, "unexpected end of input, expected %s", closers[len(closers)-1])
			return nil, false
		case tok.Type.IsOpening():
			closers = append(closers, tok.Type.Closer())
		case tok.Type.IsClosing():
			if len(closers) == 0 || closers[len(closers)-1] != tok.Type {
				p.unexpected(tok, "")
				return nil, false
			}
			closers = closers[:len(closers)-1]
		}
		toks = append(toks, tok)
		p.nextToken()
	}
}

// exprFrom turns fragment tokens into an Expr, checking the text is a
// well-formed Go expression.
func (p *Parser) exprFrom(toks []token.Token, what string) (*ast.Expr, bool) {
	if len(toks) == 0 {
		p.addError(diagnostics.ErrP004, p.curToken, "expected %s expression, got %s", what, describe(p.curToken))
		return nil, false
	}

	src := p.source(toks)
	node, err := goparser.ParseExprFrom(gotoken.NewFileSet(), "", src, goparser.SkipObjectResolution)
	if err != nil {
		p.addError(diagnostics.ErrP002, hostErrorPos(toks[0], err), "malformed %s %q: %s", what, src, hostErrorMsg(err))
		return nil, false
	}
	return &ast.Expr{Token: toks[0], Source: src, Node: node}, true
}

// source returns the exact source text spanned by toks.
func (p *Parser) source(toks []token.Token) string {
	first, last := toks[0], toks[len(toks)-1]
	code := p.ctx.SourceCode
	if first.Offset <= last.End && last.End <= len(code) && strings.HasPrefix(code[first.Offset:], first.Lexeme) {
		return code[first.Offset:last.End]
	}
	lexemes := make([]string, len(toks))
	for i, t := range toks {
		lexemes[i] = t.Lexeme
	}
	return strings.Join(lexemes, " ")
}

// hostErrorPos maps the position of a go/parser error inside a fragment
// back to the comprehension source.
func hostErrorPos(start token.Token, err error) token.Token {
	list, ok := err.(goscanner.ErrorList)
	if !ok || len(list) == 0 {
		return start
	}
	pos := list[0].Pos
	if pos.Line <= 1 {
		return token.Token{Line: start.Line, Column: start.Column + pos.Column - 1}
	}
	return token.Token{Line: start.Line + pos.Line - 1, Column: pos.Column}
}

func hostErrorMsg(err error) string {
	if list, ok := err.(goscanner.ErrorList); ok && len(list) > 0 {
		return list[0].Msg
	}
	return err.Error()
}

func (p *Parser) unexpected(tok token.Token, where string) {
	msg := fmt.Sprintf("unexpected %s", describe(tok))
	if where != "" {
		msg += " " + where
	}
	if tok.Type == token.DOTDOT || tok.Type == token.DOTDOTEQ {
		msg += "; ranges are only allowed as a for-clause iterable"
	}
	p.addError(diagnostics.ErrP001, tok, "%s", msg)
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}
