package lexer

import (
	"github.com/funvibe/comprehend/internal/diagnostics"
	"github.com/funvibe/comprehend/internal/pipeline"
	"github.com/funvibe/comprehend/internal/token"
)

// TokenStream buffers every token of the input so the parser can look ahead
// arbitrarily far when splitting expression fragments.
type TokenStream struct {
	tokens []token.Token
	pos    int
}

// NewTokenStream drains l up to and including EOF.
func NewTokenStream(l *Lexer) *TokenStream {
	ts := &TokenStream{}
	for {
		tok := l.NextToken()
		ts.tokens = append(ts.tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return ts
}

func (ts *TokenStream) Next() token.Token {
	tok := ts.Peek(0)
	if ts.pos < len(ts.tokens)-1 {
		ts.pos++
	}
	return tok
}

func (ts *TokenStream) Peek(n int) token.Token {
	i := ts.pos + n
	if i >= len(ts.tokens) {
		i = len(ts.tokens) - 1
	}
	return ts.tokens[i]
}

// Tokens returns the buffered tokens, EOF included.
func (ts *TokenStream) Tokens() []token.Token {
	return ts.tokens
}

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	stream := NewTokenStream(New(ctx.SourceCode))
	for _, tok := range stream.Tokens() {
		if tok.Type == token.ILLEGAL {
			msg, _ := tok.Literal.(string)
			if msg == "" {
				msg = "illegal token " + tok.Lexeme
			}
			ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, tok, msg))
		}
	}
	ctx.TokenStream = stream
	return ctx
}
