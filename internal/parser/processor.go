package parser

import (
	"github.com/funvibe/comprehend/internal/diagnostics"
	"github.com/funvibe/comprehend/internal/logger"
	"github.com/funvibe/comprehend/internal/pipeline"
	"github.com/funvibe/comprehend/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		// This case should ideally not be hit if lexer runs first, but as a safeguard:
		ctx.AddError(diagnostics.NewError(diagnostics.ErrI001, token.Token{}, "parser: token stream is nil"))
		return ctx
	}
	if ctx.HasErrors() {
		return ctx
	}

	parser := New(ctx.TokenStream, ctx)
	ctx.AstRoot = parser.ParseComprehension()
	if ctx.AstRoot != nil {
		logger.Debug("parsed comprehension", "file", ctx.FilePath, "depth", ctx.AstRoot.Depth())
	}
	return ctx
}
