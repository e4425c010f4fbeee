package backend

import (
	"sort"

	"github.com/funvibe/comprehend/internal/diagnostics"
	"github.com/funvibe/comprehend/internal/logger"
	"github.com/funvibe/comprehend/internal/pipeline"
	"github.com/funvibe/comprehend/internal/token"
)

// CodegenProcessor implements pipeline.Processor to run a Backend
type CodegenProcessor struct {
	// Backend overrides the one selected from the context's target.
	Backend Backend
}

// NewCodegenProcessor creates a new pipeline step for the given backend
func NewCodegenProcessor(b Backend) *CodegenProcessor {
	return &CodegenProcessor{Backend: b}
}

func (p *CodegenProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't emit anything
	if ctx.AstRoot == nil || ctx.Analysis == nil || len(ctx.Errors) > 0 {
		return ctx
	}

	b := p.Backend
	if b == nil {
		b = New(ctx.Target, ctx.Options)
	}

	res, err := b.Generate(ctx.AstRoot, ctx.Analysis)
	if err != nil {
		ctx.AddError(diagnostics.NewError(diagnostics.ErrI001, token.Token{}, err.Error()))
		return ctx
	}

	ctx.Output = res.Code
	ctx.OutputType = res.Type
	ctx.Imports = append([]string(nil), res.Imports...)
	sort.Strings(ctx.Imports)
	logger.Debug("generated code", "file", ctx.FilePath, "backend", b.Name(), "bytes", len(res.Code))
	return ctx
}
