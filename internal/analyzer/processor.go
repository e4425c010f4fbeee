package analyzer

import (
	"github.com/funvibe/comprehend/internal/logger"
	"github.com/funvibe/comprehend/internal/pipeline"
)

type AnalyzerProcessor struct{}

func (ap *AnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.HasErrors() {
		return ctx
	}

	analysis, err := Analyze(ctx.AstRoot, ctx.Target, ctx.Options.Dup)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Analysis = analysis
	logger.Debug("capture analysis", "file", ctx.FilePath, "target", ctx.Target.String(),
		"levels", len(analysis.Levels), "shadows", len(analysis.Shadows))
	return ctx
}
