package pipeline

import (
	"github.com/funvibe/comprehend/internal/ast"
	"github.com/funvibe/comprehend/internal/capture"
	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/diagnostics"
	"github.com/funvibe/comprehend/internal/sink"
	"github.com/funvibe/comprehend/internal/token"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// TokenStream is the lexer output as seen by the parser.
type TokenStream interface {
	// Next consumes and returns the next token; EOF repeats forever.
	Next() token.Token
	// Peek returns the token n positions ahead without consuming it.
	Peek(n int) token.Token
}

// PipelineContext carries one comprehension through lexing, parsing,
// analysis and code generation. It belongs to a single compilation and is
// never shared between goroutines.
type PipelineContext struct {
	SourceCode string
	FilePath   string

	Target  sink.Target
	Options config.Options

	TokenStream TokenStream
	AstRoot     *ast.Comprehension
	Analysis    *capture.Analysis

	// Output is the generated Go expression, OutputType its Go type and
	// Imports the packages it refers to, sorted.
	Output     string
	OutputType string
	Imports    []string

	Errors []*diagnostics.DiagnosticError
}

// NewContext prepares a context for compiling source to target.
func NewContext(source string, target sink.Target, opts config.Options) *PipelineContext {
	return &PipelineContext{
		SourceCode: source,
		Target:     target,
		Options:    opts.WithDefaults(),
	}
}

// AddError records a diagnostic, stamping the file path.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0
}
