// Package comprehend compiles comprehension expressions into Go source.
//
// A comprehension is written as
//
//	Mapping IterClause*
//
// where the mapping is `key`, `key, value`, or either of those followed by
// `if cond else key[, value]`, and every clause is
// `for pattern in iterable [if cond]`. The first clause is the outermost
// loop. Iterables are Go expressions or integer ranges `lo..hi` and
// `lo..=hi`.
//
// Eager targets produce an immediately invoked function literal that fills
// and returns a container; the lazy target produces an iter.Seq (or
// iter.Seq2 for key/value mappings). Generated code may import
// github.com/funvibe/comprehend/pkg/rt.
package comprehend

import (
	"strings"
	"time"

	"github.com/funvibe/comprehend/internal/analyzer"
	"github.com/funvibe/comprehend/internal/backend"
	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/lexer"
	"github.com/funvibe/comprehend/internal/logger"
	"github.com/funvibe/comprehend/internal/parser"
	"github.com/funvibe/comprehend/internal/pipeline"
	"github.com/funvibe/comprehend/internal/prettyprinter"
	"github.com/funvibe/comprehend/internal/sink"
)

// Options sets the Go types of the generated code and the duplication
// policy of the eager backend. Empty types default to `any`.
type Options = config.Options

// Target selects the eager container or the lazy sequence.
type Target = sink.Target

// Kind is an eager container kind.
type Kind = sink.Kind

// DupPolicy places the duplicates of inner named bindings.
type DupPolicy = config.DupPolicy

const (
	PerPass = config.PerPass
	Hoisted = config.Hoisted
)

// Container kinds.
const (
	KindVec        = sink.Vec
	KindVecDeque   = sink.VecDeque
	KindLinkedList = sink.LinkedList
	KindHashSet    = sink.HashSet
	KindBTreeSet   = sink.BTreeSet
	KindHashMap    = sink.HashMap
	KindBTreeMap   = sink.BTreeMap
	KindBinaryHeap = sink.BinaryHeap
)

// Lazy target.
var LazyTarget = sink.LazyTarget

// Eager returns the target building a container of kind k.
func Eager(k Kind) Target { return sink.EagerTarget(k) }

// ParseTarget resolves a target from a container name or "lazy".
func ParseTarget(name string) (Target, error) { return sink.ParseTarget(name) }

// Result is one compiled comprehension.
type Result struct {
	// Code is a Go expression.
	Code string
	// Type is the Go type of Code.
	Type string
	// Imports lists the packages Code refers to, sorted.
	Imports []string
}

// Compile compiles src for target.
func Compile(src string, target Target, opts Options) (*Result, error) {
	return CompileFile("", src, target, opts)
}

// CompileFile is Compile with a file name used in diagnostics.
func CompileFile(file, src string, target Target, opts Options) (*Result, error) {
	start := time.Now()
	ctx := pipeline.NewContext(src, target, opts)
	ctx.FilePath = file
	ctx = newPipeline().Run(ctx)
	logger.LogCompile(file, target.String(), len(ctx.Errors), time.Since(start))

	if len(ctx.Errors) > 0 {
		return nil, newError(ctx.Errors)
	}
	return &Result{Code: ctx.Output, Type: ctx.OutputType, Imports: ctx.Imports}, nil
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.AnalyzerProcessor{},
		&backend.CodegenProcessor{},
	)
}

func Vec(src string, opts Options) (*Result, error) {
	return Compile(src, Eager(KindVec), opts)
}

func VecDeque(src string, opts Options) (*Result, error) {
	return Compile(src, Eager(KindVecDeque), opts)
}

func LinkedList(src string, opts Options) (*Result, error) {
	return Compile(src, Eager(KindLinkedList), opts)
}

func HashSet(src string, opts Options) (*Result, error) {
	return Compile(src, Eager(KindHashSet), opts)
}

func BTreeSet(src string, opts Options) (*Result, error) {
	return Compile(src, Eager(KindBTreeSet), opts)
}

func HashMap(src string, opts Options) (*Result, error) {
	return Compile(src, Eager(KindHashMap), opts)
}

func BTreeMap(src string, opts Options) (*Result, error) {
	return Compile(src, Eager(KindBTreeMap), opts)
}

func BinaryHeap(src string, opts Options) (*Result, error) {
	return Compile(src, Eager(KindBinaryHeap), opts)
}

// Lazy compiles src into a sequence expression.
func Lazy(src string, opts Options) (*Result, error) {
	return Compile(src, LazyTarget, opts)
}

// parseOnly runs the front end and returns the context with its tree.
func parseOnly(src string) *pipeline.PipelineContext {
	ctx := pipeline.NewContext(src, LazyTarget, Options{})
	return pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
}

// Tree returns an indented dump of the parse tree of src.
func Tree(src string) (string, error) {
	ctx := parseOnly(src)
	if len(ctx.Errors) > 0 {
		return "", newError(ctx.Errors)
	}
	p := prettyprinter.NewTreePrinter()
	ctx.AstRoot.Accept(p)
	return p.String(), nil
}

// Format reprints src in canonical form, breaking clauses onto their own
// lines when the flat form is wider than width. A width of 0 never breaks.
func Format(src string, width int) (string, error) {
	ctx := parseOnly(src)
	if len(ctx.Errors) > 0 {
		return "", newError(ctx.Errors)
	}
	p := prettyprinter.NewCodePrinterWithWidth(width)
	ctx.AstRoot.Accept(p)
	return strings.TrimRight(p.String(), "\n"), nil
}
