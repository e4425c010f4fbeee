package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/comprehend/internal/diagnostics"
	"github.com/funvibe/comprehend/internal/lexer"
	"github.com/funvibe/comprehend/internal/parser"
	"github.com/funvibe/comprehend/internal/pipeline"
)

// parseWithErrors runs the lexer+parser and returns all diagnostic errors.
func parseWithErrors(input string) (*pipeline.PipelineContext, []*diagnostics.DiagnosticError) {
	ctx := &pipeline.PipelineContext{SourceCode: input}
	lp := &lexer.LexerProcessor{}
	ctx = lp.Process(ctx)
	pp := &parser.ParserProcessor{}
	ctx = pp.Process(ctx)
	return ctx, ctx.Errors
}

// expectError asserts an error with the given code and that no tree was built.
func expectError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	ctx, errs := parseWithErrors(input)
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	if ctx.AstRoot != nil {
		t.Errorf("expected no tree after a syntax error\ninput: %s", input)
	}
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, strings.Join(msgs, "\n"), input)
	return nil
}

// ---------------------------------------------------------------------------
// P001: Unexpected token
// ---------------------------------------------------------------------------

func TestP001_TrailingComma(t *testing.T) {
	expectError(t, "a, b, c for a in xs", diagnostics.ErrP001)
}

func TestP001_RangeInMapping(t *testing.T) {
	e := expectError(t, "0..3", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "ranges are only allowed") {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestP001_UnbalancedBrackets(t *testing.T) {
	expectError(t, "f(x for x in xs", diagnostics.ErrP001)
	expectError(t, "x) for x in xs", diagnostics.ErrP001)
	expectError(t, "x for x in xs[0]]", diagnostics.ErrP001)
}

func TestP001_TrailingInput(t *testing.T) {
	expectError(t, "x for x in xs if a if b", diagnostics.ErrP001)
	expectError(t, "x for x in 0..3..5", diagnostics.ErrP001)
}

func TestP001_IllegalCharacter(t *testing.T) {
	expectError(t, "x @ y for x in xs", diagnostics.ErrP001)
}

// ---------------------------------------------------------------------------
// P002: Malformed host expression
// ---------------------------------------------------------------------------

func TestP002_MalformedExpression(t *testing.T) {
	e := expectError(t, "x + for x in xs", diagnostics.ErrP002)
	if e.Line != 1 {
		t.Errorf("expected error on line 1, got %d", e.Line)
	}
}

func TestP002_PositionMapped(t *testing.T) {
	e := expectError(t, "x for x in xs if x + / 2", diagnostics.ErrP002)
	if e.Column < len("x for x in xs if ") {
		t.Errorf("expected column inside the filter fragment, got %d", e.Column)
	}
}

func TestP002_RangeInsideCall(t *testing.T) {
	expectError(t, "x for x in f(0..3)", diagnostics.ErrP002)
}

// ---------------------------------------------------------------------------
// P003: Malformed pattern
// ---------------------------------------------------------------------------

func TestP003_MalformedPatterns(t *testing.T) {
	inputs := []string{
		"x for (a, b, c) in xs",
		"x for a.b in xs",
		"x for &a in xs",
		"x for (a, (b, c)) in xs",
		"x for 1 in xs",
		"x for a, a in xs",
	}
	for _, input := range inputs {
		expectError(t, input, diagnostics.ErrP003)
	}
}

func TestP003_PairOverRange(t *testing.T) {
	expectError(t, "i for i, j in 0..3", diagnostics.ErrP003)
}

func TestP003_MissingPattern(t *testing.T) {
	expectError(t, "x for in xs", diagnostics.ErrP003)
}

// ---------------------------------------------------------------------------
// P004: Missing keyword or fragment
// ---------------------------------------------------------------------------

func TestP004_MissingIn(t *testing.T) {
	e := expectError(t, "x for x xs", diagnostics.ErrP004)
	if !strings.Contains(e.Message, "'in'") {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestP004_MissingElse(t *testing.T) {
	e := expectError(t, "x if x > 0 for x in xs", diagnostics.ErrP004)
	if !strings.Contains(e.Message, "'else'") {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestP004_MissingFragments(t *testing.T) {
	expectError(t, "", diagnostics.ErrP004)
	expectError(t, "for x in xs", diagnostics.ErrP004)
	expectError(t, "x for x in", diagnostics.ErrP004)
	expectError(t, "x for x in xs if", diagnostics.ErrP004)
	expectError(t, "x for x in ..3", diagnostics.ErrP004)
	expectError(t, "x for x in 0..", diagnostics.ErrP004)
	expectError(t, "k, for k in xs", diagnostics.ErrP004)
}

func TestErrorFormat(t *testing.T) {
	_, errs := parseWithErrors("x for x xs")
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d", len(errs))
	}
	got := errs[0].Error()
	if !strings.HasPrefix(got, "<input>:1:") || !strings.Contains(got, "[P004]") {
		t.Errorf("unexpected rendering %q", got)
	}
}
