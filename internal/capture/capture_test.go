package capture_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/comprehend/internal/ast"
	"github.com/funvibe/comprehend/internal/capture"
	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/diagnostics"
	"github.com/funvibe/comprehend/internal/lexer"
	"github.com/funvibe/comprehend/internal/parser"
	"github.com/funvibe/comprehend/internal/pipeline"
)

func parse(t *testing.T, input string) *ast.Comprehension {
	t.Helper()
	ctx := &pipeline.PipelineContext{SourceCode: input}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("parse %q: %v", input, ctx.Errors[0])
	}
	return ctx.AstRoot
}

func iterable(t *testing.T, src string) *ast.Expr {
	t.Helper()
	return parse(t, "x for x in "+src).Clauses[0].ForIn.Iterable
}

func TestClassify(t *testing.T) {
	tests := []struct {
		src   string
		class capture.Class
		form  capture.Form
	}{
		{"0..10", capture.RangeLike, capture.FormRange},
		{"a..=b", capture.RangeLike, capture.FormRange},
		{"xs", capture.NamedBinding, capture.FormCollection},
		{"(xs)", capture.NamedBinding, capture.FormCollection},
		{"slices.Values(xs)", capture.PreIterated, capture.FormSeq},
		{"maps.Keys(m)", capture.PreIterated, capture.FormSeq},
		{"rt.Range(0, n)", capture.PreIterated, capture.FormSeq},
		{"list.All()", capture.PreIterated, capture.FormSeq},
		{"slices.Values(xs).Filter(f)", capture.PreIterated, capture.FormSeq},
		{"slices.Values[[]int](xs)", capture.PreIterated, capture.FormSeq},
		{"slices.Clone(xs)", capture.PreIterated, capture.FormCollection},
		{"rt.Clone(m)", capture.PreIterated, capture.FormCollection},
		{"&xs", capture.Reference, capture.FormCollection},
		{"[]int{1, 2, 3}", capture.Computed, capture.FormCollection},
		{"load(path)", capture.Computed, capture.FormCollection},
		{"cfg.Items", capture.Computed, capture.FormCollection},
		{"grid[i]", capture.Computed, capture.FormCollection},
		{"xs[1:]", capture.Computed, capture.FormCollection},
		{`"héllo"`, capture.Computed, capture.FormCollection},
		{"<-ch", capture.Computed, capture.FormCollection},
		{"42", capture.Unsupported, capture.FormCollection},
		{"a && b", capture.Unsupported, capture.FormCollection},
		{"!ok", capture.Unsupported, capture.FormCollection},
		{"nil", capture.Unsupported, capture.FormCollection},
		{"func(yield func(int) bool) {}", capture.Unsupported, capture.FormCollection},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			class, form := capture.Classify(iterable(t, tt.src))
			if class != tt.class || form != tt.form {
				t.Errorf("Classify(%s) = %s/%s, want %s/%s", tt.src, class, form, tt.class, tt.form)
			}
		})
	}
}

func TestEagerDuplicatesInnerBindings(t *testing.T) {
	c := parse(t, "x * y for x in xs for y in ys for z in 0..3")
	a, err := capture.AnalyzeEager(c, config.PerPass)
	if err != nil {
		t.Fatal(err)
	}

	want := []capture.Decision{capture.UseDirectly, capture.Duplicate, capture.UseDirectly}
	for i, d := range want {
		if a.Levels[i].Decision != d {
			t.Errorf("level %d: decision %s, want %s", i, a.Levels[i].Decision, d)
		}
	}
	if len(a.Shadows) != 1 {
		t.Fatalf("expected one shadow, got %+v", a.Shadows)
	}
	s := a.Shadows[0]
	if s.Kind != capture.ShadowClone || s.Name != "ys" || s.Scope != 0 || s.Level != 1 {
		t.Errorf("unexpected shadow %+v", s)
	}
}

func TestEagerRangesNeverDuplicated(t *testing.T) {
	c := parse(t, "i + j for i in 0..n for j in i..=n")
	for _, dup := range []config.DupPolicy{config.PerPass, config.Hoisted} {
		a, err := capture.AnalyzeEager(c, dup)
		if err != nil {
			t.Fatal(err)
		}
		if len(a.Shadows) != 0 {
			t.Errorf("%s: ranges produced shadows %+v", dup, a.Shadows)
		}
	}
}

func TestEagerHoistedScopes(t *testing.T) {
	c := parse(t, "x for row in rows for x in row for y in ys for z in ys")
	a, err := capture.AnalyzeEager(c, config.Hoisted)
	if err != nil {
		t.Fatal(err)
	}

	// row is owned by level 0, ys is free. ys appears twice but is
	// declared once.
	if len(a.Shadows) != 2 {
		t.Fatalf("expected two shadows, got %+v", a.Shadows)
	}
	if s := a.Shadows[0]; s.Name != "ys" || s.Scope != capture.Outside || s.Kind != capture.ShadowRebind {
		t.Errorf("unexpected first shadow %+v", s)
	}
	if s := a.Shadows[1]; s.Name != "row" || s.Scope != 0 {
		t.Errorf("unexpected second shadow %+v", s)
	}
}

func TestEagerReferenceRejectedBelowOutermost(t *testing.T) {
	c := parse(t, "x + y for x in xs for y in &ys")
	_, err := capture.AnalyzeEager(c, config.PerPass)
	if err == nil || err.Code != diagnostics.ErrC001 {
		t.Fatalf("expected C001, got %v", err)
	}
	if !strings.Contains(err.Message, "non-outermost") {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestEagerOutermostReference(t *testing.T) {
	c := parse(t, "x for x in &xs")
	a, err := capture.AnalyzeEager(c, config.PerPass)
	if err != nil {
		t.Fatal(err)
	}
	if a.Levels[0].Source != "xs" {
		t.Errorf("expected reference operand xs, got %q", a.Levels[0].Source)
	}
}

func TestEagerComputedUsedDirectly(t *testing.T) {
	c := parse(t, "x + y for x in xs for y in []int{1, 2}")
	a, err := capture.AnalyzeEager(c, config.PerPass)
	if err != nil {
		t.Fatal(err)
	}
	if a.Levels[1].Decision != capture.UseDirectly || len(a.Shadows) != 0 {
		t.Errorf("computed iterable should be used directly: %+v", a)
	}
}

func TestUnsupported(t *testing.T) {
	for _, input := range []string{"x for x in 42", "x for x in a || b"} {
		c := parse(t, input)
		if _, err := capture.AnalyzeEager(c, config.PerPass); err == nil || err.Code != diagnostics.ErrU001 {
			t.Errorf("%q eager: expected U001, got %v", input, err)
		}
		if _, err := capture.AnalyzeLazy(c); err == nil || err.Code != diagnostics.ErrU001 {
			t.Errorf("%q lazy: expected U001, got %v", input, err)
		}
	}
}

func TestLazyShapes(t *testing.T) {
	tests := []struct {
		input string
		code  diagnostics.ErrorCode
	}{
		{"x for x in xs", ""},
		{"x for x in 0..3", ""},
		{"x for x in slices.Values(xs)", ""},
		{"x for x in []int{1}", diagnostics.ErrU001},
		{"x for x in &xs", diagnostics.ErrU001},
		{"x for x in xs for y in &ys", diagnostics.ErrC001},
	}
	for _, tt := range tests {
		_, err := capture.AnalyzeLazy(parse(t, tt.input))
		switch {
		case tt.code == "" && err != nil:
			t.Errorf("%q: unexpected error %v", tt.input, err)
		case tt.code != "" && (err == nil || err.Code != tt.code):
			t.Errorf("%q: expected %s, got %v", tt.input, tt.code, err)
		}
	}
}

func TestLazySnapshots(t *testing.T) {
	c := parse(t, "x + y + z for x in xs for row in rows for y in row for z in xs")
	a, err := capture.AnalyzeLazy(c)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, s := range a.Shadows {
		got = append(got, shadowString(s))
	}
	want := []string{
		"-1 snapshot xs",
		"-1 snapshot rows",
		"0 rebind rows",
		"1 snapshot row",
		"2 rebind xs",
	}
	if strings.Join(got, "; ") != strings.Join(want, "; ") {
		t.Errorf("shadows\n got: %v\nwant: %v", got, want)
	}

	if a.Levels[0].Decision != capture.Snapshot {
		t.Errorf("outermost binding should be snapshotted, got %s", a.Levels[0].Decision)
	}
	for i := 1; i < 4; i++ {
		if a.Levels[i].Decision != capture.Duplicate {
			t.Errorf("level %d should be duplicated, got %s", i, a.Levels[i].Decision)
		}
	}
}

func TestAnalysisIsFresh(t *testing.T) {
	c := parse(t, "x for x in xs for y in ys")
	a1, _ := capture.AnalyzeEager(c, config.PerPass)
	a2, _ := capture.AnalyzeEager(c, config.PerPass)
	a1.Shadows[0].Name = "mutated"
	if a2.Shadows[0].Name != "ys" {
		t.Error("analyses share state")
	}
}

func shadowString(s capture.Shadow) string {
	kind := map[capture.ShadowKind]string{
		capture.ShadowClone:    "clone",
		capture.ShadowRebind:   "rebind",
		capture.ShadowSnapshot: "snapshot",
	}[s.Kind]
	return fmt.Sprintf("%d %s %s", s.Scope, kind, s.Name)
}
