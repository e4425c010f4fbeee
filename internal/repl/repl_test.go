package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/funvibe/comprehend/pkg/comprehend"
)

func session() (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	return NewSession(&out, comprehend.Options{Elem: "int"}), &out
}

func TestEvalCompiles(t *testing.T) {
	s, out := session()
	if s.Eval("x for x in 0..3") {
		t.Fatal("compiling must not quit")
	}
	got := out.String()
	for _, want := range []string{`import "github.com/funvibe/comprehend/pkg/rt"`, "// []int", "for x := range rt.Range(0, 3) {"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in\n%s", want, got)
		}
	}
}

func TestEvalReportsErrors(t *testing.T) {
	s, out := session()
	s.Eval("x for x in xs for y in &ys")
	if !strings.Contains(out.String(), "[C001]") {
		t.Errorf("expected a capture error, got %s", out.String())
	}
}

func TestCommands(t *testing.T) {
	s, out := session()
	s.Eval(":kind ordered_map")
	if s.Target.String() != "b_tree_map" {
		t.Errorf("target = %s", s.Target)
	}
	s.Eval(":key string")
	s.Eval(":value float64")
	s.Eval(":dup hoisted")
	if s.Options.Key != "string" || s.Options.Value != "float64" || s.Options.Dup != comprehend.Hoisted {
		t.Errorf("options = %v", s.Options)
	}
	s.Eval(":lazy")
	if !s.Target.Lazy {
		t.Error(":lazy did not switch the target")
	}

	out.Reset()
	s.Eval(":kind bag")
	if !strings.Contains(out.String(), "unknown container kind") {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	s.Eval(":ast x for x in xs")
	if !strings.Contains(out.String(), "Comprehension (depth 1)") {
		t.Errorf("unexpected tree %q", out.String())
	}

	out.Reset()
	s.Eval(":fmt x   for x in xs")
	if strings.TrimSpace(out.String()) != "x for x in xs" {
		t.Errorf("unexpected format %q", out.String())
	}

	out.Reset()
	s.Eval(":nope")
	if !strings.Contains(out.String(), "Unknown command") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestQuit(t *testing.T) {
	s, _ := session()
	for _, in := range []string{":quit", ":q", "exit", "quit"} {
		if !s.Eval(in) {
			t.Errorf("%q did not quit", in)
		}
	}
	if s.Eval("   ") {
		t.Error("blank line quit")
	}
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"x for x in xs", false},
		{"f(x for x in g(", true},
		{"x for x in []int{1,", true},
		{`s for s in []string{"(", "[`, true},
		{`s for s in []string{"(", "["}`, false},
		{"'(' for x in xs", false},
		{"`raw", true},
	}
	for _, tt := range tests {
		if got := needsMoreInput(tt.input); got != tt.want {
			t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFilterCompletions(t *testing.T) {
	got := filterCompletions(":kind b_t")
	if len(got) != 2 || got[0] != ":kind b_tree_map" || got[1] != ":kind b_tree_set" {
		t.Errorf("unexpected completions %v", got)
	}
	if filterCompletions("x ") != nil {
		t.Error("expected no completion for an empty word")
	}
}
