package comprehend_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/comprehend/pkg/comprehend"
)

var ints = comprehend.Options{Elem: "int", Key: "string", Value: "int"}

func expectCompiled(t *testing.T, res *comprehend.Result, err error, fragments ...string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range fragments {
		if !strings.Contains(res.Code, f) {
			t.Errorf("expected %q in\n%s", f, res.Code)
		}
	}
}

func expectErrorCode(t *testing.T, err error, code string) *comprehend.Error {
	t.Helper()
	var cerr *comprehend.Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *comprehend.Error, got %T (%v)", err, err)
	}
	if cerr.Code() != code {
		t.Errorf("expected %s, got %s", code, cerr.Error())
	}
	return cerr
}

func TestScenarioSequence(t *testing.T) {
	res, err := comprehend.Vec("x for x in []int{1, 2, 3}", ints)
	expectCompiled(t, res, err, "for _, x := range []int{1, 2, 3} {", "__sink = append(__sink, x)")
	if len(res.Imports) != 0 {
		t.Errorf("unexpected imports %v", res.Imports)
	}
}

func TestScenarioElseOverRange(t *testing.T) {
	res, err := comprehend.Vec("x if x > 0 else 0 for x in -2..3", ints)
	expectCompiled(t, res, err,
		"for x := range rt.Range(-2, 3) {",
		"if x > 0 {",
		"__sink = append(__sink, 0)",
	)
}

func TestScenarioMapLastWriteWins(t *testing.T) {
	res, err := comprehend.HashMap(`k, v for v in []int{1, 2} for k in []string{"a", "b"}`, ints)
	expectCompiled(t, res, err, "func() map[string]int {", "__sink[k] = v")
	if strings.Index(res.Code, "range []int{1, 2}") > strings.Index(res.Code, `range []string{"a", "b"}`) {
		t.Errorf("clauses emitted out of order:\n%s", res.Code)
	}
}

func TestScenarioDuplicatePerPass(t *testing.T) {
	res, err := comprehend.Vec("x + y for x in xs for y in xs if y > x", ints)
	expectCompiled(t, res, err, "\t\txs := rt.Clone(xs)\n\t\tfor _, y := range xs {")
	if strings.Count(res.Code, "rt.Clone") != 1 {
		t.Errorf("expected exactly one duplicate:\n%s", res.Code)
	}
}

func TestScenarioReferenceRejected(t *testing.T) {
	res, err := comprehend.Vec("x + y for x in xs for y in &ys", ints)
	if res != nil {
		t.Errorf("expected no output, got\n%s", res.Code)
	}
	cerr := expectErrorCode(t, err, "C001")
	if !strings.Contains(cerr.Error(), "obtain a value-type source instead") {
		t.Errorf("unexpected message: %s", cerr.Error())
	}
}

func TestEntryPoints(t *testing.T) {
	tests := []struct {
		name    string
		compile func(string, comprehend.Options) (*comprehend.Result, error)
		src     string
		marker  string
	}{
		{"vec", comprehend.Vec, "x for x in xs", "[]int{}"},
		{"vec_deque", comprehend.VecDeque, "x for x in xs", "rt.NewDeque[int]()"},
		{"linked_list", comprehend.LinkedList, "x for x in xs", "rt.NewLinkedList[int]()"},
		{"hash_set", comprehend.HashSet, "x for x in xs", "map[int]struct{}{}"},
		{"b_tree_set", comprehend.BTreeSet, "x for x in xs", "rt.NewOrderedSet[int]()"},
		{"hash_map", comprehend.HashMap, "k, v for k, v in m", "map[string]int{}"},
		{"b_tree_map", comprehend.BTreeMap, "k, v for k, v in m", "rt.NewOrderedMap[string, int]()"},
		{"binary_heap", comprehend.BinaryHeap, "x for x in xs", "rt.NewPriorityQueue[int]()"},
		{"lazy", comprehend.Lazy, "x for x in xs", "iter.Seq[int]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.compile(tt.src, ints)
			expectCompiled(t, res, err, tt.marker)
		})
	}
}

func TestCompileWithParsedTarget(t *testing.T) {
	target, err := comprehend.ParseTarget("ordered-set")
	if err != nil {
		t.Fatal(err)
	}
	res, err := comprehend.Compile("s for s in ss", target, comprehend.Options{Elem: "string"})
	expectCompiled(t, res, err, "rt.NewOrderedSet[string]()")

	if _, err := comprehend.ParseTarget("bag"); err == nil {
		t.Errorf("expected an error for an unknown container")
	}
}

func TestDefaultTypes(t *testing.T) {
	res, err := comprehend.Vec("x for x in xs", comprehend.Options{})
	expectCompiled(t, res, err, "func() []any {")
}

func TestErrorsCarryFileAndPosition(t *testing.T) {
	_, err := comprehend.CompileFile("pairs.comp", "x for x in xs", comprehend.Eager(comprehend.KindHashMap), ints)
	cerr := expectErrorCode(t, err, "A001")
	d := cerr.Diagnostics[0]
	if d.File != "pairs.comp" || d.Line != 1 || d.Column != 1 {
		t.Errorf("unexpected position %s:%d:%d", d.File, d.Line, d.Column)
	}
	if !strings.HasPrefix(cerr.Error(), "pairs.comp:1:1: [A001]") {
		t.Errorf("unexpected rendering: %s", cerr.Error())
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		src    string
		target comprehend.Target
		code   string
	}{
		{"x for x xs", comprehend.Eager(comprehend.KindVec), "P004"},
		{"x for x in xs)", comprehend.Eager(comprehend.KindVec), "P001"},
		{"x for (a, b, c) in xs", comprehend.Eager(comprehend.KindVec), "P003"},
		{"x for x in 1", comprehend.Eager(comprehend.KindVec), "U001"},
		{"x for x in f()", comprehend.LazyTarget, "U001"},
		{"k, v for k in ks", comprehend.Eager(comprehend.KindVec), "A001"},
	}
	for _, tt := range tests {
		_, err := comprehend.Compile(tt.src, tt.target, ints)
		expectErrorCode(t, err, tt.code)
	}
}

func TestHoistedPolicy(t *testing.T) {
	opts := ints
	opts.Dup = comprehend.Hoisted
	res, err := comprehend.Vec("x + y for x in xs for y in ys", opts)
	expectCompiled(t, res, err, "\tys := ys\n", "for _, y := range rt.Clone(ys) {")
}

func TestTree(t *testing.T) {
	tree, err := comprehend.Tree("x for x in 0..3 if x > 1")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Comprehension (depth 1)", "Pattern: x", "Range", "Cond:"} {
		if !strings.Contains(tree, want) {
			t.Errorf("expected %q in\n%s", want, tree)
		}
	}
	if _, err := comprehend.Tree("x for"); err == nil {
		t.Errorf("expected a parse error")
	}
}

func TestFormat(t *testing.T) {
	got, err := comprehend.Format("x*y   for x in xs  for y in ys if  x != y", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != "x*y for x in xs for y in ys if x != y" {
		t.Errorf("unexpected format %q", got)
	}

	broken, err := comprehend.Format("x*y for x in xs for y in ys if x != y", 10)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(broken, "\n") != 2 {
		t.Errorf("expected one line per clause, got\n%s", broken)
	}
}

func TestDeterministic(t *testing.T) {
	src := "k, v if v > 0 else k, 0 for k, v in m for w in ws if w != k"
	first, err := comprehend.BTreeMap(src, ints)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := comprehend.BTreeMap(src, ints)
		if again.Code != first.Code {
			t.Fatalf("output changed between runs")
		}
	}
}
