package prettyprinter_test

import (
	"strings"
	"testing"

	"github.com/funvibe/comprehend/pkg/comprehend"
)

func TestFormatRoundTrip(t *testing.T) {
	inputs := []string{
		"x for x in xs",
		"k, v for (k, v) in m if v > 0",
		"x if x > 0 else -x for x in -3..=3",
		"f(x, y) for x in xs if x%2 == 0 for y in ys if y != x",
		"[]int{1, 2} for _ in 0..2",
		"0",
	}
	for _, in := range inputs {
		once, err := comprehend.Format(in, 0)
		if err != nil {
			t.Fatalf("Format(%q): %v", in, err)
		}
		twice, err := comprehend.Format(once, 0)
		if err != nil {
			t.Fatalf("Format(%q): %v", once, err)
		}
		if once != twice {
			t.Errorf("not a fixed point: %q -> %q", once, twice)
		}

		tree1, _ := comprehend.Tree(in)
		tree2, _ := comprehend.Tree(once)
		if tree1 != tree2 {
			t.Errorf("reformatting %q changed the tree:\n%s\nvs\n%s", in, tree1, tree2)
		}
	}
}

func TestBrokenFormatReparses(t *testing.T) {
	src := "compute(a, b) for a in alphas if a != nil for b in betas if b.Ready()"
	broken, err := comprehend.Format(src, 20)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(broken, "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "    for a in") {
		t.Fatalf("unexpected layout\n%s", broken)
	}
	flat, err := comprehend.Format(broken, 0)
	if err != nil {
		t.Fatal(err)
	}
	if flat != src {
		t.Errorf("flat form %q, want %q", flat, src)
	}
}

func TestTreeShowsNodeKinds(t *testing.T) {
	tree, err := comprehend.Tree("k, v if ok else k, 0 for k in keys()")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Mapping",
		`Key: Ident "k"`,
		"MappingElse",
		`Value: BasicLit "0"`,
		`Iterable: CallExpr "keys()"`,
	} {
		if !strings.Contains(tree, want) {
			t.Errorf("expected %q in\n%s", want, tree)
		}
	}
}
