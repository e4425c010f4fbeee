package sink

import (
	"strings"
	"testing"
)

func TestTableCoversEveryKind(t *testing.T) {
	for _, k := range Kinds {
		p := Lookup(k)
		if p.Kind != k {
			t.Errorf("%s: row kind %s", k, p.Kind)
		}
		if p.Arity != 1 && p.Arity != 2 {
			t.Errorf("%s: arity %d", k, p.Arity)
		}
		if !strings.Contains(p.Insert, "$S") || !strings.Contains(p.Insert, "$k") {
			t.Errorf("%s: insert %q does not use the sink and key", k, p.Insert)
		}
		if (p.Arity == 2) != strings.Contains(p.Insert, "$v") {
			t.Errorf("%s: insert %q disagrees with arity %d", k, p.Insert, p.Arity)
		}
	}
}

func TestArities(t *testing.T) {
	pairs := map[Kind]bool{HashMap: true, BTreeMap: true}
	for _, k := range Kinds {
		want := 1
		if pairs[k] {
			want = 2
		}
		if got := Lookup(k).Arity; got != want {
			t.Errorf("%s arity = %d, want %d", k, got, want)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"vec", Vec},
		{"slice", Vec},
		{"vec-deque", VecDeque},
		{"linked_list", LinkedList},
		{"set", HashSet},
		{" Ordered_Set ", BTreeSet},
		{"hash_map", HashMap},
		{"b_tree_map", BTreeMap},
		{"priority_queue", BinaryHeap},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %s, %v; want %s", tt.name, got, err, tt.want)
		}
	}
	if _, err := ParseKind("bag"); err == nil || !strings.Contains(err.Error(), "unknown container kind") {
		t.Errorf("expected unknown kind error, got %v", err)
	}
}

func TestParseTarget(t *testing.T) {
	for _, name := range []string{"lazy", "iter", "seq"} {
		tgt, err := ParseTarget(name)
		if err != nil || !tgt.Lazy {
			t.Errorf("ParseTarget(%q) = %v, %v", name, tgt, err)
		}
	}
	tgt, err := ParseTarget("heap")
	if err != nil || tgt.Lazy || tgt.Kind != BinaryHeap || tgt.String() != "binary_heap" {
		t.Errorf("ParseTarget(heap) = %v, %v", tgt, err)
	}
	if _, err := ParseTarget("bag"); err == nil || !strings.HasSuffix(err.Error(), "(or lazy)") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if len(names) != len(Kinds) {
		t.Fatalf("got %d names", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestExpand(t *testing.T) {
	vars := map[string]string{"S": "__sink", "k": "x", "v": "y", "K": "string", "V": "int"}
	if got := Expand(Lookup(BTreeMap).Insert, vars); got != "__sink.Put(x, y)" {
		t.Errorf("insert = %q", got)
	}
	if got := Expand(Lookup(HashMap).Type, vars); got != "map[string]int" {
		t.Errorf("type = %q", got)
	}
	if got := Expand(Lookup(Vec).Insert, map[string]string{"S": "__sink", "k": "$S"}); got != "__sink = append(__sink, $S)" {
		t.Errorf("substituted text was expanded again: %q", got)
	}
}
