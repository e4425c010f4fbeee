package cache

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/funvibe/comprehend/internal/config"
)

func openMem(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKeyDependsOnEveryInput(t *testing.T) {
	opts := config.DefaultOptions()
	base := Key("x for x in xs", "vec", opts)
	if base != Key("x for x in xs", "vec", opts) {
		t.Fatal("key is not stable")
	}

	hoisted := opts
	hoisted.Dup = config.Hoisted
	typed := opts
	typed.Elem = "int"
	for name, other := range map[string]string{
		"source":  Key("x for x in ys", "vec", opts),
		"target":  Key("x for x in xs", "lazy", opts),
		"dup":     Key("x for x in xs", "vec", hoisted),
		"elem":    Key("x for x in xs", "vec", typed),
		"framing": Key("x for x in xsvec", "", opts),
	} {
		if other == base {
			t.Errorf("changing %s kept the same key", name)
		}
	}
}

func TestGetPut(t *testing.T) {
	c := openMem(t)
	key := Key("x for x in xs", "vec_deque", config.DefaultOptions())

	e, err := c.Get(key)
	if err != nil || e != nil {
		t.Fatalf("expected a miss, got %v, %v", e, err)
	}

	imports := []string{config.RuntimeImportPath}
	if err := c.Put(key, Entry{Code: "func() {}()", Type: "[]int", Imports: imports}); err != nil {
		t.Fatal(err)
	}
	e, err = c.Get(key)
	if err != nil || e == nil {
		t.Fatalf("expected a hit, got %v, %v", e, err)
	}
	if e.Code != "func() {}()" || e.Type != "[]int" || !reflect.DeepEqual(e.Imports, imports) {
		t.Errorf("unexpected entry %+v", e)
	}

	if err := c.Put(key, Entry{Code: "replaced"}); err != nil {
		t.Fatal(err)
	}
	e, _ = c.Get(key)
	if e.Code != "replaced" || e.Imports != nil {
		t.Errorf("Put did not replace the entry: %+v", e)
	}
	if n, _ := c.Len(); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
}

func TestPrune(t *testing.T) {
	c := openMem(t)
	c.Put("a", Entry{Code: "1"})
	c.Put("b", Entry{Code: "2"})

	n, err := c.Prune(time.Now().Add(-time.Hour))
	if err != nil || n != 0 {
		t.Errorf("pruned %d fresh entries (%v)", n, err)
	}
	n, err = c.Prune(time.Now().Add(time.Hour))
	if err != nil || n != 2 {
		t.Errorf("pruned %d entries, want 2 (%v)", n, err)
	}
}

func TestPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put("k", Entry{Code: "code", Imports: []string{"iter"}}); err != nil {
		t.Fatal(err)
	}
	c.Close()

	c, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	e, err := c.Get("k")
	if err != nil || e == nil || e.Code != "code" {
		t.Errorf("entry lost after reopen: %+v, %v", e, err)
	}
}
