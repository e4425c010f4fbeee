package rt_test

import (
	"iter"
	"testing"

	"github.com/funvibe/comprehend/pkg/rt"
)

// The bodies below are compiler output kept verbatim, so these tests pin
// the runtime behavior the backends rely on.

func TestGeneratedEagerDuplicatesPerPass(t *testing.T) {
	xs := []int{1, 2, 3}
	got := func() []int {
		__sink := []int{}
		for _, x := range xs {
			xs := rt.Clone(xs)
			for _, y := range xs {
				if y > x {
					__sink = append(__sink, x + y)
				}
			}
		}
		return __sink
	}()
	expectSlice(t, got, []int{3, 4, 5})
	expectSlice(t, xs, []int{1, 2, 3})
}

func TestGeneratedEagerOrderedMap(t *testing.T) {
	got := func() *rt.OrderedMap[string, int] {
		__sink := rt.NewOrderedMap[string, int]()
		for _, v := range []int{1, 2} {
			for _, k := range []string{"b", "a"} {
				__sink.Put(k, v)
			}
		}
		return __sink
	}()
	expectSlice(t, got.Keys(), []string{"a", "b"})
	expectSlice(t, got.Values(), []int{2, 2})
}

func TestGeneratedEagerHeap(t *testing.T) {
	got := func() *rt.PriorityQueue[int] {
		__sink := rt.NewPriorityQueue[int]()
		for x := range rt.RangeInclusive(1, 5) {
			if x%2 == 1 {
				__sink.Push(x * x)
			}
		}
		return __sink
	}()
	if v, _ := got.Pop(); v != 25 {
		t.Errorf("expected 25 on top, got %d", v)
	}
}

func TestGeneratedLazyIsRestartableAndNonConsuming(t *testing.T) {
	xs := make([]int, 0, 4)
	xs = append(xs, 1, 2)
	ys := []int{2, 3}
	seq := func() iter.Seq[int] {
		xs := rt.Snapshot(xs)
		ys := rt.Snapshot(ys)
		return rt.Flatten[int](func(yield func(iter.Seq[int]) bool) {
			for _, x := range xs {
				ys := ys
				__seq := iter.Seq[int](func(yield func(int) bool) {
					for _, y := range ys {
						if x != y {
							if !yield(x * y) {
								return
							}
						}
					}
				})
				if !yield(__seq) {
					return
				}
			}
		})
	}()

	xs = append(xs, 5)
	expectSlice(t, rt.Collect(seq), []int{2, 3, 6})
	expectSlice(t, rt.Collect(seq), []int{2, 3, 6})
	expectSlice(t, xs, []int{1, 2, 5})
	expectSlice(t, ys, []int{2, 3})
}

func TestGeneratedLazyPulls(t *testing.T) {
	pulled := 0
	seq := func() iter.Seq[int] {
		return iter.Seq[int](func(yield func(int) bool) {
			for i := range rt.Range(0, 1_000_000) {
				pulled++
				if !yield(i) {
					return
				}
			}
		})
	}()
	for v := range seq {
		if v == 2 {
			break
		}
	}
	if pulled != 3 {
		t.Errorf("expected 3 units of work, got %d", pulled)
	}
}

func TestGeneratedEagerElseBranch(t *testing.T) {
	got := func() []int {
		__sink := []int{}
		for x := range rt.Range(-2, 3) {
			if x > 0 {
				__sink = append(__sink, x)
			} else {
				__sink = append(__sink, 0)
			}
		}
		return __sink
	}()
	expectSlice(t, got, []int{0, 0, 0, 1, 2})
}
