// Package rt is the runtime that generated comprehensions call into:
// integer ranges, non-consuming views of named bindings, the flattening
// join of the lazy form, and the ordered containers of the eager sinks.
package rt

import "iter"

// Integer is any integer type a range can count over.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Range yields lo, lo+1, ..., hi-1. It is empty when lo >= hi.
func Range[T Integer](lo, hi T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := lo; i < hi; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// RangeInclusive yields lo, lo+1, ..., hi. It stops at hi without
// overflowing when hi is the largest value of T.
func RangeInclusive[T Integer](lo, hi T) iter.Seq[T] {
	return func(yield func(T) bool) {
		if lo > hi {
			return
		}
		for i := lo; ; i++ {
			if !yield(i) || i == hi {
				return
			}
		}
	}
}

// Values yields the elements of s in order.
func Values[S ~[]E, E any](s S) iter.Seq[E] {
	return func(yield func(E) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}
}

// Flatten joins a sequence of sequences into one.
func Flatten[E any](seqs iter.Seq[iter.Seq[E]]) iter.Seq[E] {
	return func(yield func(E) bool) {
		for seq := range seqs {
			for v := range seq {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Flatten2 is Flatten for pair sequences.
func Flatten2[K, V any](seqs iter.Seq[iter.Seq2[K, V]]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Collect drains seq into a slice.
func Collect[E any](seq iter.Seq[E]) []E {
	var out []E
	for v := range seq {
		out = append(out, v)
	}
	return out
}
