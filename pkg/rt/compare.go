package rt

import (
	"cmp"
	"fmt"
	"reflect"

	"github.com/emirpasic/gods/utils"
)

// Compare orders two values of the same basic kind: integers, floats and
// strings, including named types over them. It panics on anything else.
// It is the comparator of every ordered container.
func Compare(a, b interface{}) int {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != vb.Kind() {
		panic(fmt.Sprintf("rt: cannot compare %T with %T", a, b))
	}
	switch va.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(va.Int(), vb.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(va.Uint(), vb.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(va.Float(), vb.Float())
	case reflect.String:
		return cmp.Compare(va.String(), vb.String())
	case reflect.Bool:
		x, y := va.Bool(), vb.Bool()
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	panic(fmt.Sprintf("rt: %T is not ordered", a))
}

var _ utils.Comparator = Compare

// reversed flips a comparator so a min-heap pops its largest element.
func reversed(c utils.Comparator) utils.Comparator {
	return func(a, b interface{}) int { return c(b, a) }
}

// typed converts the untyped values a gods container hands back.
func typed[E any](vs []interface{}) []E {
	out := make([]E, len(vs))
	for i, v := range vs {
		if e, ok := v.(E); ok {
			out[i] = e
		}
	}
	return out
}
