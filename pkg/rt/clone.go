package rt

import "reflect"

// Clone returns a copy of v that the caller can consume without touching
// the original: slices and maps are copied one level deep, any other value
// is returned as is.
func Clone[T any](v T) T {
	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(cp, rv)
		return cp.Interface().(T)
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		cp := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		it := rv.MapRange()
		for it.Next() {
			cp.SetMapIndex(it.Key(), it.Value())
		}
		return cp.Interface().(T)
	}
	return v
}

// Snapshot returns a read-only view of v taken now. A slice is clipped to
// its current length so later appends by the owner never show through;
// other values are returned as is.
func Snapshot[T any](v T) T {
	rv := reflect.ValueOf(&v).Elem()
	if rv.Kind() == reflect.Slice && !rv.IsNil() {
		return rv.Slice3(0, rv.Len(), rv.Len()).Interface().(T)
	}
	return v
}
