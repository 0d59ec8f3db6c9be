package convert

import (
	"fmt"
	"reflect"
	"sort"
)

// IsNil reports whether v is nil or a nil pointer, slice, map, interface,
// func or channel.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// IsEmpty reports whether v is nil, a zero value or an empty list or map.
func IsEmpty(v any) bool {
	if IsNil(v) {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() == 0
	}
	return rv.IsZero()
}

// IsList reports whether v is a slice or array.
func IsList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// Elements returns the elements of a slice or array.
func Elements(v any) ([]any, error) {
	if IsNil(v) {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// ElementRefs is like Elements but returns pointers to struct elements so
// that callers can mutate them in place.
func ElementRefs(v any) []any {
	if IsNil(v) {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		ev := rv.Index(i)
		if ev.Kind() == reflect.Struct && ev.CanAddr() {
			out[i] = ev.Addr().Interface()
			continue
		}
		out[i] = ev.Interface()
	}
	return out
}

// Entry is one key/value pair of a map.
type Entry struct {
	Key   string
	Value any
}

// Entries returns the pairs of a map sorted by key. Keys are rendered with
// fmt when they are not strings.
func Entries(v any) ([]Entry, error) {
	if IsNil(v) {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("expected a map, got %T", v)
	}
	out := make([]Entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		var ks string
		if k.Kind() == reflect.String {
			ks = k.String()
		} else {
			ks = fmt.Sprint(k.Interface())
		}
		out = append(out, Entry{Key: ks, Value: iter.Value().Interface()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
