// Package hashdoc is the hash-like document adapter: an insertion-ordered,
// string-keyed map plus JSON encoding and decoding through go-json that keeps
// key order intact.
package hashdoc

import (
	"sort"
)

// Map is a string-keyed mapping that remembers insertion order. The zero
// value is not usable; call New.
type Map struct {
	keys   []string
	values map[string]any
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: map[string]any{}}
}

// Has reports whether key is present, even when its value is nil.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Get returns the value stored for key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores v under key. A key keeps the position of its first insertion.
func (m *Map) Set(key string, v any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string { return append([]string(nil), m.keys...) }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Range calls fn for every entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v any) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// ToMap converts m into plain Go maps and slices, recursively.
func (m *Map) ToMap() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = Plain(m.values[k])
	}
	return out
}

// Plain converts any *Map found in v into map[string]any, recursively.
func Plain(v any) any {
	switch t := v.(type) {
	case *Map:
		if t == nil {
			return nil
		}
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Plain(t[i])
		}
		return out
	}
	return v
}

// FromMap builds a Map from a plain map. Plain maps carry no order, so keys
// are sorted to keep traversal deterministic.
func FromMap(src map[string]any) *Map {
	m := New()
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.Set(k, Normalize(src[k]))
	}
	return m
}

// Normalize converts plain maps (including the map[any]any shape some YAML
// decoders produce) into *Map, recursively. Other values are returned as-is.
func Normalize(v any) any {
	switch t := v.(type) {
	case *Map:
		return t
	case map[string]any:
		return FromMap(t)
	case map[any]any:
		src := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			src[ks] = vv
		}
		return FromMap(src)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Normalize(t[i])
		}
		return out
	}
	return v
}
