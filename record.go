package docbind

import "sort"

// Record is a map-backed entity for schemas declared at runtime, for
// example from schema files. It satisfies Representable and exposes its
// properties by name.
type Record struct {
	typeName string
	schema   *Schema
	values   map[string]any
}

// NewRecord creates an empty Record represented through schema.
func NewRecord(schema *Schema) *Record {
	return &Record{schema: schema, values: map[string]any{}}
}

// NewNamedRecord is NewRecord with a type name used for inferred wraps.
func NewNamedRecord(typeName string, schema *Schema) *Record {
	r := NewRecord(schema)
	r.typeName = typeName
	return r
}

// RecordType describes Records of the given name and schema as a nested
// type. schema is called lazily so that types may refer to themselves.
func RecordType(name string, schema func() *Schema) *Type {
	return NewType(name, func() any { return NewNamedRecord(name, schema()) })
}

func (r *Record) RepresentationSchema() *Schema { return r.schema }

// TypeName is the name given at construction.
func (r *Record) TypeName() string { return r.typeName }

func (r *Record) GetProperty(name string) (any, error) { return r.values[name], nil }

func (r *Record) SetProperty(name string, v any) error {
	r.Set(name, v)
	return nil
}

// Get returns the value stored under name, or nil.
func (r *Record) Get(name string) any { return r.values[name] }

// Set stores v under name and returns r for chaining.
func (r *Record) Set(name string, v any) *Record {
	if r.values == nil {
		r.values = map[string]any{}
	}
	r.values[name] = v
	return r
}

// Names lists the stored property names in sorted order.
func (r *Record) Names() []string {
	out := make([]string, 0, len(r.values))
	for k := range r.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Plain converts r into nested maps and slices, recursively.
func (r *Record) Plain() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Record:
		if t == nil {
			return nil
		}
		return t.Plain()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = plainValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = plainValue(vv)
		}
		return out
	}
	return v
}
