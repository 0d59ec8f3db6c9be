package docbind

import (
	"fmt"
	"reflect"

	"github.com/reoring/docbind/codec"
	"github.com/reoring/docbind/naming"
)

// Format selects the document kind a Binding works against.
type Format int

const (
	FormatHash Format = iota
	FormatXML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatHash:
		return "hash"
	case FormatXML:
		return "xml"
	case FormatYAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Coercer is the coercion hook for scalar properties.
type Coercer = codec.Coercer

// Representable is implemented by entities that declare their own schema.
type Representable interface {
	RepresentationSchema() *Schema
}

// Decorator represents another object with its own schema. Hooks run
// against the decorator instead of the represented object.
type Decorator interface {
	Represented() any
	RepresentationSchema() *Schema
}

// Decorate pairs obj with schema without a dedicated decorator type.
func Decorate(obj any, schema *Schema) Decorator {
	return &decorated{obj: obj, schema: schema}
}

type decorated struct {
	obj    any
	schema *Schema
}

func (d *decorated) Represented() any              { return d.obj }
func (d *decorated) RepresentationSchema() *Schema { return d.schema }

// Type describes a nested entity type: how to construct an instance and,
// optionally, the schema used to represent it.
type Type struct {
	name   string
	newFn  func() any
	schema *Schema
}

// TypeOf describes T. New instances are *T (or a fresh *E when T is *E).
func TypeOf[T any]() *Type {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	elem := rt
	if rt.Kind() == reflect.Pointer {
		elem = rt.Elem()
	}
	return &Type{
		name:  elem.Name(),
		newFn: func() any { return reflect.New(elem).Interface() },
	}
}

// NewType describes a type by name and constructor. It is the hook for
// entities that are not Go structs, such as Records.
func NewType(name string, newFn func() any) *Type {
	return &Type{name: name, newFn: newFn}
}

// WithSchema returns a copy of t whose instances are represented through
// schema instead of their own RepresentationSchema.
func (t *Type) WithSchema(schema *Schema) *Type {
	cp := *t
	cp.schema = schema
	return &cp
}

// Name is the type name used for inferred wrap names.
func (t *Type) Name() string { return t.name }

// New constructs a fresh instance.
func (t *Type) New() any { return t.newFn() }

// Schema returns the schema attached with WithSchema, or nil.
func (t *Type) Schema() *Schema { return t.schema }

type arrayMarker struct{ elem any }

// ArrayOf marks a sought type as a collection of elem, for use with As.
func ArrayOf(elem any) any { return arrayMarker{elem: elem} }

// entity is an object resolved for one read or write pass.
type entity struct {
	represented any
	exec        any
	schema      *Schema
}

func resolveEntity(obj any) (entity, error) {
	switch v := obj.(type) {
	case nil:
		return entity{}, fmt.Errorf("docbind: nil entity")
	case Decorator:
		s := v.RepresentationSchema()
		if s == nil {
			return entity{}, fmt.Errorf("docbind: %T has no schema", obj)
		}
		return entity{represented: v.Represented(), exec: v, schema: s}, nil
	case Representable:
		s := v.RepresentationSchema()
		if s == nil {
			return entity{}, fmt.Errorf("docbind: %T has no schema", obj)
		}
		return entity{represented: obj, exec: obj, schema: s}, nil
	}
	return entity{}, fmt.Errorf("docbind: %T is neither Representable nor a Decorator", obj)
}

// typeName names the dynamic type of obj for inferred wraps.
func typeName(obj any) string {
	if n, ok := obj.(interface{ TypeName() string }); ok {
		return n.TypeName()
	}
	rt := reflect.TypeOf(obj)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil {
		return ""
	}
	return rt.Name()
}

func inferredTag(name string) string { return naming.TypeTag(name) }
