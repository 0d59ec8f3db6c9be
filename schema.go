package docbind

import (
	"fmt"
	"strings"

	"github.com/reoring/docbind/codec"
	"github.com/reoring/docbind/naming"
)

// Schema is the ordered, read-only list of Definitions of an entity type.
// A Schema is shared by every instance of its type and safe for concurrent
// use.
type Schema struct {
	defs       []*Definition
	wrap       string
	inferWrap  bool
	namespace  string
	convention naming.Convention
}

// Definitions returns the definitions in declaration order.
func (s *Schema) Definitions() []*Definition {
	return append([]*Definition(nil), s.defs...)
}

// Lookup finds a definition by accessor or document name. Later
// definitions win, so a child schema can redeclare a parent property.
func (s *Schema) Lookup(name string) (*Definition, bool) {
	for i := len(s.defs) - 1; i >= 0; i-- {
		d := s.defs[i]
		if d.accessor == name || d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// WrapName returns the document wrap for an entity of the given type name:
// the explicit wrap, the inferred snake_case type name, or "".
func (s *Schema) WrapName(typeName string) string {
	if s.wrap != "" {
		return s.wrap
	}
	if s.inferWrap && typeName != "" {
		return inferredTag(typeName)
	}
	return ""
}

// Namespace is the XML default namespace URI declared by the schema.
func (s *Schema) Namespace() string { return s.namespace }

// SchemaBuilder declares a Schema. Configuration problems are collected and
// reported together by Build.
type SchemaBuilder struct {
	parent     *Schema
	defs       []*Definition
	wrap       string
	inferWrap  bool
	namespace  string
	convention naming.Convention
	problems   []string
}

// Object starts a new schema.
func Object() *SchemaBuilder { return &SchemaBuilder{} }

// Inherit starts a schema whose definitions are parent's followed by the
// ones declared on the returned builder. Wrap, namespace and convention are
// inherited unless overridden.
func Inherit(parent *Schema) *SchemaBuilder {
	b := &SchemaBuilder{parent: parent}
	if parent != nil {
		b.wrap = parent.wrap
		b.inferWrap = parent.inferWrap
		b.namespace = parent.namespace
		b.convention = parent.convention
	}
	return b
}

// Wrap sets the document wrap name.
func (b *SchemaBuilder) Wrap(name string) *SchemaBuilder {
	b.wrap = name
	b.inferWrap = false
	return b
}

// WrapInferred derives the wrap name from the entity type name in
// snake_case.
func (b *SchemaBuilder) WrapInferred() *SchemaBuilder {
	b.wrap = ""
	b.inferWrap = true
	return b
}

// XMLNamespace declares the default namespace written on XML elements of
// this type.
func (b *SchemaBuilder) XMLNamespace(uri string) *SchemaBuilder {
	b.namespace = uri
	return b
}

// Convention sets the naming convention for accessor-derived XML tags.
func (b *SchemaBuilder) Convention(c naming.Convention) *SchemaBuilder {
	b.convention = c
	return b
}

// Property declares a scalar or nested property.
func (b *SchemaBuilder) Property(name string) *PropertyStep {
	return b.add(&Definition{accessor: name})
}

// Collection declares an ordered collection property.
func (b *SchemaBuilder) Collection(name string) *PropertyStep {
	return b.add(&Definition{accessor: name, collection: true})
}

// Hash declares a keyed map property.
func (b *SchemaBuilder) Hash(name string) *PropertyStep {
	return b.add(&Definition{accessor: name, hash: true})
}

func (b *SchemaBuilder) add(d *Definition) *PropertyStep {
	b.defs = append(b.defs, d)
	return &PropertyStep{b: b, d: d}
}

// Build finalizes the schema.
func (b *SchemaBuilder) Build() (*Schema, error) {
	var iss Issues
	for _, p := range b.problems {
		iss = AppendIssues(iss, issueAt("", CodeConfiguration, "", p, nil))
	}
	s := &Schema{
		wrap:       b.wrap,
		inferWrap:  b.inferWrap,
		namespace:  b.namespace,
		convention: b.convention,
	}
	if b.parent != nil {
		s.defs = append(s.defs, b.parent.defs...)
	}
	for _, d := range b.defs {
		for _, p := range d.validate() {
			iss = AppendIssues(iss, issueAt("/"+d.accessor, CodeConfiguration, d.accessor, p, nil))
		}
		cp := *d
		if cp.convention == nil {
			cp.convention = b.convention
		}
		if (cp.collection || cp.hash) && !cp.hasDefault && !cp.required {
			cp.hasDefault = true
			cp.defaultFunc = emptyDefault(cp.collection)
		}
		s.defs = append(s.defs, &cp)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return s, nil
}

// emptyDefault produces a fresh empty collection or map per use.
func emptyDefault(collection bool) DefaultFunc {
	if collection {
		return func(Call) (any, error) { return []any{}, nil }
	}
	return func(Call) (any, error) { return map[string]any{}, nil }
}

// MustBuild is Build that panics on configuration errors.
func (b *SchemaBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// PropertyStep configures the property most recently declared.
type PropertyStep struct {
	b *SchemaBuilder
	d *Definition
}

func (p *PropertyStep) problem(format string, args ...any) *PropertyStep {
	p.b.problems = append(p.b.problems, fmt.Sprintf("%s: ", p.d.accessor)+fmt.Sprintf(format, args...))
	return p
}

// From overrides the document name. "@name" declares an attribute and "."
// declares the element content.
func (p *PropertyStep) From(name string) *PropertyStep {
	switch {
	case name == ".":
		p.d.content = true
	case strings.HasPrefix(name, "@"):
		p.d.attribute = true
		p.d.from = name[1:]
	default:
		p.d.from = name
	}
	return p
}

// As sets the sought type: a Coercer, a *Type, or ArrayOf either.
func (p *PropertyStep) As(x any) *PropertyStep {
	switch v := x.(type) {
	case arrayMarker:
		p.d.collection = true
		return p.As(v.elem)
	case *Type:
		if v == nil {
			return p.problem("nil type")
		}
		p.d.typ = v
	case Coercer:
		p.d.coercer = v
	default:
		return p.problem("unsupported sought type %T", x)
	}
	return p
}

// Coerce installs plain decode/encode functions as the coercion hook.
func (p *PropertyStep) Coerce(decode, encode func(any) (any, error)) *PropertyStep {
	p.d.coercer = codec.Func(p.d.accessor, decode, encode)
	return p
}

// In nests the property's fragment under a wrap element or key.
func (p *PropertyStep) In(wrap string) *PropertyStep {
	p.d.wrap = wrap
	return p
}

// Default sets the value used when the fragment is missing on read or the
// value is nil on write.
func (p *PropertyStep) Default(v any) *PropertyStep {
	p.d.hasDefault = true
	p.d.defaultVal = v
	p.d.defaultFunc = nil
	return p
}

// DefaultFunc sets a producer for the default value.
func (p *PropertyStep) DefaultFunc(fn DefaultFunc) *PropertyStep {
	p.d.hasDefault = true
	p.d.defaultVal = nil
	p.d.defaultFunc = fn
	return p
}

// Required makes a missing fragment an error on read.
func (p *PropertyStep) Required() *PropertyStep {
	p.d.required = true
	return p
}

// ReadOnly renders the property but never parses it.
func (p *PropertyStep) ReadOnly() *PropertyStep {
	p.d.readOnly = true
	return p
}

// WriteOnly parses the property but never renders it.
func (p *PropertyStep) WriteOnly() *PropertyStep {
	p.d.writeOnly = true
	return p
}

// Instance installs the factory for nested objects. A nil result falls back
// to the current value and then to a fresh instance.
func (p *PropertyStep) Instance(fn InstanceFunc) *PropertyStep {
	p.d.instance = fn
	return p
}

// Class picks the nested type per fragment.
func (p *PropertyStep) Class(fn ClassFunc) *PropertyStep {
	p.d.class = fn
	return p
}

// Sync reuses the nested objects already held by the entity.
func (p *PropertyStep) Sync() *PropertyStep {
	p.d.sync = true
	return p
}

// UseAttributes stores a map in XML attributes.
func (p *PropertyStep) UseAttributes() *PropertyStep {
	p.d.useAttributes = true
	return p
}

// Getter replaces the entity read of the property; it runs against the
// execution context (the decorator when there is one).
func (p *PropertyStep) Getter(fn GetterFunc) *PropertyStep {
	p.d.getter = fn
	return p
}

// Setter replaces the entity write of the property; it runs against the
// execution context (the decorator when there is one).
func (p *PropertyStep) Setter(fn SetterFunc) *PropertyStep {
	p.d.setter = fn
	return p
}

// Reader replaces the whole read of the property.
func (p *PropertyStep) Reader(fn ReaderFunc) *PropertyStep {
	p.d.reader = fn
	return p
}

// Writer replaces the whole write of the property.
func (p *PropertyStep) Writer(fn WriterFunc) *PropertyStep {
	p.d.writer = fn
	return p
}

// Attribute stores the property in an XML attribute.
func (p *PropertyStep) Attribute() *PropertyStep {
	p.d.attribute = true
	return p
}

// Content stores the property in the XML element text.
func (p *PropertyStep) Content() *PropertyStep {
	p.d.content = true
	return p
}

// Namespace prefixes the XML tag.
func (p *PropertyStep) Namespace(prefix string) *PropertyStep {
	p.d.namespace = prefix
	return p
}

// CDATA writes XML text as a CDATA section.
func (p *PropertyStep) CDATA() *PropertyStep {
	p.d.cdata = true
	return p
}

// RenderNil writes nil values instead of skipping them.
func (p *PropertyStep) RenderNil() *PropertyStep {
	p.d.renderNil = true
	return p
}

// OmitEmpty skips zero values on write.
func (p *PropertyStep) OmitEmpty() *PropertyStep {
	p.d.omitEmpty = true
	return p
}

// KeyValue turns a map into a descriptor map: repeated items holding one
// key and one value.
func (p *PropertyStep) KeyValue(key, value Descriptor) *PropertyStep {
	p.d.hash = true
	p.d.key = &key
	p.d.value = &value
	return p
}

// Attrs is KeyValue(Attr(key), Attr(value)).
func (p *PropertyStep) Attrs(key, value string) *PropertyStep {
	return p.KeyValue(Attr(key), Attr(value))
}

// Extend represents nested objects through schema.
func (p *PropertyStep) Extend(schema *Schema) *PropertyStep {
	if schema == nil {
		return p.problem("nil schema")
	}
	p.d.extend = schema
	return p
}

// Decorate wraps nested objects in a Decorator before mapping them.
func (p *PropertyStep) Decorate(fn func(any) Decorator) *PropertyStep {
	p.d.decorate = fn
	return p
}

// Property, Collection, Hash, Build and MustBuild continue the schema being
// declared, so property steps chain without going back to the builder.
func (p *PropertyStep) Property(name string) *PropertyStep   { return p.b.Property(name) }
func (p *PropertyStep) Collection(name string) *PropertyStep { return p.b.Collection(name) }
func (p *PropertyStep) Hash(name string) *PropertyStep       { return p.b.Hash(name) }
func (p *PropertyStep) Build() (*Schema, error)              { return p.b.Build() }
func (p *PropertyStep) MustBuild() *Schema                   { return p.b.MustBuild() }
