// Package schemafile loads schemas declared in YAML files. Every type in a
// file is represented by docbind.Record values, so documents can be mapped
// without Go types, for example by the docbind CLI.
//
// A file lists types by name:
//
//	types:
//	  Band:
//	    wrap: band
//	    properties:
//	      - name: name
//	        required: true
//	      - name: members
//	        type: Member
//	        collection: true
//	  Member:
//	    properties:
//	      - name: name
//	      - name: instrument
//	        omit_empty: true
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/codec"
	"github.com/reoring/docbind/naming"
)

// File is the decoded form of a schema file.
type File struct {
	Types map[string]TypeSpec `yaml:"types"`
}

// TypeSpec declares one Record type.
type TypeSpec struct {
	Inherit      string         `yaml:"inherit"`
	Wrap         string         `yaml:"wrap"`
	WrapInferred bool           `yaml:"wrap_inferred"`
	Namespace    string         `yaml:"namespace"`
	Convention   string         `yaml:"convention"`
	Properties   []PropertySpec `yaml:"properties"`
}

// PropertySpec declares one property. Type is a scalar name (string, int,
// float, bool, time, date) or the name of another type in the file. Key and
// Value describe descriptor maps as "text:NAME", "attr:NAME", "content" or
// "tag_name".
type PropertySpec struct {
	Name          string `yaml:"name"`
	From          string `yaml:"from"`
	Type          string `yaml:"type"`
	Collection    bool   `yaml:"collection"`
	Map           bool   `yaml:"map"`
	Key           string `yaml:"key"`
	Value         string `yaml:"value"`
	In            string `yaml:"in"`
	Default       any    `yaml:"default"`
	Required      bool   `yaml:"required"`
	ReadOnly      bool   `yaml:"read_only"`
	WriteOnly     bool   `yaml:"write_only"`
	Attribute     bool   `yaml:"attribute"`
	Content       bool   `yaml:"content"`
	CDATA         bool   `yaml:"cdata"`
	XMLNamespace  string `yaml:"xml_namespace"`
	Sync          bool   `yaml:"sync"`
	UseAttributes bool   `yaml:"use_attributes"`
	RenderNil     bool   `yaml:"render_nil"`
	OmitEmpty     bool   `yaml:"omit_empty"`
}

var scalars = map[string]docbind.Coercer{
	"string": codec.String,
	"int":    codec.Int,
	"float":  codec.Float,
	"bool":   codec.Bool,
	"time":   codec.Time,
	"date":   codec.Date,
}

// Registry holds the schemas and types built from a file.
type Registry struct {
	specs   map[string]TypeSpec
	schemas map[string]*docbind.Schema
	types   map[string]*docbind.Type
}

// LoadFile reads and builds the schema file at path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load reads a schema file from r.
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and builds a schema file. Unknown keys are errors.
func Parse(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schemafile: empty document")
		}
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return Build(f)
}

// Build turns a decoded File into a Registry. Types may refer to each other
// and to themselves.
func Build(f File) (*Registry, error) {
	if len(f.Types) == 0 {
		return nil, errors.New("schemafile: no types declared")
	}
	reg := &Registry{
		specs:   f.Types,
		schemas: make(map[string]*docbind.Schema, len(f.Types)),
		types:   make(map[string]*docbind.Type, len(f.Types)),
	}
	for name := range f.Types {
		reg.types[name] = docbind.RecordType(name, func() *docbind.Schema { return reg.schemas[name] })
	}
	building := map[string]bool{}
	for _, name := range reg.Names() {
		if _, err := reg.build(name, building); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (r *Registry) build(name string, building map[string]bool) (*docbind.Schema, error) {
	if s, ok := r.schemas[name]; ok {
		return s, nil
	}
	spec, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("schemafile: unknown type %q", name)
	}
	if building[name] {
		return nil, fmt.Errorf("schemafile: type %s inherits from itself", name)
	}
	building[name] = true
	defer delete(building, name)

	b := docbind.Object()
	if spec.Inherit != "" {
		parent, err := r.build(spec.Inherit, building)
		if err != nil {
			return nil, err
		}
		b = docbind.Inherit(parent)
	}
	switch {
	case spec.Wrap != "":
		b.Wrap(spec.Wrap)
	case spec.WrapInferred:
		b.WrapInferred()
	}
	if spec.Namespace != "" {
		b.XMLNamespace(spec.Namespace)
	}
	if spec.Convention != "" {
		c, ok := naming.ByName(spec.Convention)
		if !ok {
			return nil, fmt.Errorf("schemafile: type %s: unknown convention %q", name, spec.Convention)
		}
		b.Convention(c)
	}
	for i, p := range spec.Properties {
		if err := r.declare(b, p); err != nil {
			return nil, fmt.Errorf("schemafile: type %s: property %d (%s): %w", name, i, p.Name, err)
		}
	}
	s, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("schemafile: type %s: %w", name, err)
	}
	r.schemas[name] = s
	return s, nil
}

func (r *Registry) declare(b *docbind.SchemaBuilder, p PropertySpec) error {
	if p.Collection && p.Map {
		return errors.New("collection and map are mutually exclusive")
	}
	var step *docbind.PropertyStep
	switch {
	case p.Collection:
		step = b.Collection(p.Name)
	case p.Map:
		step = b.Hash(p.Name)
	default:
		step = b.Property(p.Name)
	}
	if p.From != "" {
		step.From(p.From)
	}
	if p.Type != "" {
		if c, ok := scalars[strings.ToLower(p.Type)]; ok {
			step.As(c)
		} else if t, ok := r.types[p.Type]; ok {
			step.As(t)
		} else {
			return fmt.Errorf("unknown type %q", p.Type)
		}
	}
	if p.Key != "" || p.Value != "" {
		key, err := ParseDescriptor(p.Key)
		if err != nil {
			return fmt.Errorf("key: %w", err)
		}
		value, err := ParseDescriptor(p.Value)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		step.KeyValue(key, value)
	}
	if p.In != "" {
		step.In(p.In)
	}
	if p.Default != nil {
		step.Default(p.Default)
	}
	if p.XMLNamespace != "" {
		step.Namespace(p.XMLNamespace)
	}
	flags := []struct {
		on  bool
		set func() *docbind.PropertyStep
	}{
		{p.Required, step.Required},
		{p.ReadOnly, step.ReadOnly},
		{p.WriteOnly, step.WriteOnly},
		{p.Attribute, step.Attribute},
		{p.Content, step.Content},
		{p.CDATA, step.CDATA},
		{p.Sync, step.Sync},
		{p.UseAttributes, step.UseAttributes},
		{p.RenderNil, step.RenderNil},
		{p.OmitEmpty, step.OmitEmpty},
	}
	for _, f := range flags {
		if f.on {
			f.set()
		}
	}
	return nil
}

// ParseDescriptor reads a descriptor written as "text:NAME", "attr:NAME",
// "content" or "tag_name". A bare NAME is a text descriptor.
func ParseDescriptor(s string) (docbind.Descriptor, error) {
	kind, name, hasName := strings.Cut(strings.TrimSpace(s), ":")
	if !hasName {
		switch kind {
		case "content":
			return docbind.Content(), nil
		case "tag_name":
			return docbind.TagName(), nil
		case "":
			return docbind.Descriptor{}, errors.New("missing descriptor")
		}
		return docbind.Text(kind), nil
	}
	if name == "" {
		return docbind.Descriptor{}, fmt.Errorf("descriptor %q has no name", s)
	}
	switch kind {
	case "text":
		return docbind.Text(name), nil
	case "attr":
		return docbind.Attr(name), nil
	}
	return docbind.Descriptor{}, fmt.Errorf("unknown descriptor kind %q", kind)
}

// Names lists the declared types in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.specs))
	for name := range r.specs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Schema returns the schema of the named type.
func (r *Registry) Schema(name string) (*docbind.Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Type returns the nested type descriptor of the named type.
func (r *Registry) Type(name string) (*docbind.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// New creates an empty Record of the named type.
func (r *Registry) New(name string) (*docbind.Record, error) {
	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("schemafile: unknown type %q (have %s)", name, strings.Join(r.Names(), ", "))
	}
	return docbind.NewNamedRecord(name, s), nil
}
