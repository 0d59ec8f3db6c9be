package docbind

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docbind/hashdoc"
	"github.com/reoring/docbind/xmldoc"
	"github.com/reoring/docbind/yamldoc"
)

// ParseFormat resolves a format name: "json" or "hash", "xml", "yaml" or
// "yml".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "hash":
		return FormatHash, nil
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("docbind: unknown format %q", name)
}

func prepare(obj any, opts []CallOption) (entity, *Options, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return entity{}, nil, err
	}
	ent, err := resolveEntity(obj)
	if err != nil {
		return entity{}, nil, err
	}
	return ent, o, nil
}

func wrapOf(ent entity) string { return ent.schema.WrapName(typeName(ent.represented)) }

// ToHash renders obj as a hash document. The schema wrap, when declared,
// becomes the single top-level key.
func ToHash(ctx context.Context, obj any, opts ...CallOption) (map[string]any, error) {
	m, _, err := toHashDoc(ctx, obj, opts)
	if err != nil {
		return nil, err
	}
	return m.ToMap(), nil
}

func toHashDoc(ctx context.Context, obj any, opts []CallOption) (*hashdoc.Map, *Options, error) {
	ent, o, err := prepare(obj, opts)
	if err != nil {
		return nil, nil, err
	}
	body := hashdoc.New()
	if err := writeEntity(ctx, FormatHash, body, ent, o, ""); err != nil {
		return nil, nil, err
	}
	if wrap := wrapOf(ent); wrap != "" {
		out := hashdoc.New()
		out.Set(wrap, body)
		return out, o, nil
	}
	return body, o, nil
}

// FromHash populates obj from a hash document. A missing wrap key reads as
// an empty document.
func FromHash(ctx context.Context, data map[string]any, obj any, opts ...CallOption) error {
	return fromHashDoc(ctx, hashdoc.FromMap(data), obj, opts)
}

func fromHashDoc(ctx context.Context, doc *hashdoc.Map, obj any, opts []CallOption) error {
	ent, o, err := prepare(obj, opts)
	if err != nil {
		return err
	}
	body := doc
	if wrap := wrapOf(ent); wrap != "" {
		body = hashdoc.New()
		if v, ok := doc.Get(wrap); ok && v != nil {
			m, ok := v.(*hashdoc.Map)
			if !ok {
				return typeError("/"+wrap, wrap, fmt.Sprintf("expected an object, got %T", v), nil)
			}
			body = m
		}
	}
	return readEntity(ctx, FormatHash, body, ent, o, "")
}

// ToJSON renders obj as JSON text with keys in schema order.
func ToJSON(ctx context.Context, obj any, opts ...CallOption) ([]byte, error) {
	m, o, err := toHashDoc(ctx, obj, opts)
	if err != nil {
		return nil, err
	}
	return hashdoc.Encode(m, strings.Repeat(" ", o.indent))
}

// FromJSON populates obj from JSON text.
func FromJSON(ctx context.Context, data []byte, obj any, opts ...CallOption) error {
	v, err := hashdoc.Decode(data)
	if err != nil {
		return parseError(err)
	}
	m, ok := v.(*hashdoc.Map)
	if !ok {
		return typeError("", "", fmt.Sprintf("expected a JSON object, got %T", v), nil)
	}
	return fromHashDoc(ctx, m, obj, opts)
}

// ToXMLElement renders obj as a detached XML element named after the schema
// wrap, or after the entity type when the schema declares none.
func ToXMLElement(ctx context.Context, obj any, opts ...CallOption) (*etree.Element, error) {
	root, _, err := toXMLElement(ctx, obj, opts)
	return root, err
}

func toXMLElement(ctx context.Context, obj any, opts []CallOption) (*etree.Element, *Options, error) {
	ent, o, err := prepare(obj, opts)
	if err != nil {
		return nil, nil, err
	}
	tag := wrapOf(ent)
	if tag == "" {
		tag = inferredTag(typeName(ent.represented))
	}
	if tag == "" {
		return nil, nil, configError("", "", "no root element name for %T", ent.represented)
	}
	root := xmldoc.NewRoot(tag)
	if err := writeEntity(ctx, FormatXML, root, ent, o, ""); err != nil {
		return nil, nil, err
	}
	return root, o, nil
}

// ToXML renders obj as XML text.
func ToXML(ctx context.Context, obj any, opts ...CallOption) (string, error) {
	root, o, err := toXMLElement(ctx, obj, opts)
	if err != nil {
		return "", err
	}
	return xmldoc.Render(root, o.indent)
}

// FromXMLElement populates obj from el, which plays the role of the wrap
// element.
func FromXMLElement(ctx context.Context, el *etree.Element, obj any, opts ...CallOption) error {
	ent, o, err := prepare(obj, opts)
	if err != nil {
		return err
	}
	if el == nil {
		return typeError("", "", "nil XML element", nil)
	}
	return readEntity(ctx, FormatXML, el, ent, o, "")
}

// FromXML populates obj from XML text.
func FromXML(ctx context.Context, data string, obj any, opts ...CallOption) error {
	root, err := xmldoc.Parse(data)
	if err != nil {
		return parseError(err)
	}
	return FromXMLElement(ctx, root, obj, opts...)
}

// ToYAMLNode renders obj as a YAML mapping node.
func ToYAMLNode(ctx context.Context, obj any, opts ...CallOption) (*yaml.Node, error) {
	n, _, err := toYAMLNode(ctx, obj, opts)
	return n, err
}

func toYAMLNode(ctx context.Context, obj any, opts []CallOption) (*yaml.Node, *Options, error) {
	ent, o, err := prepare(obj, opts)
	if err != nil {
		return nil, nil, err
	}
	body := yamldoc.Mapping()
	if err := writeEntity(ctx, FormatYAML, body, ent, o, ""); err != nil {
		return nil, nil, err
	}
	if wrap := wrapOf(ent); wrap != "" {
		out := yamldoc.Mapping()
		yamldoc.Set(out, wrap, body)
		return out, o, nil
	}
	return body, o, nil
}

// ToYAML renders obj as YAML text.
func ToYAML(ctx context.Context, obj any, opts ...CallOption) ([]byte, error) {
	n, o, err := toYAMLNode(ctx, obj, opts)
	if err != nil {
		return nil, err
	}
	return yamldoc.Render(n, o.indent)
}

// FromYAMLNode populates obj from a YAML mapping (or document) node.
func FromYAMLNode(ctx context.Context, n *yaml.Node, obj any, opts ...CallOption) error {
	ent, o, err := prepare(obj, opts)
	if err != nil {
		return err
	}
	if n != nil && n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	n = yamldoc.Resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return typeError("", "", "expected a YAML mapping, got "+yamldoc.KindName(n), nil)
	}
	body := n
	if wrap := wrapOf(ent); wrap != "" {
		body = yamldoc.Mapping()
		if w, ok := yamldoc.Lookup(n, wrap); ok && !yamldoc.IsNull(w) {
			if w.Kind != yaml.MappingNode {
				return typeError("/"+wrap, wrap, "expected a mapping, got "+yamldoc.KindName(w), nil)
			}
			body = w
		}
	}
	return readEntity(ctx, FormatYAML, body, ent, o, "")
}

// FromYAML populates obj from YAML text.
func FromYAML(ctx context.Context, data []byte, obj any, opts ...CallOption) error {
	n, err := yamldoc.Parse(data)
	if err != nil {
		return parseError(err)
	}
	return FromYAMLNode(ctx, n, obj, opts...)
}

// Render renders obj as text in the given format (JSON for FormatHash).
func Render(ctx context.Context, format Format, obj any, opts ...CallOption) ([]byte, error) {
	switch format {
	case FormatHash:
		return ToJSON(ctx, obj, opts...)
	case FormatXML:
		s, err := ToXML(ctx, obj, opts...)
		return []byte(s), err
	case FormatYAML:
		return ToYAML(ctx, obj, opts...)
	}
	return nil, fmt.Errorf("docbind: unknown format %s", format)
}

// Parse populates obj from text in the given format (JSON for FormatHash).
func Parse(ctx context.Context, format Format, data []byte, obj any, opts ...CallOption) error {
	switch format {
	case FormatHash:
		return FromJSON(ctx, data, obj, opts...)
	case FormatXML:
		return FromXML(ctx, string(data), obj, opts...)
	case FormatYAML:
		return FromYAML(ctx, data, obj, opts...)
	}
	return fmt.Errorf("docbind: unknown format %s", format)
}
