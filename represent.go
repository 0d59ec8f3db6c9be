package docbind

import (
	"context"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docbind/xmldoc"
	"github.com/reoring/docbind/yamldoc"
)

// writeEntity is the write pass: every selected binding in schema order
// compiles its fragment into doc. Properties written before a failure stay
// in doc.
func writeEntity(ctx context.Context, format Format, doc any, ent entity, opts *Options, path string) error {
	if format == FormatXML {
		declareNamespace(doc, ent.schema)
	}
	for _, def := range ent.schema.defs {
		if def.writeOnly || !opts.selects(def) {
			continue
		}
		b, err := newBinding(ctx, def, format, ent, opts, path)
		if err != nil {
			return err
		}
		if err := b.compileFragment(doc); err != nil {
			return err
		}
	}
	return nil
}

// readEntity is the read pass: every selected binding in schema order
// reads its fragment from doc and sets it on the entity. There is no
// rollback: properties set before a failure stay set.
func readEntity(ctx context.Context, format Format, doc any, ent entity, opts *Options, path string) error {
	opts.Logger().Debug("read entity", zap.String("path", pathOrRoot(path)), zap.Stringer("format", format))
	for _, def := range ent.schema.defs {
		if def.readOnly || !opts.selects(def) {
			continue
		}
		b, err := newBinding(ctx, def, format, ent, opts, path)
		if err != nil {
			return err
		}
		if err := b.uncompileFragment(doc); err != nil {
			return err
		}
	}
	return nil
}

func declareNamespace(doc any, s *Schema) {
	e, ok := doc.(*etree.Element)
	if !ok || s.namespace == "" {
		return
	}
	if xmldoc.DefaultNamespace(e) != s.namespace {
		xmldoc.SetAttribute(e, "xmlns", s.namespace)
	}
}

func fragmentIsNull(fragment any) bool {
	switch f := fragment.(type) {
	case nil:
		return true
	case *yaml.Node:
		return yamldoc.IsNull(f)
	case *etree.Element:
		return f == nil
	}
	return false
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(s string) string { return pointerEscaper.Replace(s) }
