package docbind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/reoring/docbind/xmldoc"
)

func xmlStrategy(d *Definition) (strategy, error) {
	switch {
	case d.hasDescriptors():
		return xmlDescriptorMap{}, nil
	case d.attribute && d.collection:
		return xmlAttributeCollection{}, nil
	case d.attribute:
		return xmlAttribute{}, nil
	case d.content:
		if d.collection || d.hash {
			return nil, errors.New("content holds a single value")
		}
		return xmlContent{}, nil
	case d.collection:
		return xmlCollection{}, nil
	case d.hash && d.useAttributes:
		return xmlAttributeMap{}, nil
	case d.hash:
		return xmlMap{}, nil
	}
	return xmlProperty{}, nil
}

func xmlNode(b *binding, doc any) (*etree.Element, error) {
	e, ok := doc.(*etree.Element)
	if !ok || e == nil {
		return nil, typeError(b.path, b.def.accessor, fmt.Sprintf("expected an XML element, got %T", doc), nil)
	}
	return e, nil
}

// xmlWrap returns the element the property lives in: e itself or the wrap
// element below it. Wrap elements are found or created on write so that
// properties sharing a wrap share one element.
func xmlWrap(b *binding, e *etree.Element, create bool) *etree.Element {
	if b.def.wrap == "" {
		return e
	}
	if !create {
		return xmldoc.First(e, b.def.wrap)
	}
	cur := e
	for _, seg := range strings.Split(b.def.wrap, "/") {
		cur = xmldoc.Child(cur, seg)
	}
	return cur
}

func xmlPath(b *binding, tag string) string {
	if b.def.wrap == "" {
		return tag
	}
	return b.def.wrap + "/" + tag
}

// xmlSearch finds the elements of the property at wrap/tag. Elements of a
// nested type that declares its own namespace are matched in that namespace.
func xmlSearch(b *binding, doc any) ([]*etree.Element, error) {
	return xmlSearchNS(b, doc, b.nestedNamespace())
}

func xmlSearchNS(b *binding, doc any, ns string) ([]*etree.Element, error) {
	e, err := xmlNode(b, doc)
	if err != nil {
		return nil, err
	}
	return xmldoc.SearchNS(e, xmlPath(b, b.tag()), ns), nil
}

// xmlElementValue writes one value into a fresh element el.
func xmlElementValue(b *binding, el *etree.Element, v any, path string) error {
	if b.def.IsTyped() {
		if v == nil {
			return nil
		}
		return b.writeObject(el, v, path)
	}
	enc, err := b.encodeScalar(v)
	if err != nil {
		return err
	}
	xmldoc.SetContent(el, scalarText(enc), b.def.cdata)
	return nil
}

func xmlText(el *etree.Element) func() (any, error) {
	return func() (any, error) { return xmldoc.Content(el), nil }
}

type xmlProperty struct{}

func (xmlProperty) read(b *binding, doc any) (any, error) {
	nodes, err := xmlSearch(b, doc)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return fragmentNotFound, nil
	}
	return b.readSingle(nodes[0], xmlText(nodes[0]))
}

func (xmlProperty) write(b *binding, doc any, v any) error {
	e, err := xmlNode(b, doc)
	if err != nil {
		return err
	}
	el := xmldoc.CreateChild(xmlWrap(b, e, true), b.tag())
	return xmlElementValue(b, el, v, b.path)
}

type xmlCollection struct{}

func (xmlCollection) read(b *binding, doc any) (any, error) {
	nodes, err := xmlSearch(b, doc)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return fragmentNotFound, nil
	}
	r := b.items()
	out := make([]any, len(nodes))
	for i, n := range nodes {
		if out[i], err = r.read(i, n, xmlText(n)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (xmlCollection) write(b *binding, doc any, v any) error {
	e, err := xmlNode(b, doc)
	if err != nil {
		return err
	}
	parent := xmlWrap(b, e, true)
	items, err := b.elements(v)
	if err != nil {
		return err
	}
	tag := b.tag()
	for i, item := range items {
		el := xmldoc.CreateChild(parent, tag)
		if err := xmlElementValue(b, el, item, fmt.Sprintf("%s/%d", b.path, i)); err != nil {
			return err
		}
	}
	return nil
}

// xmlMap stores a map as the children of one element, keyed by tag.
type xmlMap struct{}

func (xmlMap) read(b *binding, doc any) (any, error) {
	nodes, err := xmlSearchNS(b, doc, "")
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return fragmentNotFound, nil
	}
	r := b.entries()
	children := nodes[0].ChildElements()
	out := make(map[string]any, len(children))
	for _, c := range children {
		key := xmldoc.LocalName(c)
		if out[key], err = r.read(key, c, xmlText(c)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (xmlMap) write(b *binding, doc any, v any) error {
	e, err := xmlNode(b, doc)
	if err != nil {
		return err
	}
	holder := xmldoc.CreateChild(xmlWrap(b, e, true), b.tag())
	if v == nil {
		return nil
	}
	pairs, err := b.pairs(v)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		el := xmldoc.CreateChild(holder, p.Key)
		if err := xmlElementValue(b, el, p.Value, b.path+"/"+escapePointer(p.Key)); err != nil {
			return err
		}
	}
	return nil
}

// xmlAttributeMap stores a map in the attributes of the containing element.
type xmlAttributeMap struct{}

func (xmlAttributeMap) read(b *binding, doc any) (any, error) {
	e, err := xmlNode(b, doc)
	if err != nil {
		return nil, err
	}
	target := xmlWrap(b, e, false)
	if target == nil {
		return fragmentNotFound, nil
	}
	attrs := xmldoc.Attributes(target)
	if len(attrs) == 0 {
		return fragmentNotFound, nil
	}
	out := make(map[string]any, len(attrs))
	for _, a := range attrs {
		if out[a.FullKey()], err = b.decodeScalar(a.Value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (xmlAttributeMap) write(b *binding, doc any, v any) error {
	e, err := xmlNode(b, doc)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	pairs, err := b.pairs(v)
	if err != nil {
		return err
	}
	target := xmlWrap(b, e, true)
	for _, p := range pairs {
		enc, err := b.encodeScalar(p.Value)
		if err != nil {
			return err
		}
		xmldoc.SetAttribute(target, p.Key, scalarText(enc))
	}
	return nil
}

// xmlAttribute stores a scalar in an attribute of the containing element.
type xmlAttribute struct{}

func (xmlAttribute) read(b *binding, doc any) (any, error) {
	e, err := xmlNode(b, doc)
	if err != nil {
		return nil, err
	}
	target := xmlWrap(b, e, false)
	if target == nil {
		return fragmentNotFound, nil
	}
	val, ok := xmldoc.Attribute(target, b.def.attributeName())
	if !ok {
		return fragmentNotFound, nil
	}
	return b.decodeScalar(val)
}

func (xmlAttribute) write(b *binding, doc any, v any) error {
	e, err := xmlNode(b, doc)
	if err != nil {
		return err
	}
	enc, err := b.encodeScalar(v)
	if err != nil {
		return err
	}
	xmldoc.SetAttribute(xmlWrap(b, e, true), b.def.attributeName(), scalarText(enc))
	return nil
}

// xmlAttributeCollection reads one attribute off every wrap element.
type xmlAttributeCollection struct{}

func (xmlAttributeCollection) read(b *binding, doc any) (any, error) {
	e, err := xmlNode(b, doc)
	if err != nil {
		return nil, err
	}
	nodes := xmldoc.Search(e, b.def.wrap)
	if len(nodes) == 0 {
		return fragmentNotFound, nil
	}
	name := b.def.attributeName()
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		val, ok := xmldoc.Attribute(n, name)
		if !ok {
			continue
		}
		dv, err := b.decodeScalar(val)
		if err != nil {
			return nil, err
		}
		out = append(out, dv)
	}
	return out, nil
}

func (xmlAttributeCollection) write(b *binding, doc any, v any) error {
	e, err := xmlNode(b, doc)
	if err != nil {
		return err
	}
	items, err := b.elements(v)
	if err != nil {
		return err
	}
	segs := strings.Split(b.def.wrap, "/")
	parent := e
	for _, seg := range segs[:len(segs)-1] {
		parent = xmldoc.Child(parent, seg)
	}
	name := b.def.attributeName()
	for _, item := range items {
		enc, err := b.encodeScalar(item)
		if err != nil {
			return err
		}
		el := xmldoc.CreateChild(parent, segs[len(segs)-1])
		xmldoc.SetAttribute(el, name, scalarText(enc))
	}
	return nil
}

// xmlContent stores a scalar in the text of the containing element.
type xmlContent struct{}

func (xmlContent) read(b *binding, doc any) (any, error) {
	e, err := xmlNode(b, doc)
	if err != nil {
		return nil, err
	}
	target := xmlWrap(b, e, false)
	if target == nil {
		return fragmentNotFound, nil
	}
	text := xmldoc.Content(target)
	if text == "" {
		return fragmentNotFound, nil
	}
	return b.decodeScalar(text)
}

func (xmlContent) write(b *binding, doc any, v any) error {
	e, err := xmlNode(b, doc)
	if err != nil {
		return err
	}
	enc, err := b.encodeScalar(v)
	if err != nil {
		return err
	}
	xmldoc.SetContent(xmlWrap(b, e, true), scalarText(enc), b.def.cdata)
	return nil
}

// xmlDescriptorMap stores a map as repeated elements each holding one key
// and one value.
type xmlDescriptorMap struct{}

func (xmlDescriptorMap) read(b *binding, doc any) (any, error) {
	e, err := xmlNode(b, doc)
	if err != nil {
		return nil, err
	}
	path := xmlPath(b, b.tag())
	if b.def.key.Kind == DescriptorTagName {
		path = b.def.wrap + "/*"
	}
	nodes := xmldoc.Search(e, path)
	if len(nodes) == 0 {
		return fragmentNotFound, nil
	}
	out := make(map[string]any, len(nodes))
	for _, n := range nodes {
		key := descriptorRead(n, *b.def.key)
		if out[key], err = b.decodeScalar(descriptorRead(n, *b.def.value)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (xmlDescriptorMap) write(b *binding, doc any, v any) error {
	e, err := xmlNode(b, doc)
	if err != nil {
		return err
	}
	parent := xmlWrap(b, e, true)
	if v == nil {
		return nil
	}
	pairs, err := b.pairs(v)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		enc, err := b.encodeScalar(p.Value)
		if err != nil {
			return err
		}
		tag := b.tag()
		if b.def.key.Kind == DescriptorTagName {
			tag = p.Key
		}
		el := xmldoc.CreateChild(parent, tag)
		descriptorWrite(el, *b.def.key, p.Key, b.def.cdata)
		descriptorWrite(el, *b.def.value, scalarText(enc), b.def.cdata)
	}
	return nil
}

func descriptorRead(el *etree.Element, d Descriptor) string {
	switch d.Kind {
	case DescriptorText:
		if c := xmldoc.First(el, d.Name); c != nil {
			return xmldoc.Content(c)
		}
	case DescriptorAttribute:
		v, _ := xmldoc.Attribute(el, d.Name)
		return v
	case DescriptorContent:
		return xmldoc.Content(el)
	case DescriptorTagName:
		return xmldoc.LocalName(el)
	}
	return ""
}

func descriptorWrite(el *etree.Element, d Descriptor, text string, cdata bool) {
	switch d.Kind {
	case DescriptorText:
		xmldoc.SetContent(xmldoc.CreateChild(el, d.Name), text, cdata)
	case DescriptorAttribute:
		xmldoc.SetAttribute(el, d.Name, text)
	case DescriptorContent:
		xmldoc.SetContent(el, text, cdata)
	}
}
