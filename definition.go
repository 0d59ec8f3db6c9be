package docbind

import (
	"fmt"
	"strings"

	"github.com/reoring/docbind/naming"
)

// DescriptorKind says where a descriptor map finds its key or value.
type DescriptorKind int

const (
	descriptorInvalid DescriptorKind = iota
	DescriptorText                   // child element / entry named Name
	DescriptorAttribute              // attribute named Name (entry named Name outside XML)
	DescriptorContent                // text of the item element itself (XML only)
	DescriptorTagName                // tag of the item element itself (XML only)
)

// Descriptor is a reduced definition for the key or value of a descriptor
// map.
type Descriptor struct {
	Kind DescriptorKind
	Name string
}

// Text describes a key or value stored in a child element or entry.
func Text(name string) Descriptor { return Descriptor{Kind: DescriptorText, Name: name} }

// Attr describes a key or value stored in an attribute.
func Attr(name string) Descriptor { return Descriptor{Kind: DescriptorAttribute, Name: name} }

// Content describes a key or value stored in the item element's text.
func Content() Descriptor { return Descriptor{Kind: DescriptorContent} }

// TagName describes a key stored as the item element's tag.
func TagName() Descriptor { return Descriptor{Kind: DescriptorTagName} }

func (d Descriptor) valid() bool {
	switch d.Kind {
	case DescriptorText, DescriptorAttribute:
		return d.Name != ""
	case DescriptorContent, DescriptorTagName:
		return true
	}
	return false
}

func (d Descriptor) textual() bool {
	return d.Kind == DescriptorText || d.Kind == DescriptorAttribute
}

func (d Descriptor) String() string {
	switch d.Kind {
	case DescriptorText:
		return "text(" + d.Name + ")"
	case DescriptorAttribute:
		return "attr(" + d.Name + ")"
	case DescriptorContent:
		return "content"
	case DescriptorTagName:
		return "tag_name"
	}
	return fmt.Sprintf("descriptor(%d)", int(d.Kind))
}

// Definition is the immutable metadata of one declared property.
type Definition struct {
	accessor string
	from     string
	coercer  Coercer
	typ      *Type
	extend   *Schema
	decorate func(any) Decorator

	collection bool
	hash       bool
	key, value *Descriptor

	wrap       string
	namespace  string
	convention naming.Convention

	hasDefault  bool
	defaultVal  any
	defaultFunc DefaultFunc
	required    bool
	readOnly    bool
	writeOnly   bool

	attribute     bool
	content       bool
	cdata         bool
	useAttributes bool
	sync          bool
	renderNil     bool
	omitEmpty     bool

	getter   GetterFunc
	setter   SetterFunc
	reader   ReaderFunc
	writer   WriterFunc
	instance InstanceFunc
	class    ClassFunc
}

// Accessor is the entity-side property name.
func (d *Definition) Accessor() string { return d.accessor }

// Name is the document key: the From override or the accessor.
func (d *Definition) Name() string {
	if d.from != "" {
		return d.from
	}
	return d.accessor
}

// Tag is the XML tag for the property. nestedWrap is the wrap name of the
// nested entity type, if any.
func (d *Definition) Tag(nestedWrap string) string {
	if d.from != "" {
		return d.qualify(d.from)
	}
	if nestedWrap != "" {
		return d.qualify(nestedWrap)
	}
	name := d.accessor
	if d.collection || d.hash {
		name = naming.Singular(name)
	}
	if d.convention != nil {
		name = d.convention(name)
	}
	return d.qualify(name)
}

// attributeName is the XML attribute name for the property.
func (d *Definition) attributeName() string {
	if d.from != "" {
		return d.qualify(d.from)
	}
	name := d.accessor
	if d.convention != nil {
		name = d.convention(name)
	}
	return d.qualify(name)
}

func (d *Definition) qualify(name string) string {
	if d.namespace == "" || strings.Contains(name, ":") {
		return name
	}
	return d.namespace + ":" + name
}

// SoughtType returns the nested entity type, or nil for scalars.
func (d *Definition) SoughtType() *Type { return d.typ }

// Coercer returns the scalar coercion hook, or nil.
func (d *Definition) Coercer() Coercer { return d.coercer }

// IsTyped reports whether values are nested entities.
func (d *Definition) IsTyped() bool { return d.typ != nil || d.extend != nil }

// IsCollection reports whether the property holds an ordered collection.
func (d *Definition) IsCollection() bool { return d.collection }

// IsMap reports whether the property holds a keyed map.
func (d *Definition) IsMap() bool { return d.hash }

// KeyDescriptor and ValueDescriptor are set for descriptor maps only.
func (d *Definition) KeyDescriptor() (Descriptor, bool) {
	if d.key == nil {
		return Descriptor{}, false
	}
	return *d.key, true
}

// ValueDescriptor is the value half of a descriptor map.
func (d *Definition) ValueDescriptor() (Descriptor, bool) {
	if d.value == nil {
		return Descriptor{}, false
	}
	return *d.value, true
}

func (d *Definition) hasDescriptors() bool { return d.key != nil }

// Wrap is the container the fragment is nested in (In), or "".
func (d *Definition) Wrap() string { return d.wrap }

// Namespace is the XML prefix of the tag, or "".
func (d *Definition) Namespace() string { return d.namespace }

// HasDefault reports whether a static or produced default is declared,
// including the implicit empty default of collections and maps.
func (d *Definition) HasDefault() bool { return d.hasDefault }

// Visibility and shape flags set by the builder steps of the same name.
func (d *Definition) IsRequired() bool    { return d.required }
func (d *Definition) IsReadOnly() bool    { return d.readOnly }
func (d *Definition) IsWriteOnly() bool   { return d.writeOnly }
func (d *Definition) IsAttribute() bool   { return d.attribute }
func (d *Definition) IsContent() bool     { return d.content }
func (d *Definition) IsCDATA() bool       { return d.cdata }
func (d *Definition) UseAttributes() bool { return d.useAttributes }
func (d *Definition) IsSync() bool        { return d.sync }
func (d *Definition) RendersNil() bool    { return d.renderNil }
func (d *Definition) OmitsEmpty() bool    { return d.omitEmpty }

func (d *Definition) String() string { return "property " + d.accessor }

// validate reports configuration problems of a finished definition.
func (d *Definition) validate() []string {
	var probs []string
	if d.accessor == "" {
		probs = append(probs, "empty property name")
	}
	if d.required && d.hasDefault {
		probs = append(probs, "required and default are mutually exclusive")
	}
	if d.readOnly && d.writeOnly {
		probs = append(probs, "read_only and write_only are mutually exclusive")
	}
	if d.collection && d.hash {
		probs = append(probs, "a property is either a collection or a map")
	}
	if d.attribute && d.content {
		probs = append(probs, "a property is either an attribute or content")
	}
	if d.key != nil || d.value != nil {
		switch {
		case d.key == nil || d.value == nil:
			probs = append(probs, "a descriptor map needs one key and one value descriptor")
		case !d.key.valid():
			probs = append(probs, "unrecognized key descriptor "+d.key.String())
		case !d.value.valid():
			probs = append(probs, "unrecognized value descriptor "+d.value.String())
		case d.value.Kind == DescriptorTagName:
			probs = append(probs, "tag_name can only describe a key")
		case d.key.Kind == d.value.Kind && d.key.Kind != DescriptorText && d.key.Kind != DescriptorAttribute:
			probs = append(probs, "key and value descriptors read the same fragment")
		case d.key.Kind == DescriptorTagName && d.wrap == "":
			probs = append(probs, "a tag_name key needs In(...)")
		}
		if d.IsTyped() {
			probs = append(probs, "descriptor maps hold scalar values only")
		}
	}
	if d.useAttributes && !d.hash {
		probs = append(probs, "use_attributes applies to maps only")
	}
	if d.attribute && d.collection && d.wrap == "" {
		probs = append(probs, "an attribute collection needs In(...)")
	}
	if (d.attribute || d.content) && d.IsTyped() {
		probs = append(probs, "attributes and content hold scalar values only")
	}
	return probs
}
