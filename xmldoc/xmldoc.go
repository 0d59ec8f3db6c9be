// Package xmldoc is the XML document adapter used by the XML bindings. It
// wraps beevik/etree elements and exposes the small contract the engine
// needs: namespace-aware path search, text content, attributes and child
// creation.
package xmldoc

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
)

// ErrNoRoot is returned when parsed input holds no root element.
var ErrNoRoot = errors.New("xmldoc: document has no root element")

// Parse reads an XML document and returns its root element.
func Parse(s string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrNoRoot
	}
	return root, nil
}

// NewRoot creates a detached root element inside a fresh document.
func NewRoot(tag string) *etree.Element {
	doc := etree.NewDocument()
	return doc.CreateElement(tag)
}

// Render serializes e. An indent greater than zero pretty-prints with that
// many spaces.
func Render(e *etree.Element, indent int) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(e.Copy())
	if indent > 0 {
		doc.Indent(indent)
	}
	return doc.WriteToString()
}

// Search returns the element children of e matching a slash separated path.
// Path segments are tags with an optional "prefix:" qualifier; "*" matches
// any element and "." the context element itself. An unqualified segment
// matches elements in the default namespace in scope at the context element
// (or in no namespace when none is declared). A qualified segment matches the
// literal prefix.
func Search(e *etree.Element, path string) []*etree.Element {
	return SearchNS(e, path, "")
}

// SearchNS is Search with the namespace URI an unqualified last segment
// must match. An empty ns means the default namespace in scope.
func SearchNS(e *etree.Element, path, ns string) []*etree.Element {
	path = strings.TrimPrefix(path, "./")
	segs := strings.Split(path, "/")
	current := []*etree.Element{e}
	for i, seg := range segs {
		if seg == "" || seg == "." {
			continue
		}
		want := ""
		if i == len(segs)-1 {
			want = ns
		}
		var next []*etree.Element
		for _, c := range current {
			next = append(next, matchChildren(c, seg, want)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// First returns the first match of Search or nil.
func First(e *etree.Element, path string) *etree.Element {
	if found := Search(e, path); len(found) > 0 {
		return found[0]
	}
	return nil
}

func matchChildren(e *etree.Element, seg, ns string) []*etree.Element {
	space, tag := split(seg)
	var out []*etree.Element
	if ns == "" {
		ns = DefaultNamespace(e)
	}
	for _, c := range e.ChildElements() {
		if tag != "*" && c.Tag != tag {
			continue
		}
		if !spaceMatches(c, space, ns) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func spaceMatches(c *etree.Element, space, ns string) bool {
	if space != "" {
		return c.Space == space
	}
	if c.Space == "" {
		return DefaultNamespace(c) == ns
	}
	// A prefixed element still matches an unqualified segment when its
	// prefix is bound to the expected namespace.
	return ns != "" && c.NamespaceURI() == ns
}

func split(name string) (space, tag string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// DefaultNamespace returns the URI of the default namespace in scope at e,
// or "" when none is declared.
func DefaultNamespace(e *etree.Element) string {
	for cur := e; cur != nil; cur = cur.Parent() {
		for _, a := range cur.Attr {
			if a.Space == "" && a.Key == "xmlns" {
				return a.Value
			}
		}
	}
	return ""
}

// Content returns the text content of e.
func Content(e *etree.Element) string { return e.Text() }

// SetContent replaces the text content of e, optionally as CDATA.
func SetContent(e *etree.Element, text string, cdata bool) {
	if cdata {
		e.SetCData(text)
		return
	}
	e.SetText(text)
}

// Attribute looks up an attribute by (optionally prefixed) name.
func Attribute(e *etree.Element, name string) (string, bool) {
	a := e.SelectAttr(name)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// SetAttribute creates or replaces an attribute.
func SetAttribute(e *etree.Element, name, value string) {
	e.CreateAttr(name, value)
}

// Attributes returns the non-namespace-declaration attributes of e in
// document order.
func Attributes(e *etree.Element) []etree.Attr {
	out := make([]etree.Attr, 0, len(e.Attr))
	for _, a := range e.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// CreateChild appends a new element named tag to parent.
func CreateChild(parent *etree.Element, tag string) *etree.Element {
	return parent.CreateElement(tag)
}

// Child returns the first direct child of parent with the exact (possibly
// prefixed) tag, creating it when missing.
func Child(parent *etree.Element, tag string) *etree.Element {
	space, local := split(tag)
	for _, c := range parent.ChildElements() {
		if c.Tag == local && c.Space == space {
			return c
		}
	}
	return parent.CreateElement(tag)
}

// AppendChild moves an element under parent.
func AppendChild(parent, child *etree.Element) {
	parent.AddChild(child)
}

// LocalName returns the tag of e without its prefix.
func LocalName(e *etree.Element) string { return e.Tag }
