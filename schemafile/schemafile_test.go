package schemafile_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/schemafile"
)

const bandFile = `
types:
  Band:
    wrap: band
    properties:
      - name: name
        required: true
      - name: founded
        type: int
        default: 1970
      - name: members
        type: Member
        collection: true
  Member:
    properties:
      - name: name
      - name: instrument
        omit_empty: true
`

func TestLoad_BandRoundTrip(t *testing.T) {
	ctx := context.Background()
	reg, err := schemafile.Load(strings.NewReader(bandFile))
	require.NoError(t, err)
	require.Equal(t, []string{"Band", "Member"}, reg.Names())

	band, err := reg.New("Band")
	require.NoError(t, err)
	require.NoError(t, docbind.FromJSON(ctx, []byte(`{"band":{"name":"X","members":[{"name":"A"}]}}`), band))
	require.Equal(t, int64(1970), band.Get("founded"))

	x, err := docbind.ToXML(ctx, band)
	require.NoError(t, err)
	require.Equal(t, `<band><name>X</name><founded>1970</founded><member><name>A</name></member></band>`, x)

	err = docbind.FromJSON(ctx, []byte(`{"band":{}}`), band)
	require.ErrorIs(t, err, docbind.ErrRequiredFieldMissing)
}

func TestParse_RecursiveAndInheritedTypes(t *testing.T) {
	ctx := context.Background()
	reg, err := schemafile.Parse([]byte(`
types:
  Node:
    wrap_inferred: true
    properties:
      - name: id
        from: "@id"
        type: int
      - name: children
        type: Node
        collection: true
  Leaf:
    inherit: Node
    properties:
      - name: label
        content: true
`))
	require.NoError(t, err)

	leaf, ok := reg.Schema("Leaf")
	require.True(t, ok)
	var names []string
	for _, d := range leaf.Definitions() {
		names = append(names, d.Accessor())
	}
	require.Equal(t, []string{"id", "children", "label"}, names)

	root, err := reg.New("Node")
	require.NoError(t, err)
	require.NoError(t, docbind.FromXML(ctx, `<node id="1"><node id="2"/></node>`, root))
	kids, ok := root.Get("children").([]any)
	require.True(t, ok)
	require.Len(t, kids, 1)
	require.Equal(t, int64(2), kids[0].(*docbind.Record).Get("id"))

	out, err := docbind.ToXML(ctx, root)
	require.NoError(t, err)
	require.Equal(t, `<node id="1"><node id="2"/></node>`, out)
}

func TestParse_DescriptorMaps(t *testing.T) {
	ctx := context.Background()
	reg, err := schemafile.Parse([]byte(`
types:
  Settings:
    wrap: settings
    properties:
      - name: options
        map: true
        key: attr:name
        value: attr:value
`))
	require.NoError(t, err)
	s, err := reg.New("Settings")
	require.NoError(t, err)
	s.Set("options", map[string]any{"a": "1"})
	out, err := docbind.ToXML(ctx, s)
	require.NoError(t, err)
	require.Equal(t, `<settings><option name="a" value="1"/></settings>`, out)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":        "types:\n  A:\n    bogus: 1\n",
		"unknown type":       "types:\n  A:\n    properties:\n      - name: x\n        type: Nope\n",
		"unknown convention": "types:\n  A:\n    convention: shouting\n",
		"inherit cycle":      "types:\n  A:\n    inherit: B\n  B:\n    inherit: A\n",
		"unknown parent":     "types:\n  A:\n    inherit: Z\n",
		"bad descriptor":     "types:\n  A:\n    properties:\n      - name: m\n        map: true\n        key: xml:k\n        value: v\n",
		"collection and map": "types:\n  A:\n    properties:\n      - name: m\n        map: true\n        collection: true\n",
		"no types":           "types: {}\n",
		"empty":              "",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := schemafile.Parse([]byte(src))
			require.Error(t, err)
		})
	}

	_, err := schemafile.Parse([]byte("types:\n  A:\n    properties:\n      - name: x\n        required: true\n        default: 1\n"))
	require.True(t, errors.Is(err, docbind.ErrConfiguration), "got %v", err)

	reg, err := schemafile.Parse([]byte("types:\n  A:\n    properties:\n      - name: x\n"))
	require.NoError(t, err)
	_, err = reg.New("B")
	require.Error(t, err)
}

func TestParseDescriptor(t *testing.T) {
	cases := map[string]docbind.Descriptor{
		"text:word":  docbind.Text("word"),
		"word":       docbind.Text("word"),
		"attr:name":  docbind.Attr("name"),
		"content":    docbind.Content(),
		"tag_name":   docbind.TagName(),
		" attr:id  ": docbind.Attr("id"),
	}
	for in, want := range cases {
		got, err := schemafile.ParseDescriptor(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "attr:", "xml:k"} {
		_, err := schemafile.ParseDescriptor(bad)
		require.Error(t, err, bad)
	}
}
