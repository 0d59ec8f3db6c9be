package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const schemaYAML = `
types:
  Band:
    wrap: band
    properties:
      - name: name
      - name: members
        type: Member
        collection: true
  Member:
    properties:
      - name: name
`

func writeSchema(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(p, []byte(schemaYAML), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return p
}

func TestConvert_JSONToXML(t *testing.T) {
	o := convertOptions{schema: writeSchema(t), typ: "Band", from: "json", to: "xml"}
	var out bytes.Buffer
	in := strings.NewReader(`{"band":{"name":"X","members":[{"name":"A"}]}}`)
	if err := convert(context.Background(), o, in, &out, zap.NewNop()); err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := "<band><name>X</name><member><name>A</name></member></band>\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", out.String(), want)
	}
}

func TestConvert_XMLToYAML(t *testing.T) {
	o := convertOptions{schema: writeSchema(t), typ: "Band", from: "xml", to: "yaml", indent: 2}
	var out bytes.Buffer
	in := strings.NewReader(`<band><name>X</name></band>`)
	if err := convert(context.Background(), o, in, &out, zap.NewNop()); err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := "band:\n  name: X\n  members: []\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", out.String(), want)
	}
}

func TestConvert_Errors(t *testing.T) {
	schema := writeSchema(t)
	cases := map[string]convertOptions{
		"bad from":     {schema: schema, typ: "Band", from: "csv", to: "json"},
		"bad to":       {schema: schema, typ: "Band", from: "json", to: "csv"},
		"unknown type": {schema: schema, typ: "Nope", from: "json", to: "json"},
		"no schema":    {schema: filepath.Join(t.TempDir(), "missing.yaml"), typ: "Band", from: "json", to: "json"},
	}
	for name, o := range cases {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			if err := convert(context.Background(), o, strings.NewReader(`{}`), &out, zap.NewNop()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
