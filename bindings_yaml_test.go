package docbind_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/codec"
	"github.com/reoring/docbind/yamldoc"
)

const albumYAML = `album:
  title: Kind of Blue
  year: 1959
  genres: [jazz, modal]
  credits:
    producer: Teo Macero
  artist:
    name: Miles
  tracks:
    - name: So What
    - name: Blue in Green
      instrument: piano
`

func TestYAML_FromAndTo(t *testing.T) {
	ctx := context.Background()
	var album Album
	if err := docbind.FromYAML(ctx, []byte(albumYAML), &album); err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	want := Album{
		Title:   "Kind of Blue",
		Year:    1959,
		Genres:  []string{"jazz", "modal"},
		Credits: map[string]string{"producer": "Teo Macero"},
		Artist:  &Member{Name: "Miles"},
		Tracks:  []*Member{{Name: "So What"}, {Name: "Blue in Green", Instrument: "piano"}},
	}
	if diff := cmp.Diff(want, album); diff != "" {
		t.Fatalf("album mismatch (-want +got):\n%s", diff)
	}

	n, err := docbind.ToYAMLNode(ctx, &album)
	if err != nil {
		t.Fatalf("ToYAMLNode: %v", err)
	}
	body, ok := yamldoc.Lookup(n, "album")
	if !ok {
		t.Fatalf("missing wrap key")
	}
	var keys []string
	for _, e := range yamldoc.Entries(body) {
		keys = append(keys, e.Key)
	}
	wantKeys := []string{"title", "year", "label", "genres", "credits", "released", "artist", "tracks", "summary"}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Fatalf("keys must follow schema order (-want +got):\n%s", diff)
	}

	var back Album
	if err := docbind.FromYAMLNode(ctx, n, &back); err != nil {
		t.Fatalf("FromYAMLNode: %v", err)
	}
	if diff := cmp.Diff(album, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestYAML_DescriptorMapAndNulls(t *testing.T) {
	ctx := context.Background()
	g := &Glossary{Entries: map[string]string{"cat": "a feline"}}
	out, err := docbind.ToYAML(ctx, g, docbind.WithIndent(2))
	if err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	var back Glossary
	if err := docbind.FromYAML(ctx, out, &back); err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if diff := cmp.Diff(g, &back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	var band Band
	if err := docbind.FromYAML(ctx, []byte("band:\n  name: null\n  members: null\n"), &band); err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if band.Name != "" || band.Members != nil {
		t.Fatalf("null fragments set zero values, got %+v", band)
	}
}

func TestYAML_TypeErrors(t *testing.T) {
	ctx := context.Background()
	var band Band
	err := docbind.FromYAML(ctx, []byte("band:\n  members: {a: 1}\n"), &band)
	iss, ok := docbind.AsIssues(err)
	if !ok || iss[0].Code != docbind.CodeInvalidType || iss[0].Path != "/members" {
		t.Fatalf("expected invalid_type at /members, got %v", err)
	}
	if err := docbind.FromYAML(ctx, []byte("- a\n- b\n"), &band); err == nil {
		t.Fatalf("expected error for a top-level sequence")
	}
}

func TestYAML_IntOutOfRange(t *testing.T) {
	ctx := context.Background()
	for _, year := range []string{"1e20", "9.3e18", "-1e20"} {
		album := Album{Year: 1999}
		err := docbind.FromYAML(ctx, []byte("album:\n  title: T\n  year: "+year+"\n"), &album)
		var ce *codec.Error
		if !errors.As(err, &ce) {
			t.Fatalf("year %s: expected *codec.Error, got %v (year=%d)", year, err, album.Year)
		}
		if album.Year != 1999 {
			t.Fatalf("year %s: value must stay untouched, got %d", year, album.Year)
		}
	}
}
