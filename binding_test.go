package docbind_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/codec"
	"github.com/reoring/docbind/hashdoc"
)

func TestDefaults_AppliedWhenFragmentMissing(t *testing.T) {
	ctx := context.Background()
	album := Album{Label: "keep"}
	pm := docbind.PresenceMap{}
	if err := docbind.FromJSON(ctx, []byte(`{"album":{"title":"T","released":"2001-02-03"}}`), &album, docbind.WithPresence(pm)); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if album.Year != 1970 {
		t.Fatalf("expected default year, got %d", album.Year)
	}
	if album.Label != "keep" {
		t.Fatalf("missing fragment without default must leave the property untouched, got %q", album.Label)
	}
	if !album.Released.Equal(time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected released %v", album.Released)
	}
	if album.Credits == nil || len(album.Credits) != 0 {
		t.Fatalf("maps default to empty, got %#v", album.Credits)
	}
	if !pm.Has("/year", docbind.PresenceDefaultApplied) || !pm.Has("/title", docbind.PresenceSeen) {
		t.Fatalf("unexpected presence %v", pm)
	}
	if pm.Has("/label", docbind.PresenceSeen) {
		t.Fatalf("label was not in the document")
	}
}

func TestRequired_MissingFragment(t *testing.T) {
	ctx := context.Background()
	var album Album
	err := docbind.FromJSON(ctx, []byte(`{"album":{"year":1999}}`), &album)
	if !errors.Is(err, docbind.ErrRequiredFieldMissing) {
		t.Fatalf("expected ErrRequiredFieldMissing, got %v", err)
	}
	iss, _ := docbind.AsIssues(err)
	if iss[0].Path != "/title" || iss[0].Code != docbind.CodeRequired {
		t.Fatalf("unexpected issue %+v", iss[0])
	}
	// a null fragment is present, so it is not missing
	if err := docbind.FromJSON(ctx, []byte(`{"album":{"title":null}}`), &album); err != nil {
		t.Fatalf("null title should be accepted: %v", err)
	}
}

func TestDefaults_OnWrite(t *testing.T) {
	ctx := context.Background()
	s := docbind.Object().
		Property("nick").Default("anon").
		Property("age").
		Property("note").RenderNil().
		MustBuild()
	rec := docbind.NewRecord(s)
	out, err := docbind.ToJSON(ctx, rec)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if string(out) != `{"nick":"anon","note":null}` {
		t.Fatalf("unexpected JSON: %s", out)
	}
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	band := &Band{Name: "X", Members: []*Member{{Name: "A"}}}

	out, err := docbind.ToJSON(ctx, band, docbind.Include("name"))
	if err != nil || string(out) != `{"band":{"name":"X"}}` {
		t.Fatalf("include: %s %v", out, err)
	}
	out, err = docbind.ToJSON(ctx, band, docbind.Except("name"))
	if err != nil || string(out) != `{"band":{"members":[{"name":"A"}]}}` {
		t.Fatalf("except: %s %v", out, err)
	}

	_, err = docbind.ToJSON(ctx, band, docbind.Include("name"), docbind.Except("members"))
	if !errors.Is(err, docbind.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	err = docbind.FromJSON(ctx, []byte(bandJSON), &Band{}, docbind.Include("name"), docbind.Except("members"))
	if !errors.Is(err, docbind.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration on read, got %v", err)
	}

	parsed := Band{Members: []*Member{{Name: "old"}}}
	if err := docbind.FromJSON(ctx, []byte(bandJSON), &parsed, docbind.Include("name")); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if parsed.Name != "X" || len(parsed.Members) != 1 || parsed.Members[0].Name != "old" {
		t.Fatalf("include must only parse name, got %+v", parsed)
	}
}

func TestReadOnlyWriteOnly(t *testing.T) {
	ctx := context.Background()
	album := &Album{Title: "T", Internal: "secret", Summary: "sum"}
	h, err := docbind.ToHash(ctx, album)
	if err != nil {
		t.Fatalf("ToHash: %v", err)
	}
	body := h["album"].(map[string]any)
	if _, ok := body["internal"]; ok {
		t.Fatalf("write-only property must not be rendered")
	}
	if body["summary"] != "sum" {
		t.Fatalf("read-only property must be rendered, got %v", body["summary"])
	}

	var back Album
	data := `{"album":{"title":"T","internal":"in","summary":"ignored"}}`
	if err := docbind.FromJSON(ctx, []byte(data), &back); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if back.Internal != "in" || back.Summary != "" {
		t.Fatalf("unexpected album %+v", back)
	}
}

func TestNestedAndScalarCollections(t *testing.T) {
	ctx := context.Background()
	data := `{"album":{"title":"T","year":"1999","genres":["rock",7],"credits":{"mix":"Bob"},
		"artist":{"name":"Ann"},"tracks":[{"name":"One"},{"name":"Two"}]}}`
	var album Album
	if err := docbind.FromJSON(ctx, []byte(data), &album); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	want := Album{
		Title:   "T",
		Year:    1999,
		Genres:  []string{"rock", "7"},
		Credits: map[string]string{"mix": "Bob"},
		Artist:  &Member{Name: "Ann"},
		Tracks:  []*Member{{Name: "One"}, {Name: "Two"}},
	}
	if diff := cmp.Diff(want, album); diff != "" {
		t.Fatalf("album mismatch (-want +got):\n%s", diff)
	}
}

func TestCoercionErrorIsReturnedUnchanged(t *testing.T) {
	ctx := context.Background()
	var album Album
	err := docbind.FromJSON(ctx, []byte(`{"album":{"title":"T","year":"nineteen"}}`), &album)
	var ce *codec.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *codec.Error, got %T %v", err, err)
	}
	if _, ok := docbind.AsIssues(err); ok {
		t.Fatalf("coercion errors must not be wrapped in Issues")
	}
	if album.Title != "T" {
		t.Fatalf("properties before the failure stay applied, got %q", album.Title)
	}
}

func TestSync_PreservesIdentity(t *testing.T) {
	ctx := context.Background()
	lead := &Member{Name: "old", Instrument: "voice"}
	r1, r2, r3 := &Member{Name: "r1"}, &Member{Name: "r2"}, &Member{Name: "r3"}
	bass := &Member{Name: "b"}
	crew := &Crew{Lead: lead, Roadies: []*Member{r1, r2, r3}, ByRole: map[string]*Member{"bass": bass}}

	data := `{"lead":{"name":"new"},"roadies":[{"name":"a"},{"name":"b"}],"by_role":{"bass":{"name":"c"},"keys":{"name":"k"}}}`
	if err := docbind.FromJSON(ctx, []byte(data), crew); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if crew.Lead != lead || lead.Name != "new" || lead.Instrument != "voice" {
		t.Fatalf("sync must update the existing lead in place, got %+v", crew.Lead)
	}
	if len(crew.Roadies) != 2 || crew.Roadies[0] != r1 || crew.Roadies[1] != r2 {
		t.Fatalf("roadies must be paired by position and truncated, got %v", crew.Roadies)
	}
	if r1.Name != "a" || r2.Name != "b" || r3.Name != "r3" {
		t.Fatalf("unexpected roadie names %q %q %q", r1.Name, r2.Name, r3.Name)
	}
	if crew.ByRole["bass"] != bass || bass.Name != "c" || crew.ByRole["keys"].Name != "k" {
		t.Fatalf("map entries must be paired by key, got %v", crew.ByRole)
	}

	// extra document items are created normally
	data = `{"roadies":[{"name":"x"},{"name":"y"},{"name":"z"}]}`
	if err := docbind.FromJSON(ctx, []byte(data), crew); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if len(crew.Roadies) != 3 || crew.Roadies[0] != r1 || crew.Roadies[2].Name != "z" {
		t.Fatalf("unexpected roadies %v", crew.Roadies)
	}
}

func TestSync_PreservesIdentityPerFormat(t *testing.T) {
	docs := map[docbind.Format]string{
		docbind.FormatXML: `<crew><lead><name>new</name></lead>` +
			`<roadie><name>a</name></roadie><roadie><name>b</name></roadie>` +
			`<by_role><bass><name>c</name></bass><keys><name>k</name></keys></by_role></crew>`,
		docbind.FormatYAML: "lead:\n  name: new\nroadies:\n  - name: a\n  - name: b\n" +
			"by_role:\n  bass:\n    name: c\n  keys:\n    name: k\n",
	}
	for f, data := range docs {
		t.Run(f.String(), func(t *testing.T) {
			lead := &Member{Name: "old", Instrument: "voice"}
			r1, r2, r3 := &Member{Name: "r1"}, &Member{Name: "r2"}, &Member{Name: "r3"}
			bass := &Member{Name: "b"}
			crew := &Crew{Lead: lead, Roadies: []*Member{r1, r2, r3}, ByRole: map[string]*Member{"bass": bass}}

			if err := docbind.Parse(context.Background(), f, []byte(data), crew); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if crew.Lead != lead || lead.Name != "new" || lead.Instrument != "voice" {
				t.Fatalf("sync must update the existing lead in place, got %+v", crew.Lead)
			}
			if len(crew.Roadies) != 2 || crew.Roadies[0] != r1 || crew.Roadies[1] != r2 {
				t.Fatalf("roadies must be paired by position and truncated, got %v", crew.Roadies)
			}
			if r1.Name != "a" || r2.Name != "b" || r3.Name != "r3" {
				t.Fatalf("unexpected roadie names %q %q %q", r1.Name, r2.Name, r3.Name)
			}
			if crew.ByRole["bass"] != bass || bass.Name != "c" || crew.ByRole["keys"].Name != "k" {
				t.Fatalf("map entries must be paired by key, got %v", crew.ByRole)
			}
		})
	}
}

func TestWithoutSync_NewObjects(t *testing.T) {
	ctx := context.Background()
	artist := &Member{Name: "old"}
	album := &Album{Artist: artist}
	if err := docbind.FromJSON(ctx, []byte(`{"album":{"title":"T","artist":{"name":"new"}}}`), album); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if album.Artist == artist || artist.Name != "old" || album.Artist.Name != "new" {
		t.Fatalf("without sync a new object must be constructed")
	}
}

type Tour struct {
	Headliner *Member
	Support   []*Member
}

func TestInstanceAndClassHooks(t *testing.T) {
	ctx := context.Background()
	prepared := &Member{Instrument: "guitar"}
	current := &Member{Name: "current"}
	s := docbind.Object().
		Property("headliner").As(docbind.TypeOf[Member]()).
		Instance(func(c docbind.Call) (any, error) {
			if p, _ := c.Option("pool").(*Member); p != nil {
				return p, nil
			}
			return nil, nil
		}).
		Collection("support").As(docbind.TypeOf[Member]()).
		Class(func(c docbind.Call) (*docbind.Type, error) {
			m := c.Fragment.(*hashdoc.Map)
			if _, ok := m.Get("name"); !ok {
				return nil, errors.New("support act without name")
			}
			return nil, nil
		}).
		MustBuild()

	tour := &Tour{Headliner: current}
	data := []byte(`{"headliner":{"name":"H"},"support":[{"name":"S"}]}`)
	if err := docbind.FromJSON(ctx, data, docbind.Decorate(tour, s), docbind.WithValue("pool", prepared)); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if tour.Headliner != prepared || prepared.Name != "H" || prepared.Instrument != "guitar" {
		t.Fatalf("instance hook result must be used, got %+v", tour.Headliner)
	}
	if len(tour.Support) != 1 || tour.Support[0].Name != "S" {
		t.Fatalf("unexpected support %+v", tour.Support)
	}

	// nil from the factory falls back to the current value
	tour = &Tour{Headliner: current}
	if err := docbind.FromJSON(ctx, data, docbind.Decorate(tour, s)); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if tour.Headliner != current || current.Name != "H" {
		t.Fatalf("expected fallback to the current value, got %+v", tour.Headliner)
	}

	// and then to a fresh instance
	tour = &Tour{}
	if err := docbind.FromJSON(ctx, data, docbind.Decorate(tour, s)); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if tour.Headliner == nil || tour.Headliner.Name != "H" {
		t.Fatalf("expected a fresh instance, got %+v", tour.Headliner)
	}

	err := docbind.FromJSON(ctx, []byte(`{"support":[{}]}`), docbind.Decorate(&Tour{}, s))
	if err == nil || !strings.Contains(err.Error(), "without name") {
		t.Fatalf("class hook errors must propagate, got %v", err)
	}
}

type bandView struct {
	band *Band
}

var bandViewSchema = docbind.Object().
	Property("name").
	Getter(func(c docbind.Call) (any, error) {
		v := c.Exec.(*bandView)
		return strings.ToUpper(v.band.Name) + c.Option("suffix").(string), nil
	}).
	Setter(func(c docbind.Call) error {
		c.Represented.(*Band).Name = strings.ToLower(c.Value.(string))
		return nil
	}).
	Property("size").
	Writer(func(c docbind.Call) error {
		c.Fragment.(*hashdoc.Map).Set("size", len(c.Represented.(*Band).Members))
		return nil
	}).
	Reader(func(c docbind.Call) error { return nil }).
	MustBuild()

func (v *bandView) Represented() any                      { return v.band }
func (v *bandView) RepresentationSchema() *docbind.Schema { return bandViewSchema }

func TestDecorator_HooksRunAgainstDecorator(t *testing.T) {
	ctx := context.Background()
	band := &Band{Name: "x", Members: []*Member{{Name: "A"}}}
	out, err := docbind.ToJSON(ctx, &bandView{band: band}, docbind.WithValue("suffix", "!"))
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if string(out) != `{"name":"X!","size":1}` {
		t.Fatalf("unexpected JSON %s", out)
	}
	if err := docbind.FromJSON(ctx, []byte(`{"name":"LOUD","size":9}`), &bandView{band: band}); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if band.Name != "loud" {
		t.Fatalf("setter must run, got %q", band.Name)
	}
}

func TestUnknownProperty(t *testing.T) {
	ctx := context.Background()
	s := docbind.Object().Property("nope").MustBuild()
	err := docbind.FromJSON(ctx, []byte(`{"nope":1}`), docbind.Decorate(&Member{}, s))
	iss, ok := docbind.AsIssues(err)
	if !ok || iss[0].Code != docbind.CodeUnknownProperty {
		t.Fatalf("expected unknown_property, got %v", err)
	}
}

func TestLoggerTracesDefaults(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	var album Album
	if err := docbind.FromJSON(ctx, []byte(`{"album":{"title":"T"}}`), &album, docbind.WithLogger(zap.New(core))); err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if logs.FilterMessage("default applied").Len() == 0 {
		t.Fatalf("expected default applied debug entries, got %v", logs.All())
	}
	if logs.FilterMessage("fragment not found").Len() == 0 {
		t.Fatalf("expected fragment not found debug entries")
	}
}
