package docbind_test

import (
	"time"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/codec"
)

type Member struct {
	Name       string
	Instrument string
}

var memberSchema = docbind.Object().
	Property("name").
	Property("instrument").OmitEmpty().
	MustBuild()

func (*Member) RepresentationSchema() *docbind.Schema { return memberSchema }

type Band struct {
	Name    string
	Members []*Member
}

var bandSchema = docbind.Object().Wrap("band").
	Property("name").
	Collection("members").As(docbind.TypeOf[Member]()).
	MustBuild()

func (*Band) RepresentationSchema() *docbind.Schema { return bandSchema }

type Album struct {
	Title    string
	Year     int
	Label    string
	Genres   []string
	Credits  map[string]string
	Released time.Time
	Artist   *Member
	Tracks   []*Member
	Internal string
	Summary  string
}

var albumSchema = docbind.Object().WrapInferred().
	Property("title").Required().
	Property("year").As(codec.Int).Default(1970).
	Property("label").
	Property("genres").As(docbind.ArrayOf(codec.String)).
	Hash("credits").
	Property("released").As(codec.Date).
	Property("artist").As(docbind.TypeOf[Member]()).
	Collection("tracks").As(docbind.TypeOf[Member]()).
	Property("internal").WriteOnly().
	Property("summary").ReadOnly().
	MustBuild()

func (*Album) RepresentationSchema() *docbind.Schema { return albumSchema }

type Crew struct {
	Lead    *Member
	Roadies []*Member
	ByRole  map[string]*Member
}

var crewSchema = docbind.Object().
	Property("lead").As(docbind.TypeOf[Member]()).Sync().
	Collection("roadies").As(docbind.TypeOf[Member]()).Sync().
	Hash("by_role").As(docbind.TypeOf[Member]()).Sync().
	MustBuild()

func (*Crew) RepresentationSchema() *docbind.Schema { return crewSchema }

type Glossary struct {
	Entries map[string]string
}

var glossarySchema = docbind.Object().Wrap("glossary").
	Hash("entries").KeyValue(docbind.Text("word"), docbind.Text("meaning")).
	MustBuild()

func (*Glossary) RepresentationSchema() *docbind.Schema { return glossarySchema }
