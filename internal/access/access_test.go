package access_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/reoring/docbind/internal/access"
)

type Base struct {
	ID int `json:"id"`
}

type Song struct {
	Base
	Title      string
	TrackNo    int    `json:"track,omitempty"`
	Composer   string `docbind:"writer"`
	Hidden     string `json:"-"`
	lyrics     string
	Collection []string
}

type bag map[string]any

func (b bag) GetProperty(name string) (any, error) { return b[name], nil }
func (b bag) SetProperty(name string, v any) error  { b[name] = v; return nil }

func TestGetSet_StructFields(t *testing.T) {
	s := &Song{}
	if err := access.Set(s, "title", "Roxanne"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if err := access.Set(s, "track", "3"); err != nil {
		t.Fatalf("set track: %v", err)
	}
	if err := access.Set(s, "writer", "Sting"); err != nil {
		t.Fatalf("set writer: %v", err)
	}
	if err := access.Set(s, "id", int64(9)); err != nil {
		t.Fatalf("set promoted id: %v", err)
	}
	if s.Title != "Roxanne" || s.TrackNo != 3 || s.Composer != "Sting" || s.ID != 9 {
		t.Fatalf("unexpected song: %+v", s)
	}
	v, err := access.Get(s, "Title")
	if err != nil || v != "Roxanne" {
		t.Fatalf("get by Go field name: %v %v", v, err)
	}
}

func TestGetSet_Unknown(t *testing.T) {
	s := &Song{}
	if access.Has(s, "Hidden") {
		t.Fatalf("fields tagged \"-\" must be disabled")
	}
	_, err := access.Get(s, "lyrics")
	if !errors.Is(err, access.ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
	if access.Has(s, "nope") {
		t.Fatalf("unexpected property")
	}
}

func TestSet_NonPointer(t *testing.T) {
	if err := access.Set(Song{}, "title", "x"); err == nil {
		t.Fatalf("expected error for non-pointer entity")
	}
}

func TestAccessorEntity(t *testing.T) {
	b := bag{}
	if err := access.Set(b, "anything", 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := access.Get(b, "anything"); v != 1 {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestKeys(t *testing.T) {
	got := access.Keys(reflect.TypeOf(&Song{}))
	want := []string{"id", "title", "track", "writer", "collection"}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("keys mismatch: want %v got %v", want, got)
	}
}
