package codec_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/reoring/docbind/codec"
)

func TestInt_Decode(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{"792", int64(792)},
		{" 12 ", int64(12)},
		{"   ", nil},
		{json.Number("18"), int64(18)},
		{float64(3), int64(3)},
		{int32(7), int64(7)},
	}
	for _, c := range cases {
		got, err := codec.Int.Decode(c.in)
		if err != nil {
			t.Fatalf("decode %#v: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("decode %#v: got %#v want %#v", c.in, got, c.want)
		}
	}
}

func TestInt_DecodeFractionFails(t *testing.T) {
	_, err := codec.Int.Decode("792.13")
	if err == nil {
		t.Fatalf("expected error for fractional input")
	}
	var ce *codec.Error
	if !errors.As(err, &ce) || ce.Coercer != "int" {
		t.Fatalf("expected *codec.Error for int, got %T %v", err, err)
	}
}

func TestInt_DecodeOutOfRangeFails(t *testing.T) {
	for _, in := range []any{float64(1e20), float64(-1e20), float64(9.3e18), "1e20", json.Number("1e20")} {
		got, err := codec.Int.Decode(in)
		var ce *codec.Error
		if !errors.As(err, &ce) {
			t.Fatalf("decode %#v: expected *codec.Error, got %#v %v", in, got, err)
		}
	}
	got, err := codec.Int.Decode(float64(-9223372036854775808))
	if err != nil || got != int64(math.MinInt64) {
		t.Fatalf("MinInt64 must decode exactly: %v %v", got, err)
	}
}

func TestFloat_Decode(t *testing.T) {
	got, err := codec.Float.Decode("792.13")
	if err != nil || got != 792.13 {
		t.Fatalf("unexpected: %v %v", got, err)
	}
	got, err = codec.Float.Decode("240")
	if err != nil || got != 240.0 {
		t.Fatalf("unexpected: %v %v", got, err)
	}
	got, err = codec.Float.Decode("  ")
	if err != nil || got != nil {
		t.Fatalf("blank must decode to nil: %v %v", got, err)
	}
}

func TestBool_Decode(t *testing.T) {
	cases := map[string]any{
		"TrUe": true, "1": true, "yes": true,
		"FALSE": false, "0": false, "No": false,
		"328": nil,
	}
	for in, want := range cases {
		got, err := codec.Bool.Decode(in)
		if err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("decode %q: got %#v want %#v", in, got, want)
		}
	}
}

func TestTime_RoundTrip(t *testing.T) {
	in := "2025-01-01T00:00:00Z"
	got, err := codec.Time.Decode(in)
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !got.(time.Time).Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", got)
	}
	out, err := codec.Time.Encode(got)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if out != in {
		t.Fatalf("roundtrip mismatch: %v != %s", out, in)
	}
}

func TestTime_InvalidInput(t *testing.T) {
	if _, err := codec.Time.Decode("September 3rd, 1970"); err == nil {
		t.Fatalf("expected error for non RFC3339 input")
	}
}

func TestDate_RoundTrip(t *testing.T) {
	got, err := codec.Date.Decode("1776-07-04")
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	out, err := codec.Date.Encode(got)
	if err != nil || out != "1776-07-04" {
		t.Fatalf("unexpected encode: %v %v", out, err)
	}
}

func TestString_Decode(t *testing.T) {
	got, _ := codec.String.Decode(json.Number("42"))
	if got != "42" {
		t.Fatalf("unexpected: %#v", got)
	}
	got, _ = codec.String.Decode(true)
	if got != "true" {
		t.Fatalf("unexpected: %#v", got)
	}
}

func TestFunc_Coercer(t *testing.T) {
	upper := codec.Func("upper", func(v any) (any, error) {
		s, _ := v.(string)
		return s + "!", nil
	}, nil)
	got, _ := upper.Decode("hi")
	if got != "hi!" {
		t.Fatalf("unexpected: %#v", got)
	}
	enc, _ := upper.Encode("hi")
	if enc != "hi" {
		t.Fatalf("nil encode must pass through: %#v", enc)
	}
}
