package hashdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	j "github.com/goccy/go-json"
)

// ErrEmptyDocument is returned when decoding input without any JSON value.
var ErrEmptyDocument = errors.New("hashdoc: empty document")

// DuplicateKeyError reports an object key seen twice while decoding.
type DuplicateKeyError struct {
	Path string // JSON Pointer of the object holding the key.
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	p := e.Path
	if p == "" {
		p = "/"
	}
	return fmt.Sprintf("hashdoc: duplicate key %q at %s", e.Key, p)
}

// MarshalJSON renders the entries in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := j.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := j.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("hashdoc: key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the content of m with a decoded JSON object.
func (m *Map) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	src, ok := v.(*Map)
	if !ok {
		return fmt.Errorf("hashdoc: expected JSON object, got %T", v)
	}
	*m = *src
	return nil
}

// Encode renders v as JSON. A non-empty indent pretty-prints the output.
func Encode(v any, indent string) ([]byte, error) {
	b, err := j.Marshal(v)
	if err != nil {
		return nil, err
	}
	if indent == "" {
		return b, nil
	}
	var out bytes.Buffer
	if err := j.Indent(&out, b, "", indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decode parses one JSON value. Objects become *Map (key order preserved),
// arrays []any and numbers json.Number.
func Decode(data []byte) (any, error) {
	return DecodeReader(bytes.NewReader(data))
}

// DecodeReader is like Decode but reads from r.
func DecodeReader(r io.Reader) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, err
	}
	v, err := readValue(dec, tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, errors.New("hashdoc: trailing data after JSON value")
	}
	return v, nil
}

func readValue(dec *j.Decoder, tok any, path string) (any, error) {
	switch t := tok.(type) {
	case j.Delim:
		switch t {
		case '{':
			m := New()
			for {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				if d, ok := kt.(j.Delim); ok && d == '}' {
					return m, nil
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("hashdoc: expected object key, got %v", kt)
				}
				if m.Has(key) {
					return nil, &DuplicateKeyError{Path: path, Key: key}
				}
				vt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				v, err := readValue(dec, vt, path+"/"+escape(key))
				if err != nil {
					return nil, err
				}
				m.Set(key, v)
			}
		case '[':
			arr := []any{}
			for {
				it, err := dec.Token()
				if err != nil {
					return nil, err
				}
				if d, ok := it.(j.Delim); ok && d == ']' {
					return arr, nil
				}
				v, err := readValue(dec, it, fmt.Sprintf("%s/%d", path, len(arr)))
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
		}
		return nil, fmt.Errorf("hashdoc: unexpected delimiter %v", t)
	case j.Number:
		return json.Number(t), nil
	case string, bool, float64, nil:
		return t, nil
	}
	return nil, fmt.Errorf("hashdoc: unexpected token %T", tok)
}

func escape(key string) string {
	return strings.ReplaceAll(strings.ReplaceAll(key, "~", "~0"), "/", "~1")
}
