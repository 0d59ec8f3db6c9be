package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// String keeps text as text; numbers and booleans are rendered with their
// canonical Go formatting.
var String Coercer = stringCoercer{}

// Int coerces to int64. Blank strings decode to nil and fractional input is
// an error.
var Int Coercer = intCoercer{}

// Float coerces to float64. Blank strings decode to nil.
var Float Coercer = floatCoercer{}

// Bool accepts true/yes/1 and false/no/0 in any case. Anything else decodes
// to nil.
var Bool Coercer = boolCoercer{}

type stringCoercer struct{}

func (stringCoercer) Name() string { return "string" }

func (stringCoercer) Decode(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case fmt.Stringer:
		return t.String(), nil
	}
	return fmt.Sprint(v), nil
}

func (c stringCoercer) Encode(v any) (any, error) { return c.Decode(v) }

type intCoercer struct{}

func (intCoercer) Name() string { return "int" }

func (c intCoercer) Decode(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if blank(t) {
			return nil, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, fail(c.Name(), v, err)
		}
		return n, nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return nil, fail(c.Name(), v, err)
		}
		return n, nil
	case float64:
		if t != math.Trunc(t) {
			return nil, fail(c.Name(), v, nil)
		}
		if t < math.MinInt64 || t >= math.MaxInt64 {
			return nil, fail(c.Name(), v, strconv.ErrRange)
		}
		return int64(t), nil
	case float32:
		return c.Decode(float64(t))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fail(c.Name(), v, strconv.ErrRange)
		}
		return int64(u), nil
	}
	return nil, fail(c.Name(), v, nil)
}

func (c intCoercer) Encode(v any) (any, error) { return c.Decode(v) }

type floatCoercer struct{}

func (floatCoercer) Name() string { return "float" }

func (c floatCoercer) Decode(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if blank(t) {
			return nil, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, fail(c.Name(), v, err)
		}
		return f, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fail(c.Name(), v, err)
		}
		return f, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return nil, fail(c.Name(), v, nil)
}

func (c floatCoercer) Encode(v any) (any, error) { return c.Decode(v) }

type boolCoercer struct{}

func (boolCoercer) Name() string { return "bool" }

func (c boolCoercer) Decode(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0":
			return false, nil
		}
		return nil, nil
	case json.Number:
		return c.Decode(t.String())
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return c.Decode(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return c.Decode(strconv.FormatUint(rv.Uint(), 10))
	}
	return nil, fail(c.Name(), v, nil)
}

func (c boolCoercer) Encode(v any) (any, error) { return c.Decode(v) }
