// Package convert assigns decoded document values to Go destinations of
// arbitrary shape: scalars, pointers, slices, arrays and maps.
package convert

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Error reports a value that cannot be stored in a destination type.
type Error struct {
	From   string
	To     reflect.Type
	Reason string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot assign %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot assign %s to %s", e.From, e.To)
}

func mismatch(src reflect.Value, dt reflect.Type, reason string) error {
	from := "nil"
	if src.IsValid() {
		from = src.Type().String()
	}
	return &Error{From: from, To: dt, Reason: reason}
}

// Assign stores v into dst, converting where a lossless conversion exists.
// A nil v stores the zero value.
func Assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	return assign(dst, reflect.ValueOf(v))
}

// To converts v into a value of type T.
func To[T any](v any) (T, error) {
	var out T
	err := Assign(reflect.ValueOf(&out).Elem(), v)
	return out, err
}

func assign(dst, src reflect.Value) error {
	dt := dst.Type()
	if !src.IsValid() {
		dst.Set(reflect.Zero(dt))
		return nil
	}
	if src.Type().AssignableTo(dt) {
		dst.Set(src)
		return nil
	}
	switch src.Kind() {
	case reflect.Interface:
		if src.IsNil() {
			dst.Set(reflect.Zero(dt))
			return nil
		}
		return assign(dst, src.Elem())
	case reflect.Pointer:
		if src.IsNil() {
			dst.Set(reflect.Zero(dt))
			return nil
		}
		if dst.Kind() != reflect.Pointer {
			return assign(dst, src.Elem())
		}
	}

	switch dst.Kind() {
	case reflect.Pointer:
		nv := reflect.New(dt.Elem())
		if err := assign(nv.Elem(), src); err != nil {
			return err
		}
		dst.Set(nv)
		return nil
	case reflect.String:
		return assignString(dst, src)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return assignInt(dst, src)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return assignUint(dst, src)
	case reflect.Float32, reflect.Float64:
		return assignFloat(dst, src)
	case reflect.Bool:
		return assignBool(dst, src)
	case reflect.Slice:
		return assignSlice(dst, src)
	case reflect.Array:
		return assignArray(dst, src)
	case reflect.Map:
		return assignMap(dst, src)
	}
	if src.Kind() == dst.Kind() && src.Type().ConvertibleTo(dt) {
		dst.Set(src.Convert(dt))
		return nil
	}
	return mismatch(src, dt, "")
}

func assignString(dst, src reflect.Value) error {
	switch src.Kind() {
	case reflect.String:
		dst.SetString(src.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetString(strconv.FormatInt(src.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dst.SetString(strconv.FormatUint(src.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		dst.SetString(strconv.FormatFloat(src.Float(), 'g', -1, 64))
	case reflect.Bool:
		dst.SetString(strconv.FormatBool(src.Bool()))
	default:
		if s, ok := src.Interface().(fmt.Stringer); ok {
			dst.SetString(s.String())
			return nil
		}
		return mismatch(src, dst.Type(), "")
	}
	return nil
}

func assignInt(dst, src reflect.Value) error {
	var n int64
	switch src.Kind() {
	case reflect.String:
		s := strings.TrimSpace(src.String())
		if s == "" {
			dst.SetInt(0)
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil || f != math.Trunc(f) {
				return mismatch(src, dst.Type(), err.Error())
			}
			if !inInt64Range(f) {
				return mismatch(src, dst.Type(), "overflow")
			}
			v = int64(f)
		}
		n = v
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = src.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := src.Uint()
		if u > math.MaxInt64 {
			return mismatch(src, dst.Type(), "overflow")
		}
		n = int64(u)
	case reflect.Float32, reflect.Float64:
		f := src.Float()
		if f != math.Trunc(f) {
			return mismatch(src, dst.Type(), "fractional value")
		}
		if !inInt64Range(f) {
			return mismatch(src, dst.Type(), "overflow")
		}
		n = int64(f)
	default:
		return mismatch(src, dst.Type(), "")
	}
	if dst.OverflowInt(n) {
		return mismatch(src, dst.Type(), "overflow")
	}
	dst.SetInt(n)
	return nil
}

func assignUint(dst, src reflect.Value) error {
	tmp := reflect.New(reflect.TypeOf(int64(0))).Elem()
	if src.Kind() == reflect.Uint || src.Kind() == reflect.Uint64 || src.Kind() == reflect.Uint32 ||
		src.Kind() == reflect.Uint16 || src.Kind() == reflect.Uint8 {
		u := src.Uint()
		if dst.OverflowUint(u) {
			return mismatch(src, dst.Type(), "overflow")
		}
		dst.SetUint(u)
		return nil
	}
	if err := assignInt(tmp, src); err != nil {
		return mismatch(src, dst.Type(), "")
	}
	n := tmp.Int()
	if n < 0 || dst.OverflowUint(uint64(n)) {
		return mismatch(src, dst.Type(), "overflow")
	}
	dst.SetUint(uint64(n))
	return nil
}

func assignFloat(dst, src reflect.Value) error {
	var f float64
	switch src.Kind() {
	case reflect.String:
		s := strings.TrimSpace(src.String())
		if s == "" {
			dst.SetFloat(0)
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return mismatch(src, dst.Type(), err.Error())
		}
		f = v
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(src.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f = float64(src.Uint())
	case reflect.Float32, reflect.Float64:
		f = src.Float()
	default:
		return mismatch(src, dst.Type(), "")
	}
	if dst.OverflowFloat(f) {
		return mismatch(src, dst.Type(), "overflow")
	}
	dst.SetFloat(f)
	return nil
}

// inInt64Range reports whether the whole number f converts to int64 exactly.
// float64(math.MaxInt64) rounds up to 2^63, hence the strict bound.
func inInt64Range(f float64) bool {
	return f >= math.MinInt64 && f < math.MaxInt64
}

func assignBool(dst, src reflect.Value) error {
	switch src.Kind() {
	case reflect.Bool:
		dst.SetBool(src.Bool())
		return nil
	case reflect.String:
		switch strings.ToLower(strings.TrimSpace(src.String())) {
		case "true", "yes", "1":
			dst.SetBool(true)
			return nil
		case "false", "no", "0", "":
			dst.SetBool(false)
			return nil
		}
	}
	return mismatch(src, dst.Type(), "")
}

func assignSlice(dst, src reflect.Value) error {
	switch src.Kind() {
	case reflect.Slice:
		if src.IsNil() {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
	case reflect.Array:
	default:
		return mismatch(src, dst.Type(), "expected a list")
	}
	out := reflect.MakeSlice(dst.Type(), src.Len(), src.Len())
	for i := 0; i < src.Len(); i++ {
		if err := assign(out.Index(i), src.Index(i)); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	dst.Set(out)
	return nil
}

func assignArray(dst, src reflect.Value) error {
	if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
		return mismatch(src, dst.Type(), "expected a list")
	}
	if src.Len() > dst.Len() {
		return mismatch(src, dst.Type(), "too many elements")
	}
	for i := 0; i < dst.Len(); i++ {
		if i >= src.Len() {
			dst.Index(i).Set(reflect.Zero(dst.Type().Elem()))
			continue
		}
		if err := assign(dst.Index(i), src.Index(i)); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return nil
}

func assignMap(dst, src reflect.Value) error {
	if src.Kind() != reflect.Map {
		return mismatch(src, dst.Type(), "expected a map")
	}
	if src.IsNil() {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	dt := dst.Type()
	out := reflect.MakeMapWithSize(dt, src.Len())
	iter := src.MapRange()
	for iter.Next() {
		k := reflect.New(dt.Key()).Elem()
		if err := assign(k, iter.Key()); err != nil {
			return fmt.Errorf("key %v: %w", iter.Key(), err)
		}
		v := reflect.New(dt.Elem()).Elem()
		if err := assign(v, iter.Value()); err != nil {
			return fmt.Errorf("key %v: %w", iter.Key(), err)
		}
		out.SetMapIndex(k, v)
	}
	dst.Set(out)
	return nil
}
