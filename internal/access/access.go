// Package access reads and writes entity properties by accessor name.
//
// Entities implementing Accessor are used as-is; any other entity must be a
// pointer to a struct whose fields are matched by key. The key of a field is
// resolved as docbind:"name" > json tag name > snake_case field name, and "-"
// disables the field. The Go field name itself also matches.
package access

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/reoring/docbind/internal/convert"
	"github.com/reoring/docbind/naming"
)

// Accessor lets an entity expose its properties without reflection.
type Accessor interface {
	GetProperty(name string) (any, error)
	SetProperty(name string, value any) error
}

// ErrUnknownProperty is returned when an entity has no property for a name.
var ErrUnknownProperty = errors.New("unknown property")

// Get returns the current value of the named property of obj.
func Get(obj any, name string) (any, error) {
	if a, ok := obj.(Accessor); ok {
		return a.GetProperty(name)
	}
	sv, err := structValue(obj)
	if err != nil {
		return nil, err
	}
	idx, ok := lookup(sv.Type(), name)
	if !ok {
		return nil, fmt.Errorf("%w %q on %T", ErrUnknownProperty, name, obj)
	}
	fv, err := sv.FieldByIndexErr(idx)
	if err != nil {
		// nil embedded pointer on the way to the field
		return nil, nil
	}
	return fv.Interface(), nil
}

// Set assigns value to the named property of obj, converting it to the
// field type when needed.
func Set(obj any, name string, value any) error {
	if a, ok := obj.(Accessor); ok {
		return a.SetProperty(name, value)
	}
	sv, err := structValue(obj)
	if err != nil {
		return err
	}
	if !sv.CanSet() {
		return fmt.Errorf("cannot set %q on non-pointer %T", name, obj)
	}
	idx, ok := lookup(sv.Type(), name)
	if !ok {
		return fmt.Errorf("%w %q on %T", ErrUnknownProperty, name, obj)
	}
	fv := fieldForSet(sv, idx)
	if err := convert.Assign(fv, value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Has reports whether obj exposes the named property. Accessor entities
// always report true.
func Has(obj any, name string) bool {
	if _, ok := obj.(Accessor); ok {
		return true
	}
	sv, err := structValue(obj)
	if err != nil {
		return false
	}
	_, ok := lookup(sv.Type(), name)
	return ok
}

// Keys lists the property keys of a struct type in declaration order.
func Keys(t reflect.Type) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return fieldsOf(t).keys
}

// ResolveKey applies the field key rule to one struct field.
func ResolveKey(sf reflect.StructField) string {
	if dt := sf.Tag.Get("docbind"); dt != "" {
		name, _, _ := strings.Cut(dt, ",")
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if name, _, _ := strings.Cut(jt, ","); name != "" {
			return name
		}
	}
	return naming.FieldKey(sf.Name)
}

func structValue(obj any) (reflect.Value, error) {
	if obj == nil {
		return reflect.Value{}, errors.New("nil entity")
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil entity %T", obj)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("entity %T is not a struct", obj)
	}
	return v, nil
}

// fieldForSet walks idx allocating nil embedded pointers.
func fieldForSet(v reflect.Value, idx []int) reflect.Value {
	for i, x := range idx {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

type fieldSet struct {
	byKey map[string][]int
	keys  []string
}

var cache sync.Map // reflect.Type -> *fieldSet

func lookup(t reflect.Type, name string) ([]int, bool) {
	idx, ok := fieldsOf(t).byKey[name]
	return idx, ok
}

func fieldsOf(t reflect.Type) *fieldSet {
	if fs, ok := cache.Load(t); ok {
		return fs.(*fieldSet)
	}
	fs := &fieldSet{byKey: map[string][]int{}}
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		key := ResolveKey(sf)
		if key == "-" {
			continue
		}
		if _, dup := fs.byKey[key]; !dup {
			fs.byKey[key] = sf.Index
			fs.keys = append(fs.keys, key)
		}
		if _, dup := fs.byKey[sf.Name]; !dup {
			fs.byKey[sf.Name] = sf.Index
		}
	}
	actual, _ := cache.LoadOrStore(t, fs)
	return actual.(*fieldSet)
}
