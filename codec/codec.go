// Package codec provides the scalar coercers that plug into the docbind
// coercion hook. A Coercer converts raw document values (strings from XML,
// numbers from JSON, typed scalars from YAML) into Go values on read and back
// into document scalars on write.
package codec

import (
	"fmt"
	"strings"
)

// Coercer converts between raw document scalars and Go values.
//
// Decode receives whatever the document adapter produced for a scalar
// fragment. A nil result means "no value" (for example a blank string).
// Encode receives the entity value and returns the scalar to store in the
// document.
type Coercer interface {
	Name() string
	Decode(v any) (any, error)
	Encode(v any) (any, error)
}

// Error reports a value that a coercer could not convert. It is returned
// unchanged through the binding engine.
type Error struct {
	Coercer string
	Input   any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("codec: %s: cannot coerce %#v: %v", e.Coercer, e.Input, e.Cause)
	}
	return fmt.Sprintf("codec: %s: cannot coerce %#v", e.Coercer, e.Input)
}

func (e *Error) Unwrap() error { return e.Cause }

func fail(name string, v any, cause error) error {
	return &Error{Coercer: name, Input: v, Cause: cause}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Func builds a Coercer from plain functions. A nil encode passes values
// through unchanged.
func Func(name string, decode, encode func(any) (any, error)) Coercer {
	return &funcCoercer{name: name, decode: decode, encode: encode}
}

type funcCoercer struct {
	name   string
	decode func(any) (any, error)
	encode func(any) (any, error)
}

func (c *funcCoercer) Name() string { return c.name }

func (c *funcCoercer) Decode(v any) (any, error) {
	if c.decode == nil {
		return v, nil
	}
	return c.decode(v)
}

func (c *funcCoercer) Encode(v any) (any, error) {
	if c.encode == nil {
		return v, nil
	}
	return c.encode(v)
}
