// Package naming holds the naming collaborators used when deriving document
// names from accessor names: singularization for per-item tags and case
// conventions for XML tags and inferred wrap names.
package naming

import (
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// Convention converts an accessor-derived name into a document tag.
type Convention func(string) string

// Built-in conventions. Identity leaves names untouched.
var (
	Identity   Convention = func(s string) string { return s }
	Underscore Convention = strcase.ToSnake
	Dasherize  Convention = strcase.ToKebab
	CamelCase  Convention = strcase.ToCamel
	LowerCamel Convention = strcase.ToLowerCamel
)

// ByName resolves a convention by its configuration name ("", "identity",
// "underscore", "dasherize", "camelcase", "lower_camel").
func ByName(name string) (Convention, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "identity", "none":
		return Identity, true
	case "underscore", "snake":
		return Underscore, true
	case "dasherize", "kebab":
		return Dasherize, true
	case "camelcase", "camel":
		return CamelCase, true
	case "lower_camel", "lowercamel":
		return LowerCamel, true
	}
	return nil, false
}

// Singular returns the singular form of a plural accessor name. Names with a
// namespace prefix keep the prefix untouched.
func Singular(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[:i+1] + inflection.Singular(name[i+1:])
	}
	return inflection.Singular(name)
}

// TypeTag infers a document tag from a Go type name, e.g. "WeatherObservation"
// becomes "weather_observation". Package qualifiers and pointer markers are
// dropped.
func TypeTag(typeName string) string {
	typeName = strings.TrimLeft(typeName, "*")
	if i := strings.LastIndexByte(typeName, '.'); i >= 0 {
		typeName = typeName[i+1:]
	}
	if i := strings.IndexByte(typeName, '['); i >= 0 {
		typeName = typeName[:i]
	}
	return strcase.ToSnake(typeName)
}

// FieldKey is the accessor name derived from a Go struct field name.
func FieldKey(fieldName string) string { return strcase.ToSnake(fieldName) }
