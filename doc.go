// Package docbind maps Go entities to and from structured documents: hash
// documents (JSON), XML element trees and YAML node trees.
//
// - Entities declare an ordered Schema of property Definitions (Object/Inherit builders)
// - Each Definition becomes a per-format Binding at traversal time (scalar, collection, map, attribute, content)
// - Nested entities recurse through the same read/write passes; Sync reuses existing objects in place
// - Errors are reported as Issues (JSON Pointer, code, message); coercion errors pass through unchanged
//
// Design policy:
// - Keep only public APIs in the root package; document adapters live in hashdoc/, xmldoc/ and yamldoc/.
// - Coercion hooks live in codec/, naming rules in naming/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	var bandSchema = docbind.Object().Wrap("band").
//		Property("name").Required().
//		Collection("members").As(docbind.TypeOf[Member]()).
//		MustBuild()
//
//	func (*Band) RepresentationSchema() *docbind.Schema { return bandSchema }
//
//	err := docbind.FromJSON(ctx, data, &band)
//	out, err := docbind.ToXML(ctx, &band)
package docbind
