// Package docskema defines document shapes for MongoDB-style collections.
//
// Package docskema provides:
//
// - Schema: assemble a collection descriptor from caller fields plus the
// structural members every document carries (_id, optional timestamps, __v)
// - Publish: turn draft descriptors from package types into the $jsonSchema
// dialect the datastore enforces, without builder-only markers
// - Result: the descriptor together with insert defaults and the validation
// action/level, as one value for the model layer
//
// Design policy:
// - Keep only the composer and its result in the root package; field builders
// live in types/, the published form in jsonschema/.
// - Draft and published descriptors are distinct types, so a published tree
// cannot carry a required marker.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := docskema.MustSchema(types.Fields{
//	    types.F("email", types.String(types.Required())),
//	    types.F("age", types.Number()),
//	}, docskema.Options{Timestamps: true, Defaults: map[string]any{"age": 18}})
//
//	cmd := validator.CollMod("users", user)
package docskema
