package docskema

import "github.com/reoring/docskema/jsonschema"

// Result is what Schema hands to the model layer: the published descriptor
// plus the configuration that travels with it. Defaults and the validation
// settings live next to the descriptor, never inside it.
type Result struct {
	Descriptor       *jsonschema.Schema
	Defaults         map[string]any
	ValidationAction ValidationAction
	ValidationLevel  ValidationLevel
	// Timestamps records whether createdAt/updatedAt are managed members.
	Timestamps bool
}

// JSONSchema returns the published descriptor.
func (r *Result) JSONSchema() *jsonschema.Schema { return r.Descriptor }

// Validator returns the validator document, {"$jsonSchema": descriptor}.
func (r *Result) Validator() map[string]any {
	return map[string]any{"$jsonSchema": r.Descriptor}
}

// Default returns the default value registered for field, if any.
func (r *Result) Default(field string) (any, bool) {
	if r.Defaults == nil {
		return nil, false
	}
	v, ok := r.Defaults[field]
	return v, ok
}
