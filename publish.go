package docskema

import (
	"github.com/reoring/docskema/jsonschema"
	"github.com/reoring/docskema/types"
)

// anyBSONTypes is every BSON alias a member of kind "any" accepts.
var anyBSONTypes = []string{
	"array", "binData", "bool", "date", "null", "decimal",
	"double", "int", "long", "object", "objectId", "string",
}

// Publish converts a draft descriptor tree into a published one.
//
// The draft is not modified; the result shares no pointers with it. A member
// whose draft carries the Required marker is listed, in member order, in its
// parent's required array. The marker itself has no published form, so no
// node of the result can carry it. Publish(nil) is nil.
func Publish(d *types.Descriptor) *jsonschema.Schema {
	if d == nil {
		return nil
	}
	s := &jsonschema.Schema{Description: d.Description}
	switch d.Kind {
	case types.KindAny:
		s.BSONType = append(jsonschema.BSONTypes(nil), anyBSONTypes...)
	case types.KindArray:
		s.Type = "array"
		s.Items = Publish(d.Items)
		s.MinItems = clonePtr(d.MinItems)
		s.MaxItems = clonePtr(d.MaxItems)
		s.UniqueItems = d.UniqueItems
	case types.KindBinary:
		s.BSONType = jsonschema.BSONTypes{"binData"}
	case types.KindBoolean:
		s.Type = "boolean"
	case types.KindConstant, types.KindEnum:
		s.Enum = cloneValues(d.Enum)
	case types.KindDate:
		s.BSONType = jsonschema.BSONTypes{"date"}
	case types.KindDecimal:
		s.BSONType = jsonschema.BSONTypes{"decimal"}
	case types.KindNull:
		s.Type = "null"
	case types.KindNumber:
		s.Type = "number"
		s.Minimum = clonePtr(d.Minimum)
		s.Maximum = clonePtr(d.Maximum)
		s.ExclusiveMinimum = d.ExclusiveMinimum
		s.ExclusiveMaximum = d.ExclusiveMaximum
		s.MultipleOf = clonePtr(d.MultipleOf)
		s.Enum = cloneValues(d.Enum)
	case types.KindObject:
		publishObject(s, d)
	case types.KindObjectGeneric:
		s.Type = "object"
		s.AdditionalProperties = boolPtr(false)
		if len(d.PatternProperties) > 0 {
			s.PatternProperties = make(map[string]*jsonschema.Schema, len(d.PatternProperties))
			for pattern, v := range d.PatternProperties {
				s.PatternProperties[pattern] = Publish(v)
			}
		}
	case types.KindObjectID:
		s.BSONType = jsonschema.BSONTypes{"objectId"}
	case types.KindOneOf:
		s.OneOf = make([]*jsonschema.Schema, 0, len(d.OneOf))
		for _, alt := range d.OneOf {
			s.OneOf = append(s.OneOf, Publish(alt))
		}
	case types.KindString:
		s.Type = "string"
		s.MinLength = clonePtr(d.MinLength)
		s.MaxLength = clonePtr(d.MaxLength)
		s.Pattern = d.Pattern
		s.Enum = cloneValues(d.Enum)
	}
	return s
}

func publishObject(s *jsonschema.Schema, d *types.Descriptor) {
	s.Type = "object"
	s.AdditionalProperties = boolPtr(d.AdditionalProperties)
	s.Properties = jsonschema.NewProperties()
	for _, f := range d.Properties {
		s.Properties.Set(f.Name, Publish(f.Type))
		if f.Type != nil && f.Type.Required {
			s.Required = append(s.Required, f.Name)
		}
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneValues(vs []any) []any {
	if len(vs) == 0 {
		return nil
	}
	return append([]any(nil), vs...)
}

func boolPtr(b bool) *bool { return &b }
