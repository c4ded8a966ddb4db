package types

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// bsonTypeExtra is the jsonschema_extras key that pins a field to a BSON kind
// JSON Schema reflection cannot infer, e.g.
//
//	Owner [12]byte `bson:"owner" jsonschema_extras:"bsonType=objectId"`
const bsonTypeExtra = "bsonType"

// FromStruct reflects the exported fields of a struct (or pointer to struct)
// into draft members. Member names come from `bson` tags, a field without
// `omitempty` is required, time.Time becomes a date and []byte binary data.
// Members whose name appears in skip are left out; callers pass the
// structural names their composer injects itself.
func FromStruct(v any, skip ...string) (Fields, error) {
	if v == nil {
		return nil, fmt.Errorf("types: FromStruct expects a struct, got %T", v)
	}
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		FieldNameTag:   "bson",
	}
	s := r.Reflect(v)
	if s == nil || s.Type != "object" || s.Properties == nil {
		return nil, fmt.Errorf("types: FromStruct expects a struct, got %T", v)
	}
	fields, err := reflectedMembers(s, "")
	if err != nil {
		return nil, err
	}
	if len(skip) == 0 {
		return fields, nil
	}
	drop := make(map[string]struct{}, len(skip))
	for _, n := range skip {
		drop[n] = struct{}{}
	}
	out := fields[:0]
	for _, f := range fields {
		if _, ok := drop[f.Name]; ok {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func reflectedMembers(s *jsonschema.Schema, path string) (Fields, error) {
	required := make(map[string]struct{}, len(s.Required))
	for _, n := range s.Required {
		required[n] = struct{}{}
	}
	fields := make(Fields, 0, s.Properties.Len())
	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		d, err := fromReflected(p.Value, path+"/"+p.Key)
		if err != nil {
			return nil, err
		}
		if _, ok := required[p.Key]; ok {
			d.Required = true
		}
		fields = append(fields, F(p.Key, d))
	}
	return fields, nil
}

func fromReflected(s *jsonschema.Schema, path string) (*Descriptor, error) {
	if s == nil {
		return Any(), nil
	}
	var d *Descriptor
	switch bt, _ := s.Extras[bsonTypeExtra].(string); bt {
	case "objectId":
		d = ObjectID()
	case "decimal":
		d = Decimal()
	case "binData":
		d = Binary()
	case "date":
		d = Date()
	case "":
	default:
		return nil, fmt.Errorf("types: unsupported bsonType %q at %s", bt, path)
	}
	if d != nil {
		d.Description = s.Description
		return d, nil
	}

	switch {
	case s.Const != nil:
		d = Constant(s.Const)
	case len(s.OneOf) > 0:
		alts := make([]*Descriptor, 0, len(s.OneOf))
		for i, alt := range s.OneOf {
			ad, err := fromReflected(alt, fmt.Sprintf("%s/oneOf/%d", path, i))
			if err != nil {
				return nil, err
			}
			alts = append(alts, ad)
		}
		d = OneOf(alts)
	case s.Type == "" && len(s.Enum) > 0:
		d = Enum(s.Enum)
	default:
		var err error
		if d, err = fromReflectedType(s, path); err != nil {
			return nil, err
		}
	}
	d.Description = s.Description
	return d, nil
}

func fromReflectedType(s *jsonschema.Schema, path string) (*Descriptor, error) {
	switch s.Type {
	case "":
		return Any(), nil
	case "null":
		return Null(), nil
	case "boolean":
		return Boolean(), nil
	case "string":
		switch {
		case s.Format == "date-time" || s.Format == "date":
			return Date(), nil
		case s.ContentEncoding == "base64":
			return Binary(), nil
		}
		d := String(Pattern(s.Pattern))
		d.MinLength = uintToInt(s.MinLength)
		d.MaxLength = uintToInt(s.MaxLength)
		if len(s.Enum) > 0 {
			d.Enum = s.Enum
		}
		return d, nil
	case "integer", "number":
		d := Number()
		d.Minimum = number(s.Minimum)
		d.Maximum = number(s.Maximum)
		d.MultipleOf = number(s.MultipleOf)
		if x := number(s.ExclusiveMinimum); x != nil {
			d.Minimum, d.ExclusiveMinimum = x, true
		}
		if x := number(s.ExclusiveMaximum); x != nil {
			d.Maximum, d.ExclusiveMaximum = x, true
		}
		if len(s.Enum) > 0 {
			d.Enum = s.Enum
		}
		return d, nil
	case "array":
		items, err := fromReflected(s.Items, path+"/items")
		if err != nil {
			return nil, err
		}
		d := Array(items)
		d.MinItems = uintToInt(s.MinItems)
		d.MaxItems = uintToInt(s.MaxItems)
		d.UniqueItems = s.UniqueItems
		return d, nil
	case "object":
		if s.Properties != nil {
			fields, err := reflectedMembers(s, path)
			if err != nil {
				return nil, err
			}
			return Object(fields), nil
		}
		for pattern, v := range s.PatternProperties {
			vd, err := fromReflected(v, path+"/patternProperties")
			if err != nil {
				return nil, err
			}
			return ObjectGeneric(vd, pattern), nil
		}
		if s.AdditionalProperties != nil && s.AdditionalProperties.Type != "" {
			vd, err := fromReflected(s.AdditionalProperties, path+"/additionalProperties")
			if err != nil {
				return nil, err
			}
			return ObjectGeneric(vd, ""), nil
		}
		return ObjectGeneric(Any(), ""), nil
	}
	return nil, fmt.Errorf("types: unsupported reflected type %q at %s", s.Type, path)
}

func uintToInt(p *uint64) *int {
	if p == nil {
		return nil
	}
	n := int(*p)
	return &n
}

func number(n json.Number) *float64 {
	if n == "" {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return &f
}
