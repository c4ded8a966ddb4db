package jsonschema

import (
	json "github.com/goccy/go-json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NewProperties returns an empty member map. Members keep insertion order so
// the rendered validator lists them the way the collection declared them.
func NewProperties() *orderedmap.OrderedMap[string, *Schema] {
	return orderedmap.New[string, *Schema]()
}

// Schema is the published descriptor in the $jsonSchema dialect understood by
// the datastore validator. It intentionally has no notion of a per-node
// "required" flag: required members are listed on the parent object only.
type Schema struct {
	// Core
	BSONType    BSONTypes `json:"bsonType,omitempty"`
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`

	// Object
	Properties           *orderedmap.OrderedMap[string, *Schema] `json:"properties,omitempty"`
	Required             []string                                `json:"required,omitempty"`
	AdditionalProperties *bool                                   `json:"additionalProperties,omitempty"`
	PatternProperties    map[string]*Schema                      `json:"patternProperties,omitempty"`

	// Array
	Items       *Schema `json:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Number
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum bool     `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool     `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`

	// Enum / union
	Enum  []any     `json:"enum,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
}

// PropertyNames returns the object member names in insertion order.
func (s *Schema) PropertyNames() []string {
	if s == nil || s.Properties == nil {
		return nil
	}
	out := make([]string, 0, s.Properties.Len())
	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Property looks up a direct member by name.
func (s *Schema) Property(name string) (*Schema, bool) {
	if s == nil || s.Properties == nil {
		return nil, false
	}
	return s.Properties.Get(name)
}

// IsRequired reports whether name is listed in the object's required array.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// BSONTypes holds one or more BSON type aliases ("objectId", "date", ...).
// A single alias renders as a plain string, several as an array.
type BSONTypes []string

func (b BSONTypes) MarshalJSON() ([]byte, error) {
	if len(b) == 1 {
		return json.Marshal(b[0])
	}
	return json.Marshal([]string(b))
}

func (b *BSONTypes) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*b = BSONTypes{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*b = BSONTypes(many)
	return nil
}
