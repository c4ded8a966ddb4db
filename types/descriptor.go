package types

// Kind identifies the shape a draft descriptor accepts.
type Kind string

const (
	KindAny           Kind = "any"
	KindArray         Kind = "array"
	KindBinary        Kind = "binary"
	KindBoolean       Kind = "boolean"
	KindConstant      Kind = "constant"
	KindDate          Kind = "date"
	KindDecimal       Kind = "decimal"
	KindEnum          Kind = "enum"
	KindNull          Kind = "null"
	KindNumber        Kind = "number"
	KindObject        Kind = "object"
	KindObjectGeneric Kind = "objectGeneric"
	KindObjectID      Kind = "objectId"
	KindOneOf         Kind = "oneOf"
	KindString        Kind = "string"
)

// Kinds lists every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindAny, KindArray, KindBinary, KindBoolean, KindConstant, KindDate,
		KindDecimal, KindEnum, KindNull, KindNumber, KindObject,
		KindObjectGeneric, KindObjectID, KindOneOf, KindString,
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	for _, c := range Kinds() {
		if c == k {
			return true
		}
	}
	return false
}

// Descriptor is a draft type descriptor as produced by the builders in this
// package. Required is a construction-time marker telling the enclosing object
// that this member must be present; it has no meaning on its own and is
// dropped when the descriptor is published.
type Descriptor struct {
	Kind        Kind
	Required    bool
	Description string

	// object
	Properties           Fields
	AdditionalProperties bool
	// objectGeneric
	PatternProperties map[string]*Descriptor

	// array
	Items       *Descriptor
	MinItems    *int
	MaxItems    *int
	UniqueItems bool

	// string
	MinLength *int
	MaxLength *int
	Pattern   string

	// number
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MultipleOf       *float64

	// enum / constant / oneOf
	Enum  []any
	OneOf []*Descriptor
}

// Field is one named member of an object descriptor.
type Field struct {
	Name string
	Type *Descriptor
}

// F is shorthand for Field{Name: name, Type: d}.
func F(name string, d *Descriptor) Field { return Field{Name: name, Type: d} }

// Fields is an ordered list of object members. Order is significant: it is
// the order members appear in the published descriptor.
type Fields []Field

// Names returns member names in order.
func (fs Fields) Names() []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Name)
	}
	return out
}

// Lookup returns the first member called name.
func (fs Fields) Lookup(name string) (*Descriptor, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}
