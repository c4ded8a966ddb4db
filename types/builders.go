package types

// DefaultPattern is the key pattern ObjectGeneric uses when none is given.
const DefaultPattern = ".+"

// Any accepts any BSON value.
func Any(opts ...Option) *Descriptor { return build(KindAny, opts) }

// Array accepts a list whose elements match items.
func Array(items *Descriptor, opts ...Option) *Descriptor {
	d := build(KindArray, opts)
	d.Items = items
	return d
}

// Binary accepts BSON binary data.
func Binary(opts ...Option) *Descriptor { return build(KindBinary, opts) }

func Boolean(opts ...Option) *Descriptor { return build(KindBoolean, opts) }

// Constant accepts exactly v.
func Constant(v any, opts ...Option) *Descriptor {
	d := build(KindConstant, opts)
	d.Enum = []any{v}
	return d
}

// Date accepts BSON dates.
func Date(opts ...Option) *Descriptor { return build(KindDate, opts) }

// Decimal accepts 128-bit decimals.
func Decimal(opts ...Option) *Descriptor { return build(KindDecimal, opts) }

// Enum accepts one of values.
func Enum(values []any, opts ...Option) *Descriptor {
	d := build(KindEnum, opts)
	d.Enum = append([]any(nil), values...)
	return d
}

func Null(opts ...Option) *Descriptor { return build(KindNull, opts) }

func Number(opts ...Option) *Descriptor { return build(KindNumber, opts) }

// Object accepts a nested document with the given members. Undeclared members
// are rejected unless AllowAdditional is passed.
func Object(fields Fields, opts ...Option) *Descriptor {
	d := &Descriptor{Kind: KindObject, Properties: append(Fields(nil), fields...)}
	return apply(d, opts)
}

// ObjectGeneric accepts a document whose keys match pattern and whose values
// all match value. An empty pattern means DefaultPattern.
func ObjectGeneric(value *Descriptor, pattern string, opts ...Option) *Descriptor {
	if pattern == "" {
		pattern = DefaultPattern
	}
	d := build(KindObjectGeneric, opts)
	d.PatternProperties = map[string]*Descriptor{pattern: value}
	return d
}

// ObjectID accepts datastore identity references.
func ObjectID(opts ...Option) *Descriptor { return build(KindObjectID, opts) }

// OneOf accepts a value matching exactly one of ds.
func OneOf(ds []*Descriptor, opts ...Option) *Descriptor {
	d := build(KindOneOf, opts)
	d.OneOf = append([]*Descriptor(nil), ds...)
	return d
}

func String(opts ...Option) *Descriptor { return build(KindString, opts) }

func build(k Kind, opts []Option) *Descriptor {
	return apply(&Descriptor{Kind: k}, opts)
}
