package types

// Option tweaks a descriptor while it is being built. Options that do not
// apply to a kind are ignored by the publisher (e.g. MinLength on a number).
type Option func(*Descriptor)

// Required marks the member as required in its enclosing object.
func Required() Option { return func(d *Descriptor) { d.Required = true } }

// Description attaches a human readable description.
func Description(s string) Option { return func(d *Descriptor) { d.Description = s } }

// AllowAdditional lets an object accept members it does not declare.
func AllowAdditional() Option { return func(d *Descriptor) { d.AdditionalProperties = true } }

func MinLength(n int) Option { return func(d *Descriptor) { d.MinLength = &n } }
func MaxLength(n int) Option { return func(d *Descriptor) { d.MaxLength = &n } }
func Pattern(p string) Option { return func(d *Descriptor) { d.Pattern = p } }

func Minimum(x float64) Option { return func(d *Descriptor) { d.Minimum = &x } }
func Maximum(x float64) Option { return func(d *Descriptor) { d.Maximum = &x } }

// ExclusiveMinimum sets the lower bound and makes it exclusive.
func ExclusiveMinimum(x float64) Option {
	return func(d *Descriptor) {
		d.Minimum = &x
		d.ExclusiveMinimum = true
	}
}

// ExclusiveMaximum sets the upper bound and makes it exclusive.
func ExclusiveMaximum(x float64) Option {
	return func(d *Descriptor) {
		d.Maximum = &x
		d.ExclusiveMaximum = true
	}
}

func MultipleOf(x float64) Option { return func(d *Descriptor) { d.MultipleOf = &x } }

func MinItems(n int) Option { return func(d *Descriptor) { d.MinItems = &n } }
func MaxItems(n int) Option { return func(d *Descriptor) { d.MaxItems = &n } }
func UniqueItems() Option { return func(d *Descriptor) { d.UniqueItems = true } }

// OneOfValues restricts a string or number to a fixed set of values.
func OneOfValues(values ...any) Option {
	return func(d *Descriptor) { d.Enum = append([]any(nil), values...) }
}

func apply(d *Descriptor, opts []Option) *Descriptor {
	for _, o := range opts {
		if o != nil {
			o(d)
		}
	}
	return d
}
