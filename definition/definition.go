// Package definition loads collection schemas declared in YAML.
//
// A definition stream holds one collection per YAML document:
//
//	name: users
//	timestamps: true
//	validationAction: warn
//	defaults:
//	  active: true
//	fields:
//	  - name: email
//	    type: string
//	    required: true
//	    pattern: "^.+@.+$"
//	  - name: tags
//	    type: array
//	    items: {type: string}
//	---
//	name: orders
//	fields: ...
//
// Field types are the kind names of package types (string, number, object,
// objectId, ...).
package definition

import (
	"strconv"

	"github.com/reoring/docskema"
	"github.com/reoring/docskema/i18n"
	"github.com/reoring/docskema/types"
)

// Collection is one collection definition.
type Collection struct {
	Name             string         `yaml:"name" json:"name"`
	Timestamps       bool           `yaml:"timestamps" json:"timestamps"`
	ValidationAction string         `yaml:"validationAction" json:"validationAction"`
	ValidationLevel  string         `yaml:"validationLevel" json:"validationLevel"`
	Defaults         map[string]any `yaml:"defaults" json:"defaults"`
	Fields           []Field        `yaml:"fields" json:"fields"`

	// path is the JSON Pointer prefix used in issues.
	path string
}

// Field declares one member. Name is ignored for array items and oneOf
// alternatives.
type Field struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Required    bool   `yaml:"required" json:"required"`
	Description string `yaml:"description" json:"description"`

	// enum / constant
	Enum  []any `yaml:"enum" json:"enum"`
	Value any   `yaml:"value" json:"value"`

	// string
	MinLength *int   `yaml:"minLength" json:"minLength"`
	MaxLength *int   `yaml:"maxLength" json:"maxLength"`
	Pattern   string `yaml:"pattern" json:"pattern"`

	// number
	Minimum          *float64 `yaml:"minimum" json:"minimum"`
	Maximum          *float64 `yaml:"maximum" json:"maximum"`
	ExclusiveMinimum *float64 `yaml:"exclusiveMinimum" json:"exclusiveMinimum"`
	ExclusiveMaximum *float64 `yaml:"exclusiveMaximum" json:"exclusiveMaximum"`
	MultipleOf       *float64 `yaml:"multipleOf" json:"multipleOf"`

	// array
	Items       *Field `yaml:"items" json:"items"`
	MinItems    *int   `yaml:"minItems" json:"minItems"`
	MaxItems    *int   `yaml:"maxItems" json:"maxItems"`
	UniqueItems bool   `yaml:"uniqueItems" json:"uniqueItems"`

	// object
	Fields               []Field `yaml:"fields" json:"fields"`
	AdditionalProperties bool    `yaml:"additionalProperties" json:"additionalProperties"`

	// objectGeneric
	Values     *Field `yaml:"values" json:"values"`
	KeyPattern string `yaml:"keyPattern" json:"keyPattern"`

	// oneOf
	OneOf []Field `yaml:"oneOf" json:"oneOf"`
}

// Options converts the collection settings into docskema.Options.
func (c Collection) Options() docskema.Options {
	return docskema.Options{
		Defaults:         c.Defaults,
		Timestamps:       c.Timestamps,
		ValidationAction: docskema.ParseValidationAction(c.ValidationAction),
		ValidationLevel:  docskema.ParseValidationLevel(c.ValidationLevel),
	}
}

// Properties converts the declared fields into draft members.
func (c Collection) Properties() (types.Fields, error) {
	var iss docskema.Issues
	fields := make(types.Fields, 0, len(c.Fields))
	for i, f := range c.Fields {
		p := c.base() + "/fields/" + strconv.Itoa(i)
		if f.Name == "" {
			iss = docskema.AppendIssues(iss, requiredIssue(p+"/name"))
			continue
		}
		d, more := f.descriptor(p)
		iss = append(iss, more...)
		if d != nil {
			fields = append(fields, types.F(f.Name, d))
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return fields, nil
}

// Build assembles the collection schema. Issues reported by docskema.Schema
// are rebased under the collection's path.
func (c Collection) Build() (*docskema.Result, error) {
	fields, err := c.Properties()
	if err != nil {
		return nil, err
	}
	r, err := docskema.Schema(fields, c.Options())
	if err != nil {
		if iss, ok := docskema.AsIssues(err); ok {
			out := make(docskema.Issues, len(iss))
			for i, it := range iss {
				it.Path = c.base() + it.Path
				out[i] = it
			}
			return nil, out
		}
		return nil, err
	}
	return r, nil
}

func (c Collection) base() string {
	if c.path != "" {
		return c.path
	}
	return docskema.Pointer(c.Name)
}

func (f Field) descriptor(path string) (*types.Descriptor, docskema.Issues) {
	if f.Type == "" {
		return nil, docskema.Issues{requiredIssue(path + "/type")}
	}
	kind := types.Kind(f.Type)
	if !kind.Valid() {
		return nil, docskema.Issues{{
			Path:    path + "/type",
			Code:    docskema.CodeUnknownKind,
			Message: i18n.T(docskema.CodeUnknownKind, map[string]string{"kind": f.Type}),
			Params:  map[string]any{"kind": f.Type},
		}}
	}

	opts := f.options()
	var iss docskema.Issues
	var d *types.Descriptor
	switch kind {
	case types.KindAny:
		d = types.Any(opts...)
	case types.KindArray:
		var items *types.Descriptor
		if f.Items == nil {
			items = types.Any()
		} else {
			items, iss = f.Items.descriptor(path + "/items")
		}
		d = types.Array(items, opts...)
	case types.KindBinary:
		d = types.Binary(opts...)
	case types.KindBoolean:
		d = types.Boolean(opts...)
	case types.KindConstant:
		d = types.Constant(normalizeValue(f.Value), opts...)
	case types.KindDate:
		d = types.Date(opts...)
	case types.KindDecimal:
		d = types.Decimal(opts...)
	case types.KindEnum:
		if len(f.Enum) == 0 {
			iss = append(iss, requiredIssue(path+"/enum"))
		}
		d = types.Enum(normalizeValues(f.Enum), opts...)
	case types.KindNull:
		d = types.Null(opts...)
	case types.KindNumber:
		d = types.Number(opts...)
	case types.KindObject:
		members := make(types.Fields, 0, len(f.Fields))
		for i, sub := range f.Fields {
			p := path + "/fields/" + strconv.Itoa(i)
			if sub.Name == "" {
				iss = append(iss, requiredIssue(p+"/name"))
				continue
			}
			sd, more := sub.descriptor(p)
			iss = append(iss, more...)
			if sd != nil {
				members = append(members, types.F(sub.Name, sd))
			}
		}
		d = types.Object(members, opts...)
	case types.KindObjectGeneric:
		var values *types.Descriptor
		if f.Values == nil {
			values = types.Any()
		} else {
			values, iss = f.Values.descriptor(path + "/values")
		}
		d = types.ObjectGeneric(values, f.KeyPattern, opts...)
	case types.KindObjectID:
		d = types.ObjectID(opts...)
	case types.KindOneOf:
		if len(f.OneOf) == 0 {
			iss = append(iss, requiredIssue(path+"/oneOf"))
		}
		alts := make([]*types.Descriptor, 0, len(f.OneOf))
		for i, alt := range f.OneOf {
			ad, more := alt.descriptor(path + "/oneOf/" + strconv.Itoa(i))
			iss = append(iss, more...)
			if ad != nil {
				alts = append(alts, ad)
			}
		}
		d = types.OneOf(alts, opts...)
	case types.KindString:
		d = types.String(opts...)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return d, nil
}

// options maps the scalar constraints onto builder options. Constraints that
// do not apply to the field's kind are dropped by the publisher.
func (f Field) options() []types.Option {
	var opts []types.Option
	if f.Required {
		opts = append(opts, types.Required())
	}
	if f.Description != "" {
		opts = append(opts, types.Description(f.Description))
	}
	if f.AdditionalProperties {
		opts = append(opts, types.AllowAdditional())
	}
	if f.MinLength != nil {
		opts = append(opts, types.MinLength(*f.MinLength))
	}
	if f.MaxLength != nil {
		opts = append(opts, types.MaxLength(*f.MaxLength))
	}
	if f.Pattern != "" {
		opts = append(opts, types.Pattern(f.Pattern))
	}
	if f.Minimum != nil {
		opts = append(opts, types.Minimum(*f.Minimum))
	}
	if f.Maximum != nil {
		opts = append(opts, types.Maximum(*f.Maximum))
	}
	if f.ExclusiveMinimum != nil {
		opts = append(opts, types.ExclusiveMinimum(*f.ExclusiveMinimum))
	}
	if f.ExclusiveMaximum != nil {
		opts = append(opts, types.ExclusiveMaximum(*f.ExclusiveMaximum))
	}
	if f.MultipleOf != nil {
		opts = append(opts, types.MultipleOf(*f.MultipleOf))
	}
	if f.MinItems != nil {
		opts = append(opts, types.MinItems(*f.MinItems))
	}
	if f.MaxItems != nil {
		opts = append(opts, types.MaxItems(*f.MaxItems))
	}
	if f.UniqueItems {
		opts = append(opts, types.UniqueItems())
	}
	// enum on string/number restricts the value set; the enum kind takes
	// its values directly.
	if len(f.Enum) > 0 && types.Kind(f.Type) != types.KindEnum {
		opts = append(opts, types.OneOfValues(normalizeValues(f.Enum)...))
	}
	return opts
}

func requiredIssue(path string) docskema.Issue {
	return docskema.Issue{Path: path, Code: docskema.CodeRequired, Message: i18n.T(docskema.CodeRequired, nil)}
}
