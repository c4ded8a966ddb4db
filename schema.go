package docskema

import (
	"strconv"

	"github.com/reoring/docskema/i18n"
	"github.com/reoring/docskema/types"
)

// Structural member names. Schema injects them; callers must not declare them.
const (
	FieldID        = "_id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	// FieldVersion is the version key older Mongoose-based writers add to
	// every document. It is kept optional so those documents still validate.
	FieldVersion = "__v"
)

// ReservedFields returns the structural member names in the order Schema
// places them.
func ReservedFields() []string {
	return []string{FieldID, FieldCreatedAt, FieldUpdatedAt, FieldVersion}
}

// IsReserved reports whether name is a structural member name.
func IsReserved(name string) bool {
	switch name {
	case FieldID, FieldCreatedAt, FieldUpdatedAt, FieldVersion:
		return true
	}
	return false
}

// Schema assembles the document shape of one collection.
//
// The published descriptor is an object whose members are, in order: _id
// (objectId, required), the caller's properties as given, createdAt and
// updatedAt (date, required) when Options.Timestamps is set, and __v (number,
// optional). Undeclared members are rejected by the datastore.
//
// Properties must not use a reserved name, repeat a name, or carry a nil or
// unknown-kind descriptor at any depth; all such problems are reported
// together as Issues. When several Options are passed the last one wins.
func Schema(properties types.Fields, opts ...Options) (*Result, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if iss := checkFields(properties); len(iss) > 0 {
		return nil, iss
	}
	draft := compose(properties, opt.Timestamps)
	return &Result{
		Descriptor:       Publish(draft),
		Defaults:         opt.Defaults,
		ValidationAction: opt.ValidationAction.Or(ActionError),
		ValidationLevel:  opt.ValidationLevel.Or(LevelStrict),
		Timestamps:       opt.Timestamps,
	}, nil
}

// MustSchema is like Schema but panics on error. It suits package-level
// schema variables.
func MustSchema(properties types.Fields, opts ...Options) *Result {
	r, err := Schema(properties, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// SchemaFor reflects the struct v into properties (see types.FromStruct) and
// passes them to Schema. Structural members declared on v are skipped.
func SchemaFor(v any, opts ...Options) (*Result, error) {
	fields, err := types.FromStruct(v, ReservedFields()...)
	if err != nil {
		return nil, Issues{{Path: "/", Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Cause: err, Hint: err.Error()}}
	}
	return Schema(fields, opts...)
}

func compose(properties types.Fields, timestamps bool) *types.Descriptor {
	fields := make(types.Fields, 0, len(properties)+4)
	fields = append(fields, types.F(FieldID, types.ObjectID(types.Required())))
	fields = append(fields, properties...)
	if timestamps {
		fields = append(fields,
			types.F(FieldCreatedAt, types.Date(types.Required())),
			types.F(FieldUpdatedAt, types.Date(types.Required())),
		)
	}
	fields = append(fields, types.F(FieldVersion, types.Number()))
	// A schema always describes a whole document.
	return types.Object(fields, types.Required())
}

func checkFields(properties types.Fields) Issues {
	var iss Issues
	seen := make(map[string]struct{}, len(properties))
	for _, f := range properties {
		p := Pointer(f.Name)
		if IsReserved(f.Name) {
			iss = AppendIssues(iss, Issue{
				Path:    p,
				Code:    CodeReservedField,
				Message: i18n.T(CodeReservedField, map[string]string{"field": f.Name}),
				Hint:    "structural members are added by Schema",
				Params:  map[string]any{"field": f.Name},
			})
			continue
		}
		if _, dup := seen[f.Name]; dup {
			iss = AppendIssues(iss, Issue{Path: p, Code: CodeDuplicateKey, Message: i18n.T(CodeDuplicateKey, nil), Params: map[string]any{"field": f.Name}})
			continue
		}
		seen[f.Name] = struct{}{}
		iss = checkDescriptor(iss, f.Type, p)
	}
	return iss
}

// checkDescriptor walks a draft tree and records nil or unknown-kind nodes.
func checkDescriptor(iss Issues, d *types.Descriptor, path string) Issues {
	if d == nil {
		return AppendIssues(iss, Issue{Path: path, Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Hint: "nil descriptor"})
	}
	if !d.Kind.Valid() {
		return AppendIssues(iss, Issue{
			Path:    path,
			Code:    CodeUnknownKind,
			Message: i18n.T(CodeUnknownKind, map[string]string{"kind": string(d.Kind)}),
			Params:  map[string]any{"kind": string(d.Kind)},
		})
	}
	switch d.Kind {
	case types.KindObject:
		for _, f := range d.Properties {
			iss = checkDescriptor(iss, f.Type, path+Pointer(f.Name))
		}
	case types.KindArray:
		if d.Items != nil {
			iss = checkDescriptor(iss, d.Items, path+"/items")
		}
	case types.KindObjectGeneric:
		for pattern, v := range d.PatternProperties {
			iss = checkDescriptor(iss, v, path+"/patternProperties"+Pointer(pattern))
		}
	case types.KindOneOf:
		for i, alt := range d.OneOf {
			iss = checkDescriptor(iss, alt, path+"/oneOf"+Pointer(strconv.Itoa(i)))
		}
	}
	return iss
}
