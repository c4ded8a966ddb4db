// Package validator renders the datastore commands that install a schema's
// validator on a collection.
package validator

import (
	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/docskema"
)

// Command operation names.
const (
	OpCollMod = "collMod"
	OpCreate  = "create"
)

// Document is an ordered command document. The datastore reads the command
// name from the first key, so order matters.
type Document = orderedmap.OrderedMap[string, any]

// CollMod builds the command that replaces the validator of an existing
// collection.
func CollMod(collection string, r *docskema.Result) *Document {
	return command(OpCollMod, collection, r)
}

// Create builds the command that creates a collection with r's validator.
func Create(collection string, r *docskema.Result) *Document {
	return command(OpCreate, collection, r)
}

// ForOp dispatches to CollMod or Create by operation name.
func ForOp(op, collection string, r *docskema.Result) (*Document, bool) {
	switch op {
	case OpCollMod:
		return CollMod(collection, r), true
	case OpCreate:
		return Create(collection, r), true
	}
	return nil, false
}

func command(op, collection string, r *docskema.Result) *Document {
	doc := orderedmap.New[string, any]()
	doc.Set(op, collection)
	doc.Set("validator", r.Validator())
	doc.Set("validationAction", r.ValidationAction.Or(docskema.ActionError).String())
	doc.Set("validationLevel", r.ValidationLevel.Or(docskema.LevelStrict).String())
	return doc
}

// Keys returns the document keys in order.
func Keys(doc *Document) []string {
	out := make([]string, 0, doc.Len())
	for p := doc.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Marshal renders v as JSON, indented when pretty is set.
func Marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
