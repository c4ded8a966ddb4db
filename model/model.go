// Package model applies a schema's insert defaults and managed timestamps to
// documents before they are written. It never talks to the datastore.
package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/reoring/docskema"
)

// Model binds a collection name to its schema result.
type Model struct {
	Collection string
	Schema     *docskema.Result

	now func() time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// New returns a Model for collection.
func New(collection string, schema *docskema.Result, opts ...Option) *Model {
	m := &Model{Collection: collection, Schema: schema, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// PrepareInsert returns a new document: the schema defaults, overlaid by doc,
// plus createdAt/updatedAt when timestamps are managed and doc does not set
// them. doc is not modified.
func (m *Model) PrepareInsert(doc map[string]any) map[string]any {
	out := make(map[string]any, len(m.Schema.Defaults)+len(doc)+2)
	for k, v := range m.Schema.Defaults {
		out[k] = v
	}
	for k, v := range doc {
		out[k] = v
	}
	if m.Schema.Timestamps {
		ts := m.now()
		if _, ok := out[docskema.FieldCreatedAt]; !ok {
			out[docskema.FieldCreatedAt] = ts
		}
		if _, ok := out[docskema.FieldUpdatedAt]; !ok {
			out[docskema.FieldUpdatedAt] = ts
		}
	}
	return out
}

// ErrOperatorValue is returned when an update operator ($set, $inc, ...) does
// not hold a document with string keys.
var ErrOperatorValue = errors.New("model: update operator must hold a string-keyed map")

// PrepareUpdate returns a copy of the update document with $set.updatedAt
// added when timestamps are managed. An explicit updatedAt in $set wins.
// Operator values may be any string-keyed map type; they are copied into
// map[string]any.
func (m *Model) PrepareUpdate(update map[string]any) (map[string]any, error) {
	out, err := cloneUpdate(update)
	if err != nil {
		return nil, err
	}
	if m.Schema.Timestamps {
		set := operator(out, "$set")
		if _, ok := set[docskema.FieldUpdatedAt]; !ok {
			set[docskema.FieldUpdatedAt] = m.now()
		}
	}
	return out, nil
}

// PrepareUpsert is PrepareUpdate plus a $setOnInsert holding the defaults and
// createdAt. A default is left out when any operator of the update touches
// the same path, a path below it, or a path above it.
func (m *Model) PrepareUpsert(update map[string]any) (map[string]any, error) {
	out, err := m.PrepareUpdate(update)
	if err != nil {
		return nil, err
	}
	touched := assignedPaths(out)
	onInsert := operator(out, "$setOnInsert")
	assign := func(k string, v any) {
		if conflicts(k, touched) {
			return
		}
		onInsert[k] = v
	}
	for k, v := range m.Schema.Defaults {
		assign(k, v)
	}
	if m.Schema.Timestamps {
		assign(docskema.FieldCreatedAt, m.now())
	}
	if len(onInsert) == 0 {
		delete(out, "$setOnInsert")
	}
	return out, nil
}

// cloneUpdate copies the top level and every operator document one level
// deep so the caller's update is left untouched.
func cloneUpdate(update map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(update)+1)
	for k, v := range update {
		if strings.HasPrefix(k, "$") {
			doc, err := stringMap(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s is %T", err, k, v)
			}
			v = doc
		}
		out[k] = v
	}
	return out, nil
}

func stringMap(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		cp := make(map[string]any, len(m))
		for k, mv := range m {
			cp[k] = mv
		}
		return cp, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, ErrOperatorValue
	}
	cp := make(map[string]any, rv.Len())
	for it := rv.MapRange(); it.Next(); {
		cp[it.Key().String()] = it.Value().Interface()
	}
	return cp, nil
}

// operator returns the operator document op of a cloned update, adding an
// empty one when absent.
func operator(doc map[string]any, op string) map[string]any {
	if m, ok := doc[op].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	doc[op] = m
	return m
}

// assignedPaths lists the field paths every operator of a cloned update
// touches. $rename touches both its source and its target.
func assignedPaths(update map[string]any) []string {
	var paths []string
	for op, v := range update {
		doc, ok := v.(map[string]any)
		if !ok || !strings.HasPrefix(op, "$") {
			continue
		}
		for k, arg := range doc {
			paths = append(paths, k)
			if to, ok := arg.(string); ok && op == "$rename" {
				paths = append(paths, to)
			}
		}
	}
	return paths
}

// conflicts reports whether path equals one of paths or either is a dotted
// prefix of the other.
func conflicts(path string, paths []string) bool {
	for _, p := range paths {
		if p == path || strings.HasPrefix(p, path+".") || strings.HasPrefix(path, p+".") {
			return true
		}
	}
	return false
}
