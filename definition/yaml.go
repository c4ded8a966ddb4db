package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/docskema"
	"github.com/reoring/docskema/i18n"
)

// Parse decodes a multi-document YAML stream into collection definitions.
// Unknown keys are rejected. Empty documents are skipped. Collection names
// must be present and unique within the stream.
func Parse(data []byte) ([]Collection, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	col := newCollector()
	for i := 0; ; i++ {
		var c Collection
		if err := dec.Decode(&c); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, parseIssue("/"+strconv.Itoa(i), err)
		}
		col.add(i, c)
	}
	return col.result()
}

// collector applies the per-collection checks shared by the YAML and JSON
// readers.
type collector struct {
	out  []Collection
	iss  docskema.Issues
	seen map[string]struct{}
}

func newCollector() *collector {
	return &collector{seen: map[string]struct{}{}}
}

func (col *collector) add(i int, c Collection) {
	if c.isZero() {
		return
	}
	if c.Name == "" {
		col.iss = docskema.AppendIssues(col.iss, requiredIssue("/"+strconv.Itoa(i)+"/name"))
		return
	}
	c.path = docskema.Pointer(c.Name)
	if _, dup := col.seen[c.Name]; dup {
		col.iss = docskema.AppendIssues(col.iss, docskema.Issue{
			Path:    c.path,
			Code:    docskema.CodeDuplicateKey,
			Message: i18n.T(docskema.CodeDuplicateKey, nil),
			Params:  map[string]any{"collection": c.Name},
		})
		return
	}
	col.seen[c.Name] = struct{}{}
	c.Defaults = yamlAnyToStringMap(c.Defaults)
	col.out = append(col.out, c)
}

// isZero reports whether no key of the document was set, as for an empty YAML
// document between separators.
func (c Collection) isZero() bool {
	return c.Name == "" && !c.Timestamps && c.ValidationAction == "" && c.ValidationLevel == "" &&
		c.Defaults == nil && c.Fields == nil
}

func (col *collector) result() ([]Collection, error) {
	if len(col.iss) > 0 {
		return nil, col.iss
	}
	return col.out, nil
}

func parseIssue(path string, err error) docskema.Issues {
	return docskema.Issues{{
		Path:    path,
		Code:    docskema.CodeParseError,
		Message: i18n.T(docskema.CodeParseError, nil),
		Hint:    err.Error(),
		Cause:   err,
	}}
}

// LoadFile reads and parses one definition file. Files ending in .json are
// read with ParseJSON, everything else with Parse.
func LoadFile(path string) ([]Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return Parse(data)
}

// LoadDir parses every *.yaml, *.yml and *.json file in dir, in file name
// order.
// A collection name declared in two files is reported as duplicate_key.
func LoadDir(dir string) ([]Collection, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("definition: %s is not a directory", dir)
	}
	var files []string
	for _, pat := range []string{"*.yaml", "*.yml", "*.json"} {
		m, err := filepath.Glob(filepath.Join(dir, pat))
		if err != nil {
			return nil, err
		}
		files = append(files, m...)
	}
	sort.Strings(files)

	var out []Collection
	seen := map[string]string{}
	for _, f := range files {
		cs, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		for _, c := range cs {
			if prev, dup := seen[c.Name]; dup {
				return nil, docskema.Issues{{
					Path:    c.path,
					Code:    docskema.CodeDuplicateKey,
					Message: i18n.T(docskema.CodeDuplicateKey, nil),
					Hint:    "also declared in " + prev,
					Params:  map[string]any{"collection": c.Name, "file": f},
				}}
			}
			seen[c.Name] = f
			out = append(out, c)
		}
	}
	return out, nil
}

// yamlAnyToStringMap converts YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively. A nil map stays nil.
func yamlAnyToStringMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return yamlAnyToStringMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}

func normalizeValues(vs []any) []any {
	if vs == nil {
		return nil
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = normalizeValue(v)
	}
	return out
}
