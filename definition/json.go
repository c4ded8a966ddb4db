package definition

import (
	"bytes"
	stdjson "encoding/json"
	"io"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/docskema"
	"github.com/reoring/docskema/i18n"
)

// ParseJSON decodes collection definitions from JSON: either one collection
// object or an array of them. Unknown keys are rejected. A key repeated within
// one object is reported as duplicate_key at its JSON Pointer.
func ParseJSON(data []byte) ([]Collection, error) {
	iss, err := duplicateKeys(data)
	if err != nil {
		return nil, parseIssue("/", err)
	}
	if len(iss) > 0 {
		return nil, iss
	}

	var cs []Collection
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = dec.Decode(&cs)
	} else {
		var c Collection
		err = dec.Decode(&c)
		cs = []Collection{c}
	}
	if err != nil {
		return nil, parseIssue("/", err)
	}

	col := newCollector()
	for i, c := range cs {
		col.add(i, c)
	}
	return col.result()
}

type dupFrame struct {
	object  bool
	keys    map[string]struct{}
	wantKey bool
	key     string
	index   int
}

// duplicateKeys walks the encoding/json token stream and reports every key
// repeated within one object.
func duplicateKeys(data []byte) (docskema.Issues, error) {
	dec := stdjson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var (
		iss   docskema.Issues
		stack []*dupFrame
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case stdjson.Delim:
			switch v {
			case '{':
				stack = append(stack, &dupFrame{object: true, keys: map[string]struct{}{}, wantKey: true})
			case '[':
				stack = append(stack, &dupFrame{})
			default:
				stack = stack[:len(stack)-1]
				valueDone(stack)
			}
			continue
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].wantKey {
				top := stack[n-1]
				if _, dup := top.keys[v]; dup {
					iss = docskema.AppendIssues(iss, docskema.Issue{
						Path:    docskema.Pointer(append(segments(stack[:n-1]), v)...),
						Code:    docskema.CodeDuplicateKey,
						Message: i18n.T(docskema.CodeDuplicateKey, nil),
						Params:  map[string]any{"key": v},
					})
				}
				top.keys[v] = struct{}{}
				top.key = v
				top.wantKey = false
				continue
			}
		}
		valueDone(stack)
	}
	return iss, nil
}

// valueDone advances the innermost container past the value just read.
func valueDone(stack []*dupFrame) {
	if len(stack) == 0 {
		return
	}
	top := stack[len(stack)-1]
	if top.object {
		top.wantKey = true
		return
	}
	top.index++
}

func segments(stack []*dupFrame) []string {
	out := make([]string, 0, len(stack)+1)
	for _, f := range stack {
		if f.object {
			out = append(out, f.key)
		} else {
			out = append(out, strconv.Itoa(f.index))
		}
	}
	return out
}
