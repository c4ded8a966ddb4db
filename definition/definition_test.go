package definition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/docskema"
	"github.com/reoring/docskema/definition"
)

const usersYAML = `
name: users
timestamps: true
validationAction: warn
validationLevel: moderate
defaults:
  active: true
  prefs:
    theme: dark
fields:
  - name: email
    type: string
    required: true
    pattern: "^.+@.+$"
  - name: age
    type: number
    minimum: 0
    exclusiveMaximum: 150
  - name: role
    type: enum
    enum: [admin, member]
  - name: tags
    type: array
    uniqueItems: true
    items: {type: string, maxLength: 20}
  - name: profile
    type: object
    required: true
    fields:
      - name: bio
        type: string
  - name: counters
    type: objectGeneric
    keyPattern: "^[a-z]+$"
    values: {type: number}
  - name: ref
    type: oneOf
    oneOf:
      - {type: objectId}
      - {type: "null"}
---
name: orders
fields:
  - name: total
    type: decimal
`

func TestParse_MultiDocument(t *testing.T) {
	cs, err := definition.Parse([]byte(usersYAML))
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, "users", cs[0].Name)
	assert.Equal(t, "orders", cs[1].Name)
	assert.Equal(t, map[string]any{"theme": "dark"}, cs[0].Defaults["prefs"])

	opts := cs[0].Options()
	assert.True(t, opts.Timestamps)
	assert.Equal(t, docskema.ActionWarn, opts.ValidationAction)
	assert.Equal(t, docskema.LevelModerate, opts.ValidationLevel)
}

func TestCollection_Build(t *testing.T) {
	cs, err := definition.Parse([]byte(usersYAML))
	require.NoError(t, err)

	r, err := cs[0].Build()
	require.NoError(t, err)
	d := r.Descriptor
	assert.Equal(t,
		[]string{"_id", "email", "age", "role", "tags", "profile", "counters", "ref", "createdAt", "updatedAt", "__v"},
		d.PropertyNames())
	assert.Equal(t, []string{"_id", "email", "profile", "createdAt", "updatedAt"}, d.Required)
	assert.Equal(t, docskema.ActionWarn, r.ValidationAction)
	assert.Equal(t, true, r.Defaults["active"])

	age, _ := d.Property("age")
	assert.Equal(t, 150.0, *age.Maximum)
	assert.True(t, age.ExclusiveMaximum)

	role, _ := d.Property("role")
	assert.Equal(t, []any{"admin", "member"}, role.Enum)

	tags, _ := d.Property("tags")
	assert.True(t, tags.UniqueItems)
	assert.Equal(t, 20, *tags.Items.MaxLength)

	counters, _ := d.Property("counters")
	assert.Equal(t, "number", counters.PatternProperties["^[a-z]+$"].Type)

	ref, _ := d.Property("ref")
	require.Len(t, ref.OneOf, 2)
	assert.Equal(t, "null", ref.OneOf[1].Type)

	orders, err := cs[1].Build()
	require.NoError(t, err)
	assert.Equal(t, docskema.ActionError, orders.ValidationAction)
	total, _ := orders.Descriptor.Property("total")
	assert.Equal(t, "decimal", total.BSONType[0])
}

func TestParse_UnknownKeyIsParseError(t *testing.T) {
	_, err := definition.Parse([]byte("name: a\ncolour: red\n"))
	iss, ok := docskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, docskema.CodeParseError, iss[0].Code)
	assert.Equal(t, "/0", iss[0].Path)
	assert.NotEmpty(t, iss[0].Hint)
}

func TestParse_MissingAndDuplicateNames(t *testing.T) {
	_, err := definition.Parse([]byte("name: a\n---\ntimestamps: true\nfields: [{name: x, type: string}]\n---\nname: a\n"))
	iss, ok := docskema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 2)
	assert.Equal(t, "/1/name", iss[0].Path)
	assert.Equal(t, docskema.CodeRequired, iss[0].Code)
	assert.Equal(t, "/a", iss[1].Path)
	assert.Equal(t, docskema.CodeDuplicateKey, iss[1].Code)
}

func TestParse_SkipsEmptyDocuments(t *testing.T) {
	cs, err := definition.Parse([]byte("---\n---\nname: a\n---\n"))
	require.NoError(t, err)
	require.Len(t, cs, 1)
}

func TestParse_NamelessSettingsAreReported(t *testing.T) {
	cases := []struct {
		name, doc, path string
	}{
		{"timestamps", "timestamps: true\nvalidationAction: warn\n", "/0/name"},
		{"level", "name: a\n---\nvalidationLevel: moderate\n", "/1/name"},
		{"empty defaults", "name: a\n---\ndefaults: {}\n", "/1/name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cs, err := definition.Parse([]byte(tc.doc))
			assert.Nil(t, cs)
			iss, ok := docskema.AsIssues(err)
			require.True(t, ok, "err = %v", err)
			require.Len(t, iss, 1)
			assert.Equal(t, docskema.CodeRequired, iss[0].Code)
			assert.Equal(t, tc.path, iss[0].Path)
		})
	}

	_, err := definition.ParseJSON([]byte(`[{"name":"a"},{"timestamps":true}]`))
	iss, ok := docskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/1/name", iss[0].Path)
}

func TestBuild_FieldIssues(t *testing.T) {
	cs, err := definition.Parse([]byte(`
name: users
fields:
  - name: a
    type: uuid
  - type: string
  - name: b
    type: object
    fields:
      - name: c
  - name: d
    type: enum
  - name: _id
    type: objectId
`))
	require.NoError(t, err)

	_, err = cs[0].Build()
	iss, ok := docskema.AsIssues(err)
	require.True(t, ok)
	paths := make([]string, len(iss))
	for i, it := range iss {
		paths[i] = it.Path
	}
	assert.Equal(t, []string{
		"/users/fields/0/type",
		"/users/fields/1/name",
		"/users/fields/2/fields/0/type",
		"/users/fields/3/enum",
	}, paths)
	assert.Equal(t, docskema.CodeUnknownKind, iss[0].Code)
	assert.Equal(t, "uuid", iss[0].Params["kind"])
}

func TestBuild_ReservedNameIsRebased(t *testing.T) {
	cs, err := definition.Parse([]byte("name: users\nfields:\n  - {name: createdAt, type: date}\n"))
	require.NoError(t, err)
	_, err = cs[0].Build()
	iss, ok := docskema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/users/createdAt", iss[0].Path)
	assert.Equal(t, docskema.CodeReservedField, iss[0].Code)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("name: beta\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: alpha\n---\nname: gamma\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	cs, err := definition.LoadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"alpha", "gamma", "beta"}, names)
}

func TestLoadDir_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: users\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("name: users\n"), 0o600))

	_, err := definition.LoadDir(dir)
	iss, ok := docskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, docskema.CodeDuplicateKey, iss[0].Code)
	assert.Contains(t, iss[0].Hint, "a.yaml")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := definition.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseJSON(t *testing.T) {
	cs, err := definition.ParseJSON([]byte(`[
		{"name": "users", "timestamps": true, "fields": [{"name": "email", "type": "string", "required": true}]},
		{"name": "orders", "defaults": {"qty": 1}}
	]`))
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, 1.0, cs[1].Defaults["qty"])

	r, err := cs[0].Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"_id", "email", "createdAt", "updatedAt"}, r.Descriptor.Required)

	cs, err = definition.ParseJSON([]byte(`{"name": "single"}`))
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "single", cs[0].Name)
}

func TestParseJSON_DuplicateKeys(t *testing.T) {
	_, err := definition.ParseJSON([]byte(`[
		{"name": "a"},
		{"name": "b", "fields": [{"name": "x", "type": "string", "type": "number"}], "name": "c"}
	]`))
	iss, ok := docskema.AsIssues(err)
	require.True(t, ok, err)
	require.Len(t, iss, 2)
	assert.Equal(t, "/1/fields/0/type", iss[0].Path)
	assert.Equal(t, "/1/name", iss[1].Path)
	assert.Equal(t, docskema.CodeDuplicateKey, iss[0].Code)
}

func TestParseJSON_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"syntax":      `{"name": `,
		"unknown key": `{"name": "a", "colour": "red"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := definition.ParseJSON([]byte(in))
			iss, ok := docskema.AsIssues(err)
			require.True(t, ok)
			assert.Equal(t, docskema.CodeParseError, iss[0].Code)
		})
	}
}

func TestLoadDir_MixedFormats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"name": "alpha"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("name: beta\n"), 0o600))

	cs, err := definition.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, "alpha", cs[0].Name)
	assert.Equal(t, "beta", cs[1].Name)
}

func TestLoadDir_NotADirectory(t *testing.T) {
	_, err := definition.LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "defs.yaml")
	require.NoError(t, os.WriteFile(file, []byte("name: a\n"), 0o600))
	_, err = definition.LoadDir(file)
	assert.Error(t, err)
}
