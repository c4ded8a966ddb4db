package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/docskema"
	"github.com/reoring/docskema/httpapi"
	"github.com/reoring/docskema/registry"
	"github.com/reoring/docskema/types"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := registry.New(nil)
	reg.MustRegister("users", docskema.MustSchema(types.Fields{
		types.F("email", types.String(types.Required())),
	}, docskema.Options{Timestamps: true, Defaults: map[string]any{"active": true}}))
	reg.MustRegister("orders", docskema.MustSchema(nil))
	return httpapi.NewRouter(reg, nil)
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestListCollections(t *testing.T) {
	w := get(t, newRouter(t), "/collections")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["orders","users"]`, w.Body.String())
}

func TestGetCollection(t *testing.T) {
	w := get(t, newRouter(t), "/collections/users")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "users", body["name"])
	assert.Equal(t, "error", body["validationAction"])
	assert.Equal(t, "strict", body["validationLevel"])
	assert.Equal(t, true, body["timestamps"])
	assert.Equal(t, map[string]any{"active": true}, body["defaults"])

	schema := body["validator"].(map[string]any)["$jsonSchema"].(map[string]any)
	assert.Equal(t, []any{"_id", "email", "createdAt", "updatedAt"}, schema["required"])
}

func TestGetCommand(t *testing.T) {
	r := newRouter(t)

	w := get(t, r, "/collections/users/command")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), `{"collMod":"users"`), w.Body.String())

	w = get(t, r, "/collections/users/command?op=create")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), `{"create":"users"`), w.Body.String())

	w = get(t, r, "/collections/users/command?op=drop")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotFound(t *testing.T) {
	r := newRouter(t)
	for _, target := range []string{"/collections/missing", "/collections/missing/command", "/nowhere"} {
		w := get(t, r, target)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.Contains(t, w.Body.String(), `"error"`, target)
	}
}
