package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(dir, name string, data []byte) error {
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func templateDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, writeFile(dir, name, []byte(content)))
	}
	return dir
}

func TestNewRenderer_EmptyDirIsJSON(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusUnprocessableEntity, "account/signup", View{"username": "ann"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		View string         `json:"view"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "account/signup", got.View)
	assert.Equal(t, "ann", got.Data["username"])
}

func TestTemplateRenderer_WithLayout(t *testing.T) {
	dir := templateDir(t, map[string]string{
		"layouts/base.html": `{{define "layout"}}<main>{{template "content" .}}</main>{{end}}`,
		"index.html":        `{{define "content"}}{{range .posts}}[{{.}}]{{end}}{{end}}`,
		"post/show.html":    `{{define "content"}}{{.title}} {{avatar .avatar}}{{end}}`,
	})

	r, err := NewRenderer(dir)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "index", View{"posts": []string{"a", "b"}}))
	assert.Equal(t, "<main>[a][b]</main>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "post/show", View{"title": "<b>x</b>", "avatar": ""}))
	assert.Equal(t, "<main>&lt;b&gt;x&lt;/b&gt; default.png</main>", rec.Body.String())
}

func TestTemplateRenderer_WithoutLayout(t *testing.T) {
	dir := templateDir(t, map[string]string{
		"error.html": `{{.status}} {{.message}}`,
	})

	r, err := NewRenderer(dir)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusNotFound, "error", View{"status": 404, "message": "Not Found"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404 Not Found", rec.Body.String())
}

func TestTemplateRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer(templateDir(t, map[string]string{"index.html": "ok"}))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "missing", View{}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTemplateRenderer_ExecutionErrorWritesNothingPartial(t *testing.T) {
	r, err := NewRenderer(templateDir(t, map[string]string{
		"index.html": `before{{template "nope" .}}`,
	}))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "index", View{}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "before")
}

func TestNewRenderer_EmptyTemplateDir(t *testing.T) {
	_, err := NewRenderer(t.TempDir())
	assert.Error(t, err)
}
