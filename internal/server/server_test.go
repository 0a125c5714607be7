package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baustructura/bau-geo/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	app := config.Config{
		Storage: config.StorageConfig{Driver: "file"},
		Geocode: config.GeocodeConfig{Provider: "none"},
	}
	srv, err := New(Config{Host: "localhost", Port: "8086", DataDir: t.TempDir(), App: app, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, srv.Close()) })
	return srv
}

func serve(srv *Server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestServer_Root(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "bau-geo", body["service"])
	assert.Contains(t, body, "links")

	assert.Equal(t, http.StatusNotFound, serve(srv, http.MethodGet, "/nope").Code)
}

func TestServer_OpenAPI(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, http.MethodGet, "/openapi.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bau-geo API")
	assert.Contains(t, w.Body.String(), "/api/v1/sessions")

	doc := srv.OpenAPI()
	require.NotNil(t, doc.Paths["/api/v1/editor/{session}/click"])
}

func TestServer_SessionLinks(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, http.MethodGet, "/api/v1/sessions")
	require.Equal(t, http.StatusOK, w.Code)
	links := strings.Join(w.Header().Values("Link"), ", ")
	assert.Contains(t, links, `rel="item"`)
}

func TestServer_EditorRedirect(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, http.MethodGet, "/editor")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/editor/"))
}

func TestServer_DBUnavailableWithoutDuckDB(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusServiceUnavailable, serve(srv, http.MethodGet, "/api/v1/db/tables").Code)
}
