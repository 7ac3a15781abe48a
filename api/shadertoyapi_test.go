package api

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

const apiShader = `{"Shader":{"info":{"id":"abc123","name":"Waves","username":"iq"},
"renderpass":[
 {"inputs":[],"code":"float f(float x){return x;}","name":"Common","type":"common"},
 {"inputs":[],"code":"void mainImage(out vec4 c, in vec2 p){c=vec4(f(1.0));}","name":"Image","type":"image"}
]}}`

const rawShaders = `[{"info":{"id":"priv01","name":"Private","username":"me"},
"renderpass":[{"inputs":[{"filepath":"/media/a.png","type":"texture","channel":0}],
"code":"void mainImage(out vec4 c, in vec2 p){c=vec4(1.0);}","name":"Image","type":"image"}]}]`

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return &Client{
		APIKey:     "key",
		APIURL:     srv.URL + "/api/v1",
		RawURL:     srv.URL + "/shadertoy",
		CacheDir:   t.TempDir(),
		HTTPClient: srv.Client(),
	}
}

func TestShaderFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/shaders/abc123", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		w.Write([]byte(apiShader))
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	resp, err := c.ShaderFromID("https://www.shadertoy.com/view/abc123/")
	require.NoError(t, err)
	assert.True(t, resp.IsAPI)
	assert.Equal(t, "Waves", resp.Shader.Info.Name)

	src, err := SourceFromResponse(resp)
	require.NoError(t, err)
	assert.True(t, src.Complete)
	assert.Equal(t, `"Waves" by iq`, src.Title)
	assert.Equal(t, "float f(float x){return x;}\nvoid mainImage(out vec4 c, in vec2 p){c=vec4(f(1.0));}", src.Body)

	_, err = os.Stat(filepath.Join(c.CacheDir, "abc123.json"))
	assert.NoError(t, err)
}

func TestShaderFallsBackToRawEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/shaders/priv01":
			w.Write([]byte(`{"Error":"Shader not found"}`))
		case "/shadertoy":
			assert.NoError(t, r.ParseForm())
			var payload map[string][]string
			assert.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("s")), &payload))
			assert.Equal(t, []string{"priv01"}, payload["shaders"])
			w.Write([]byte(rawShaders))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	resp, err := c.ShaderFromID("priv01")
	require.NoError(t, err)
	assert.False(t, resp.IsAPI)
	require.Len(t, resp.Shader.RenderPass, 1)
	assert.Equal(t, "texture", resp.Shader.RenderPass[0].Inputs[0].CType)

	src, err := SourceFromResponse(resp)
	require.NoError(t, err)
	assert.False(t, src.Complete, "texture inputs are not bound")
}

func TestShaderFromCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(apiShader))
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	_, err := c.ShaderFromID("abc123")
	require.NoError(t, err)
	resp, err := c.ShaderFromID("abc123")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
	assert.Equal(t, "abc123", resp.Shader.Info.ID)
}

func TestShaderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).ShaderFromID("abc123")
	assert.ErrorContains(t, err, "status code: 500")
}

func TestSourceFromResponseErrors(t *testing.T) {
	_, err := SourceFromResponse(&ShadertoyResponse{})
	assert.Error(t, err)

	_, err = SourceFromResponse(&ShadertoyResponse{Shader: &Shader{RenderPass: []RenderPass{{Type: "common"}}}})
	assert.ErrorContains(t, err, "no image pass")

	src, err := SourceFromResponse(&ShadertoyResponse{Shader: &Shader{RenderPass: []RenderPass{
		{Type: "image", Code: "x"},
		{Type: "buffer", Name: "Buffer A"},
	}}})
	require.NoError(t, err)
	assert.False(t, src.Complete)
	assert.Equal(t, "x", src.Body)
}

func TestSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave.glsl")
	require.NoError(t, os.WriteFile(path, []byte("void mainImage(out vec4 c, in vec2 p){}"), 0644))

	src, err := SourceFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "void mainImage(out vec4 c, in vec2 p){}", src.Body)

	_, err = SourceFromFile(filepath.Join(t.TempDir(), "missing.glsl"))
	assert.Error(t, err)
}

func TestShaderID(t *testing.T) {
	assert.Equal(t, "XlSSzV", ShaderID("XlSSzV"))
	assert.Equal(t, "XlSSzV", ShaderID("https://www.shadertoy.com/view/XlSSzV"))
	assert.Equal(t, "XlSSzV", ShaderID("https://www.shadertoy.com/view/XlSSzV/"))
}
