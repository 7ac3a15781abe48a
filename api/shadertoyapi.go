package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	shadertoyAPIURL = "https://www.shadertoy.com/api/v1"
	shadertoyRawURL = "https://www.shadertoy.com/shadertoy"
)

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "goshadercanvas")
	return t.Transport.RoundTrip(req)
}

// --- Structs for Shadertoy API Response ---

type ShadertoyResponse struct {
	Shader *Shader `json:"Shader"`
	Error  string  `json:"Error,omitempty"`
	IsAPI  bool    `json:"isAPI,omitempty"`
}

type Shader struct {
	Info       ShaderInfo   `json:"info"`
	RenderPass []RenderPass `json:"renderpass"`
}

type ShaderInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type RenderPass struct {
	Inputs []Input `json:"inputs"`
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
}

type Input struct {
	Channel int    `json:"channel"`
	CType   string `json:"ctype"`
	Src     string `json:"src"`
}

// The site endpoint returns a list of shaders with slightly different input
// fields.
type rawShaderResponse []rawShader

type rawShader struct {
	Info          ShaderInfo      `json:"info"`
	RawRenderPass []rawRenderPass `json:"renderpass"`
}

type rawRenderPass struct {
	Inputs []rawInput `json:"inputs"`
	Code   string     `json:"code"`
	Name   string     `json:"name"`
	Type   string     `json:"type"`
}

type rawInput struct {
	Filepath string `json:"filepath"`
	Type     string `json:"type"`
	Channel  int    `json:"channel"`
}

func rawShaderToShader(raw rawShader) *Shader {
	shader := &Shader{
		Info:       raw.Info,
		RenderPass: make([]RenderPass, len(raw.RawRenderPass)),
	}
	for i, rPass := range raw.RawRenderPass {
		shader.RenderPass[i] = RenderPass{
			Inputs: make([]Input, len(rPass.Inputs)),
			Code:   rPass.Code,
			Name:   rPass.Name,
			Type:   rPass.Type,
		}
		for j, inp := range rPass.Inputs {
			shader.RenderPass[i].Inputs[j] = Input{
				Channel: inp.Channel,
				CType:   inp.Type,
				Src:     inp.Filepath,
			}
		}
	}
	return shader
}

// Client fetches shaders from Shadertoy.com.
type Client struct {
	APIKey string
	// APIURL and RawURL default to the public endpoints.
	APIURL string
	RawURL string
	// CacheDir stores fetched shader JSON; empty disables caching.
	CacheDir   string
	HTTPClient *http.Client
}

// NewClient returns a client using the default endpoints and the user's
// cache directory.
func NewClient(apikey string) *Client {
	c := &Client{
		APIKey:     apikey,
		APIURL:     shadertoyAPIURL,
		RawURL:     shadertoyRawURL,
		HTTPClient: &http.Client{Transport: &headerTransport{Transport: http.DefaultTransport}},
	}
	if dir, err := getCacheDir("shaders"); err == nil {
		c.CacheDir = dir
	} else {
		log.Printf("Warning: shader cache disabled: %v", err)
	}
	return c
}

// getCacheDir returns the per-user cache directory for subdir, creating it.
func getCacheDir(subdir string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	cacheDir := filepath.Join(base, "goshadercanvas", subdir)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory at %s: %w", cacheDir, err)
	}
	return cacheDir, nil
}

// ShaderID extracts the shader ID from an ID or a shadertoy.com/view URL.
func ShaderID(idOrURL string) string {
	id := strings.TrimSuffix(idOrURL, "/")
	if strings.Contains(id, "/") {
		id = filepath.Base(id)
	}
	return id
}

// ShaderFromID fetches a shader's JSON by ID, preferring the cache, then the
// public API, then the site endpoint for shaders not published to the API.
func (c *Client) ShaderFromID(idOrURL string) (*ShadertoyResponse, error) {
	shaderID := ShaderID(idOrURL)
	if shaderID == "" {
		return nil, fmt.Errorf("empty shader id")
	}

	if resp, ok, err := c.readCache(shaderID); err != nil {
		return nil, err
	} else if ok {
		return resp, nil
	}

	var shaderResp *ShadertoyResponse
	var err error
	if c.APIKey != "" {
		shaderResp, err = c.fetchAPI(shaderID)
		if err != nil {
			return nil, err
		}
	}
	if shaderResp == nil || shaderResp.Error != "" {
		if shaderResp != nil {
			log.Printf("Warning: Shadertoy API error for %s: %s (is it public+api?)", shaderID, shaderResp.Error)
		}
		shaderResp, err = c.fetchRaw(shaderID)
		if err != nil {
			return nil, err
		}
	}

	if shaderResp.Shader == nil {
		return nil, fmt.Errorf("invalid JSON response: 'Shader' key is missing")
	}
	c.writeCache(shaderID, shaderResp)
	return shaderResp, nil
}

func (c *Client) readCache(shaderID string) (*ShadertoyResponse, bool, error) {
	if c.CacheDir == "" {
		return nil, false, nil
	}
	cachePath := filepath.Join(c.CacheDir, shaderID+".json")
	data, err := os.ReadFile(cachePath)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached shader file %s: %w", cachePath, err)
	}
	var shaderResp ShadertoyResponse
	if err := json.Unmarshal(data, &shaderResp); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached shader JSON: %w", err)
	}
	if shaderResp.Shader == nil {
		return nil, false, fmt.Errorf("cached shader JSON is invalid: 'Shader' key is missing")
	}
	return &shaderResp, true, nil
}

func (c *Client) writeCache(shaderID string, resp *ShadertoyResponse) {
	if c.CacheDir == "" {
		return
	}
	cachePath := filepath.Join(c.CacheDir, shaderID+".json")
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Warning: failed to marshal shader for cache: %v", err)
		return
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		log.Printf("Warning: failed to write shader to cache at %s: %v", cachePath, err)
		return
	}
	log.Printf("Shader %s cached at %s", shaderID, cachePath)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) fetchAPI(shaderID string) (*ShadertoyResponse, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/shaders/%s", c.APIURL, url.PathEscape(shaderID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	q := req.URL.Query()
	q.Add("key", c.APIKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to shadertoy API failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load shader %s, status code: %d", shaderID, resp.StatusCode)
	}

	var shaderResp ShadertoyResponse
	if err := json.NewDecoder(resp.Body).Decode(&shaderResp); err != nil {
		return nil, fmt.Errorf("failed to decode shader JSON: %w", err)
	}
	shaderResp.IsAPI = shaderResp.Error == ""
	return &shaderResp, nil
}

func (c *Client) fetchRaw(shaderID string) (*ShadertoyResponse, error) {
	payload, err := json.Marshal(map[string][]string{"shaders": {shaderID}})
	if err != nil {
		return nil, err
	}
	data := url.Values{}
	data.Set("s", string(payload))

	req, err := http.NewRequest("POST", c.RawURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://www.shadertoy.com")
	req.Header.Set("Referer", "https://www.shadertoy.com/browse")
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad response status: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var rawResp rawShaderResponse
	if err := json.Unmarshal(body, &rawResp); err != nil {
		return nil, fmt.Errorf("failed to decode raw shader JSON: %w", err)
	}
	if len(rawResp) == 0 {
		return nil, fmt.Errorf("raw shader response is empty for %s", shaderID)
	}
	return &ShadertoyResponse{Shader: rawShaderToShader(rawResp[0])}, nil
}
