package tools

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got), rec.Body.String())
	return rec.Code, got
}

func TestHTTPListTools(t *testing.T) {
	rt, _ := newTestRuntime(t)
	h := NewHandler(rt, zerolog.Nop())

	code, got := doRequest(t, h, http.MethodGet, "/tools", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, got["tools"], 6)
}

func TestHTTPCallTool(t *testing.T) {
	rt, _ := newTestRuntime(t)
	h := NewHandler(rt, zerolog.Nop())

	code, got := doRequest(t, h, http.MethodPost, "/tools/opex_breakdown",
		`{"kwargs":{"start_month":"2025-01","end_month":"2025-03"}}`)
	require.Equal(t, http.StatusOK, code, got)
	result := got["result"].(map[string]any)
	assert.InDelta(t, 300.0, result["Opex:R&D"], 1e-9)
}

func TestHTTPErrors(t *testing.T) {
	rt, _ := newTestRuntime(t)
	h := NewHandler(rt, zerolog.Nop())

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"unknown tool", "/tools/forecast", `{}`, http.StatusNotFound},
		{"bad body", "/tools/ebitda_proxy", `{"args":`, http.StatusBadRequest},
		{"bad month", "/tools/ebitda_proxy", `{"args":["later","2025-03"]}`, http.StatusUnprocessableEntity},
		{"missing month", "/tools/ebitda_proxy", ``, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, got := doRequest(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, got["error"])
		})
	}
}

func TestHTTPRequestLogging(t *testing.T) {
	rt, _ := newTestRuntime(t)
	var buf bytes.Buffer
	h := NewHandler(rt, zerolog.New(&buf))

	code, _ := doRequest(t, h, http.MethodPost, "/tools/ebitda_proxy", `{"args":["later","2025-03"]}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)

	out := buf.String()
	assert.Contains(t, out, `"path":"/tools/ebitda_proxy"`)
	assert.Contains(t, out, `"status":422`)
	assert.Contains(t, out, `"transport":"http"`)
}
