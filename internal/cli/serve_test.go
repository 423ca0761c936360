package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridplot/pkg/cache"
	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/errors"
	"github.com/matzehuels/gridplot/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	writeDoc(t, dir, "quadrants")
	logger := log.New(io.Discard)
	s := &server{
		root:   dir,
		runner: pipeline.NewRunner(cache.NewMemoryCache(), nil, logger),
		logger: logger,
	}
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestServeRoutes(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
		body        string
	}{
		{"health", "/healthz", http.StatusOK, "", "ok"},
		{"version", "/version", http.StatusOK, "application/json", `"version"`},
		{"list", "/docs", http.StatusOK, "application/json", `"quadrants"`},
		{"svg", "/docs/quadrants/render.svg?grid=true", http.StatusOK, "image/svg+xml", `class="grid"`},
		{"json with override", "/docs/quadrants/render.json?width=400", http.StatusOK, "application/json", `"width": 400`},
		{"png", "/docs/quadrants/render.png", http.StatusOK, "image/png", "PNG"},
		{"layout", "/docs/quadrants/layout", http.StatusOK, "application/json", `"hot_lines"`},
		{"deps", "/docs/quadrants/deps.dot", http.StatusOK, "text/vnd.graphviz", "digraph G"},
		{"unknown format", "/docs/quadrants/render.gif", http.StatusBadRequest, "application/json", string(errors.ErrCodeInvalidFormat)},
		{"unknown graph format", "/docs/quadrants/deps.png", http.StatusBadRequest, "application/json", "unsupported graph format"},
		{"missing document", "/docs/missing/render.svg", http.StatusNotFound, "application/json", string(errors.ErrCodeFileNotFound)},
		{"invalid name", "/docs/-bad/layout", http.StatusBadRequest, "application/json", string(errors.ErrCodeInvalidName)},
		{"bad number", "/docs/quadrants/render.png?scale=big", http.StatusBadRequest, "application/json", "invalid number"},
		{"bad hit", "/docs/quadrants/hit?x=1", http.StatusBadRequest, "application/json", "integers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			if tt.contentType != "" && !strings.HasPrefix(resp.Header.Get("Content-Type"), tt.contentType) {
				t.Errorf("Content-Type = %q, want %q", resp.Header.Get("Content-Type"), tt.contentType)
			}
			if !strings.Contains(string(body), tt.body) {
				t.Errorf("body does not contain %q:\n%s", tt.body, body)
			}
		})
	}
}

func TestServeRenderCaches(t *testing.T) {
	ts := newTestServer(t)

	resp, first := get(t, ts.URL+"/docs/quadrants/render.svg")
	if got := resp.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	resp, second := get(t, ts.URL+"/docs/quadrants/render.svg")
	if got := resp.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if string(first) != string(second) {
		t.Error("cached SVG differs from the rendered one")
	}
	resp, _ = get(t, ts.URL+"/docs/quadrants/render.svg?refresh=1")
	if got := resp.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("refresh X-Cache = %q, want miss", got)
	}
}

func TestServeHit(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/docs/quadrants/hit?x=20&y=50")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var res hitResult
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatal(err)
	}
	want := canvas.CellInfo{Row: "bottom", Column: "left", Rect: canvas.Rect{X: 0, Y: 50, W: 100, H: 50}}
	if res.Cell == nil || *res.Cell != want {
		t.Errorf("cell = %+v, want %+v", res.Cell, want)
	}
	if res.Line == nil || res.Line.Position != "top" || res.Line.Coord != 50 {
		t.Errorf("line = %+v, want top max at 50", res.Line)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeFileNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeConstraintParse, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := httpStatus(tt.err); got != tt.want {
			t.Errorf("httpStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
