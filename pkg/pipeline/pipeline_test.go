package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/gridplot/pkg/cache"
	"github.com/matzehuels/gridplot/pkg/errors"
)

const testDoc = `
title = "pipeline"
width = 320
height = 240

[[row]]
name = "body"
min = "10%"
max = "90%"

[[column]]
name = "main"
min = "40px"
max = "100%-10px"

[[axis]]
name = "x"
direction = "x"
min = 0.0
max = 4.0
row = "body"
column = "main"

[[axis]]
name = "y"
direction = "y"
min = 0.0
max = 16.0
row = "body"
column = "main"

[[plot]]
name = "squares"
row = "body"
column = "main"
xaxis = "x"
yaxis = "y"

  [[plot.series]]
  label = "n²"
  x = [0.0, 1.0, 2.0, 3.0, 4.0]
  y = [0.0, 1.0, 4.0, 9.0, 16.0]

  [[plot.function]]
  func = "sin"
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"SVG", false}, // case-insensitive
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "svg"},
		{"svg", "svg"},
		{"SVG, png,,json", "svg|png|json"},
	}
	for _, tt := range tests {
		if got := strings.Join(ParseFormats(tt.in), "|"); got != tt.want {
			t.Errorf("ParseFormats(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no source", Options{}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Path: "x.toml", Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad size", Options{Path: "x.toml", Width: -5}, errors.ErrCodeInvalidSize},
		{"bad em", Options{Path: "x.toml", EmSize: -1}, errors.ErrCodeInvalidInput},
		{"bad scale", Options{Path: "x.toml", Scale: 100}, errors.ErrCodeInvalidInput},
		{"bad background", Options{Path: "x.toml", Background: "mauve-ish"}, errors.ErrCodeInvalidInput},
		{"ok", Options{Path: "x.toml", Background: "none"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Path: "doc.toml", Formats: []string{"PNG"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	if opts.Formats[0] != FormatPNG {
		t.Errorf("format not normalised: %v", opts.Formats)
	}
	scale, timeout := opts.Scale, opts.IdleTimeout
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Scale != scale || opts.IdleTimeout != timeout {
		t.Error("defaults changed on second call")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %v, got %v", DefaultScale, opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	a := Options{Scale: 1, Grid: true}
	b := Options{Scale: 3, Grid: true}

	if a.ArtifactKeyOpts(FormatSVG) != b.ArtifactKeyOpts(FormatSVG) {
		t.Error("scale should not affect the svg key")
	}
	if a.ArtifactKeyOpts(FormatPNG) == b.ArtifactKeyOpts(FormatPNG) {
		t.Error("scale should affect the png key")
	}
	plain, grid := Options{}, Options{Grid: true}
	if plain.ArtifactKeyOpts(FormatJSON) != grid.ArtifactKeyOpts(FormatJSON) {
		t.Error("grid should not affect the json key")
	}
}

func TestContentType(t *testing.T) {
	for _, f := range FormatNames() {
		if ct := ContentType(f); ct == "application/octet-stream" {
			t.Errorf("no content type for %s", f)
		}
	}
}

func TestLoad(t *testing.T) {
	doc, src, err := Load(Options{Source: []byte(testDoc), Width: 640})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Width != 640 || doc.Height != 240 {
		t.Errorf("size = %dx%d, want 640x240", doc.Width, doc.Height)
	}
	if string(src) != testDoc {
		t.Error("source bytes not returned")
	}

	_, _, err = Load(Options{Path: "does/not/exist.toml"})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	r := NewRunner(mc, nil, nil)

	opts := Options{Source: []byte(testDoc), Formats: []string{"svg", "png", "json", "dot"}}
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheInfo.RenderHit || res.CacheInfo.LayoutHit {
		t.Error("first run should miss the cache")
	}
	if len(res.Artifacts) != 4 {
		t.Fatalf("artifacts = %d, want 4", len(res.Artifacts))
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte("<polyline")) {
		t.Error("svg has no series polyline")
	}
	if _, err := png.Decode(bytes.NewReader(res.Artifacts["png"])); err != nil {
		t.Errorf("png does not decode: %v", err)
	}
	if !bytes.Contains(res.Artifacts["json"], []byte(`"title": "pipeline"`)) {
		t.Error("json missing title")
	}
	if !bytes.HasPrefix(res.Artifacts["dot"], []byte("digraph G {")) {
		t.Error("dot output malformed")
	}
	if res.Stats.Positions != 2 || res.Stats.Cells != 1 || res.Stats.Components != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}
	body, ok := res.Layout.Position("body")
	if !ok || body.Bounds.Min != 24 || body.Bounds.Max != 216 {
		t.Errorf("body = %+v", body)
	}
	// 4 artifacts + 1 layout.
	if mc.Len() != 5 {
		t.Errorf("cache entries = %d, want 5", mc.Len())
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.RenderHit || !again.CacheInfo.LayoutHit {
		t.Errorf("second run cache info = %+v", again.CacheInfo)
	}
	if !bytes.Equal(again.Artifacts["svg"], res.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if fresh.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestExecuteBadDocument(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	bad := strings.Replace(testDoc, `max = "90%"`, `max = "90%%"`, 1)
	_, err := r.Execute(context.Background(), Options{Source: []byte(bad)})
	if !errors.Is(err, errors.ErrCodeConstraintParse) {
		t.Errorf("err = %v, want constraint parse error", err)
	}
}

func TestResolveLayout(t *testing.T) {
	r := NewRunner(cache.NewMemoryCache(), nil, nil)
	opts := Options{Source: []byte(testDoc), Height: 400}

	l, hit, err := r.ResolveLayout(context.Background(), opts)
	if err != nil {
		t.Fatalf("ResolveLayout: %v", err)
	}
	if hit {
		t.Error("first resolve should miss")
	}
	if l.Height != 400 || len(l.Cells) != 1 {
		t.Errorf("layout = %dx%d with %d cells", l.Width, l.Height, len(l.Cells))
	}
	if _, hit, _ := r.ResolveLayout(context.Background(), opts); !hit {
		t.Error("second resolve should hit")
	}
}
