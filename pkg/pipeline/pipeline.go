// Package pipeline provides the document → canvas → artifact pipeline.
//
// This package implements the complete load → layout → render pipeline used
// by the CLI commands and the preview server, so that every entry point
// resolves and renders a layout document the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and validate a TOML layout document
//  2. Layout: Build the canvas, bind components and wait until it is idle
//  3. Render: Produce outputs (SVG, PNG, PDF, JSON, DOT) in parallel
//
// Rendered artifacts are cached by document hash and render options; a run
// whose artifacts are all cached never builds a canvas.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "dashboard.toml",
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	doc, src, err := pipeline.Load(opts)
//	scene, err := pipeline.BuildScene(ctx, doc, opts)
//	defer scene.Close()
//	artifacts, err := pipeline.Render(ctx, scene, opts)
package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridplot/pkg/cache"
	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/document"
	"github.com/matzehuels/gridplot/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 1.0

	// DefaultIdleTimeout bounds how long the layout stage waits for
	// asynchronous renderers to settle.
	DefaultIdleTimeout = 30 * time.Second

	// MaxScale caps the PNG scale factor.
	MaxScale = 8.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Load options. Source wins over Path when both are set.
	Path   string `json:"path,omitempty"`
	Source []byte `json:"-"`

	// Layout overrides; zero keeps the document's value.
	Width       int           `json:"width,omitempty"`
	Height      int           `json:"height,omitempty"`
	EmSize      float64       `json:"em,omitempty"`
	IdleTimeout time.Duration `json:"-"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	Grid       bool     `json:"grid,omitempty"`
	Background string   `json:"background,omitempty"`
	Converter  bool     `json:"converter,omitempty"` // PNG through rsvg-convert
	Refresh    bool     `json:"refresh,omitempty"`   // ignore cached artifacts

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the loaded layout document.
	Document *document.Document

	// DocHash is the content hash of the document source.
	DocHash string

	// Layout is the resolved layout. It is empty when every artifact came
	// from the cache and no layout was cached.
	Layout canvas.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Positions  int
	Cells      int
	Components int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// ParseFormats splits a comma-separated format list. Empty means svg.
func ParseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a document source is given.
func (o *Options) ValidateForLoad() error {
	if len(o.Source) == 0 && o.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "path or source is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for the layout stage.
func (o *Options) SetLayoutDefaults() {
	if o.IdleTimeout == 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates the layout overrides.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Width != 0 || o.Height != 0 {
		w, h := o.Width, o.Height
		if w == 0 {
			w = 1
		}
		if h == 0 {
			h = 1
		}
		if err := errors.ValidateSize(w, h); err != nil {
			return err
		}
	}
	if o.EmSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "em size must be positive, got %g", o.EmSize)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(f)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, %g], got %g", MaxScale, o.Scale)
	}
	if o.Background != "" && o.Background != "none" {
		if _, err := document.ParseColor(o.Background); err != nil {
			return err
		}
	}
	return nil
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Width: o.Width, Height: o.Height, EmSize: o.EmSize}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Options that do not affect the format's bytes are left out.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Width: o.Width, Height: o.Height, EmSize: o.EmSize}
	switch format {
	case FormatSVG, FormatPDF:
		k.Grid, k.Background = o.Grid, o.Background
	case FormatPNG:
		k.Grid, k.Background = o.Grid, o.Background
		k.Scale, k.Converter = o.Scale, o.Converter
	}
	return k
}

func (o *Options) String() string {
	src := o.Path
	if len(o.Source) > 0 {
		src = fmt.Sprintf("<%d bytes>", len(o.Source))
	}
	return fmt.Sprintf("%s → %s", src, strings.Join(o.Formats, ","))
}
