package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridplot/pkg/cache"
	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/observability"
	"github.com/matzehuels/gridplot/pkg/render/sink"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the preview server use it.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Observe(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	doc, src, err := Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Document = doc
	result.DocHash = cache.Hash(src)
	result.Stats.LoadTime = time.Since(loadStart)

	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, result.DocHash, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			if l, ok := r.cachedLayout(ctx, result.DocHash, opts); ok {
				result.Layout = l
				result.CacheInfo.LayoutHit = true
				result.fillCounts()
			}
			r.Logger.Debug("artifacts served from cache", "formats", opts.Formats, "doc", result.DocHash[:12])
			return result, nil
		}
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	scene, err := BuildScene(ctx, doc, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, 0, 0, result.Stats.LayoutTime, err)
		return nil, fmt.Errorf("layout: %w", err)
	}
	defer scene.Close()

	result.Layout = scene.Canvas.Snapshot()
	result.fillCounts()
	observability.Pipeline().OnLoadComplete(ctx, result.Stats.Positions, result.Stats.Components, result.Stats.LayoutTime, nil)
	r.storeLayout(ctx, result.DocHash, result.Layout, opts)

	r.Logger.Info("resolved layout",
		"positions", result.Stats.Positions,
		"cells", result.Stats.Cells,
		"components", result.Stats.Components,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := Render(ctx, scene, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(result.DocHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
		}
	}

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ResolveLayout loads the document and returns its resolved layout,
// consulting the cache first.
func (r *Runner) ResolveLayout(ctx context.Context, opts Options) (canvas.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return canvas.Layout{}, false, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return canvas.Layout{}, false, err
	}

	doc, src, err := Load(opts)
	if err != nil {
		return canvas.Layout{}, false, err
	}
	hash := cache.Hash(src)
	if !opts.Refresh {
		if l, ok := r.cachedLayout(ctx, hash, opts); ok {
			return l, true, nil
		}
	}
	scene, err := BuildScene(ctx, doc, opts)
	if err != nil {
		return canvas.Layout{}, false, err
	}
	defer scene.Close()
	l := scene.Canvas.Snapshot()
	r.storeLayout(ctx, hash, l, opts)
	return l, false, nil
}

func (r *Runner) cachedArtifacts(ctx context.Context, docHash string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format)))
		if err != nil || !hit {
			return nil, false
		}
		artifacts[format] = data
	}
	return artifacts, true
}

func (r *Runner) cachedLayout(ctx context.Context, docHash string, opts Options) (canvas.Layout, bool) {
	data, hit, err := r.Cache.Get(ctx, r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts()))
	if err != nil || !hit {
		return canvas.Layout{}, false
	}
	l, err := sink.ParseJSON(data)
	if err != nil {
		return canvas.Layout{}, false
	}
	return l, true
}

func (r *Runner) storeLayout(ctx context.Context, docHash string, l canvas.Layout, opts Options) {
	data, err := sink.RenderJSON(l, sink.WithJSONComponents())
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts()), data, cache.LayoutTTL); err != nil {
		r.Logger.Warn("cache write failed", "stage", "layout", "err", err)
	}
}

func (res *Result) fillCounts() {
	res.Stats.Positions = len(res.Layout.Positions)
	res.Stats.Cells = len(res.Layout.Cells)
	res.Stats.Components = len(res.Layout.Components)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
