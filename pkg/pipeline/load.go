package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/matzehuels/gridplot/pkg/document"
	"github.com/matzehuels/gridplot/pkg/errors"
)

// Load reads and parses the document named by opts and applies the size
// overrides. It returns the document and its source bytes.
func Load(opts Options) (*document.Document, []byte, error) {
	src := opts.Source
	if len(src) == 0 {
		if opts.Path == "" {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "path or source is required")
		}
		data, err := os.ReadFile(opts.Path)
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout document %s not found", opts.Path)
		}
		if err != nil {
			return nil, nil, err
		}
		src = data
	}
	doc, err := document.Parse(src)
	if err != nil {
		return nil, nil, err
	}
	applyOverrides(doc, opts)
	return doc, src, nil
}

func applyOverrides(doc *document.Document, opts Options) {
	if opts.Width > 0 {
		doc.Width = opts.Width
	}
	if opts.Height > 0 {
		doc.Height = opts.Height
	}
	if opts.EmSize > 0 {
		doc.EmSize = opts.EmSize
	}
}

// BuildScene builds doc and waits until every component has laid out and
// every asynchronous renderer has delivered. The caller must Close the
// scene.
func BuildScene(ctx context.Context, doc *document.Document, opts Options) (*document.Scene, error) {
	opts.SetLayoutDefaults()
	scene, err := document.Build(doc, opts.Logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opts.IdleTimeout)
	defer cancel()

	start := time.Now()
	if err := scene.Canvas.WaitUntilIdle(ctx); err != nil {
		scene.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "layout did not settle")
	}
	opts.Logger.Debug("canvas idle",
		"positions", len(scene.Canvas.Positions()),
		"components", len(scene.Canvas.Components()),
		"waited", time.Since(start).Round(time.Millisecond))
	return scene, nil
}
