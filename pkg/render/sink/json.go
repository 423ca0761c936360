package sink

import (
	"encoding/json"

	"github.com/matzehuels/gridplot/pkg/canvas"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	title      string
	source     string
	components bool
}

// WithJSONTitle records the document title in the output.
func WithJSONTitle(t string) JSONOption { return func(r *jsonRenderer) { r.title = t } }

// WithJSONSource records where the layout came from (a path or URL).
func WithJSONSource(s string) JSONOption { return func(r *jsonRenderer) { r.source = s } }

// WithJSONComponents includes component bindings. They are omitted by
// default because their states change between drains.
func WithJSONComponents() JSONOption { return func(r *jsonRenderer) { r.components = true } }

type jsonOutput struct {
	Title  string `json:"title,omitempty"`
	Source string `json:"source,omitempty"`
	canvas.Layout
}

// RenderJSON exports the resolved layout as a pretty-printed JSON document:
//
//   - Canvas size and em size
//   - Every position with its constraints, base and resolved bounds
//   - Every cell rectangle and hot line coordinate
//   - Optionally, every component's binding and state
//
// It does not modify l and is safe to call concurrently.
func RenderJSON(l canvas.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if !r.components {
		l.Components = nil
	}
	return json.MarshalIndent(jsonOutput{Title: r.title, Source: r.source, Layout: l}, "", "  ")
}

// ParseJSON reads a document written by [RenderJSON].
func ParseJSON(data []byte) (canvas.Layout, error) {
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return canvas.Layout{}, err
	}
	return out.Layout, nil
}
