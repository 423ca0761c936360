package document

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridplot/pkg/errors"
)

// Document is the decoded form of a layout file.
type Document struct {
	Title   string        `toml:"title,omitempty"`
	Width   int           `toml:"width"`
	Height  int           `toml:"height"`
	EmSize  float64       `toml:"em,omitempty"`
	Rows    []PositionDoc `toml:"row"`
	Columns []PositionDoc `toml:"column"`
	Axes    []AxisDoc     `toml:"axis,omitempty"`
	Plots   []PlotDoc     `toml:"plot,omitempty"`
}

// PositionDoc declares a row or a column.
type PositionDoc struct {
	Name       string `toml:"name"`
	Min        string `toml:"min"`
	Max        string `toml:"max"`
	RelativeTo string `toml:"relative_to,omitempty"`
}

// AxisDoc declares an axis component.
type AxisDoc struct {
	Name      string  `toml:"name"`
	Direction string  `toml:"direction"`
	Scale     string  `toml:"scale,omitempty"`
	Min       float64 `toml:"min"`
	Max       float64 `toml:"max"`
	Inverted  *bool   `toml:"inverted,omitempty"`
	Label     string  `toml:"label,omitempty"`
	Ticks     int     `toml:"ticks,omitempty"`
	Row       string  `toml:"row"`
	Column    string  `toml:"column"`
}

// PlotDoc declares a plot component and its data.
type PlotDoc struct {
	Name       string        `toml:"name"`
	Title      string        `toml:"title,omitempty"`
	Row        string        `toml:"row"`
	Column     string        `toml:"column"`
	XAxis      string        `toml:"xaxis"`
	YAxis      string        `toml:"yaxis"`
	Background string        `toml:"background,omitempty"`
	Series     []SeriesDoc   `toml:"series,omitempty"`
	Functions  []FunctionDoc `toml:"function,omitempty"`
}

// SeriesDoc is a sampled data set.
type SeriesDoc struct {
	Label   string    `toml:"label"`
	X       []float64 `toml:"x"`
	Y       []float64 `toml:"y"`
	Color   string    `toml:"color,omitempty"`
	Width   float64   `toml:"width,omitempty"`
	Line    *bool     `toml:"line,omitempty"`
	Markers bool      `toml:"markers,omitempty"`
}

// FunctionDoc is a curve y = Amplitude*F(Frequency*x + Phase) + Offset
// where F is one of the named functions in Functions.
type FunctionDoc struct {
	Label     string  `toml:"label"`
	Func      string  `toml:"func"`
	Amplitude float64 `toml:"amplitude,omitempty"`
	Frequency float64 `toml:"frequency,omitempty"`
	Phase     float64 `toml:"phase,omitempty"`
	Offset    float64 `toml:"offset,omitempty"`
	Color     string  `toml:"color,omitempty"`
	Width     float64 `toml:"width,omitempty"`
}

// Parse decodes and validates a document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode layout")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "unknown key %q", undecoded[0].String())
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout %s", path)
		}
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode reads a document from r.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Encode writes d as TOML.
func (d *Document) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(d)
}
