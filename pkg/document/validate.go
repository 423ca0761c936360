package document

import (
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/gridplot/pkg/axis"
	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/errors"
	"github.com/matzehuels/gridplot/pkg/plot"
)

// Functions are the curves a [[plot.function]] table may name.
var Functions = map[string]func(float64) float64{
	"identity": func(x float64) float64 { return x },
	"square":   func(x float64) float64 { return x * x },
	"sin":      math.Sin,
	"cos":      math.Cos,
	"tanh":     math.Tanh,
	"exp":      math.Exp,
	"log":      math.Log,
	"log10":    math.Log10,
	"sqrt":     math.Sqrt,
	"abs":      math.Abs,
}

// FunctionNames returns the keys of Functions, sorted.
func FunctionNames() []string {
	names := make([]string, 0, len(Functions))
	for n := range Functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks everything that can be checked without building the
// canvas: sizes, names and references between tables. Layout strings and
// relative_to cycles are checked when the canvas is built.
func (d *Document) Validate() error {
	if err := errors.ValidateSize(d.Width, d.Height); err != nil {
		return err
	}
	if d.EmSize < 0 {
		return errors.New(errors.ErrCodeInvalidDocument, "em must not be negative")
	}

	positions := make(map[string]canvas.Orientation)
	for _, set := range []struct {
		o    canvas.Orientation
		list []PositionDoc
	}{{canvas.Row, d.Rows}, {canvas.Column, d.Columns}} {
		for _, p := range set.list {
			if err := errors.ValidateName(p.Name); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDocument, err, "%s %q", set.o, p.Name)
			}
			if _, dup := positions[p.Name]; dup {
				return errors.New(errors.ErrCodeDuplicateName, "position %q declared twice", p.Name)
			}
			positions[p.Name] = set.o
		}
	}
	checkPos := func(owner, name string, want canvas.Orientation) error {
		got, ok := positions[name]
		if !ok {
			return errors.New(errors.ErrCodePositionNotFound, "%s: undefined %s %q", owner, want, name)
		}
		if got != want {
			return errors.New(errors.ErrCodeInvalidDocument, "%s: %q is a %s, not a %s", owner, name, got, want)
		}
		return nil
	}
	for _, set := range []struct {
		o    canvas.Orientation
		list []PositionDoc
	}{{canvas.Row, d.Rows}, {canvas.Column, d.Columns}} {
		for _, p := range set.list {
			if p.RelativeTo == "" {
				continue
			}
			if err := checkPos(p.Name, p.RelativeTo, set.o); err != nil {
				return err
			}
		}
	}

	components := make(map[string]string)
	claim := func(name, kind string) error {
		if err := errors.ValidateName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "%s %q", kind, name)
		}
		if prev, dup := components[name]; dup {
			return errors.New(errors.ErrCodeDuplicateName, "%s %q clashes with %s of the same name", kind, name, prev)
		}
		components[name] = kind
		return nil
	}

	axes := make(map[string]plot.Direction)
	for _, a := range d.Axes {
		if err := claim(a.Name, "axis"); err != nil {
			return err
		}
		dir, err := ParseDirection(a.Direction)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "axis %q", a.Name)
		}
		kind, err := axis.ParseKind(a.Scale)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "axis %q", a.Name)
		}
		probe := axis.Transform{Kind: kind}.WithData(a.Min, a.Max)
		if err := probe.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataRange, err, "axis %q", a.Name)
		}
		if a.Ticks < 0 {
			return errors.New(errors.ErrCodeInvalidDocument, "axis %q: ticks must not be negative", a.Name)
		}
		if err := checkPos("axis "+a.Name, a.Row, canvas.Row); err != nil {
			return err
		}
		if err := checkPos("axis "+a.Name, a.Column, canvas.Column); err != nil {
			return err
		}
		axes[a.Name] = dir
	}

	for _, p := range d.Plots {
		if err := claim(p.Name, "plot"); err != nil {
			return err
		}
		owner := "plot " + p.Name
		if err := checkPos(owner, p.Row, canvas.Row); err != nil {
			return err
		}
		if err := checkPos(owner, p.Column, canvas.Column); err != nil {
			return err
		}
		for _, ref := range []struct {
			name string
			want plot.Direction
		}{{p.XAxis, plot.Horizontal}, {p.YAxis, plot.Vertical}} {
			dir, ok := axes[ref.name]
			if !ok {
				return errors.New(errors.ErrCodeComponentNotFound, "%s: undefined axis %q", owner, ref.name)
			}
			if dir != ref.want {
				return errors.New(errors.ErrCodeInvalidDocument, "%s: axis %q is not a %s axis", owner, ref.name, ref.want)
			}
		}
		if _, err := ParseColor(p.Background); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "%s background", owner)
		}
		for _, s := range p.Series {
			if len(s.X) != len(s.Y) {
				return errors.New(errors.ErrCodeInvalidDocument, "%s series %q: %d x values but %d y values", owner, s.Label, len(s.X), len(s.Y))
			}
			if _, err := ParseColor(s.Color); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDocument, err, "%s series %q", owner, s.Label)
			}
		}
		for _, f := range p.Functions {
			if _, ok := Functions[f.Func]; !ok {
				return errors.New(errors.ErrCodeInvalidDocument, "%s function %q: unknown func %q (have %s)", owner, f.Label, f.Func, strings.Join(FunctionNames(), ", "))
			}
			if _, err := ParseColor(f.Color); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDocument, err, "%s function %q", owner, f.Label)
			}
		}
	}
	return nil
}

// ParseDirection parses an axis direction.
func ParseDirection(s string) (plot.Direction, error) {
	switch strings.ToLower(s) {
	case "x", "horizontal":
		return plot.Horizontal, nil
	case "y", "vertical":
		return plot.Vertical, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown axis direction %q", s)
}

var namedColors = map[string]color.Color{
	"black": color.Black,
	"white": color.White,
	"red":   color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	"green": color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	"blue":  color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	"gray":  color.Gray{Y: 0x80},
}

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa" or a basic color
// name. The empty string yields nil.
func ParseColor(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	hexs, ok := strings.CutPrefix(s, "#")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bad color %q", s)
	}
	if len(hexs) == 3 {
		hexs = string([]byte{hexs[0], hexs[0], hexs[1], hexs[1], hexs[2], hexs[2]})
	}
	if len(hexs) == 6 {
		hexs += "ff"
	}
	if len(hexs) != 8 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bad color %q", s)
	}
	v, err := strconv.ParseUint(hexs, 16, 32)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
