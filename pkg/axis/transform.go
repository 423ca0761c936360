package axis

import (
	stderrors "errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/scale"

	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/errors"
)

// ErrDomain is wrapped by every error for a value or pixel that cannot be
// mapped.
var ErrDomain = stderrors.New("value outside transform domain")

// Kind selects the scale of a transform.
type Kind int

const (
	Linear Kind = iota
	Log
)

func (k Kind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Log:
		return "log"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses "linear" or "log".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "linear", "lin":
		return Linear, nil
	case "log", "log10", "logarithmic":
		return Log, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown scale %q", s)
}

// DefaultLogBase is the base of log transforms whose Base is zero.
const DefaultLogBase = 10

// Transform maps between a data interval and a pixel interval.
//
// The zero value is a degenerate linear transform; every mapping on it
// fails with a domain error.
type Transform struct {
	Kind     Kind
	DataMin  float64
	DataMax  float64
	PixelMin float64
	PixelMax float64

	// Inverted maps DataMin to PixelMax instead of PixelMin.
	Inverted bool

	// Base is the log base; zero means DefaultLogBase.
	Base int
}

// New returns a transform of kind k from [dataMin, dataMax] onto px.
//
// Reversed data extrema are swapped. That matches how callers have always
// been allowed to pass them, but a reversed range is more often a caller
// bug than a request for a flipped axis; use Inverted for the latter.
func New(k Kind, dataMin, dataMax float64, px canvas.Bounds, inverted bool) (Transform, error) {
	if dataMin > dataMax {
		dataMin, dataMax = dataMax, dataMin
	}
	t := Transform{
		Kind:     k,
		DataMin:  dataMin,
		DataMax:  dataMax,
		PixelMin: float64(px.Min),
		PixelMax: float64(px.Max),
		Inverted: inverted,
	}
	if err := t.Validate(); err != nil {
		return Transform{}, err
	}
	return t, nil
}

// WithPixels returns t mapped onto a new pixel interval.
func (t Transform) WithPixels(px canvas.Bounds) Transform {
	t.PixelMin, t.PixelMax = float64(px.Min), float64(px.Max)
	return t
}

// WithData returns t with a new data interval. Reversed extrema are
// swapped as in New.
func (t Transform) WithData(min, max float64) Transform {
	if min > max {
		min, max = max, min
	}
	t.DataMin, t.DataMax = min, max
	return t
}

// Validate checks the data interval. It reports an error coded
// ErrCodeInvalidDataRange for non-finite or empty intervals and for log
// intervals that reach zero or below.
func (t Transform) Validate() error {
	if !finite(t.DataMin) || !finite(t.DataMax) {
		return errors.New(errors.ErrCodeInvalidDataRange, "data range [%g,%g] is not finite", t.DataMin, t.DataMax)
	}
	if t.DataMin == t.DataMax {
		return errors.New(errors.ErrCodeInvalidDataRange, "data range [%g,%g] is empty", t.DataMin, t.DataMax)
	}
	if t.Kind == Log && t.DataMin <= 0 {
		return errors.New(errors.ErrCodeInvalidDataRange, "log data range [%g,%g] must be positive", t.DataMin, t.DataMax)
	}
	if t.Kind != Linear && t.Kind != Log {
		return errors.New(errors.ErrCodeInvalidInput, "unknown scale %v", t.Kind)
	}
	return nil
}

// Degenerate reports whether t cannot map anything: an invalid data
// interval or a zero-width pixel interval.
func (t Transform) Degenerate() bool {
	return t.Validate() != nil || t.PixelMin == t.PixelMax || !finite(t.PixelMin) || !finite(t.PixelMax)
}

// normalizer is the part of a go-moremath scale used here.
type normalizer interface {
	Map(x float64) float64
	Unmap(y float64) float64
}

func (t Transform) scale() (normalizer, error) {
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDomain, ErrDomain, "%s", errors.UserMessage(err))
	}
	if t.Kind == Log {
		base := t.Base
		if base == 0 {
			base = DefaultLogBase
		}
		s, err := scale.NewLog(t.DataMin, t.DataMax, base)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDomain, ErrDomain, "log scale [%g,%g]: %v", t.DataMin, t.DataMax, err)
		}
		return &s, nil
	}
	return &scale.Linear{Min: t.DataMin, Max: t.DataMax}, nil
}

// Forward maps a data value to a pixel coordinate.
func (t Transform) Forward(v float64) (float64, error) {
	if !finite(v) {
		return 0, errors.Wrap(errors.ErrCodeDomain, ErrDomain, "value %g is not finite", v)
	}
	if t.Kind == Log && v <= 0 {
		return 0, errors.Wrap(errors.ErrCodeDomain, ErrDomain, "log of non-positive value %g", v)
	}
	if t.PixelMin == t.PixelMax {
		return 0, errors.Wrap(errors.ErrCodeDomain, ErrDomain, "zero-width pixel interval at %g", t.PixelMin)
	}
	s, err := t.scale()
	if err != nil {
		return 0, err
	}
	u := s.Map(v)
	if t.Inverted {
		u = 1 - u
	}
	p := t.PixelMin + u*(t.PixelMax-t.PixelMin)
	if !finite(p) {
		return 0, errors.Wrap(errors.ErrCodeDomain, ErrDomain, "value %g maps outside pixel space", v)
	}
	return p, nil
}

// Inverse maps a pixel coordinate back to a data value.
func (t Transform) Inverse(p float64) (float64, error) {
	if !finite(p) {
		return 0, errors.Wrap(errors.ErrCodeDomain, ErrDomain, "pixel %g is not finite", p)
	}
	width := t.PixelMax - t.PixelMin
	if width == 0 {
		return 0, errors.Wrap(errors.ErrCodeDomain, ErrDomain, "zero-width pixel interval at %g", t.PixelMin)
	}
	s, err := t.scale()
	if err != nil {
		return 0, err
	}
	u := (p - t.PixelMin) / width
	if t.Inverted {
		u = 1 - u
	}
	v := s.Unmap(u)
	if !finite(v) {
		return 0, errors.Wrap(errors.ErrCodeDomain, ErrDomain, "pixel %g has no data value", p)
	}
	return v, nil
}

// Ticks returns major and minor tick values inside the data interval,
// with at most max major ticks.
func (t Transform) Ticks(max int) (major, minor []float64, err error) {
	if max < 1 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "max ticks must be positive, got %d", max)
	}
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}
	o := scale.TickOptions{Max: max}
	if t.Kind == Log {
		base := t.Base
		if base == 0 {
			base = DefaultLogBase
		}
		s, err := scale.NewLog(t.DataMin, t.DataMax, base)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidDataRange, err, "log scale")
		}
		major, minor = s.Ticks(o)
		return major, minor, nil
	}
	s := scale.Linear{Min: t.DataMin, Max: t.DataMax}
	major, minor = s.Ticks(o)
	return major, minor, nil
}

func (t Transform) String() string {
	dir := ""
	if t.Inverted {
		dir = " inverted"
	}
	return fmt.Sprintf("%s [%g,%g] -> [%g,%g]%s", t.Kind, t.DataMin, t.DataMax, t.PixelMin, t.PixelMax, dir)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
