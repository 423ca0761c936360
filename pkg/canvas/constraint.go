package canvas

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/gridplot/pkg/errors"
)

// Constraint is one endpoint of a device position. It resolves to
//
//	origin + Pixels + Em*emSize + Fraction*referenceLength
//
// where origin and referenceLength come from the canvas (origin 0, length
// = width or height) or from the base position.
type Constraint struct {
	Fraction float64
	Em       float64
	Pixels   int
}

// Frac returns a constraint of fraction f plus px pixels.
func Frac(f float64, px int) Constraint {
	return Constraint{Fraction: f, Pixels: px}
}

// eval evaluates c without rounding.
func (c Constraint) eval(origin, ref, em float64) float64 {
	return origin + float64(c.Pixels) + c.Em*em + c.Fraction*ref
}

// String formats c in the symbolic grammar accepted by ParseConstraint.
func (c Constraint) String() string {
	var b strings.Builder
	write := func(v float64, unit string) {
		if b.Len() > 0 && v >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteString(unit)
	}
	if c.Fraction != 0 {
		write(c.Fraction*100, "%")
	}
	if c.Em != 0 {
		write(c.Em, "em")
	}
	if c.Pixels != 0 || b.Len() == 0 {
		write(float64(c.Pixels), "px")
	}
	return b.String()
}

// ParseConstraint parses one endpoint.
//
// Two forms are accepted. The symbolic form is a signed sum of terms:
//
//	"50%-3em"   half the reference length minus three em
//	"100%-20"   the far edge minus 20 pixels
//	"2em+4px"
//
// The legacy pair form is "<fraction>,<offsetPixels>", for example "0.5,-20".
// Whitespace between terms is ignored. Pixel terms must be whole numbers.
func ParseConstraint(s string) (Constraint, error) {
	src := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Constraint{}, errors.New(errors.ErrCodeConstraintParse, "empty constraint")
	}
	if strings.Contains(s, ",") {
		return parsePair(src, s)
	}

	var (
		c      Constraint
		pixels float64
		i      int
	)
	skip := func() {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
	}
	for i < len(s) {
		sign := 1.0
		switch s[i] {
		case '+':
			i++
		case '-':
			sign = -1
			i++
		default:
			if i > 0 {
				return Constraint{}, errors.New(errors.ErrCodeConstraintParse, "%q: expected '+' or '-' at offset %d", src, i)
			}
		}
		skip()

		start := i
		for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
			i++
		}
		if start == i {
			return Constraint{}, errors.New(errors.ErrCodeConstraintParse, "%q: expected number at offset %d", src, start)
		}
		v, err := strconv.ParseFloat(s[start:i], 64)
		if err != nil {
			return Constraint{}, errors.Wrap(errors.ErrCodeConstraintParse, err, "%q: bad number %q", src, s[start:i])
		}
		v *= sign
		skip()

		switch {
		case strings.HasPrefix(s[i:], "%"):
			c.Fraction += v / 100
			i++
		case strings.HasPrefix(s[i:], "em"):
			c.Em += v
			i += 2
		case strings.HasPrefix(s[i:], "px"):
			pixels += v
			i += 2
		default:
			pixels += v
		}
		skip()
		if i < len(s) && s[i] != '+' && s[i] != '-' {
			return Constraint{}, errors.New(errors.ErrCodeConstraintParse, "%q: unexpected %q at offset %d", src, s[i], i)
		}
	}

	px, err := wholePixels(src, pixels)
	if err != nil {
		return Constraint{}, err
	}
	c.Pixels = px
	return c, nil
}

// MustParseConstraint is like ParseConstraint but panics on error.
// It is intended for constants in tests and examples.
func MustParseConstraint(s string) Constraint {
	c, err := ParseConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parsePair(src, s string) (Constraint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Constraint{}, errors.New(errors.ErrCodeConstraintParse, "%q: want <fraction>,<offsetPixels>", src)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Constraint{}, errors.Wrap(errors.ErrCodeConstraintParse, err, "%q: bad fraction", src)
	}
	off, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Constraint{}, errors.Wrap(errors.ErrCodeConstraintParse, err, "%q: bad pixel offset", src)
	}
	px, err := wholePixels(src, off)
	if err != nil {
		return Constraint{}, err
	}
	return Constraint{Fraction: f, Pixels: px}, nil
}

func wholePixels(src string, v float64) (int, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.New(errors.ErrCodeConstraintParse, "%q: pixel offset %g is not a whole number", src, v)
	}
	return int(v), nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
