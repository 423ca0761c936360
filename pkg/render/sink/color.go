package sink

import (
	"fmt"
	"image/color"
)

// svgPaint returns the SVG paint string and opacity for c. A nil color
// paints nothing.
func svgPaint(c color.Color) (string, float64) {
	if c == nil {
		return "none", 1
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), float64(n.A) / 255
}

func visible(c color.Color) bool {
	if c == nil {
		return false
	}
	_, _, _, a := c.RGBA()
	return a > 0
}
