package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/matzehuels/gridplot/pkg/errors"
)

// Converter is the name of the external SVG converter binary.
const Converter = "rsvg-convert"

// HasConverter reports whether rsvg-convert can be found on PATH.
func HasConverter() bool {
	_, err := exec.LookPath(Converter)
	return err == nil
}

// ToPDF converts SVG bytes to PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

// ToPNG converts SVG bytes to PNG at the given scale. A scale <= 0 means 1.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	z := strconv.FormatFloat(scale, 'f', -1, 64)
	return convert(svg, "-f", "png", "-z", z)
}

func convert(svg []byte, args ...string) ([]byte, error) {
	path, err := exec.LookPath(Converter)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err,
			"%s not found (install librsvg)", Converter)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(path, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", Converter, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", Converter, err)
	}
	return stdout.Bytes(), nil
}
