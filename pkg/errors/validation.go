package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds position and component names.
const maxNameLength = 128

// nameRegex matches names usable as row, column and component identifiers.
var nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ValidateName validates a row, column or component name.
//
// Names are referenced from layout documents (relative_to, row, column,
// xaxis, ...) and printed in DOT output, so the rules are conservative:
//   - No empty names
//   - No control characters
//   - Must start with a letter or underscore
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid name: %q", name)
	}

	return nil
}

// maxCanvasSide bounds canvas width and height in pixels.
const maxCanvasSide = 1 << 15

// ValidateSize validates a canvas extent.
// Zero is allowed (an unrealized canvas); negative or absurdly large
// extents are rejected.
func ValidateSize(width, height int) error {
	if width < 0 || height < 0 {
		return New(ErrCodeInvalidSize, "canvas size cannot be negative: %dx%d", width, height)
	}
	if width > maxCanvasSide || height > maxCanvasSide {
		return New(ErrCodeInvalidSize, "canvas size too large (max %d): %dx%d", maxCanvasSide, width, height)
	}
	return nil
}

// ValidateFormat checks an output format against the supported set.
func ValidateFormat(format string, valid map[string]bool) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !valid[strings.ToLower(format)] {
		return New(ErrCodeInvalidFormat, "unsupported format: %q", format)
	}
	return nil
}
