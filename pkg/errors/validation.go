package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateGridUnit rejects grid units the snapper cannot divide by.
// NaN and infinities are rejected along with zero and negative values.
func ValidateGridUnit(unit float64) error {
	if math.IsNaN(unit) || math.IsInf(unit, 0) {
		return New(ErrCodeInvalidArgument, "grid unit must be finite, got %v", unit)
	}
	if unit <= 0 {
		return New(ErrCodeInvalidArgument, "grid unit must be positive, got %v", unit)
	}
	return nil
}

// ValidateOutputPath validates a destination file path for an export.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not end in a path separator (a directory is not a file)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}

	return nil
}
