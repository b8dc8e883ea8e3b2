package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateName validates an object or canvas name.
// Names end up as keys in the registry and as pad identifiers, so the rules
// reject anything that would make lookups ambiguous:
//   - No empty names
//   - No control characters or whitespace
//   - No ':' (reserved for 2-D variable descriptors)
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "name contains whitespace or control characters: %q", name)
		}
	}

	if strings.Contains(name, ":") {
		return New(ErrCodeInvalidName, "name cannot contain ':': %q", name)
	}

	return nil
}

// ValidateOutputPath validates a file path used for exported images.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidInput, "output path must name a file, not a directory")
	}

	return nil
}
