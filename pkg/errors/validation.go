package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePlateID validates a plate identifier for safety and correctness.
// Plate IDs become file names and store keys, so the rules are conservative:
//   - No empty IDs
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidatePlateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "plate id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "plate id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "plate id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "plate id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// annotationKeyRegex matches annotation keys: letters, digits and a few separators.
var annotationKeyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]*$`)

// ValidateKey validates an annotation key.
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "annotation key cannot be empty")
	}

	if len(key) > 64 {
		return New(ErrCodeInvalidInput, "annotation key too long (max 64 characters)")
	}

	if !annotationKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidInput, "invalid annotation key: %q", key)
	}

	return nil
}
