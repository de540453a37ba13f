package errors

import (
	"strings"
	"unicode"
)

// ValidateSpellID validates a spell identifier arriving from an untrusted
// source (manifest, edge list, HTTP request). IDs end up in cache keys and
// file names, so the rules are conservative:
//   - non-empty, at most 128 characters
//   - no control characters or null bytes
//   - no path separators or traversal sequences
func ValidateSpellID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSpell, "spell id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidSpell, "spell id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSpell, "spell id contains control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidSpell, "spell id contains invalid sequence %q", pattern)
		}
	}
	return nil
}

// ValidateSchool validates a school name from untrusted input. Schools name
// cache key components and layout sectors.
func ValidateSchool(school string) error {
	if school == "" {
		return New(ErrCodeInvalidSchool, "school cannot be empty")
	}
	if len(school) > 64 {
		return New(ErrCodeInvalidSchool, "school name too long (max 64 characters)")
	}
	for _, r := range school {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSchool, "school name contains control characters")
		}
	}
	return nil
}

// ValidateManifestPath ensures a manifest path is plausible before opening
// it: non-empty, no null bytes, reasonable length.
func ValidateManifestPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidManifest, "manifest path cannot be empty")
	}
	if len(path) > 500 {
		return New(ErrCodeInvalidManifest, "manifest path too long (max 500 characters)")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidManifest, "manifest path contains null byte")
	}
	return nil
}
