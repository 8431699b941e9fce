package errors

import (
	"strings"
	"unicode"
)

// ValidateTags checks that a whitespace-delimited tag string contains at least
// one tag. Records without tags cannot produce an item.
func ValidateTags(tags string) error {
	if strings.TrimSpace(tags) == "" {
		return New(ErrCodeLoadRejected, "record has no tags")
	}
	return nil
}

// ValidateAssetRef validates the asset reference of a record. It accepts
// absolute http(s) URLs and rooted paths served by the same origin
// (e.g. "/slide/abc/image.dzi").
//
// Validation rules:
//   - Reference cannot be empty
//   - No control characters or whitespace
//   - No path traversal sequences (..)
//   - Either an http(s) URL or a path starting with "/"
func ValidateAssetRef(ref string) error {
	if ref == "" {
		return New(ErrCodeLoadRejected, "asset reference cannot be empty")
	}

	for _, r := range ref {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeLoadRejected, "asset reference contains invalid characters")
		}
	}

	if strings.Contains(ref, "..") {
		return New(ErrCodeLoadRejected, "asset reference cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return nil
	}
	if err := ValidateURL(ref); err != nil {
		return New(ErrCodeLoadRejected, "asset reference %q is neither a rooted path nor an http(s) URL", ref)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
