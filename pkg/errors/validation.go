package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// MaxWorkspaceNameLength bounds user-supplied workspace names.
const MaxWorkspaceNameLength = 128

// ValidateWorkspaceName validates a user-facing workspace name.
//
// Names are free text but must be non-blank, at most
// MaxWorkspaceNameLength runes, and free of control characters.
func ValidateWorkspaceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidWorkspace, "workspace name cannot be empty")
	}

	if len([]rune(name)) > MaxWorkspaceNameLength {
		return New(ErrCodeInvalidWorkspace, "workspace name too long (max %d characters)", MaxWorkspaceNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidWorkspace, "workspace name contains invalid control characters")
		}
	}
	return nil
}

// storageKeyRegex matches keys accepted by every storage backend.
var storageKeyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateStorageKey validates a key written to a storage backend.
// Keys end up as file names and redis keys, so path separators,
// traversal sequences and whitespace are rejected.
func ValidateStorageKey(key string) error {
	if key == "" {
		return New(ErrCodeStorage, "storage key cannot be empty")
	}
	if len(key) > 256 {
		return New(ErrCodeStorage, "storage key too long (max 256 characters)")
	}
	if strings.Contains(key, "..") {
		return New(ErrCodeStorage, "storage key cannot contain path traversal sequences (..)")
	}
	if !storageKeyRegex.MatchString(key) {
		return New(ErrCodeStorage, "invalid storage key: %q", key)
	}
	return nil
}

// ValidateSize rejects sizes that are not finite and strictly positive.
func ValidateSize(width, height float64) error {
	if !finite(width) || !finite(height) {
		return New(ErrCodeInvalidGeometry, "size must be finite")
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidGeometry, "size %gx%g must be positive", width, height)
	}
	return nil
}

// ValidatePosition rejects positions with NaN or infinite coordinates.
func ValidatePosition(x, y float64) error {
	if !finite(x) || !finite(y) {
		return New(ErrCodeInvalidGeometry, "position must be finite")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
