package utils

import (
	apperrors "github.com/Kosench/shortlink/internal/errors"
)

// ValidateLongURL only rejects empty input; targets are otherwise opaque.
func ValidateLongURL(longURL string) error {
	if longURL == "" {
		return apperrors.NewValidationError("long_url", "long_url is required")
	}
	return nil
}

// IsReservedCode reports whether code collides with one of the reserved route tokens.
func IsReservedCode(code string, reserved []string) bool {
	for _, r := range reserved {
		if code == r {
			return true
		}
	}
	return false
}
