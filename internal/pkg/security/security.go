// Package security provides input validation and API-key checking for the
// validation service surface.
package security

import (
	"crypto/subtle"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Validation limits.
const (
	MinPaperIDLength = 1
	MaxPaperIDLength = 128

	// MaxRequestSize bounds an uploaded annotation set.
	MaxRequestSize = 32 * 1024 * 1024 // 32MB

	MaxWorkers = 256
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field      string
	Value      interface{}
	Constraint string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed for %s: %s (got: %v)", e.Field, e.Constraint, e.Value)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Constraint)
}

// paperIDRegex matches safe corpus item identifiers: alphanumeric with
// dot, hyphen, underscore separators.
var paperIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidatePaperID validates a corpus item identifier.
func ValidatePaperID(id string) error {
	if len(id) < MinPaperIDLength {
		return &ValidationError{Field: "paper_id", Constraint: "must not be empty"}
	}
	if len(id) > MaxPaperIDLength {
		return &ValidationError{Field: "paper_id", Value: len(id), Constraint: fmt.Sprintf("must be at most %d characters", MaxPaperIDLength)}
	}
	if !utf8.ValidString(id) {
		return &ValidationError{Field: "paper_id", Constraint: "must be valid UTF-8"}
	}
	if !paperIDRegex.MatchString(id) {
		return &ValidationError{Field: "paper_id", Value: id, Constraint: "must be alphanumeric with . _ - separators"}
	}
	return nil
}

// ValidateWorkers validates a worker-count override.
func ValidateWorkers(workers int) error {
	if workers < 0 || workers > MaxWorkers {
		return &ValidationError{Field: "workers", Value: workers, Constraint: fmt.Sprintf("must be between 0 and %d", MaxWorkers)}
	}
	return nil
}

// CheckAPIKey compares a presented key against the configured one in
// constant time. An empty configured key disables the check.
func CheckAPIKey(configured, presented string) bool {
	if configured == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}

// MaskSecret masks all but the last four characters of a secret for
// logging.
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
