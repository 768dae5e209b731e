package docseq

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrInvalidInput = errors.New("docseq: invalid input")

	// Series errors
	ErrInvalidKey      = errors.New("docseq: invalid counter key")
	ErrInvalidPrefix   = errors.New("docseq: invalid prefix")
	ErrUnknownSeries   = errors.New("docseq: unknown series")
	ErrDuplicateSeries = errors.New("docseq: duplicate series key")

	// Counter errors
	ErrCounterNotFound = errors.New("docseq: counter not found")
	ErrInvalidBaseline = errors.New("docseq: invalid backfill baseline")

	// Issuance errors
	ErrNumberGeneration = errors.New("docseq: could not generate document number")

	// Store errors
	ErrStoreUnavailable = errors.New("docseq: store unavailable")
	ErrStoreClosed      = errors.New("docseq: store is closed")
	ErrMigrationFailed  = errors.New("docseq: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("docseq: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ValidationError against ErrInvalidInput.
func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCounterNotFound) ||
		errors.Is(err, ErrUnknownSeries)
}

// IsInvalidInput returns true if the request was rejected before reaching the store.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidKey) ||
		errors.Is(err, ErrInvalidPrefix) ||
		errors.Is(err, ErrUnknownSeries) ||
		errors.Is(err, ErrInvalidBaseline)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
// A retried issuance may skip a number but never repeats one.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) &&
		!errors.Is(err, ErrStoreClosed)
}
