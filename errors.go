package nimbus

import (
	"errors"
	"fmt"
	"time"
)

// Log errors.
var (
	// ErrMessageNotFound is returned when no entry with the given ID exists.
	ErrMessageNotFound = errors.New("message not found")

	// ErrAlreadyResolved is returned when a terminal transition or chunk
	// append is attempted on an entry that has already been resolved.
	ErrAlreadyResolved = errors.New("message already resolved")
)

// Validation errors for attached input images.
var (
	ErrEmptyImageData  = errors.New("image data cannot be empty")
	ErrInvalidMIMEType = errors.New("invalid or unsupported MIME type")
	ErrImageTooLarge   = errors.New("image data exceeds maximum size")
)

// ErrNoImage is returned by backends when a generation request succeeded but
// produced zero images. Its message is user-presentable.
var ErrNoImage = errors.New("no image was generated")

// RateLimitError is returned when a model's rate limiter refuses a turn.
type RateLimitError struct {
	Model      string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %v",
		e.Model, e.RetryAfter)
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}
