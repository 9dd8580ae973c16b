package insight

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateRequest checks an analysis request before it reaches the gateway.
// It is pure and synchronous; the queue invokes it at execution time so that
// Enqueue stays non-blocking.
func ValidateRequest(req AnalysisRequest, opts ValidationOptions) error {
	if opts.MinLength <= 0 && opts.MaxLength <= 0 {
		opts = DefaultValidationOptions()
	}

	if strings.TrimSpace(req.Topic) == "" {
		return NewValidationError("a valid topic is required for analysis")
	}
	length := utf8.RuneCountInString(req.Topic)
	if length < opts.MinLength {
		return NewValidationError(fmt.Sprintf("topic is too short for analysis (minimum %d characters)", opts.MinLength))
	}
	if opts.MaxLength > 0 && length > opts.MaxLength {
		return NewValidationError(fmt.Sprintf("topic exceeds the maximum allowed size (%d characters)", opts.MaxLength))
	}
	return nil
}
