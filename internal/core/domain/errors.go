package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, extractor or report format.
	ErrUnsupportedType = errors.New("unsupported type")

	// Validation Errors.

	// ErrInvalidURL indicates a URL that is not http(s) with a domain-like or IP host.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrTooFewCompetitors indicates fewer than MinCompetitors competitor URLs were given.
	ErrTooFewCompetitors = errors.New("at least 2 competitor URLs are required")

	// ErrDuplicateURL indicates the same URL was given more than once.
	ErrDuplicateURL = errors.New("duplicate URL")

	// Pipeline Errors.

	// ErrBaselineUnavailable indicates the client page could not be fetched or analysed.
	// The run cannot continue without it.
	ErrBaselineUnavailable = errors.New("client page unavailable")

	// ErrPageUnavailable indicates a page fetch failed (timeout, network, non-2xx).
	ErrPageUnavailable = errors.New("page unavailable")

	// ErrEmptyContent indicates a page was fetched but had no visible text.
	ErrEmptyContent = errors.New("page has no visible text")

	// ErrAnnotationFailed indicates the annotation service returned an error.
	ErrAnnotationFailed = errors.New("annotation failed")

	// ErrAnnotatorNotConfigured indicates the annotation service has no usable credentials.
	ErrAnnotatorNotConfigured = errors.New("annotation service not configured")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrMalformedOutput indicates a language model reply did not match the expected schema.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrRenderFailed indicates a report could not be rendered.
	ErrRenderFailed = errors.New("report render failed")
)

// ValidationError describes a rejected run parameter.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
