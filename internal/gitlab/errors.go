package gitlab

import (
	"errors"
	"fmt"
)

const (
	baseURLNotConfiguredMessageConstant         = "gitlab base url not configured"
	incompleteResultTemplateConstant            = "%s listing incomplete at page %d (cursor %d): status %d: %s"
	incompleteResultWithCauseTemplateConstant   = "%s listing incomplete at page %d (cursor %d): %s"
	apiErrorTemplateConstant                    = "%s failed with status %d: %s"
	responseDecodingErrorTemplateConstant       = "%s response decoding failed: %s"
	missingFieldErrorTemplateConstant           = "%s record missing required field %q"
	nullFieldErrorTemplateConstant              = "%s record has null required field %q"
	cursorStalledMessageTemplateConstant        = "page did not advance past cursor %d"
	invalidBaseURLErrorTemplateConstant         = "invalid gitlab base url %q: %w"
	requestConstructionErrorTemplateConstant    = "unable to build %s request: %w"
	responseBodyPreviewLimitConstant            = 512
	responseBodyTruncationSuffixConstant        = "..."
	emptyResponseBodyPlaceholderMessageConstant = "<empty body>"
)

var (
	// ErrBaseURLNotConfigured indicates the client was constructed without an instance address.
	ErrBaseURLNotConfigured = errors.New(baseURLNotConfiguredMessageConstant)
)

// IncompleteResultError reports a listing that could not be fetched to completion.
type IncompleteResultError struct {
	Resource   string
	Page       int
	Cursor     int
	StatusCode int
	Body       string
	Cause      error
}

// Error describes which page failed.
func (incompleteError IncompleteResultError) Error() string {
	if incompleteError.Cause != nil {
		return fmt.Sprintf(incompleteResultWithCauseTemplateConstant, incompleteError.Resource, incompleteError.Page, incompleteError.Cursor, incompleteError.Cause)
	}
	return fmt.Sprintf(incompleteResultTemplateConstant, incompleteError.Resource, incompleteError.Page, incompleteError.Cursor, incompleteError.StatusCode, previewBody(incompleteError.Body))
}

// Unwrap exposes the transport or decoding failure, when there is one.
func (incompleteError IncompleteResultError) Unwrap() error {
	return incompleteError.Cause
}

// APIError reports a non-success response from a mutating endpoint.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

// Error describes the rejected request.
func (apiError APIError) Error() string {
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.Operation, apiError.StatusCode, previewBody(apiError.Body))
}

// ResponseDecodingError indicates a response body that does not describe a valid record.
type ResponseDecodingError struct {
	Resource string
	Cause    error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Resource, decodingError.Cause)
}

// Unwrap exposes the underlying failure.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// MissingFieldError reports a record lacking a required key.
type MissingFieldError struct {
	Resource string
	Field    string
	Null     bool
}

// Error names the missing field.
func (fieldError MissingFieldError) Error() string {
	if fieldError.Null {
		return fmt.Sprintf(nullFieldErrorTemplateConstant, fieldError.Resource, fieldError.Field)
	}
	return fmt.Sprintf(missingFieldErrorTemplateConstant, fieldError.Resource, fieldError.Field)
}

func previewBody(body string) string {
	if len(body) == 0 {
		return emptyResponseBodyPlaceholderMessageConstant
	}
	if len(body) <= responseBodyPreviewLimitConstant {
		return body
	}
	return body[:responseBodyPreviewLimitConstant] + responseBodyTruncationSuffixConstant
}
