// Package errors defines the categorized error taxonomy for the wallet
// ledger service: transport failures, upstream provider failures, caller
// validation failures, partial sync results, and the usual storage and
// cache categories.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/wallet-ledger/internal/types"
)

// Category represents the category of an error
type Category string

const (
	// CategoryTransport represents network/timeout failures reaching a
	// collaborator; transient, the caller may retry manually
	CategoryTransport Category = "transport"
	// CategoryUpstream represents a non-success response from the ledger
	// provider; fatal for the current sync attempt
	CategoryUpstream Category = "upstream"
	// CategoryValidation represents malformed caller input, rejected
	// before any network call
	CategoryValidation Category = "validation"
	// CategoryPartialSync represents a sync where some pages committed
	// before a later page failed; prior data is valid, just incomplete
	CategoryPartialSync Category = "partial_sync"
	// CategoryDatabase represents database errors
	CategoryDatabase Category = "database"
	// CategoryCache represents cache errors
	CategoryCache Category = "cache"
	// CategoryNotFound represents missing resources
	CategoryNotFound Category = "not_found"
	// CategorySystem represents everything else
	CategorySystem Category = "system"
)

// CategorizedError carries an error category, HTTP status and a stable
// machine-readable code alongside the human-readable message.
type CategorizedError struct {
	Category   Category
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to the wire-level ServiceError shape.
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// NewTransportError creates a transport error for a failed network call.
func NewTransportError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryTransport,
		StatusCode: http.StatusBadGateway,
		Code:       "TRANSPORT_ERROR",
		Message:    fmt.Sprintf("network failure during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewUpstreamError creates an error for a non-success provider response.
func NewUpstreamError(provider string, status int, body string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUpstream,
		StatusCode: http.StatusBadGateway,
		Code:       "UPSTREAM_ERROR",
		Message:    fmt.Sprintf("%s returned status %d", provider, status),
		Details: map[string]interface{}{
			"provider": provider,
			"status":   status,
			"body":     body,
		},
	}
}

// NewValidationError creates an error for malformed caller input.
func NewValidationError(field, reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		Details: map[string]interface{}{
			"field":  field,
			"reason": reason,
		},
	}
}

// NewPartialSyncError creates an error for a sync attempt that committed
// some pages before failing. The committed pages stay in the store; the
// distinct code tells the caller prior data is newer than before, just
// incomplete.
func NewPartialSyncError(pagesCommitted, totalPages, inserted int, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryPartialSync,
		StatusCode: http.StatusBadGateway,
		Code:       "PARTIAL_SYNC",
		Message:    fmt.Sprintf("sync interrupted after %d of %d pages", pagesCommitted, totalPages),
		Cause:      cause,
		Details: map[string]interface{}{
			"pagesCommitted": pagesCommitted,
			"totalPages":     totalPages,
			"inserted":       inserted,
		},
	}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(resource, id string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewDatabaseError creates a database error.
func NewDatabaseError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryDatabase,
		StatusCode: http.StatusInternalServerError,
		Code:       "DATABASE_ERROR",
		Message:    fmt.Sprintf("database error during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewCacheError creates a cache error.
func NewCacheError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryCache,
		StatusCode: http.StatusInternalServerError,
		Code:       "CACHE_ERROR",
		Message:    fmt.Sprintf("cache error during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Cause:      cause,
	}
}

// Categorize wraps an arbitrary error into a CategorizedError. Already
// categorized errors pass through unchanged, even when wrapped.
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr
	}

	return NewInternalError("unexpected error", err)
}

// GetHTTPStatusCode returns the HTTP status code for an error.
func GetHTTPStatusCode(err error) int {
	if catErr := Categorize(err); catErr != nil {
		return catErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, c Category) bool {
	catErr := Categorize(err)
	return catErr != nil && catErr.Category == c
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return IsCategory(err, CategoryTransport) }

// IsPartialSync reports whether err is a partial sync result.
func IsPartialSync(err error) bool { return IsCategory(err, CategoryPartialSync) }

// IsValidation reports whether err is a caller input failure.
func IsValidation(err error) bool { return IsCategory(err, CategoryValidation) }

// IsRetryable determines if an error is worth retrying: transport blips
// and storage hiccups are, provider rejections and bad input are not.
func IsRetryable(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	switch catErr.Category {
	case CategoryTransport, CategoryDatabase, CategoryCache:
		return true
	default:
		return false
	}
}
