package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCategorizedErrorMessage(t *testing.T) {
	err := NewUpstreamError("ledger provider", 503, "overloaded")
	if err.Error() != "UPSTREAM_ERROR: ledger provider returned status 503" {
		t.Errorf("unexpected message: %s", err.Error())
	}

	wrapped := NewTransportError("list transactions", fmt.Errorf("dial tcp: timeout"))
	want := "TRANSPORT_ERROR: network failure during list transactions (caused by: dial tcp: timeout)"
	if wrapped.Error() != want {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewTransportError("get balance", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestCategorizePassesThroughWrapped(t *testing.T) {
	inner := NewValidationError("address", "too short")
	wrapped := fmt.Errorf("rejecting request: %w", inner)

	catErr := Categorize(wrapped)
	if catErr.Category != CategoryValidation {
		t.Errorf("expected validation category, got %s", catErr.Category)
	}
	if catErr != inner {
		t.Error("expected the original categorized error, not a re-wrap")
	}
}

func TestCategorizeUnknownError(t *testing.T) {
	catErr := Categorize(fmt.Errorf("something odd"))
	if catErr.Category != CategorySystem {
		t.Errorf("expected system category, got %s", catErr.Category)
	}
	if catErr.Code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR code, got %s", catErr.Code)
	}
}

func TestCategorizeNil(t *testing.T) {
	if Categorize(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestPartialSyncErrorDetails(t *testing.T) {
	cause := NewUpstreamError("ledger provider", 500, "boom")
	err := NewPartialSyncError(3, 7, 42, cause)

	if err.Code != "PARTIAL_SYNC" {
		t.Errorf("expected PARTIAL_SYNC code, got %s", err.Code)
	}
	if err.Details["pagesCommitted"] != 3 || err.Details["totalPages"] != 7 || err.Details["inserted"] != 42 {
		t.Errorf("unexpected details: %v", err.Details)
	}
	if !IsPartialSync(err) {
		t.Error("expected IsPartialSync to match")
	}
	if !errors.Is(err, cause) {
		t.Error("expected the upstream cause to remain reachable")
	}
}

func TestGetHTTPStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidationError("f", "r"), http.StatusBadRequest},
		{NewNotFoundError("wallet", "w1"), http.StatusNotFound},
		{NewTransportError("op", nil), http.StatusBadGateway},
		{NewUpstreamError("p", 500, ""), http.StatusBadGateway},
		{NewPartialSyncError(1, 2, 3, nil), http.StatusBadGateway},
		{NewDatabaseError("op", nil), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := GetHTTPStatusCode(tt.err); got != tt.want {
			t.Errorf("GetHTTPStatusCode(%v): expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []error{
		NewTransportError("op", nil),
		NewDatabaseError("op", nil),
		NewCacheError("op", nil),
	}
	for _, err := range retryable {
		if !IsRetryable(err) {
			t.Errorf("expected %v to be retryable", err)
		}
	}

	fatal := []error{
		NewUpstreamError("p", 500, ""),
		NewValidationError("f", "r"),
		NewNotFoundError("wallet", "w1"),
		NewPartialSyncError(1, 2, 3, nil),
		fmt.Errorf("plain"),
	}
	for _, err := range fatal {
		if IsRetryable(err) {
			t.Errorf("expected %v to not be retryable", err)
		}
	}
}

func TestToServiceError(t *testing.T) {
	err := NewNotFoundError("wallet", "w1")
	svc := err.ToServiceError()

	if svc.Code != "NOT_FOUND" {
		t.Errorf("unexpected code: %s", svc.Code)
	}
	if svc.Details["id"] != "w1" {
		t.Errorf("unexpected details: %v", svc.Details)
	}
}
