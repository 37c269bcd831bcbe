package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/civicboard/docqa/internal/core/domain"
	"github.com/civicboard/docqa/internal/infrastructure/resilience"
)

func classifyAPIError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

// wrapCollaboratorError marks the failure with the caller's semantic
// kind, and additionally with ErrTemporary when the failure looked
// transient, so the HTTP boundary can answer 503 instead of 502.
func wrapCollaboratorError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	if classifyAPIError(err).Retryable || resilience.IsCircuitOpen(err) {
		return fmt.Errorf("%s: %w: %w: %w", operation, kind, domain.ErrTemporary, err)
	}
	return domain.WrapError(kind, operation, err)
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
