package client

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
)

// Error classes for model calls.
var (
	ErrRateLimit     = errors.New("rate limit exceeded")
	ErrInvalidAPIKey = errors.New("invalid API key")
	ErrNetwork       = errors.New("network error")
	ErrServer        = errors.New("provider unavailable")
)

// APIError is a classified model call failure.
type APIError struct {
	Kind       error // one of the Err* sentinels, nil when unclassified
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	if e.Kind == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

// Unwrap exposes both the class sentinel and the underlying error.
func (e *APIError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// Retryable reports whether a classified error is worth another attempt.
// Invalid keys never are.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrNetwork) || errors.Is(err, ErrServer)
}

// ClassifyError maps a provider failure onto an error class. SDK status
// codes are used when available, with message sniffing as the fallback.
func ClassifyError(err error, providerName string) error {
	if err == nil {
		return nil
	}
	var already *APIError
	if errors.As(err, &already) {
		return err
	}

	apiErr := &APIError{Provider: providerName, Err: err}

	status, header := statusOf(err)
	switch {
	case status == http.StatusTooManyRequests:
		apiErr.Kind = ErrRateLimit
		apiErr.RetryAfter = retryAfter(header)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		apiErr.Kind = ErrInvalidAPIKey
	case status >= 500:
		apiErr.Kind = ErrServer
	case status == 0:
		apiErr.Kind = sniff(err)
	}
	return apiErr
}

// statusOf extracts the HTTP status and headers from SDK error types.
func statusOf(err error) (int, http.Header) {
	var ae *anthropic.Error
	if errors.As(err, &ae) {
		if ae.Response != nil {
			return ae.StatusCode, ae.Response.Header
		}
		return ae.StatusCode, nil
	}
	var oe *openai.Error
	if errors.As(err, &oe) {
		if oe.Response != nil {
			return oe.StatusCode, oe.Response.Header
		}
		return oe.StatusCode, nil
	}
	return 0, nil
}

func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After"))); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// sniff classifies errors that carry no status code.
func sniff(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "rate limit", "rate_limit", "429", "quota", "resource_exhausted"):
		return ErrRateLimit
	case containsAny(msg, "invalid api key", "invalid x-api-key", "api key not valid", "incorrect api key",
		"authentication", "unauthorized", "401", "permission_denied"):
		return ErrInvalidAPIKey
	case containsAny(msg, "overloaded", "529", "503", "502", "500 internal", "unavailable"):
		return ErrServer
	case containsAny(msg, "connection", "timeout", "timed out", "network", "dial tcp", "no such host", "eof"):
		return ErrNetwork
	}
	return nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
