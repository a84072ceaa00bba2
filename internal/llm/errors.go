package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// ErrMissingAPIKey is returned when a provider that needs a key has none.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrUnknownBackend is matched by every UnknownBackendError.
var ErrUnknownBackend = errors.New("unknown backend")

// UnknownBackendError reports a selection key with no registered backend.
type UnknownBackendError struct {
	Key       string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %q (available: %s)", e.Key, strings.Join(e.Available, ", "))
}

func (e *UnknownBackendError) Is(target error) bool {
	return target == ErrUnknownBackend
}

// ErrorKind is a coarse label for a provider failure. It is for display only.
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindNetwork   ErrorKind = "network"
	KindCanceled  ErrorKind = "canceled"
	KindOther     ErrorKind = "other"
)

// ProviderError wraps any failure returned while talking to a provider.
type ProviderError struct {
	Backend string
	Kind    ErrorKind
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Backend, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(backend string, err error) *ProviderError {
	return &ProviderError{Backend: backend, Kind: ClassifyError(err), Err: err}
}

// ClassifyError labels a provider error using the SDK status code when one is
// available and falling back to message patterns otherwise.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}

	if code := statusCode(err); code != 0 {
		switch {
		case code == 401 || code == 403:
			return KindAuth
		case code == 429:
			return KindRateLimit
		case code >= 500:
			return KindNetwork
		}
		return KindOther
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"api key", "api_key", "unauthorized", "permission denied", "authentication"} {
		if strings.Contains(msg, p) {
			return KindAuth
		}
	}
	for _, p := range []string{"rate limit", "too many requests", "resource_exhausted", "quota"} {
		if strings.Contains(msg, p) {
			return KindRateLimit
		}
	}
	for _, p := range []string{"connection reset", "connection refused", "i/o timeout", "no such host"} {
		if strings.Contains(msg, p) {
			return KindNetwork
		}
	}
	return KindOther
}

func statusCode(err error) int {
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return genaiErr.Code
	}
	var genaiErrPtr *genai.APIError
	if errors.As(err, &genaiErrPtr) {
		return genaiErrPtr.Code
	}
	return 0
}
