package llmprovider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Sentinels for errors.Is. Typed errors below wrap one of these.
var (
	ErrInvalidModel        = errors.New("llmprovider: invalid or unsupported model")
	ErrInvalidAPIKey       = errors.New("llmprovider: invalid API key")
	ErrRateLimited         = errors.New("llmprovider: rate limit exceeded")
	ErrUnsupportedFeature  = errors.New("llmprovider: unsupported feature")
	ErrInvalidRequest      = errors.New("llmprovider: invalid request")
	ErrProviderUnavailable = errors.New("llmprovider: provider unavailable")
	ErrTimeout             = errors.New("llmprovider: request timed out")

	// ErrOutputParse marks model output that is not what it claims to be,
	// in practice tool arguments that are not JSON.
	ErrOutputParse = errors.New("llmprovider: could not parse model output")

	// ErrIncompleteStream is yielded when events stop before
	// response.completed, response.incomplete or response.failed.
	ErrIncompleteStream = errors.New("llmprovider: stream ended without a terminal event")

	// ErrStreamConsumed is yielded by a PartStream ranged over twice.
	ErrStreamConsumed = errors.New("llmprovider: stream already consumed")
)

// ErrorCode classifies a ProviderError.
type ErrorCode string

const (
	ErrorCodeRateLimited         ErrorCode = "rate_limited"
	ErrorCodeTimeout             ErrorCode = "timeout"
	ErrorCodeProviderUnavailable ErrorCode = "provider_unavailable"
	ErrorCodeInvalidRequest      ErrorCode = "invalid_request"
	ErrorCodeAuth                ErrorCode = "auth"
)

// ModelError rejects a model before any request is sent.
type ModelError struct {
	Model    string
	Provider string
	Reason   string
	Err      error // ErrInvalidModel or ErrUnsupportedFeature
}

func (e *ModelError) Error() string {
	msg := fmt.Sprintf("%s: model %q: %s", e.Provider, e.Model, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelError) Unwrap() error { return e.Err }

// ValidationError rejects a request parameter.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
	Err    error // usually ErrInvalidRequest
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ProviderError is a failure reported by the API, over HTTP or as an error
// event inside a stream (StatusCode 0).
type ProviderError struct {
	Code       ErrorCode
	Provider   string
	StatusCode int
	Message    string
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// OutputParseError reports tool call arguments that are not valid JSON.
// The call produces no ToolCallPart.
type OutputParseError struct {
	ToolCallID string
	ToolName   string
	Text       string // arguments as received
	Err        error
}

func (e *OutputParseError) Error() string {
	return fmt.Sprintf("tool call %s (%s): malformed arguments %q: %v", e.ToolCallID, e.ToolName, e.Text, e.Err)
}

func (e *OutputParseError) Unwrap() []error { return []error{ErrOutputParse, e.Err} }

// UnsupportedMediaError rejects a block whose media type the Responses API
// cannot take in that position.
type UnsupportedMediaError struct {
	MediaType     string
	Functionality string
}

func (e *UnsupportedMediaError) Error() string {
	return fmt.Sprintf("unsupported media type %q: %s", e.MediaType, e.Functionality)
}

func (e *UnsupportedMediaError) Unwrap() error { return ErrUnsupportedFeature }

// IsRetryable reports errors worth retrying unchanged: rate limits,
// unavailability and timeouts. A ProviderError decides for itself.
func IsRetryable(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Retryable
	}
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrProviderUnavailable) || IsTimeout(err)
}

// IsInvalidRequest reports errors that need a changed request.
func IsInvalidRequest(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrInvalidModel) || errors.Is(err, ErrUnsupportedFeature)
}

func IsAuthError(err error) bool {
	if errors.Is(err, ErrInvalidAPIKey) {
		return true
	}
	var perr *ProviderError
	return errors.As(err, &perr) &&
		(perr.Code == ErrorCodeAuth || perr.StatusCode == http.StatusUnauthorized || perr.StatusCode == http.StatusForbidden)
}

// IsTimeout reports request and network timeouts. A timeout is always an
// error, never a synthetic finish.
func IsTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
