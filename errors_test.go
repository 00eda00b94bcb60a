package llmprovider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		invalid   bool
		auth      bool
		timeout   bool
	}{
		{name: "nil", err: nil},
		{name: "rate limited sentinel", err: ErrRateLimited, retryable: true},
		{
			name:      "rate limited provider error",
			err:       &ProviderError{Code: ErrorCodeRateLimited, StatusCode: 429, Retryable: true, Err: ErrRateLimited},
			retryable: true,
		},
		{
			name: "auth provider error",
			err:  &ProviderError{Code: ErrorCodeAuth, StatusCode: 401, Err: ErrInvalidAPIKey},
			auth: true,
		},
		{name: "invalid model", err: &ModelError{Model: "x", Err: ErrInvalidModel}, invalid: true},
		{name: "validation", err: &ValidationError{Field: "top_p", Err: ErrInvalidRequest}, invalid: true},
		{name: "unsupported media", err: &UnsupportedMediaError{MediaType: "audio/wav"}, invalid: true},
		{name: "timeout sentinel", err: fmt.Errorf("wrapped: %w", ErrTimeout), retryable: true, timeout: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, retryable: true, timeout: true},
		{name: "net timeout", err: timeoutNetError{}, retryable: true, timeout: true},
		{name: "output parse", err: &OutputParseError{ToolCallID: "c", Err: errors.New("bad")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
			if got := IsInvalidRequest(tt.err); got != tt.invalid {
				t.Errorf("IsInvalidRequest() = %v, want %v", got, tt.invalid)
			}
			if got := IsAuthError(tt.err); got != tt.auth {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.auth)
			}
			if got := IsTimeout(tt.err); got != tt.timeout {
				t.Errorf("IsTimeout() = %v, want %v", got, tt.timeout)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	parseErr := &OutputParseError{ToolCallID: "call_1", ToolName: "f", Text: `{"a":`, Err: cause}

	if !errors.Is(parseErr, cause) {
		t.Error("OutputParseError should unwrap to its cause")
	}
	if parseErr.Error() == "" {
		t.Error("empty error message")
	}

	providerErr := &ProviderError{Provider: "openai", StatusCode: 500, Message: "server error"}
	if got := providerErr.Error(); got != "openai: HTTP 500: server error" {
		t.Errorf("ProviderError.Error() = %q", got)
	}

	streamErr := &ProviderError{Provider: "openai", Message: "overloaded"}
	if got := streamErr.Error(); got != "openai: overloaded" {
		t.Errorf("ProviderError.Error() without status = %q", got)
	}

	modelErr := &ModelError{Model: "m", Provider: "openai", Reason: "not found"}
	if got := modelErr.Error(); got != `openai: model "m": not found` {
		t.Errorf("ModelError.Error() = %q", got)
	}
}
