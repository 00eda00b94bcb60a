package openai

import (
	"testing"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

func TestResolveFinishReason(t *testing.T) {
	tests := []struct {
		reason       string
		hadToolCalls bool
		want         llmprovider.FinishReason
	}{
		{"", false, llmprovider.FinishReasonStop},
		{"", true, llmprovider.FinishReasonToolCalls},
		{"max_output_tokens", false, llmprovider.FinishReasonLength},
		{"max_output_tokens", true, llmprovider.FinishReasonLength},
		{"max_tokens", false, llmprovider.FinishReasonLength},
		{"content_filter", true, llmprovider.FinishReasonContentFilter},
		{"error", false, llmprovider.FinishReasonError},
		{"something_new", false, llmprovider.FinishReasonOther},
		{"something_new", true, llmprovider.FinishReasonOther},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			if got := ResolveFinishReason(tt.reason, tt.hadToolCalls); got != tt.want {
				t.Errorf("ResolveFinishReason(%q, %v) = %s, want %s", tt.reason, tt.hadToolCalls, got, tt.want)
			}
		})
	}
}

func TestConvertUsage(t *testing.T) {
	if got := convertUsage(nil); got != (llmprovider.Usage{}) {
		t.Errorf("nil usage = %+v", got)
	}

	got := convertUsage(&Usage{InputTokens: 10, OutputTokens: 5})
	if got.TotalTokens != 15 {
		t.Errorf("missing total should be derived, got %d", got.TotalTokens)
	}
}
