package llmprovider

import (
	"encoding/json"
	"fmt"
	"slices"
)

// RequestParams represents all request parameters understood by the Responses API adapter.
// All fields are optional pointers to distinguish "not set" from "set to zero value".
type RequestParams struct {
	// ===== Core Parameters =====

	// Model specifies the LLM model to use (e.g., "gpt-5-mini")
	// Can be overridden at request time
	Model *string `json:"model,omitempty"`

	// MaxTokens sets the maximum number of output tokens (max_output_tokens)
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-2.0)
	// Ignored with a warning on reasoning models
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP (nucleus sampling) - cumulative probability cutoff (0.0-1.0)
	// Ignored with a warning on reasoning models
	TopP *float64 `json:"top_p,omitempty"`

	// TopK is not supported by the Responses API and produces a warning
	TopK *int `json:"top_k,omitempty"`

	// Stop sequences are not supported by the Responses API and produce a warning
	Stop []string `json:"stop,omitempty"`

	// Seed is not supported by the Responses API and produces a warning
	Seed *int `json:"seed,omitempty"`

	// FrequencyPenalty is not supported by the Responses API and produces a warning
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`

	// PresencePenalty is not supported by the Responses API and produces a warning
	PresencePenalty *float64 `json:"presence_penalty,omitempty"`

	// System prompt (sent as a system or developer message, per model)
	System *string `json:"system,omitempty"`

	// ===== Reasoning =====

	// ReasoningEffort: "minimal", "low", "medium", "high"
	ReasoningEffort *string `json:"reasoning_effort,omitempty"`

	// ReasoningSummary: "auto", "concise", "detailed"
	// Summaries are what the stream reports as reasoning parts
	ReasoningSummary *string `json:"reasoning_summary,omitempty"`

	// ===== Response Storage =====

	// Store controls whether the provider keeps the response server-side.
	// With store=false reasoning is returned as encrypted content and
	// reasoning summary parts are concluded lazily (see the stream converter).
	// Default: true
	Store *bool `json:"store,omitempty"`

	// PreviousResponseID continues a stored conversation
	PreviousResponseID *string `json:"previous_response_id,omitempty"`

	// Include lists extra output data, e.g. "file_search_call.results"
	Include []string `json:"include,omitempty"`

	// Metadata is attached to the stored response
	Metadata map[string]string `json:"metadata,omitempty"`

	// ===== Output Shape =====

	// ResponseFormat for structured outputs (JSON mode, etc.)
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// TextVerbosity: "low", "medium", "high"
	TextVerbosity *string `json:"text_verbosity,omitempty"`

	// ===== Tool Parameters =====

	// Tools available for the model to use
	Tools []Tool `json:"tools,omitempty"`

	// ToolChoice controls whether/which tools to use
	ToolChoice *ToolChoice `json:"tool_choice,omitempty"`

	// ParallelToolCalls allows model to use multiple tools simultaneously
	ParallelToolCalls *bool `json:"parallel_tool_calls,omitempty"`

	// MaxToolCalls caps the number of provider tool calls in one response
	MaxToolCalls *int `json:"max_tool_calls,omitempty"`

	// ===== Routing =====

	// ServiceTier: "auto", "default", "flex", "priority"
	ServiceTier *string `json:"service_tier,omitempty"`

	// User is a stable end-user identifier for abuse monitoring
	User *string `json:"user,omitempty"`
}

// ResponseFormat specifies the format for structured outputs
type ResponseFormat struct {
	Type        string      `json:"type"`                  // "text", "json_object", "json_schema"
	Name        string      `json:"name,omitempty"`        // Schema name (json_schema)
	Description string      `json:"description,omitempty"` // Schema description (json_schema)
	JSONSchema  interface{} `json:"json_schema,omitempty"` // Schema for structured output
	Strict      *bool       `json:"strict,omitempty"`
}

var paramEnums = []struct {
	field   string
	value   func(*RequestParams) *string
	allowed []string
}{
	{"reasoning_effort", func(p *RequestParams) *string { return p.ReasoningEffort }, []string{"minimal", "low", "medium", "high"}},
	{"reasoning_summary", func(p *RequestParams) *string { return p.ReasoningSummary }, []string{"auto", "concise", "detailed"}},
	{"service_tier", func(p *RequestParams) *string { return p.ServiceTier }, []string{"auto", "default", "flex", "priority"}},
	{"text_verbosity", func(p *RequestParams) *string { return p.TextVerbosity }, []string{"low", "medium", "high"}},
}

// ValidateRequestParams rejects values the Responses API can never accept,
// as a *ValidationError wrapping ErrInvalidRequest. Nil params are valid.
func ValidateRequestParams(params *RequestParams) error {
	if params == nil {
		return nil
	}

	if v := params.Temperature; v != nil && (*v < 0 || *v > 2) {
		return invalidParam("temperature", *v, "must be between 0.0 and 2.0")
	}
	if v := params.TopP; v != nil && (*v < 0 || *v > 1) {
		return invalidParam("top_p", *v, "must be between 0.0 and 1.0")
	}
	if v := params.TopK; v != nil && *v < 0 {
		return invalidParam("top_k", *v, "must be non-negative")
	}
	if v := params.MaxTokens; v != nil && *v < 1 {
		return invalidParam("max_tokens", *v, "must be positive")
	}
	if v := params.MaxToolCalls; v != nil && *v < 1 {
		return invalidParam("max_tool_calls", *v, "must be positive")
	}

	for _, e := range paramEnums {
		if v := e.value(params); v != nil && !slices.Contains(e.allowed, *v) {
			return invalidParam(e.field, *v, fmt.Sprintf("must be one of %v", e.allowed))
		}
	}

	for i := range params.Tools {
		if err := params.Tools[i].Validate(); err != nil {
			return invalidParam(fmt.Sprintf("tools[%d]", i), params.Tools[i].Name(), err.Error())
		}
	}
	if tc := params.ToolChoice; tc != nil {
		if err := tc.Validate(); err != nil {
			return invalidParam("tool_choice", tc.Mode, err.Error())
		}
	}
	return nil
}

func invalidParam(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Err: ErrInvalidRequest}
}

// GetRequestParamStruct decodes params stored as a generic JSON object.
func GetRequestParamStruct(params map[string]interface{}) (*RequestParams, error) {
	rp := new(RequestParams)
	if params == nil {
		return rp, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	if err := json.Unmarshal(data, rp); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	return rp, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func (rp *RequestParams) GetMaxTokens(def int) int           { return valueOr(rp.MaxTokens, def) }
func (rp *RequestParams) GetTemperature(def float64) float64 { return valueOr(rp.Temperature, def) }
func (rp *RequestParams) GetStore(def bool) bool             { return valueOr(rp.Store, def) }

// HasReasoning reports whether any reasoning option is set.
func (rp *RequestParams) HasReasoning() bool {
	return rp.ReasoningEffort != nil || rp.ReasoningSummary != nil
}
