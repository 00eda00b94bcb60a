package llmprovider

import "time"

// PartType identifies a Part variant.
type PartType string

const (
	PartTypeResponseMetadata PartType = "response-metadata"
	PartTypeText             PartType = "text"
	PartTypeTextStart        PartType = "text-start"
	PartTypeTextDelta        PartType = "text-delta"
	PartTypeTextEnd          PartType = "text-end"
	PartTypeReasoning        PartType = "reasoning"
	PartTypeReasoningStart   PartType = "reasoning-start"
	PartTypeReasoningDelta   PartType = "reasoning-delta"
	PartTypeReasoningEnd     PartType = "reasoning-end"
	PartTypeSource           PartType = "source"
	PartTypeToolParamsStart  PartType = "tool-params-start"
	PartTypeToolParamsDelta  PartType = "tool-params-delta"
	PartTypeToolParamsEnd    PartType = "tool-params-end"
	PartTypeToolCall         PartType = "tool-call"
	PartTypeToolResult       PartType = "tool-result"
	PartTypeFinish           PartType = "finish"
	PartTypeError            PartType = "error"
)

// Part is one normalized element of a model response.
//
// The set of variants is closed: only this package implements Part, so a type
// switch over the concrete *Part structs is exhaustive.
//
// A complete conversion yields terminal variants only (ResponseMetadata, Text,
// Reasoning, Source, ToolCall, ToolResult, Finish). A streaming conversion adds
// the lifecycle variants (*Start, *Delta, *End, ToolParams*, Error).
type Part interface {
	Type() PartType
	isPart()
}

// Metadata carries vendor item identity and payloads that the normalized
// fields cannot hold. Zero-value fields are omitted.
type Metadata struct {
	// ItemID is the vendor output item id (msg_..., rs_..., fc_...)
	ItemID string `json:"item_id,omitempty"`

	// EncryptedContent is the opaque reasoning payload returned when store=false
	EncryptedContent *string `json:"encrypted_content,omitempty"`

	// Citations collected from the message's annotations
	Citations []Citation `json:"citations,omitempty"`

	// ResponseID and ServiceTier are set on Finish
	ResponseID  string `json:"response_id,omitempty"`
	ServiceTier string `json:"service_tier,omitempty"`
}

// Usage reports token accounting for a response.
type Usage struct {
	InputTokens       int `json:"input_tokens"`
	OutputTokens      int `json:"output_tokens"`
	TotalTokens       int `json:"total_tokens"`
	ReasoningTokens   int `json:"reasoning_tokens,omitempty"`
	CachedInputTokens int `json:"cached_input_tokens,omitempty"`
}

// SourceType distinguishes web sources from document sources.
type SourceType string

const (
	SourceTypeURL      SourceType = "url"
	SourceTypeDocument SourceType = "document"
)

// ResponseMetadataPart is always the first part of a response.
type ResponseMetadataPart struct {
	ID        string
	ModelID   string
	Timestamp time.Time
}

// TextPart is a complete text segment.
type TextPart struct {
	Text     string
	Metadata Metadata
}

// TextStartPart opens a streamed text segment.
type TextStartPart struct {
	ID string
}

// TextDeltaPart appends to the text segment with the same ID.
type TextDeltaPart struct {
	ID    string
	Delta string
}

// TextEndPart closes a streamed text segment.
type TextEndPart struct {
	ID       string
	Metadata Metadata
}

// ReasoningPart is one complete reasoning summary.
type ReasoningPart struct {
	Text     string
	Metadata Metadata
}

// ReasoningStartPart opens a reasoning summary. ID is "itemID:summaryIndex".
type ReasoningStartPart struct {
	ID       string
	Metadata Metadata
}

// ReasoningDeltaPart appends to the reasoning summary with the same ID.
type ReasoningDeltaPart struct {
	ID    string
	Delta string
}

// ReasoningEndPart closes a reasoning summary.
type ReasoningEndPart struct {
	ID       string
	Metadata Metadata
}

// SourcePart is a citation source surfaced alongside text.
type SourcePart struct {
	SourceType SourceType
	ID         string
	Title      string
	URL        string // SourceTypeURL only
	Filename   string // SourceTypeDocument only
	MediaType  string // SourceTypeDocument only
	Metadata   Metadata
}

// ToolParamsStartPart opens a streamed tool argument buffer.
type ToolParamsStartPart struct {
	ID               string
	Name             string
	ProviderExecuted bool
}

// ToolParamsDeltaPart carries a raw JSON fragment of the tool arguments.
type ToolParamsDeltaPart struct {
	ID    string
	Delta string
}

// ToolParamsEndPart closes a tool argument buffer. The concatenated deltas are valid JSON.
type ToolParamsEndPart struct {
	ID string
}

// ToolCallPart is a complete tool invocation.
// ProviderExecuted calls were run by the vendor; the caller must not execute them.
type ToolCallPart struct {
	ID               string
	Name             string
	Params           any
	ProviderExecuted bool
	Metadata         Metadata
}

// ToolResultPart is the outcome of a provider-executed tool call.
type ToolResultPart struct {
	ID               string
	Name             string
	IsFailure        bool
	Result           any
	ProviderExecuted bool
}

// FinishPart is always the last part of a completed response.
type FinishPart struct {
	Reason   FinishReason
	Usage    Usage
	Metadata *Metadata
}

// ErrorPart carries an error event from the vendor stream unchanged.
// The stream ends after it.
type ErrorPart struct {
	Err error
}

func (ResponseMetadataPart) Type() PartType { return PartTypeResponseMetadata }
func (TextPart) Type() PartType             { return PartTypeText }
func (TextStartPart) Type() PartType        { return PartTypeTextStart }
func (TextDeltaPart) Type() PartType        { return PartTypeTextDelta }
func (TextEndPart) Type() PartType          { return PartTypeTextEnd }
func (ReasoningPart) Type() PartType        { return PartTypeReasoning }
func (ReasoningStartPart) Type() PartType   { return PartTypeReasoningStart }
func (ReasoningDeltaPart) Type() PartType   { return PartTypeReasoningDelta }
func (ReasoningEndPart) Type() PartType     { return PartTypeReasoningEnd }
func (SourcePart) Type() PartType           { return PartTypeSource }
func (ToolParamsStartPart) Type() PartType  { return PartTypeToolParamsStart }
func (ToolParamsDeltaPart) Type() PartType  { return PartTypeToolParamsDelta }
func (ToolParamsEndPart) Type() PartType    { return PartTypeToolParamsEnd }
func (ToolCallPart) Type() PartType         { return PartTypeToolCall }
func (ToolResultPart) Type() PartType       { return PartTypeToolResult }
func (FinishPart) Type() PartType           { return PartTypeFinish }
func (ErrorPart) Type() PartType            { return PartTypeError }

func (ResponseMetadataPart) isPart() {}
func (TextPart) isPart()             {}
func (TextStartPart) isPart()        {}
func (TextDeltaPart) isPart()        {}
func (TextEndPart) isPart()          {}
func (ReasoningPart) isPart()        {}
func (ReasoningStartPart) isPart()   {}
func (ReasoningDeltaPart) isPart()   {}
func (ReasoningEndPart) isPart()     {}
func (SourcePart) isPart()           {}
func (ToolParamsStartPart) isPart()  {}
func (ToolParamsDeltaPart) isPart()  {}
func (ToolParamsEndPart) isPart()    {}
func (ToolCallPart) isPart()         {}
func (ToolResultPart) isPart()       {}
func (FinishPart) isPart()           {}
func (ErrorPart) isPart()            {}

// IsTerminal reports whether p can appear in a complete conversion.
func IsTerminal(p Part) bool {
	switch p.(type) {
	case ResponseMetadataPart, TextPart, ReasoningPart, SourcePart,
		ToolCallPart, ToolResultPart, FinishPart:
		return true
	default:
		return false
	}
}
