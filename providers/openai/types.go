package openai

import "encoding/json"

// Output item types
const (
	ItemTypeMessage             = "message"
	ItemTypeFunctionCall        = "function_call"
	ItemTypeReasoning           = "reasoning"
	ItemTypeWebSearchCall       = "web_search_call"
	ItemTypeFileSearchCall      = "file_search_call"
	ItemTypeCodeInterpreterCall = "code_interpreter_call"
	ItemTypeImageGenerationCall = "image_generation_call"
	ItemTypeComputerCall        = "computer_call"
	ItemTypeLocalShellCall      = "local_shell_call"
	ItemTypeShellCall           = "shell_call"
	ItemTypeMCPCall             = "mcp_call"
)

// Message content part types
const (
	ContentTypeOutputText = "output_text"
	ContentTypeRefusal    = "refusal"
)

// Annotation types
const (
	AnnotationTypeURLCitation           = "url_citation"
	AnnotationTypeFileCitation          = "file_citation"
	AnnotationTypeContainerFileCitation = "container_file_citation"
	AnnotationTypeFilePath              = "file_path"
)

// Response status values
const (
	StatusCompleted  = "completed"
	StatusIncomplete = "incomplete"
	StatusFailed     = "failed"
	StatusInProgress = "in_progress"
)

// Response is a decoded Responses API response object.
type Response struct {
	ID                string             `json:"id"`
	Object            string             `json:"object,omitempty"`
	CreatedAt         int64              `json:"created_at"`
	Model             string             `json:"model"`
	Status            string             `json:"status,omitempty"`
	Output            []OutputItem       `json:"output"`
	Usage             *Usage             `json:"usage,omitempty"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	Error             *ResponseError     `json:"error,omitempty"`
	ServiceTier       string             `json:"service_tier,omitempty"`
}

// IncompleteDetails explains why a response stopped early.
type IncompleteDetails struct {
	Reason string `json:"reason"` // "max_output_tokens", "content_filter", ...
}

// ResponseError is the error object of a failed response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Usage is the vendor token accounting.
type Usage struct {
	InputTokens         int                  `json:"input_tokens"`
	InputTokensDetails  *InputTokensDetails  `json:"input_tokens_details,omitempty"`
	OutputTokens        int                  `json:"output_tokens"`
	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
	TotalTokens         int                  `json:"total_tokens"`
}

type InputTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

type OutputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// OutputItem is one element of Response.Output. Which fields are set depends on Type.
type OutputItem struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`

	// message
	Role    string        `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`

	// function_call, mcp_call
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// reasoning
	Summary          []SummaryPart `json:"summary,omitempty"`
	EncryptedContent *string       `json:"encrypted_content,omitempty"`

	// code_interpreter_call
	Code        string          `json:"code,omitempty"`
	ContainerID string          `json:"container_id,omitempty"`
	Outputs     json.RawMessage `json:"outputs,omitempty"`

	// web_search_call, computer_call, local_shell_call, shell_call
	Action json.RawMessage `json:"action,omitempty"`

	// file_search_call
	Queries []string        `json:"queries,omitempty"`
	Results json.RawMessage `json:"results,omitempty"`

	// image_generation_call
	Result *string `json:"result,omitempty"`

	// mcp_call
	ServerLabel string  `json:"server_label,omitempty"`
	Output      *string `json:"output,omitempty"`
	Error       *string `json:"error,omitempty"`

	// computer_call
	PendingSafetyChecks json.RawMessage `json:"pending_safety_checks,omitempty"`
}

// ContentPart is one part of a message item.
type ContentPart struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Refusal     string       `json:"refusal,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Annotation is a citation attached to output text.
type Annotation struct {
	Type        string `json:"type"`
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	StartIndex  *int   `json:"start_index,omitempty"`
	EndIndex    *int   `json:"end_index,omitempty"`
	FileID      string `json:"file_id,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ContainerID string `json:"container_id,omitempty"`
	Index       *int   `json:"index,omitempty"`
}

// SummaryPart is one reasoning summary entry.
type SummaryPart struct {
	Type string `json:"type"` // "summary_text"
	Text string `json:"text"`
}
