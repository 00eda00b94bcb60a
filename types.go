package llmprovider

// Block type constants
const (
	BlockTypeText       = "text"
	BlockTypeThinking   = "thinking"    // Reasoning item replayed from an earlier turn
	BlockTypeToolUse    = "tool_use"    // Tool call made by the assistant
	BlockTypeToolResult = "tool_result" // Result sent back from client-executed tool call
	BlockTypeImage      = "image"
	BlockTypeDocument   = "document" // File input (PDF)
)

// Citation represents a reference from text content to an external source.
// Built from Responses API message annotations.
type Citation struct {
	// Type is the vendor annotation type
	// Values: "url_citation", "file_citation", "container_file_citation", "file_path"
	Type string `json:"type"`

	// URL is the cited resource URL (url_citation)
	URL string `json:"url,omitempty"`

	// Title is the page/resource title
	Title string `json:"title,omitempty"`

	// FileID identifies the cited file (file_citation, container_file_citation, file_path)
	FileID string `json:"file_id,omitempty"`

	// Filename is the cited file's name, when the API reports it
	Filename string `json:"filename,omitempty"`

	// ContainerID is set for container_file_citation
	ContainerID string `json:"container_id,omitempty"`

	// StartIndex is the character position in the text where the citation starts (optional)
	StartIndex *int `json:"start_index,omitempty"`

	// EndIndex is the character position in the text where the citation ends (optional)
	EndIndex *int `json:"end_index,omitempty"`

	// Index is the position used by file citations (optional)
	Index *int `json:"index,omitempty"`
}

// Block is one piece of content in a request message. Text lives in
// TextContent; everything else a block type needs lives in Content:
//
//	thinking     item_id, encrypted_content (summary text in TextContent)
//	tool_use     tool_use_id, tool_name, input
//	tool_result  tool_use_id, is_error (output in TextContent)
//	image        url | data | file_id, mime_type, detail
//	document     file_id | data | url, mime_type, filename
type Block struct {
	BlockType   string                 `json:"block_type"`
	Sequence    int                    `json:"sequence"`
	TextContent *string                `json:"text_content,omitempty"`
	Content     map[string]interface{} `json:"content,omitempty"`

	// ExecutionSide says who ran a tool_use block: the caller or the API.
	ExecutionSide *ExecutionSide `json:"execution_side,omitempty"`

	// Provider names the backend that produced an assistant block.
	Provider *string `json:"provider,omitempty"`
}

func (b *Block) GetExecutionSide() ExecutionSide {
	if b.ExecutionSide != nil {
		return *b.ExecutionSide
	}
	return ""
}

func (b *Block) SetExecutionSide(side ExecutionSide) { b.ExecutionSide = &side }

func (b *Block) IsToolBlock() bool {
	return b.BlockType == BlockTypeToolUse || b.BlockType == BlockTypeToolResult
}

// IsServerSideTool reports a built-in tool call the API already executed.
func (b *Block) IsServerSideTool() bool { return b.GetExecutionSide() == ExecutionSideServer }

func (b *Block) GetText() string {
	if b.TextContent != nil {
		return *b.TextContent
	}
	return ""
}

// GetString reads a string from Content. Missing keys and non-string values
// both report false.
func (b *Block) GetString(key string) (string, bool) {
	v, ok := b.Content[key].(string)
	return v, ok
}

func (b *Block) GetToolUseID() (string, bool) {
	if !b.IsToolBlock() {
		return "", false
	}
	return b.GetString("tool_use_id")
}

func (b *Block) GetToolName() (string, bool) {
	if b.BlockType != BlockTypeToolUse {
		return "", false
	}
	return b.GetString("tool_name")
}

func (b *Block) GetToolInput() (map[string]interface{}, bool) {
	if b.BlockType != BlockTypeToolUse {
		return nil, false
	}
	m, ok := b.Content["input"].(map[string]interface{})
	return m, ok
}

func (b *Block) IsFromProvider(provider ProviderID) bool {
	return b.Provider != nil && ProviderID(*b.Provider) == provider
}

// CanReplayToProvider reports whether target can accept b as history.
// Reasoning items and API-executed tool calls reference server state, so
// only the provider that produced them can take them back.
func (b *Block) CanReplayToProvider(target ProviderID) bool {
	switch {
	case b.BlockType == BlockTypeThinking:
		return b.IsFromProvider(target)
	case b.BlockType == BlockTypeToolUse && b.IsServerSideTool():
		return b.IsFromProvider(target)
	}
	return true
}
