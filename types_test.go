package llmprovider

import "testing"

func TestBlock_CanReplayToProvider(t *testing.T) {
	openai := ProviderOpenAI.String()
	other := ProviderLorem.String()

	tests := []struct {
		name  string
		block *Block
		want  bool
	}{
		{"text always replays", &Block{BlockType: BlockTypeText, Provider: &other}, true},
		{"own thinking replays", &Block{BlockType: BlockTypeThinking, Provider: &openai}, true},
		{"foreign thinking is dropped", &Block{BlockType: BlockTypeThinking, Provider: &other}, false},
		{"thinking without provider is dropped", &Block{BlockType: BlockTypeThinking}, false},
		{"client tool_use replays anywhere", toolUseBlock(other, ExecutionSideClient), true},
		{"tool_use without side replays anywhere", &Block{BlockType: BlockTypeToolUse, Provider: &other}, true},
		{"own server tool_use replays", toolUseBlock(openai, ExecutionSideServer), true},
		{"foreign server tool_use is dropped", toolUseBlock(other, ExecutionSideServer), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.block.CanReplayToProvider(ProviderOpenAI); got != tt.want {
				t.Errorf("CanReplayToProvider() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlock_ToolAccessors(t *testing.T) {
	call := &Block{
		BlockType: BlockTypeToolUse,
		Content: map[string]interface{}{
			"tool_use_id": "call_1",
			"tool_name":   "get_weather",
			"input":       map[string]interface{}{"city": "Lisbon"},
		},
	}
	result := &Block{BlockType: BlockTypeToolResult, Content: map[string]interface{}{"tool_use_id": "call_1"}}
	text := &Block{BlockType: BlockTypeText, Content: map[string]interface{}{"tool_use_id": "call_1", "tool_name": "x"}}

	if id, ok := call.GetToolUseID(); !ok || id != "call_1" {
		t.Errorf("tool_use GetToolUseID() = %q, %v", id, ok)
	}
	if id, ok := result.GetToolUseID(); !ok || id != "call_1" {
		t.Errorf("tool_result GetToolUseID() = %q, %v", id, ok)
	}
	if name, ok := call.GetToolName(); !ok || name != "get_weather" {
		t.Errorf("GetToolName() = %q, %v", name, ok)
	}
	if input, ok := call.GetToolInput(); !ok || input["city"] != "Lisbon" {
		t.Errorf("GetToolInput() = %v, %v", input, ok)
	}

	if _, ok := text.GetToolUseID(); ok {
		t.Error("text block should not report a tool_use_id")
	}
	if _, ok := text.GetToolName(); ok {
		t.Error("text block should not report a tool_name")
	}
	if _, ok := result.GetToolInput(); ok {
		t.Error("tool_result block has no input")
	}
}

func TestBlock_Text(t *testing.T) {
	if got := (&Block{}).GetText(); got != "" {
		t.Errorf("nil TextContent: got %q", got)
	}
	s := "hi"
	if got := (&Block{TextContent: &s}).GetText(); got != "hi" {
		t.Errorf("got %q", got)
	}
	b := &Block{Content: map[string]interface{}{"n": 1}}
	if _, ok := b.GetString("n"); ok {
		t.Error("non-string value should not be returned")
	}
}

func toolUseBlock(provider string, side ExecutionSide) *Block {
	b := &Block{BlockType: BlockTypeToolUse, Provider: &provider}
	b.SetExecutionSide(side)
	return b
}
