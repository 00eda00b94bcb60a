package openai

import (
	"errors"
	"reflect"
	"testing"
	"time"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

func TestConvertResponse_SingleText(t *testing.T) {
	resp := completedResponse(messageItem("msg_1", "Hello"))

	parts, err := ConvertResponse(resp, testOptions(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []llmprovider.Part{
		llmprovider.ResponseMetadataPart{
			ID:        "resp_123",
			ModelID:   "gpt-5-mini-2025-08-07",
			Timestamp: time.Unix(1735689600, 0).UTC(),
		},
		llmprovider.TextPart{Text: "Hello", Metadata: llmprovider.Metadata{ItemID: "msg_1"}},
		llmprovider.FinishPart{
			Reason: llmprovider.FinishReasonStop,
			Usage: llmprovider.Usage{
				InputTokens:       120,
				OutputTokens:      80,
				TotalTokens:       200,
				ReasoningTokens:   30,
				CachedInputTokens: 20,
			},
			Metadata: &llmprovider.Metadata{ResponseID: "resp_123", ServiceTier: "default"},
		},
	}
	if !reflect.DeepEqual(parts, want) {
		t.Errorf("ConvertResponse() =\n%#v\nwant\n%#v", parts, want)
	}
}

func TestConvertResponse_FunctionCall(t *testing.T) {
	resp := completedResponse(functionCallItem("fc_1", "call_1", "get_weather", `{"city":"Paris"}`))

	parts, err := ConvertResponse(resp, testOptions(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %v", partTypes(parts))
	}
	call, ok := parts[1].(llmprovider.ToolCallPart)
	if !ok {
		t.Fatalf("expected ToolCallPart, got %T", parts[1])
	}
	if call.ID != "call_1" || call.Name != "get_weather" || call.ProviderExecuted {
		t.Errorf("unexpected call %+v", call)
	}
	if !reflect.DeepEqual(call.Params, map[string]any{"city": "Paris"}) {
		t.Errorf("Params = %#v", call.Params)
	}
	finish := parts[2].(llmprovider.FinishPart)
	if finish.Reason != llmprovider.FinishReasonToolCalls {
		t.Errorf("Reason = %s, want tool-calls", finish.Reason)
	}
}

func TestConvertResponse_MalformedArguments(t *testing.T) {
	resp := completedResponse(
		messageItem("msg_1", "Calling"),
		functionCallItem("fc_1", "call_1", "get_weather", "{bad json"),
	)

	parts, err := ConvertResponse(resp, testOptions(true))
	var parseErr *llmprovider.OutputParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected OutputParseError, got %v", err)
	}
	if parseErr.ToolCallID != "call_1" || parseErr.Text != "{bad json" {
		t.Errorf("unexpected error fields: %+v", parseErr)
	}
	if parts != nil {
		t.Errorf("expected no parts, got %v", partTypes(parts))
	}
}

func TestConvertResponse_Reasoning(t *testing.T) {
	encrypted := strPtr("gAAAA-encrypted")

	tests := []struct {
		name  string
		item  OutputItem
		texts []string
	}{
		{name: "two summaries", item: reasoningItem("rs_1", encrypted, "a", "b"), texts: []string{"a", "b"}},
		{name: "no summaries keeps one empty part", item: reasoningItem("rs_1", encrypted), texts: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := ConvertResponse(completedResponse(tt.item), testOptions(false))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			body := parts[1 : len(parts)-1]
			if len(body) != len(tt.texts) {
				t.Fatalf("expected %d reasoning parts, got %v", len(tt.texts), partTypes(body))
			}
			for i, p := range body {
				r := p.(llmprovider.ReasoningPart)
				if r.Text != tt.texts[i] {
					t.Errorf("part %d text = %q, want %q", i, r.Text, tt.texts[i])
				}
				if r.Metadata.ItemID != "rs_1" || r.Metadata.EncryptedContent != encrypted {
					t.Errorf("part %d metadata = %+v", i, r.Metadata)
				}
			}
		})
	}
}

func TestConvertResponse_ProviderTools(t *testing.T) {
	parts, err := ConvertResponse(richResponse(nil), testOptions(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []llmprovider.PartType{
		llmprovider.PartTypeResponseMetadata,
		llmprovider.PartTypeReasoning, llmprovider.PartTypeReasoning,
		llmprovider.PartTypeToolCall, llmprovider.PartTypeToolResult, // web search
		llmprovider.PartTypeToolCall, llmprovider.PartTypeToolResult, // code interpreter
		llmprovider.PartTypeText, llmprovider.PartTypeSource, llmprovider.PartTypeSource,
		llmprovider.PartTypeToolCall,
		llmprovider.PartTypeFinish,
	}
	if got := partTypes(parts); !reflect.DeepEqual(got, want) {
		t.Fatalf("part types =\n%v\nwant\n%v", got, want)
	}

	search := parts[3].(llmprovider.ToolCallPart)
	if search.Name != "web_search" || !search.ProviderExecuted {
		t.Errorf("web search call = %+v", search)
	}

	code := parts[5].(llmprovider.ToolCallPart)
	wantCode := map[string]any{"containerId": "cntr_1", "code": "print(\"héllo\")\nx = {'a': 1}\t# done"}
	if !reflect.DeepEqual(code.Params, wantCode) {
		t.Errorf("code interpreter params = %#v", code.Params)
	}
	result := parts[6].(llmprovider.ToolResultPart)
	if result.IsFailure || result.Name != "code_interpreter" {
		t.Errorf("code interpreter result = %+v", result)
	}

	url := parts[8].(llmprovider.SourcePart)
	if url.SourceType != llmprovider.SourceTypeURL || url.URL != "https://weather.example/paris" || url.ID != "src-1" {
		t.Errorf("url source = %+v", url)
	}
	doc := parts[9].(llmprovider.SourcePart)
	if doc.SourceType != llmprovider.SourceTypeDocument || doc.Filename != "notes.txt" || doc.MediaType != "text/plain" {
		t.Errorf("document source = %+v", doc)
	}

	text := parts[7].(llmprovider.TextPart)
	if len(text.Metadata.Citations) != 2 {
		t.Errorf("expected 2 citations, got %d", len(text.Metadata.Citations))
	}

	// only the function call counts toward tool-calls
	if finish := parts[len(parts)-1].(llmprovider.FinishPart); finish.Reason != llmprovider.FinishReasonToolCalls {
		t.Errorf("Reason = %s, want tool-calls", finish.Reason)
	}
}

func TestConvertResponse_ProviderToolOnlyFinishesWithStop(t *testing.T) {
	resp := completedResponse(
		OutputItem{Type: ItemTypeFileSearchCall, ID: "fs_1", Status: StatusCompleted, Queries: []string{"q"}, Results: []byte(`[]`)},
		messageItem("msg_1", "done"),
	)

	parts, err := ConvertResponse(resp, testOptions(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finish := parts[len(parts)-1].(llmprovider.FinishPart); finish.Reason != llmprovider.FinishReasonStop {
		t.Errorf("Reason = %s, want stop", finish.Reason)
	}
	res := parts[2].(llmprovider.ToolResultPart)
	want := map[string]any{"status": "completed", "queries": []any{"q"}, "results": []any{}}
	if !reflect.DeepEqual(res.Result, want) {
		t.Errorf("file search result = %#v", res.Result)
	}
}

func TestConvertResponse_MCPAndRenamedTools(t *testing.T) {
	python, err := llmprovider.NewProviderTool(llmprovider.ToolIDCodeInterpreter, "python", nil)
	if err != nil {
		t.Fatal(err)
	}
	opts := testOptions(true)
	opts.ToolNames = llmprovider.NewToolNameMapping([]llmprovider.Tool{*python})

	resp := completedResponse(
		OutputItem{Type: ItemTypeCodeInterpreterCall, ID: "ci_1", Status: StatusCompleted, Code: "1+1"},
		OutputItem{
			Type:        ItemTypeMCPCall,
			ID:          "mcp_1",
			Name:        "lookup",
			ServerLabel: "docs",
			Arguments:   `{"q":"go"}`,
			Error:       strPtr("server unreachable"),
		},
	)

	parts, err := ConvertResponse(resp, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if call := parts[1].(llmprovider.ToolCallPart); call.Name != "python" {
		t.Errorf("renamed call name = %q, want python", call.Name)
	}
	mcpCall := parts[3].(llmprovider.ToolCallPart)
	if mcpCall.Name != "mcp.lookup" || !reflect.DeepEqual(mcpCall.Params, map[string]any{"q": "go"}) {
		t.Errorf("mcp call = %+v", mcpCall)
	}
	mcpResult := parts[4].(llmprovider.ToolResultPart)
	if !mcpResult.IsFailure {
		t.Error("mcp call with an error should be a failure")
	}
}

func TestConvertResponse_IncompleteAndFailed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Response)
		want   llmprovider.FinishReason
	}{
		{
			name: "max output tokens",
			mutate: func(r *Response) {
				r.Status = StatusIncomplete
				r.IncompleteDetails = &IncompleteDetails{Reason: "max_output_tokens"}
			},
			want: llmprovider.FinishReasonLength,
		},
		{
			name: "content filter beats tool calls",
			mutate: func(r *Response) {
				r.Status = StatusIncomplete
				r.IncompleteDetails = &IncompleteDetails{Reason: "content_filter"}
				r.Output = append(r.Output, functionCallItem("fc_1", "call_1", "f", `{}`))
			},
			want: llmprovider.FinishReasonContentFilter,
		},
		{
			name: "failed without details",
			mutate: func(r *Response) {
				r.Status = StatusFailed
				r.Error = &ResponseError{Code: "server_error", Message: "boom"}
			},
			want: llmprovider.FinishReasonError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := completedResponse(messageItem("msg_1", "partial"))
			tt.mutate(resp)

			parts, err := ConvertResponse(resp, testOptions(true))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			finish := parts[len(parts)-1].(llmprovider.FinishPart)
			if finish.Reason != tt.want {
				t.Errorf("Reason = %s, want %s", finish.Reason, tt.want)
			}
		})
	}
}

func TestConvertResponse_SkipsUnknownItems(t *testing.T) {
	resp := completedResponse(
		OutputItem{Type: "future_item", ID: "x_1"},
		messageItem("msg_1", "hi"),
	)

	parts, err := ConvertResponse(resp, testOptions(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parts) != 3 {
		t.Errorf("expected unknown item to be skipped, got %v", partTypes(parts))
	}
}
