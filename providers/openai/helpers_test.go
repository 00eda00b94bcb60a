package openai

import (
	"fmt"
	"reflect"
	"testing"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

// Test helper functions shared across test files

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}

func testOptions(store bool) ConvertOptions {
	return ConvertOptions{
		Store: store,
		IDs:   &llmprovider.SequenceIDGenerator{Prefix: "src"},
	}
}

func completedResponse(output ...OutputItem) *Response {
	return &Response{
		ID:        "resp_123",
		Object:    "response",
		CreatedAt: 1735689600,
		Model:     "gpt-5-mini-2025-08-07",
		Status:    StatusCompleted,
		Output:    output,
		Usage: &Usage{
			InputTokens:         120,
			InputTokensDetails:  &InputTokensDetails{CachedTokens: 20},
			OutputTokens:        80,
			OutputTokensDetails: &OutputTokensDetails{ReasoningTokens: 30},
			TotalTokens:         200,
		},
		ServiceTier: "default",
	}
}

func messageItem(id, text string, annotations ...Annotation) OutputItem {
	return OutputItem{
		Type:   ItemTypeMessage,
		ID:     id,
		Status: StatusCompleted,
		Role:   "assistant",
		Content: []ContentPart{{
			Type:        ContentTypeOutputText,
			Text:        text,
			Annotations: annotations,
		}},
	}
}

func functionCallItem(id, callID, name, args string) OutputItem {
	return OutputItem{
		Type:      ItemTypeFunctionCall,
		ID:        id,
		Status:    StatusCompleted,
		CallID:    callID,
		Name:      name,
		Arguments: args,
	}
}

func reasoningItem(id string, encrypted *string, summaries ...string) OutputItem {
	item := OutputItem{Type: ItemTypeReasoning, ID: id, EncryptedContent: encrypted}
	for _, s := range summaries {
		item.Summary = append(item.Summary, SummaryPart{Type: "summary_text", Text: s})
	}
	return item
}

func urlCitation(url, title string) Annotation {
	return Annotation{Type: AnnotationTypeURLCitation, URL: url, Title: title, StartIndex: intPtr(0), EndIndex: intPtr(5)}
}

// richResponse exercises every output item kind the converters handle.
func richResponse(encrypted *string) *Response {
	return completedResponse(
		reasoningItem("rs_1", encrypted, "First I check the weather.", "Then I search the web."),
		OutputItem{
			Type:   ItemTypeWebSearchCall,
			ID:     "ws_1",
			Status: StatusCompleted,
			Action: []byte(`{"type":"search","query":"Paris weather"}`),
		},
		OutputItem{
			Type:        ItemTypeCodeInterpreterCall,
			ID:          "ci_1",
			Status:      StatusCompleted,
			ContainerID: "cntr_1",
			Code:        "print(\"héllo\")\nx = {'a': 1}\t# done",
			Outputs:     []byte(`[{"type":"logs","logs":"héllo"}]`),
		},
		messageItem("msg_1", "It is sunny in Paris today.",
			urlCitation("https://weather.example/paris", "Paris weather"),
			Annotation{Type: AnnotationTypeFileCitation, FileID: "file_1", Filename: "notes.txt", Index: intPtr(3)},
		),
		functionCallItem("fc_1", "call_1", "get_weather", `{"city":"Paris","units":["c","f"],"days":3}`),
	)
}

func partTypes(parts []llmprovider.Part) []llmprovider.PartType {
	types := make([]llmprovider.PartType, 0, len(parts))
	for _, p := range parts {
		types = append(types, p.Type())
	}
	return types
}

func convertEvents(t *testing.T, events []StreamEvent, opts ConvertOptions) ([]llmprovider.Part, error) {
	t.Helper()
	return llmprovider.CollectParts(ConvertStream(EventsFromSlice(events), opts))
}

// assertSameMultiset checks that got holds exactly the parts of want, in any order.
func assertSameMultiset(t *testing.T, want, got []llmprovider.Part) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("part count mismatch: want %d %v, got %d %v", len(want), partTypes(want), len(got), partTypes(got))
	}
	used := make([]bool, len(got))
	for _, w := range want {
		found := false
		for i, g := range got {
			if !used[i] && reflect.DeepEqual(w, g) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing part %s: %s", w.Type(), describe(w))
		}
	}
}

func describe(p llmprovider.Part) string {
	return fmt.Sprintf("%#v", p)
}
