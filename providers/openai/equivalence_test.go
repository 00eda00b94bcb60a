package openai

import (
	"errors"
	"fmt"
	"testing"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

func equivalenceResponses() map[string]*Response {
	refusal := completedResponse(OutputItem{
		Type:    ItemTypeMessage,
		ID:      "msg_1",
		Status:  StatusCompleted,
		Role:    "assistant",
		Content: []ContentPart{{Type: ContentTypeRefusal, Refusal: "I can't help with that."}},
	})

	incomplete := completedResponse(
		reasoningItem("rs_1", strPtr("enc"), "Thinking about it."),
		messageItem("msg_1", "The answer is"),
	)
	incomplete.Status = StatusIncomplete
	incomplete.IncompleteDetails = &IncompleteDetails{Reason: "max_output_tokens"}

	tools := completedResponse(
		OutputItem{Type: ItemTypeFileSearchCall, ID: "fs_1", Status: StatusCompleted, Queries: []string{"q1", "q2"}, Results: []byte(`[{"file_id":"f1","score":0.5}]`)},
		OutputItem{Type: ItemTypeImageGenerationCall, ID: "ig_1", Status: StatusCompleted, Result: strPtr("aW1hZ2U=")},
		OutputItem{Type: ItemTypeComputerCall, ID: "cu_1", Status: StatusCompleted, Action: []byte(`{"type":"click","x":1,"y":2}`), PendingSafetyChecks: []byte(`[]`)},
		OutputItem{Type: ItemTypeMCPCall, ID: "mcp_1", Name: "lookup", ServerLabel: "docs", Arguments: `{"q":"go"}`, Output: strPtr("found")},
		functionCallItem("fc_1", "call_1", "noop", ""),
	)

	return map[string]*Response{
		"single text":            completedResponse(messageItem("msg_1", "Hello")),
		"function call":          completedResponse(functionCallItem("fc_1", "call_1", "get_weather", `{"city":"Paris"}`)),
		"rich without encrypted": richResponse(nil),
		"rich with encrypted":    richResponse(strPtr("gAAAA-encrypted")),
		"reasoning only":         completedResponse(reasoningItem("rs_1", strPtr("enc"))),
		"refusal":                refusal,
		"incomplete":             incomplete,
		"provider tools":         tools,
	}
}

// The accumulated stream of a simulated response must hold exactly the
// parts the complete conversion produces.
func TestEquivalence_CompleteAndStream(t *testing.T) {
	for name, resp := range equivalenceResponses() {
		for _, store := range []bool{true, false} {
			t.Run(fmt.Sprintf("%s/store=%v", name, store), func(t *testing.T) {
				complete, err := ConvertResponse(resp, testOptions(store))
				if err != nil {
					t.Fatalf("ConvertResponse: %v", err)
				}

				stream := ConvertStream(EventsFromSlice(SimulateEvents(resp)), testOptions(store))
				streamed, err := llmprovider.Accumulate(stream)
				if err != nil {
					t.Fatalf("stream: %v", err)
				}

				assertSameMultiset(t, complete, streamed)
			})
		}
	}
}

func TestEquivalence_MalformedArguments(t *testing.T) {
	resp := completedResponse(
		messageItem("msg_1", "Calling"),
		functionCallItem("fc_1", "call_1", "get_weather", "{bad json"),
	)

	_, completeErr := ConvertResponse(resp, testOptions(true))
	_, streamErr := llmprovider.Accumulate(ConvertStream(EventsFromSlice(SimulateEvents(resp)), testOptions(true)))

	for name, err := range map[string]error{"complete": completeErr, "stream": streamErr} {
		var parseErr *llmprovider.OutputParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("%s: expected OutputParseError, got %v", name, err)
			continue
		}
		if parseErr.ToolCallID != "call_1" || parseErr.Text != "{bad json" {
			t.Errorf("%s: unexpected error fields %+v", name, parseErr)
		}
	}
}
