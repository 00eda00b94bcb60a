package llmprovider

import (
	"errors"
	"reflect"
	"testing"
)

func TestAccumulate_FoldsLifecycleParts(t *testing.T) {
	stream := StreamFromParts([]Part{
		ResponseMetadataPart{ID: "resp_1", ModelID: "gpt-5-mini"},
		ReasoningStartPart{ID: "rs_1:0"},
		ReasoningDeltaPart{ID: "rs_1:0", Delta: "Thinking "},
		ReasoningDeltaPart{ID: "rs_1:0", Delta: "hard"},
		ReasoningEndPart{ID: "rs_1:0", Metadata: Metadata{ItemID: "rs_1"}},
		TextStartPart{ID: "msg_1"},
		TextDeltaPart{ID: "msg_1", Delta: "Hello "},
		TextDeltaPart{ID: "msg_1", Delta: "world"},
		TextEndPart{ID: "msg_1", Metadata: Metadata{ItemID: "msg_1"}},
		ToolParamsStartPart{ID: "call_1", Name: "get_weather"},
		ToolParamsDeltaPart{ID: "call_1", Delta: `{"city":`},
		ToolParamsDeltaPart{ID: "call_1", Delta: `"Lisbon"}`},
		ToolParamsEndPart{ID: "call_1"},
		ToolCallPart{ID: "call_1", Name: "get_weather", Params: map[string]any{"city": "Lisbon"}},
		FinishPart{Reason: FinishReasonToolCalls},
	})

	parts, err := Accumulate(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Part{
		ResponseMetadataPart{ID: "resp_1", ModelID: "gpt-5-mini"},
		ReasoningPart{Text: "Thinking hard", Metadata: Metadata{ItemID: "rs_1"}},
		TextPart{Text: "Hello world", Metadata: Metadata{ItemID: "msg_1"}},
		ToolCallPart{ID: "call_1", Name: "get_weather", Params: map[string]any{"city": "Lisbon"}},
		FinishPart{Reason: FinishReasonToolCalls},
	}
	if !reflect.DeepEqual(parts, want) {
		t.Errorf("Accumulate() =\n%#v\nwant\n%#v", parts, want)
	}

	for _, p := range parts {
		if !IsTerminal(p) {
			t.Errorf("accumulated part %s is not terminal", p.Type())
		}
	}
}

func TestAccumulate_InterleavedSegments(t *testing.T) {
	acc := NewAccumulator()
	for _, p := range []Part{
		ReasoningStartPart{ID: "rs_1:0"},
		ReasoningStartPart{ID: "rs_1:1"},
		ReasoningDeltaPart{ID: "rs_1:1", Delta: "second"},
		ReasoningDeltaPart{ID: "rs_1:0", Delta: "first"},
		ReasoningEndPart{ID: "rs_1:0"},
		ReasoningEndPart{ID: "rs_1:1"},
	} {
		acc.Add(p)
	}

	got := acc.Parts()
	if len(got) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(got))
	}
	if got[0].(ReasoningPart).Text != "first" || got[1].(ReasoningPart).Text != "second" {
		t.Errorf("unexpected texts: %#v", got)
	}
}

func TestAccumulate_ReturnsPartsBeforeError(t *testing.T) {
	boom := errors.New("boom")
	stream := func(yield func(Part, error) bool) {
		if !yield(ResponseMetadataPart{ID: "resp_1"}, nil) {
			return
		}
		yield(nil, boom)
	}

	parts, err := Accumulate(stream)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(parts) != 1 {
		t.Errorf("expected 1 part before the error, got %d", len(parts))
	}
}

func TestOnceStream(t *testing.T) {
	stream := OnceStream(StreamFromParts([]Part{TextPart{Text: "a"}, TextPart{Text: "b"}}))

	first, err := CollectParts(stream)
	if err != nil || len(first) != 2 {
		t.Fatalf("first range = %v, %v", first, err)
	}

	second, err := CollectParts(stream)
	if !errors.Is(err, ErrStreamConsumed) {
		t.Errorf("second range error = %v, want ErrStreamConsumed", err)
	}
	if len(second) != 0 {
		t.Errorf("second range yielded %d parts", len(second))
	}
}

func TestStreamFromParts_EarlyBreak(t *testing.T) {
	stream := StreamFromParts([]Part{TextPart{Text: "a"}, TextPart{Text: "b"}, TextPart{Text: "c"}})

	n := 0
	for range stream {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("expected 2 iterations, got %d", n)
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		part     Part
		expected bool
	}{
		{TextPart{}, true},
		{ReasoningPart{}, true},
		{SourcePart{}, true},
		{ToolCallPart{}, true},
		{ToolResultPart{}, true},
		{FinishPart{}, true},
		{ResponseMetadataPart{}, true},
		{TextDeltaPart{}, false},
		{ReasoningStartPart{}, false},
		{ToolParamsEndPart{}, false},
		{ErrorPart{}, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.part.Type()), func(t *testing.T) {
			if got := IsTerminal(tt.part); got != tt.expected {
				t.Errorf("IsTerminal(%s) = %v, want %v", tt.part.Type(), got, tt.expected)
			}
		})
	}
}

func TestSequenceIDGenerator(t *testing.T) {
	gen := &SequenceIDGenerator{Prefix: "src"}
	if got := gen.GenerateID(); got != "src-1" {
		t.Errorf("first id = %q, want src-1", got)
	}
	if got := gen.GenerateID(); got != "src-2" {
		t.Errorf("second id = %q, want src-2", got)
	}

	def := &SequenceIDGenerator{}
	if got := def.GenerateID(); got != "id-1" {
		t.Errorf("default prefix id = %q, want id-1", got)
	}

	u := UUIDGenerator{}
	if a, b := u.GenerateID(), u.GenerateID(); a == b || len(a) != 36 {
		t.Errorf("UUIDGenerator ids %q, %q", a, b)
	}
}
