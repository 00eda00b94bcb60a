package openai

import (
	"testing"
)

func TestDecodeStreamEvent(t *testing.T) {
	t.Run("type field wins over event name", func(t *testing.T) {
		ev, err := DecodeStreamEvent("message", []byte(`{"type":"response.output_text.delta","item_id":"msg_1","output_index":0,"delta":"Hi"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		delta, ok := ev.(*OutputTextDeltaEvent)
		if !ok {
			t.Fatalf("expected *OutputTextDeltaEvent, got %T", ev)
		}
		if delta.ItemID != "msg_1" || delta.Delta != "Hi" {
			t.Errorf("unexpected event %+v", delta)
		}
	})

	t.Run("event name used without type field", func(t *testing.T) {
		ev, err := DecodeStreamEvent(EventReasoningSummaryPartAdded, []byte(`{"item_id":"rs_1","summary_index":2}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		added, ok := ev.(*ReasoningSummaryPartAddedEvent)
		if !ok || added.SummaryIndex != 2 {
			t.Errorf("unexpected event %#v", ev)
		}
	})

	t.Run("output item", func(t *testing.T) {
		data := `{"type":"response.output_item.added","output_index":1,"item":{"type":"reasoning","id":"rs_1","encrypted_content":"enc","summary":[]}}`
		ev, err := DecodeStreamEvent("", []byte(data))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		added := ev.(*OutputItemAddedEvent)
		if added.OutputIndex != 1 || added.Item.Type != ItemTypeReasoning || added.Item.EncryptedContent == nil || *added.Item.EncryptedContent != "enc" {
			t.Errorf("unexpected event %+v", added)
		}
	})

	t.Run("error event", func(t *testing.T) {
		ev, err := DecodeStreamEvent("", []byte(`{"type":"error","code":"rate_limit_exceeded","message":"slow down"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		e := ev.(*ErrorEvent)
		if e.Code != "rate_limit_exceeded" || e.Message != "slow down" {
			t.Errorf("unexpected event %+v", e)
		}
	})

	t.Run("lifecycle event", func(t *testing.T) {
		ev, err := DecodeStreamEvent("", []byte(`{"type":"response.image_generation_call.partial_image","partial_image_b64":"AAAA"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := ev.(*LifecycleEvent); !ok {
			t.Errorf("expected *LifecycleEvent, got %T", ev)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		ev, err := DecodeStreamEvent("", []byte(`{"type":"response.brand_new","x":1}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		u, ok := ev.(*UnknownEvent)
		if !ok || u.EventType() != "response.brand_new" {
			t.Errorf("unexpected event %#v", ev)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		if _, err := DecodeStreamEvent("", []byte(`{"type":"response.output_text.delta","delta":5}`)); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestStreamError(t *testing.T) {
	tests := []struct {
		err  *StreamError
		want string
	}{
		{&StreamError{Code: "server_error", Message: "boom"}, "openai stream error server_error: boom"},
		{&StreamError{Message: "boom"}, "openai stream error: boom"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestDecodeStreamEvent_KnownTypesAreTyped(t *testing.T) {
	typed := []string{
		EventResponseCreated, EventOutputItemAdded, EventOutputItemDone,
		EventOutputTextDelta, EventOutputTextAnnotationAdded, EventRefusalDelta,
		EventFunctionCallArgumentsDelta, EventFunctionCallArgumentsDone,
		EventCodeInterpreterCallCodeDelta, EventCodeInterpreterCallCodeDone,
		EventReasoningSummaryPartAdded, EventReasoningSummaryPartDone, EventReasoningSummaryTextDelta,
		EventResponseCompleted, EventResponseIncomplete, EventResponseFailed, EventError,
	}
	for _, name := range typed {
		ev, err := DecodeStreamEvent("", []byte(`{"type":"`+name+`"}`))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		switch ev.(type) {
		case *LifecycleEvent, *UnknownEvent:
			t.Errorf("%s decoded to %T", name, ev)
		}
		if ev.EventType() != name {
			t.Errorf("%s: EventType() = %s", name, ev.EventType())
		}
	}

	for name := range lifecycleEvents {
		ev, err := DecodeStreamEvent(name, []byte(`{}`))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if _, ok := ev.(*LifecycleEvent); !ok {
			t.Errorf("%s decoded to %T, want *LifecycleEvent", name, ev)
		}
	}
}
