package openai

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Stream event types handled by the stream converter
const (
	EventResponseCreated               = "response.created"
	EventOutputItemAdded               = "response.output_item.added"
	EventOutputItemDone                = "response.output_item.done"
	EventOutputTextDelta               = "response.output_text.delta"
	EventOutputTextAnnotationAdded     = "response.output_text.annotation.added"
	EventRefusalDelta                  = "response.refusal.delta"
	EventFunctionCallArgumentsDelta    = "response.function_call_arguments.delta"
	EventFunctionCallArgumentsDone     = "response.function_call_arguments.done"
	EventCodeInterpreterCallCodeDelta  = "response.code_interpreter_call_code.delta"
	EventCodeInterpreterCallCodeDone   = "response.code_interpreter_call_code.done"
	EventReasoningSummaryPartAdded     = "response.reasoning_summary_part.added"
	EventReasoningSummaryPartDone      = "response.reasoning_summary_part.done"
	EventReasoningSummaryTextDelta     = "response.reasoning_summary_text.delta"
	EventResponseCompleted             = "response.completed"
	EventResponseIncomplete            = "response.incomplete"
	EventResponseFailed                = "response.failed"
	EventError                         = "error"
)

// lifecycleEvents carry nothing the converter needs: the same information
// arrives through the events above.
var lifecycleEvents = map[string]bool{
	"response.queued":                              true,
	"response.in_progress":                         true,
	"response.content_part.added":                  true,
	"response.content_part.done":                   true,
	"response.output_text.done":                    true,
	"response.refusal.done":                        true,
	"response.reasoning_summary_text.done":         true,
	"response.reasoning_text.delta":                true,
	"response.reasoning_text.done":                 true,
	"response.web_search_call.in_progress":         true,
	"response.web_search_call.searching":           true,
	"response.web_search_call.completed":           true,
	"response.file_search_call.in_progress":        true,
	"response.file_search_call.searching":          true,
	"response.file_search_call.completed":          true,
	"response.code_interpreter_call.in_progress":   true,
	"response.code_interpreter_call.interpreting":  true,
	"response.code_interpreter_call.completed":     true,
	"response.image_generation_call.in_progress":   true,
	"response.image_generation_call.generating":    true,
	"response.image_generation_call.partial_image": true,
	"response.image_generation_call.completed":     true,
	"response.mcp_call.in_progress":                true,
	"response.mcp_call.completed":                  true,
	"response.mcp_call.failed":                     true,
	"response.mcp_call_arguments.delta":            true,
	"response.mcp_call_arguments.done":             true,
	"response.mcp_list_tools.in_progress":          true,
	"response.mcp_list_tools.completed":            true,
	"response.mcp_list_tools.failed":               true,
}

// StreamEvent is one decoded server-sent event. The set of implementations is
// closed; DecodeStreamEvent returns one of the *Event types in this file.
type StreamEvent interface {
	EventType() string
	isStreamEvent()
}

type ResponseCreatedEvent struct {
	Response Response `json:"response"`
}

type OutputItemAddedEvent struct {
	OutputIndex int        `json:"output_index"`
	Item        OutputItem `json:"item"`
}

type OutputItemDoneEvent struct {
	OutputIndex int        `json:"output_index"`
	Item        OutputItem `json:"item"`
}

type OutputTextDeltaEvent struct {
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Delta        string `json:"delta"`
}

type OutputTextAnnotationAddedEvent struct {
	ItemID          string     `json:"item_id"`
	OutputIndex     int        `json:"output_index"`
	ContentIndex    int        `json:"content_index"`
	AnnotationIndex int        `json:"annotation_index"`
	Annotation      Annotation `json:"annotation"`
}

type RefusalDeltaEvent struct {
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Delta        string `json:"delta"`
}

type FunctionCallArgumentsDeltaEvent struct {
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index"`
	Delta       string `json:"delta"`
}

type FunctionCallArgumentsDoneEvent struct {
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index"`
	Arguments   string `json:"arguments"`
}

type CodeInterpreterCallCodeDeltaEvent struct {
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index"`
	Delta       string `json:"delta"`
}

type CodeInterpreterCallCodeDoneEvent struct {
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index"`
	Code        string `json:"code"`
}

type ReasoningSummaryPartAddedEvent struct {
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	SummaryIndex int    `json:"summary_index"`
}

type ReasoningSummaryPartDoneEvent struct {
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	SummaryIndex int    `json:"summary_index"`
}

type ReasoningSummaryTextDeltaEvent struct {
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	SummaryIndex int    `json:"summary_index"`
	Delta        string `json:"delta"`
}

type ResponseCompletedEvent struct {
	Response Response `json:"response"`
}

type ResponseIncompleteEvent struct {
	Response Response `json:"response"`
}

type ResponseFailedEvent struct {
	Response Response `json:"response"`
}

// ErrorEvent is the stream-level "error" event.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

// LifecycleEvent is a known event that produces no parts.
type LifecycleEvent struct {
	Type string
}

// UnknownEvent is an event type this package does not know.
type UnknownEvent struct {
	Type string
	Data json.RawMessage
}

func (*ResponseCreatedEvent) EventType() string              { return EventResponseCreated }
func (*OutputItemAddedEvent) EventType() string              { return EventOutputItemAdded }
func (*OutputItemDoneEvent) EventType() string               { return EventOutputItemDone }
func (*OutputTextDeltaEvent) EventType() string              { return EventOutputTextDelta }
func (*OutputTextAnnotationAddedEvent) EventType() string    { return EventOutputTextAnnotationAdded }
func (*RefusalDeltaEvent) EventType() string                 { return EventRefusalDelta }
func (*FunctionCallArgumentsDeltaEvent) EventType() string   { return EventFunctionCallArgumentsDelta }
func (*FunctionCallArgumentsDoneEvent) EventType() string    { return EventFunctionCallArgumentsDone }
func (*CodeInterpreterCallCodeDeltaEvent) EventType() string { return EventCodeInterpreterCallCodeDelta }
func (*CodeInterpreterCallCodeDoneEvent) EventType() string  { return EventCodeInterpreterCallCodeDone }
func (*ReasoningSummaryPartAddedEvent) EventType() string    { return EventReasoningSummaryPartAdded }
func (*ReasoningSummaryPartDoneEvent) EventType() string     { return EventReasoningSummaryPartDone }
func (*ReasoningSummaryTextDeltaEvent) EventType() string    { return EventReasoningSummaryTextDelta }
func (*ResponseCompletedEvent) EventType() string            { return EventResponseCompleted }
func (*ResponseIncompleteEvent) EventType() string           { return EventResponseIncomplete }
func (*ResponseFailedEvent) EventType() string               { return EventResponseFailed }
func (*ErrorEvent) EventType() string                        { return EventError }
func (e *LifecycleEvent) EventType() string                  { return e.Type }
func (e *UnknownEvent) EventType() string                    { return e.Type }

func (*ResponseCreatedEvent) isStreamEvent()              {}
func (*OutputItemAddedEvent) isStreamEvent()              {}
func (*OutputItemDoneEvent) isStreamEvent()               {}
func (*OutputTextDeltaEvent) isStreamEvent()              {}
func (*OutputTextAnnotationAddedEvent) isStreamEvent()    {}
func (*RefusalDeltaEvent) isStreamEvent()                 {}
func (*FunctionCallArgumentsDeltaEvent) isStreamEvent()   {}
func (*FunctionCallArgumentsDoneEvent) isStreamEvent()    {}
func (*CodeInterpreterCallCodeDeltaEvent) isStreamEvent() {}
func (*CodeInterpreterCallCodeDoneEvent) isStreamEvent()  {}
func (*ReasoningSummaryPartAddedEvent) isStreamEvent()    {}
func (*ReasoningSummaryPartDoneEvent) isStreamEvent()     {}
func (*ReasoningSummaryTextDeltaEvent) isStreamEvent()    {}
func (*ResponseCompletedEvent) isStreamEvent()            {}
func (*ResponseIncompleteEvent) isStreamEvent()           {}
func (*ResponseFailedEvent) isStreamEvent()               {}
func (*ErrorEvent) isStreamEvent()                        {}
func (*LifecycleEvent) isStreamEvent()                    {}
func (*UnknownEvent) isStreamEvent()                      {}

// StreamError is the payload of an "error" event, surfaced through ErrorPart.
type StreamError struct {
	Code    string
	Message string
	Param   string
}

func (e *StreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("openai stream error %s: %s", e.Code, e.Message)
	}
	return "openai stream error: " + e.Message
}

// DecodeStreamEvent decodes the data of one server-sent event.
// eventName is the SSE "event:" field; when empty the JSON "type" field is used.
func DecodeStreamEvent(eventName string, data []byte) (StreamEvent, error) {
	typ := eventName
	if jsonType := gjson.GetBytes(data, "type"); jsonType.Exists() {
		typ = jsonType.String()
	}

	switch typ {
	case EventResponseCreated:
		return decodeEvent[ResponseCreatedEvent](typ, data)
	case EventOutputItemAdded:
		return decodeEvent[OutputItemAddedEvent](typ, data)
	case EventOutputItemDone:
		return decodeEvent[OutputItemDoneEvent](typ, data)
	case EventOutputTextDelta:
		return decodeEvent[OutputTextDeltaEvent](typ, data)
	case EventOutputTextAnnotationAdded:
		return decodeEvent[OutputTextAnnotationAddedEvent](typ, data)
	case EventRefusalDelta:
		return decodeEvent[RefusalDeltaEvent](typ, data)
	case EventFunctionCallArgumentsDelta:
		return decodeEvent[FunctionCallArgumentsDeltaEvent](typ, data)
	case EventFunctionCallArgumentsDone:
		return decodeEvent[FunctionCallArgumentsDoneEvent](typ, data)
	case EventCodeInterpreterCallCodeDelta:
		return decodeEvent[CodeInterpreterCallCodeDeltaEvent](typ, data)
	case EventCodeInterpreterCallCodeDone:
		return decodeEvent[CodeInterpreterCallCodeDoneEvent](typ, data)
	case EventReasoningSummaryPartAdded:
		return decodeEvent[ReasoningSummaryPartAddedEvent](typ, data)
	case EventReasoningSummaryPartDone:
		return decodeEvent[ReasoningSummaryPartDoneEvent](typ, data)
	case EventReasoningSummaryTextDelta:
		return decodeEvent[ReasoningSummaryTextDeltaEvent](typ, data)
	case EventResponseCompleted:
		return decodeEvent[ResponseCompletedEvent](typ, data)
	case EventResponseIncomplete:
		return decodeEvent[ResponseIncompleteEvent](typ, data)
	case EventResponseFailed:
		return decodeEvent[ResponseFailedEvent](typ, data)
	case EventError:
		return decodeEvent[ErrorEvent](typ, data)
	}

	if lifecycleEvents[typ] {
		return &LifecycleEvent{Type: typ}, nil
	}
	return &UnknownEvent{Type: typ, Data: json.RawMessage(data)}, nil
}

func decodeEvent[T any, PT interface {
	*T
	StreamEvent
}](typ string, data []byte) (StreamEvent, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", typ, err)
	}
	return PT(&ev), nil
}
