package openai

import (
	"errors"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

type toolKind int

const (
	toolKindFunction        toolKind = iota // arguments streamed as raw JSON
	toolKindCodeInterpreter                 // code streamed, wrapped into a JSON object
	toolKindImmediate                       // call announced when the item is added
	toolKindDeferred                        // call announced when the item is done
)

// activeToolCall is the in-flight state of one tool call, keyed by output index.
type activeToolCall struct {
	kind        toolKind
	id          string
	name        string
	itemID      string
	containerID string
	args        strings.Builder
	sawDelta    bool
	callEmitted bool
}

type summaryState int

const (
	summaryActive summaryState = iota + 1
	summaryCanConclude
	summaryConcluded
)

// reasoningState tracks the summary parts of one reasoning item, keyed by item id.
type reasoningState struct {
	encryptedContent *string
	parts            map[int]summaryState
}

// StreamConverter turns stream events into parts. It owns all keyed state of
// one response and must be driven by a single goroutine.
type StreamConverter struct {
	opts               ConvertOptions
	activeToolCalls    map[int]*activeToolCall
	activeReasoning    map[string]*reasoningState
	ongoingAnnotations []llmprovider.Citation
	hasToolCalls       bool
	finished           bool
}

// NewStreamConverter creates a converter for one response.
func NewStreamConverter(opts ConvertOptions) *StreamConverter {
	return &StreamConverter{
		opts:            opts.withDefaults(),
		activeToolCalls: make(map[int]*activeToolCall),
		activeReasoning: make(map[string]*reasoningState),
	}
}

// Finished reports whether a terminal or error event has been converted.
// Later events are ignored.
func (c *StreamConverter) Finished() bool {
	return c.finished
}

// Convert handles one event. Parts are returned in emission order; when err is
// non-nil the returned parts precede the failure and the stream must stop.
func (c *StreamConverter) Convert(ev StreamEvent) ([]llmprovider.Part, error) {
	if c.finished {
		return nil, nil
	}
	c.opts.Metrics.observeEvent(ev.EventType())

	var parts []llmprovider.Part
	var err error

	switch e := ev.(type) {
	case *ResponseCreatedEvent:
		parts = []llmprovider.Part{responseMetadata(&e.Response)}
	case *OutputItemAddedEvent:
		parts = c.onItemAdded(e.OutputIndex, &e.Item)
	case *OutputItemDoneEvent:
		parts, err = c.onItemDone(e.OutputIndex, &e.Item)
	case *OutputTextDeltaEvent:
		parts = []llmprovider.Part{llmprovider.TextDeltaPart{ID: e.ItemID, Delta: e.Delta}}
	case *RefusalDeltaEvent:
		parts = []llmprovider.Part{llmprovider.TextDeltaPart{ID: e.ItemID, Delta: e.Delta}}
	case *OutputTextAnnotationAddedEvent:
		parts = c.onAnnotation(e)
	case *FunctionCallArgumentsDeltaEvent:
		parts = c.onArgumentsDelta(e.OutputIndex, e.Delta)
	case *CodeInterpreterCallCodeDeltaEvent:
		parts = c.onCodeDelta(e.OutputIndex, e.Delta)
	case *CodeInterpreterCallCodeDoneEvent:
		if tc := c.activeToolCalls[e.OutputIndex]; tc != nil && tc.kind == toolKindCodeInterpreter {
			parts, err = c.finishCodeInterpreterArgs(tc, e.Code)
		}
	case *ReasoningSummaryPartAddedEvent:
		parts = c.onSummaryPartAdded(e.ItemID, e.SummaryIndex)
	case *ReasoningSummaryPartDoneEvent:
		parts = c.onSummaryPartDone(e.ItemID, e.SummaryIndex)
	case *ReasoningSummaryTextDeltaEvent:
		parts = []llmprovider.Part{llmprovider.ReasoningDeltaPart{
			ID:    reasoningPartID(e.ItemID, e.SummaryIndex),
			Delta: e.Delta,
		}}
	case *ResponseCompletedEvent:
		parts = c.finish(&e.Response)
	case *ResponseIncompleteEvent:
		parts = c.finish(&e.Response)
	case *ResponseFailedEvent:
		parts = c.finish(&e.Response)
	case *ErrorEvent:
		c.finished = true
		parts = []llmprovider.Part{llmprovider.ErrorPart{Err: &StreamError{
			Code:    e.Code,
			Message: e.Message,
			Param:   e.Param,
		}}}
	case *FunctionCallArgumentsDoneEvent, *LifecycleEvent:
		// arguments arrive again on output_item.done
	case *UnknownEvent:
		c.opts.Logger.WithField("event_type", e.Type).Debug("ignoring unknown stream event")
	}

	if err != nil && errors.Is(err, llmprovider.ErrOutputParse) {
		c.opts.Metrics.observeParseError()
	}
	c.opts.Metrics.observeParts(parts)
	return parts, err
}

func (c *StreamConverter) finish(resp *Response) []llmprovider.Part {
	c.finished = true
	return []llmprovider.Part{finishPart(resp, c.hasToolCalls)}
}

func (c *StreamConverter) onItemAdded(outputIndex int, item *OutputItem) []llmprovider.Part {
	switch item.Type {
	case ItemTypeMessage:
		c.ongoingAnnotations = nil
		return []llmprovider.Part{llmprovider.TextStartPart{ID: item.ID}}

	case ItemTypeFunctionCall:
		c.activeToolCalls[outputIndex] = &activeToolCall{
			kind:   toolKindFunction,
			id:     item.CallID,
			name:   item.Name,
			itemID: item.ID,
		}
		return []llmprovider.Part{llmprovider.ToolParamsStartPart{ID: item.CallID, Name: item.Name}}

	case ItemTypeCodeInterpreterCall:
		tc := &activeToolCall{
			kind:        toolKindCodeInterpreter,
			id:          item.ID,
			name:        providerToolName(item, c.opts.ToolNames),
			itemID:      item.ID,
			containerID: item.ContainerID,
		}
		prefix := codeInterpreterArgsPrefix(item.ContainerID)
		tc.args.WriteString(prefix)
		c.activeToolCalls[outputIndex] = tc
		return []llmprovider.Part{
			llmprovider.ToolParamsStartPart{ID: tc.id, Name: tc.name, ProviderExecuted: true},
			llmprovider.ToolParamsDeltaPart{ID: tc.id, Delta: prefix},
		}

	case ItemTypeReasoning:
		st := &reasoningState{
			encryptedContent: item.EncryptedContent,
			parts:            map[int]summaryState{0: summaryActive},
		}
		c.activeReasoning[item.ID] = st
		return []llmprovider.Part{llmprovider.ReasoningStartPart{
			ID:       reasoningPartID(item.ID, 0),
			Metadata: reasoningMetadata(item.ID, st.encryptedContent),
		}}
	}

	if !isProviderToolItem(item.Type) {
		c.opts.Logger.WithFields(logrus.Fields{
			"item_type": item.Type,
			"item_id":   item.ID,
		}).Debug("ignoring unsupported output item")
		return nil
	}

	tc := &activeToolCall{
		kind:   toolKindDeferred,
		id:     item.ID,
		name:   providerToolName(item, c.opts.ToolNames),
		itemID: item.ID,
	}
	c.activeToolCalls[outputIndex] = tc
	if !emitsCallOnAdd(item.Type) {
		return nil
	}

	tc.kind = toolKindImmediate
	call, err := providerToolCall(item, c.opts.ToolNames)
	if err != nil {
		// these tools carry no arguments; retry on done
		return nil
	}
	tc.callEmitted = true
	return []llmprovider.Part{call}
}

func (c *StreamConverter) onItemDone(outputIndex int, item *OutputItem) ([]llmprovider.Part, error) {
	switch item.Type {
	case ItemTypeMessage:
		return []llmprovider.Part{llmprovider.TextEndPart{
			ID: item.ID,
			Metadata: llmprovider.Metadata{
				ItemID:    item.ID,
				Citations: c.ongoingAnnotations,
			},
		}}, nil

	case ItemTypeFunctionCall:
		return c.onFunctionCallDone(outputIndex, item)

	case ItemTypeReasoning:
		return c.onReasoningDone(item), nil
	}

	if !isProviderToolItem(item.Type) {
		return nil, nil
	}

	tc := c.activeToolCalls[outputIndex]
	delete(c.activeToolCalls, outputIndex)

	var parts []llmprovider.Part
	switch {
	case tc != nil && tc.kind == toolKindCodeInterpreter:
		closing, err := c.finishCodeInterpreterArgs(tc, item.Code)
		parts = append(parts, closing...)
		if err != nil {
			return parts, err
		}
	case tc == nil || !tc.callEmitted:
		call, err := providerToolCall(item, c.opts.ToolNames)
		if err != nil {
			return nil, err
		}
		parts = append(parts, call)
	}

	return append(parts, providerToolResult(item, c.opts.ToolNames)), nil
}

func (c *StreamConverter) onFunctionCallDone(outputIndex int, item *OutputItem) ([]llmprovider.Part, error) {
	var parts []llmprovider.Part

	tc := c.activeToolCalls[outputIndex]
	delete(c.activeToolCalls, outputIndex)
	if tc == nil || tc.kind != toolKindFunction {
		tc = &activeToolCall{kind: toolKindFunction, id: item.CallID, name: item.Name, itemID: item.ID}
		parts = append(parts, llmprovider.ToolParamsStartPart{ID: tc.id, Name: tc.name})
	}

	if !tc.sawDelta && item.Arguments != "" {
		tc.args.WriteString(item.Arguments)
		parts = append(parts, llmprovider.ToolParamsDeltaPart{ID: tc.id, Delta: item.Arguments})
	}

	params, err := llmprovider.ParseToolArguments(tc.id, tc.name, tc.args.String())
	if err != nil {
		return parts, err
	}

	c.hasToolCalls = true
	return append(parts,
		llmprovider.ToolParamsEndPart{ID: tc.id},
		llmprovider.ToolCallPart{
			ID:       tc.id,
			Name:     tc.name,
			Params:   params,
			Metadata: llmprovider.Metadata{ItemID: item.ID},
		},
	), nil
}

func (c *StreamConverter) onArgumentsDelta(outputIndex int, delta string) []llmprovider.Part {
	tc := c.activeToolCalls[outputIndex]
	if tc == nil || tc.kind != toolKindFunction {
		return nil
	}
	tc.args.WriteString(delta)
	tc.sawDelta = true
	return []llmprovider.Part{llmprovider.ToolParamsDeltaPart{ID: tc.id, Delta: delta}}
}

func (c *StreamConverter) onCodeDelta(outputIndex int, delta string) []llmprovider.Part {
	tc := c.activeToolCalls[outputIndex]
	if tc == nil || tc.kind != toolKindCodeInterpreter || tc.callEmitted {
		return nil
	}
	escaped := escapeJSONString(delta)
	tc.args.WriteString(escaped)
	tc.sawDelta = true
	return []llmprovider.Part{llmprovider.ToolParamsDeltaPart{ID: tc.id, Delta: escaped}}
}

// finishCodeInterpreterArgs closes the argument object and emits the call.
// code is used only when no code deltas were seen.
func (c *StreamConverter) finishCodeInterpreterArgs(tc *activeToolCall, code string) ([]llmprovider.Part, error) {
	if tc.callEmitted {
		return nil, nil
	}

	var parts []llmprovider.Part
	if !tc.sawDelta && code != "" {
		escaped := escapeJSONString(code)
		tc.args.WriteString(escaped)
		tc.sawDelta = true
		parts = append(parts, llmprovider.ToolParamsDeltaPart{ID: tc.id, Delta: escaped})
	}
	tc.args.WriteString(codeInterpreterArgsSuffix)
	parts = append(parts,
		llmprovider.ToolParamsDeltaPart{ID: tc.id, Delta: codeInterpreterArgsSuffix},
		llmprovider.ToolParamsEndPart{ID: tc.id},
	)

	params, err := llmprovider.ParseToolArguments(tc.id, tc.name, tc.args.String())
	if err != nil {
		return parts, err
	}
	tc.callEmitted = true
	return append(parts, llmprovider.ToolCallPart{
		ID:               tc.id,
		Name:             tc.name,
		Params:           params,
		ProviderExecuted: true,
		Metadata:         llmprovider.Metadata{ItemID: tc.itemID},
	}), nil
}

func (c *StreamConverter) onAnnotation(e *OutputTextAnnotationAddedEvent) []llmprovider.Part {
	c.ongoingAnnotations = append(c.ongoingAnnotations, toCitation(e.Annotation))
	if src, ok := sourceFromAnnotation(e.Annotation, e.ItemID, c.opts.IDs); ok {
		return []llmprovider.Part{src}
	}
	return nil
}

// onSummaryPartAdded starts summary part index > 0. Parts of the same item
// that are waiting to conclude are concluded first.
func (c *StreamConverter) onSummaryPartAdded(itemID string, index int) []llmprovider.Part {
	st := c.activeReasoning[itemID]
	if st == nil || index == 0 {
		return nil
	}
	if _, seen := st.parts[index]; seen {
		return nil
	}

	parts := c.concludeReasoning(itemID, st, summaryCanConclude)
	st.parts[index] = summaryActive
	return append(parts, llmprovider.ReasoningStartPart{
		ID:       reasoningPartID(itemID, index),
		Metadata: reasoningMetadata(itemID, st.encryptedContent),
	})
}

// onSummaryPartDone concludes the part immediately when the response is
// stored. Otherwise the part waits until the next part starts or the item ends.
func (c *StreamConverter) onSummaryPartDone(itemID string, index int) []llmprovider.Part {
	st := c.activeReasoning[itemID]
	if st == nil || st.parts[index] != summaryActive {
		return nil
	}
	if !c.opts.Store {
		st.parts[index] = summaryCanConclude
		return nil
	}
	st.parts[index] = summaryConcluded
	return []llmprovider.Part{llmprovider.ReasoningEndPart{
		ID:       reasoningPartID(itemID, index),
		Metadata: reasoningMetadata(itemID, st.encryptedContent),
	}}
}

func (c *StreamConverter) onReasoningDone(item *OutputItem) []llmprovider.Part {
	st := c.activeReasoning[item.ID]
	if st == nil {
		c.opts.Logger.WithField("item_id", item.ID).Debug("reasoning item done without being added")
		return nil
	}
	delete(c.activeReasoning, item.ID)

	// the value captured when the item was added wins
	if st.encryptedContent == nil {
		st.encryptedContent = item.EncryptedContent
	}
	return c.concludeReasoning(item.ID, st, summaryActive, summaryCanConclude)
}

// concludeReasoning ends every part in one of the given states, in index order.
func (c *StreamConverter) concludeReasoning(itemID string, st *reasoningState, states ...summaryState) []llmprovider.Part {
	indices := make([]int, 0, len(st.parts))
	for idx, state := range st.parts {
		if slices.Contains(states, state) {
			indices = append(indices, idx)
		}
	}
	slices.Sort(indices)

	parts := make([]llmprovider.Part, 0, len(indices))
	for _, idx := range indices {
		st.parts[idx] = summaryConcluded
		parts = append(parts, llmprovider.ReasoningEndPart{
			ID:       reasoningPartID(itemID, idx),
			Metadata: reasoningMetadata(itemID, st.encryptedContent),
		})
	}
	return parts
}

func reasoningPartID(itemID string, index int) string {
	return itemID + ":" + strconv.Itoa(index)
}

func reasoningMetadata(itemID string, encryptedContent *string) llmprovider.Metadata {
	return llmprovider.Metadata{ItemID: itemID, EncryptedContent: encryptedContent}
}

// ConvertStream converts an event sequence into a part stream.
//
// The stream ends after the first terminal or error event. A source that ends
// without one yields llmprovider.ErrIncompleteStream. Errors from the source
// are passed through as-is, and no synthetic FinishPart is ever produced.
// Breaking out of the range stops pulling from the source.
func ConvertStream(events iter.Seq2[StreamEvent, error], opts ConvertOptions) llmprovider.PartStream {
	return func(yield func(llmprovider.Part, error) bool) {
		conv := NewStreamConverter(opts)
		for ev, err := range events {
			if err != nil {
				yield(nil, err)
				return
			}

			parts, convErr := conv.Convert(ev)
			for _, p := range parts {
				if !yield(p, nil) {
					return
				}
			}
			if convErr != nil {
				yield(nil, convErr)
				return
			}
			if conv.Finished() {
				return
			}
		}
		if !conv.Finished() {
			yield(nil, llmprovider.ErrIncompleteStream)
		}
	}
}

// EventsFromSlice adapts a fixed event list to an event source.
func EventsFromSlice(events []StreamEvent) iter.Seq2[StreamEvent, error] {
	return func(yield func(StreamEvent, error) bool) {
		for _, ev := range events {
			if !yield(ev, nil) {
				return
			}
		}
	}
}
