package openai

import (
	"strings"
)

// SimulateEvents replays a complete response as the event sequence the
// service would have streamed for it. Text is split into word chunks and
// arguments and code into fixed-size chunks, so every delta path is
// exercised. Used by the mock provider and by equivalence tests.
func SimulateEvents(resp *Response) []StreamEvent {
	created := *resp
	created.Output = nil
	created.Usage = nil
	created.Status = StatusInProgress
	created.IncompleteDetails = nil
	created.Error = nil

	events := []StreamEvent{&ResponseCreatedEvent{Response: created}}

	for idx := range resp.Output {
		item := resp.Output[idx]
		events = append(events, &OutputItemAddedEvent{OutputIndex: idx, Item: addedItem(item)})

		switch item.Type {
		case ItemTypeMessage:
			events = append(events, messageEvents(idx, &item)...)
		case ItemTypeFunctionCall:
			for _, chunk := range chunkString(item.Arguments, simulatedChunkSize) {
				events = append(events, &FunctionCallArgumentsDeltaEvent{ItemID: item.ID, OutputIndex: idx, Delta: chunk})
			}
			events = append(events, &FunctionCallArgumentsDoneEvent{ItemID: item.ID, OutputIndex: idx, Arguments: item.Arguments})
		case ItemTypeCodeInterpreterCall:
			for _, chunk := range chunkString(item.Code, simulatedChunkSize) {
				events = append(events, &CodeInterpreterCallCodeDeltaEvent{ItemID: item.ID, OutputIndex: idx, Delta: chunk})
			}
			events = append(events, &CodeInterpreterCallCodeDoneEvent{ItemID: item.ID, OutputIndex: idx, Code: item.Code})
		case ItemTypeReasoning:
			for si, s := range item.Summary {
				events = append(events, &ReasoningSummaryPartAddedEvent{ItemID: item.ID, OutputIndex: idx, SummaryIndex: si})
				for _, chunk := range strings.SplitAfter(s.Text, " ") {
					if chunk == "" {
						continue
					}
					events = append(events, &ReasoningSummaryTextDeltaEvent{ItemID: item.ID, OutputIndex: idx, SummaryIndex: si, Delta: chunk})
				}
				events = append(events, &ReasoningSummaryPartDoneEvent{ItemID: item.ID, OutputIndex: idx, SummaryIndex: si})
			}
		}

		events = append(events, &OutputItemDoneEvent{OutputIndex: idx, Item: item})
	}

	switch resp.Status {
	case StatusIncomplete:
		events = append(events, &ResponseIncompleteEvent{Response: *resp})
	case StatusFailed:
		events = append(events, &ResponseFailedEvent{Response: *resp})
	default:
		events = append(events, &ResponseCompletedEvent{Response: *resp})
	}
	return events
}

const simulatedChunkSize = 8

// addedItem strips the fields that are only known once the item is done.
func addedItem(item OutputItem) OutputItem {
	item.Status = StatusInProgress
	item.Content = nil
	item.Arguments = ""
	item.Summary = nil
	item.Code = ""
	item.Outputs = nil
	item.Results = nil
	item.Result = nil
	item.Output = nil
	item.Error = nil
	return item
}

func messageEvents(idx int, item *OutputItem) []StreamEvent {
	var events []StreamEvent
	for ci, content := range item.Content {
		switch content.Type {
		case ContentTypeOutputText:
			for _, chunk := range strings.SplitAfter(content.Text, " ") {
				if chunk == "" {
					continue
				}
				events = append(events, &OutputTextDeltaEvent{ItemID: item.ID, OutputIndex: idx, ContentIndex: ci, Delta: chunk})
			}
			for ai, a := range content.Annotations {
				events = append(events, &OutputTextAnnotationAddedEvent{
					ItemID:          item.ID,
					OutputIndex:     idx,
					ContentIndex:    ci,
					AnnotationIndex: ai,
					Annotation:      a,
				})
			}
		case ContentTypeRefusal:
			for _, chunk := range strings.SplitAfter(content.Refusal, " ") {
				if chunk == "" {
					continue
				}
				events = append(events, &RefusalDeltaEvent{ItemID: item.ID, OutputIndex: idx, ContentIndex: ci, Delta: chunk})
			}
		}
	}
	return events
}

// chunkString splits s into pieces of at most n runes.
func chunkString(s string, n int) []string {
	var chunks []string
	runes := []rune(s)
	for len(runes) > 0 {
		end := min(n, len(runes))
		chunks = append(chunks, string(runes[:end]))
		runes = runes[end:]
	}
	return chunks
}
