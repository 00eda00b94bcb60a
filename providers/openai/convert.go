package openai

import (
	"errors"

	"github.com/sirupsen/logrus"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

// ConvertResponse converts a complete response into its ordered part list:
// ResponseMetadataPart, one group of parts per output item, then FinishPart.
//
// A function call whose arguments cannot be parsed fails the whole
// conversion with *llmprovider.OutputParseError; no partial list is returned.
func ConvertResponse(resp *Response, opts ConvertOptions) ([]llmprovider.Part, error) {
	opts = opts.withDefaults()

	parts := []llmprovider.Part{responseMetadata(resp)}
	hasToolCalls := false

	for i := range resp.Output {
		item := &resp.Output[i]

		switch {
		case item.Type == ItemTypeMessage:
			parts = append(parts, messageParts(item, opts.IDs)...)

		case item.Type == ItemTypeFunctionCall:
			params, err := llmprovider.ParseToolArguments(item.CallID, item.Name, item.Arguments)
			if err != nil {
				opts.Metrics.observeParseError()
				return nil, err
			}
			hasToolCalls = true
			parts = append(parts, llmprovider.ToolCallPart{
				ID:       item.CallID,
				Name:     item.Name,
				Params:   params,
				Metadata: llmprovider.Metadata{ItemID: item.ID},
			})

		case item.Type == ItemTypeReasoning:
			parts = append(parts, reasoningParts(item)...)

		case isProviderToolItem(item.Type):
			call, err := providerToolCall(item, opts.ToolNames)
			if err != nil {
				if errors.Is(err, llmprovider.ErrOutputParse) {
					opts.Metrics.observeParseError()
				}
				return nil, err
			}
			parts = append(parts, call, providerToolResult(item, opts.ToolNames))

		default:
			opts.Logger.WithFields(logrus.Fields{
				"item_type": item.Type,
				"item_id":   item.ID,
			}).Debug("skipping unsupported output item")
		}
	}

	parts = append(parts, finishPart(resp, hasToolCalls))
	opts.Metrics.observeParts(parts)
	return parts, nil
}

// messageParts emits one TextPart per content part, each followed by the
// sources of its annotations.
func messageParts(item *OutputItem, ids llmprovider.IDGenerator) []llmprovider.Part {
	var parts []llmprovider.Part
	for _, content := range item.Content {
		switch content.Type {
		case ContentTypeOutputText:
			parts = append(parts, llmprovider.TextPart{
				Text: content.Text,
				Metadata: llmprovider.Metadata{
					ItemID:    item.ID,
					Citations: toCitations(content.Annotations),
				},
			})
			for _, a := range content.Annotations {
				if src, ok := sourceFromAnnotation(a, item.ID, ids); ok {
					parts = append(parts, src)
				}
			}
		case ContentTypeRefusal:
			parts = append(parts, llmprovider.TextPart{
				Text:     content.Refusal,
				Metadata: llmprovider.Metadata{ItemID: item.ID},
			})
		}
	}
	return parts
}

// reasoningParts emits one ReasoningPart per summary; an item without
// summaries still yields one empty part so that its encrypted content survives.
func reasoningParts(item *OutputItem) []llmprovider.Part {
	meta := llmprovider.Metadata{
		ItemID:           item.ID,
		EncryptedContent: item.EncryptedContent,
	}
	if len(item.Summary) == 0 {
		return []llmprovider.Part{llmprovider.ReasoningPart{Metadata: meta}}
	}
	parts := make([]llmprovider.Part, 0, len(item.Summary))
	for _, s := range item.Summary {
		parts = append(parts, llmprovider.ReasoningPart{Text: s.Text, Metadata: meta})
	}
	return parts
}
