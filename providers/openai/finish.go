package openai

import (
	"time"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

// ResolveFinishReason maps a vendor incomplete reason to a FinishReason.
// An explicit reason always wins; without one, tool calls that the caller
// must execute resolve to tool-calls and everything else to stop.
func ResolveFinishReason(incompleteReason string, hadToolCalls bool) llmprovider.FinishReason {
	switch incompleteReason {
	case "":
		if hadToolCalls {
			return llmprovider.FinishReasonToolCalls
		}
		return llmprovider.FinishReasonStop
	case "max_output_tokens", "max_tokens":
		return llmprovider.FinishReasonLength
	case "content_filter":
		return llmprovider.FinishReasonContentFilter
	case "error":
		return llmprovider.FinishReasonError
	default:
		return llmprovider.FinishReasonOther
	}
}

// finishPart builds the FinishPart for a terminal response. A failed response
// without incomplete details resolves as "error".
func finishPart(resp *Response, hadToolCalls bool) llmprovider.FinishPart {
	reason := ""
	if resp.IncompleteDetails != nil {
		reason = resp.IncompleteDetails.Reason
	}
	if reason == "" && resp.Status == StatusFailed {
		reason = "error"
	}
	return llmprovider.FinishPart{
		Reason: ResolveFinishReason(reason, hadToolCalls),
		Usage:  convertUsage(resp.Usage),
		Metadata: &llmprovider.Metadata{
			ResponseID:  resp.ID,
			ServiceTier: resp.ServiceTier,
		},
	}
}

func convertUsage(u *Usage) llmprovider.Usage {
	if u == nil {
		return llmprovider.Usage{}
	}
	usage := llmprovider.Usage{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = u.InputTokens + u.OutputTokens
	}
	if u.InputTokensDetails != nil {
		usage.CachedInputTokens = u.InputTokensDetails.CachedTokens
	}
	if u.OutputTokensDetails != nil {
		usage.ReasoningTokens = u.OutputTokensDetails.ReasoningTokens
	}
	return usage
}

func responseMetadata(resp *Response) llmprovider.ResponseMetadataPart {
	return llmprovider.ResponseMetadataPart{
		ID:        resp.ID,
		ModelID:   resp.Model,
		Timestamp: time.Unix(resp.CreatedAt, 0).UTC(),
	}
}
