package llmprovider

// FinishReason is the normalized reason a response stopped.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"           // Natural end of turn
	FinishReasonLength        FinishReason = "length"         // Output token limit reached
	FinishReasonContentFilter FinishReason = "content-filter" // Stopped by a content filter
	FinishReasonToolCalls     FinishReason = "tool-calls"     // Caller must execute tool calls
	FinishReasonError         FinishReason = "error"          // Response failed
	FinishReasonOther         FinishReason = "other"          // Vendor reason with no mapping
	FinishReasonUnknown       FinishReason = "unknown"
)

// String returns the string representation of the finish reason
func (r FinishReason) String() string {
	return string(r)
}
