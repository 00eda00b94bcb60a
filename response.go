package llmprovider

import "strings"

// GenerateResponse contains the normalized parts of a complete response.
type GenerateResponse struct {
	// Parts is the ordered part list: ResponseMetadataPart first, FinishPart last
	Parts []Part

	// Warnings lists request settings the provider ignored or may reject
	Warnings []ValidationWarning
}

// Text concatenates all text parts
func (r *GenerateResponse) Text() string {
	var sb strings.Builder
	for _, p := range r.Parts {
		if t, ok := p.(TextPart); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}

// ToolCalls returns the tool calls in order
func (r *GenerateResponse) ToolCalls() []ToolCallPart {
	var calls []ToolCallPart
	for _, p := range r.Parts {
		if c, ok := p.(ToolCallPart); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

// Metadata returns the response metadata part, if present
func (r *GenerateResponse) Metadata() (ResponseMetadataPart, bool) {
	for _, p := range r.Parts {
		if m, ok := p.(ResponseMetadataPart); ok {
			return m, true
		}
	}
	return ResponseMetadataPart{}, false
}

// Finish returns the finish part, if present
func (r *GenerateResponse) Finish() (FinishPart, bool) {
	for i := len(r.Parts) - 1; i >= 0; i-- {
		if f, ok := r.Parts[i].(FinishPart); ok {
			return f, true
		}
	}
	return FinishPart{}, false
}
