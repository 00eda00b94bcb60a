package llmprovider

import "strings"

// Accumulator folds streaming lifecycle parts into their complete form.
//
// TextStart/Delta/End become one TextPart, ReasoningStart/Delta/End become one
// ReasoningPart, and ToolParams* parts are dropped because the ToolCallPart
// that follows them already carries the parsed arguments. Terminal parts pass
// through unchanged. The result of folding a streamed response is comparable
// with the complete conversion of the same response.
type Accumulator struct {
	text      map[string]*strings.Builder
	reasoning map[string]*strings.Builder
	parts     []Part
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		text:      make(map[string]*strings.Builder),
		reasoning: make(map[string]*strings.Builder),
	}
}

// Add folds one part.
func (a *Accumulator) Add(part Part) {
	switch p := part.(type) {
	case TextStartPart:
		a.text[p.ID] = &strings.Builder{}
	case TextDeltaPart:
		if b, ok := a.text[p.ID]; ok {
			b.WriteString(p.Delta)
		}
	case TextEndPart:
		var text string
		if b, ok := a.text[p.ID]; ok {
			text = b.String()
			delete(a.text, p.ID)
		}
		a.parts = append(a.parts, TextPart{Text: text, Metadata: p.Metadata})
	case ReasoningStartPart:
		a.reasoning[p.ID] = &strings.Builder{}
	case ReasoningDeltaPart:
		if b, ok := a.reasoning[p.ID]; ok {
			b.WriteString(p.Delta)
		}
	case ReasoningEndPart:
		var text string
		if b, ok := a.reasoning[p.ID]; ok {
			text = b.String()
			delete(a.reasoning, p.ID)
		}
		a.parts = append(a.parts, ReasoningPart{Text: text, Metadata: p.Metadata})
	case ToolParamsStartPart, ToolParamsDeltaPart, ToolParamsEndPart:
		// the ToolCallPart carries the parsed arguments
	default:
		a.parts = append(a.parts, part)
	}
}

// Parts returns the folded parts in the order they completed.
func (a *Accumulator) Parts() []Part {
	return a.parts
}

// Accumulate drains a stream and folds it. Parts folded before an error are
// returned together with the error.
func Accumulate(stream PartStream) ([]Part, error) {
	acc := NewAccumulator()
	for p, err := range stream {
		if err != nil {
			return acc.Parts(), err
		}
		acc.Add(p)
	}
	return acc.Parts(), nil
}
