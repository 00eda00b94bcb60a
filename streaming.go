package llmprovider

import "iter"

// PartStream is a lazy, finite, one-shot sequence of parts.
//
// A non-nil error ends the sequence; no parts follow it. Breaking out of the
// range cancels the stream and releases its resources.
//
// Usage:
//
//	stream, err := provider.StreamResponse(ctx, req)
//	if err != nil { return err }
//	for part, err := range stream {
//	  if err != nil { handle error; break }
//	  switch p := part.(type) {
//	  case llmprovider.TextDeltaPart: fmt.Print(p.Delta)
//	  case llmprovider.FinishPart:    done
//	  }
//	}
type PartStream = iter.Seq2[Part, error]

// OnceStream wraps seq so that a second range yields ErrStreamConsumed.
// Transports use it because their underlying body can only be read once.
func OnceStream(seq PartStream) PartStream {
	used := false
	return func(yield func(Part, error) bool) {
		if used {
			yield(nil, ErrStreamConsumed)
			return
		}
		used = true
		seq(yield)
	}
}

// StreamFromParts returns a stream that yields the given parts in order.
func StreamFromParts(parts []Part) PartStream {
	return func(yield func(Part, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
	}
}

// CollectParts drains a stream into a slice. Parts received before an error
// are returned together with the error.
func CollectParts(stream PartStream) ([]Part, error) {
	var parts []Part
	for p, err := range stream {
		if err != nil {
			return parts, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}
