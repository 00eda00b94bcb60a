package llmprovider

import "context"

// Provider turns a GenerateRequest into parts, either all at once or as a
// stream. Both paths produce the same parts for the same response: the
// stream, fed through Accumulate, equals GenerateResponse's Parts.
type Provider interface {
	// GenerateResponse blocks until the response is complete. Parts start
	// with a ResponseMetadataPart and end with a FinishPart.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// StreamResponse returns request and HTTP errors directly; everything
	// after the response starts arrives through the stream, which may be
	// ranged over once:
	//
	//	for part, err := range stream {
	//		if err != nil {
	//			return err
	//		}
	//		...
	//	}
	StreamResponse(ctx context.Context, req *GenerateRequest) (PartStream, error)

	Name() ProviderID
	SupportsModel(model string) bool
}
