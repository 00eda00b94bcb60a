package llmprovider

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces unique identifiers for parts that carry no vendor id
// (citation sources).
type IDGenerator interface {
	GenerateID() string
}

// UUIDGenerator generates random v4 UUIDs.
type UUIDGenerator struct{}

// GenerateID returns a new random UUID string.
func (UUIDGenerator) GenerateID() string {
	return uuid.NewString()
}

// SequenceIDGenerator generates "<prefix>-1", "<prefix>-2", ... in order.
// Useful for reproducible output in tests and fixtures.
type SequenceIDGenerator struct {
	Prefix string
	n      atomic.Int64
}

// GenerateID returns the next identifier in the sequence.
func (g *SequenceIDGenerator) GenerateID() string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n.Add(1))
}
