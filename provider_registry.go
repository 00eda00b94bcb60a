package llmprovider

import (
	"fmt"
	"slices"
	"strings"
)

// ProviderID names a backend serving the Responses API.
type ProviderID string

const (
	ProviderOpenAI ProviderID = "openai"
	ProviderAzure  ProviderID = "azure" // Responses API behind an Azure OpenAI deployment
	ProviderLorem  ProviderID = "lorem" // offline generator for tests and examples
)

// KnownProviders lists every ProviderID this module ships.
var KnownProviders = []ProviderID{ProviderOpenAI, ProviderAzure, ProviderLorem}

func (p ProviderID) String() string { return string(p) }

// IsValid reports whether p is one of KnownProviders.
func (p ProviderID) IsValid() bool { return slices.Contains(KnownProviders, p) }

// ParseProviderID accepts a provider name case-insensitively.
func ParseProviderID(s string) (ProviderID, error) {
	id := ProviderID(strings.ToLower(strings.TrimSpace(s)))
	if !id.IsValid() {
		return "", fmt.Errorf("unknown provider %q", s)
	}
	return id, nil
}
