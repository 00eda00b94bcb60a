package llmprovider

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed config/capabilities/openai.yaml
var openaiCapabilitiesYAML []byte

// Capability data shapes requests (which role carries the system prompt,
// whether reasoning options apply) and feeds validation warnings. It never
// blocks a request; the API has the final word. The embedded table can be
// replaced at runtime with LoadCapabilitiesFromFile or
// RegisterProviderCapabilities when it falls behind new models.

// How a model receives RequestParams.System.
const (
	SystemMessageModeSystem    = "system"
	SystemMessageModeDeveloper = "developer"
	SystemMessageModeRemove    = "remove" // dropped, with a warning
)

// ProviderCapabilities is one capability file.
type ProviderCapabilities struct {
	Version     string                     `yaml:"version"`
	LastUpdated string                     `yaml:"last_updated"`
	Provider    string                     `yaml:"provider"`
	Models      map[string]ModelCapability `yaml:"models"`
	Constraints ProviderConstraints        `yaml:"constraints"`
}

type ModelCapability struct {
	ContextWindow              int                 `yaml:"context_window"`
	MaxOutputTokens            int                 `yaml:"max_output_tokens"`
	SystemMessageMode          string              `yaml:"system_message_mode"`
	SupportsFlexProcessing     bool                `yaml:"supports_flex_processing"`
	SupportsPriorityProcessing bool                `yaml:"supports_priority_processing"`
	Features                   ModelFeatures       `yaml:"features"`
	Reasoning                  ReasoningCapability `yaml:"reasoning"`
	Pricing                    PricingInfo         `yaml:"pricing"`
	Tools                      []ToolCapability    `yaml:"tools"`
}

type ModelFeatures struct {
	Vision    bool `yaml:"vision"`
	Tools     bool `yaml:"tools"`
	Reasoning bool `yaml:"reasoning"`
	Streaming bool `yaml:"streaming"`
}

type ReasoningCapability struct {
	Efforts       []string `yaml:"efforts"`
	DefaultEffort string   `yaml:"default_effort"`
}

// PricingInfo is in USD per million tokens.
type PricingInfo struct {
	InputPer1M     float64 `yaml:"input_per_1m"`
	OutputPer1M    float64 `yaml:"output_per_1m"`
	CacheReadPer1M float64 `yaml:"cache_read_per_1m"`
}

// ToolCapability lists a built-in tool a model can call.
type ToolCapability struct {
	Name                 string  `yaml:"name"` // registry id, e.g. "openai.web_search"
	ExecutionSide        string  `yaml:"execution_side"`
	PricingPer1KRequests float64 `yaml:"pricing_per_1k_requests"`
	Description          string  `yaml:"description"`
}

// ProviderConstraints bounds sampling parameters for every model.
type ProviderConstraints struct {
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
	TopPMin        float64 `yaml:"top_p_min"`
	TopPMax        float64 `yaml:"top_p_max"`
}

// CapabilityRegistry holds capability files by provider name.
type CapabilityRegistry struct {
	mu           sync.RWMutex
	capabilities map[string]*ProviderCapabilities
}

// NewCapabilityRegistry returns an empty registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{capabilities: make(map[string]*ProviderCapabilities)}
}

var defaultRegistry = sync.OnceValue(func() *CapabilityRegistry {
	r := NewCapabilityRegistry()
	if err := r.load(openaiCapabilitiesYAML); err != nil {
		// Lookups fall back to name-based inference.
		logrus.WithError(err).Warn("embedded OpenAI capabilities are unreadable")
	}
	return r
})

// GetCapabilityRegistry returns the process-wide registry, seeded with the
// embedded OpenAI table.
func GetCapabilityRegistry() *CapabilityRegistry { return defaultRegistry() }

func (r *CapabilityRegistry) load(data []byte) error {
	caps := new(ProviderCapabilities)
	if err := yaml.Unmarshal(data, caps); err != nil {
		return fmt.Errorf("parse capabilities: %w", err)
	}
	if caps.Provider == "" {
		return fmt.Errorf("parse capabilities: provider is required")
	}
	r.RegisterProviderCapabilities(caps.Provider, caps)
	return nil
}

func (r *CapabilityRegistry) GetProviderCapabilities(provider string) (*ProviderCapabilities, error) {
	r.mu.RLock()
	caps, ok := r.capabilities[provider]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no capabilities registered for %s", provider)
	}
	return caps, nil
}

// GetModelCapability looks model up by exact name, then as a dated snapshot
// of the longest listed name it extends ("gpt-5-mini-2025-08-07" finds
// "gpt-5-mini").
func (r *CapabilityRegistry) GetModelCapability(provider, model string) (*ModelCapability, error) {
	caps, err := r.GetProviderCapabilities(provider)
	if err != nil {
		return nil, err
	}

	key := model
	if _, ok := caps.Models[key]; !ok {
		key = ""
		for name := range caps.Models {
			if len(name) > len(key) && strings.HasPrefix(model, name+"-") {
				key = name
			}
		}
	}
	mc, ok := caps.Models[key]
	if !ok {
		return nil, fmt.Errorf("%s lists no model %s", provider, model)
	}
	return &mc, nil
}

func (r *CapabilityRegistry) SupportsModel(provider, model string) bool {
	_, err := r.GetModelCapability(provider, model)
	return err == nil
}

func (r *CapabilityRegistry) SupportsTools(provider, model string) bool {
	mc, err := r.GetModelCapability(provider, model)
	return err == nil && mc.Features.Tools
}

var reasoningPrefixes = []string{"o1", "o3", "o4", "gpt-5", "codex-"}

// IsReasoningModel reports whether model emits reasoning items. Unlisted
// models are judged by name; the gpt-5 chat variants do not reason.
func (r *CapabilityRegistry) IsReasoningModel(provider, model string) bool {
	if mc, err := r.GetModelCapability(provider, model); err == nil {
		return mc.Features.Reasoning
	}
	if strings.HasPrefix(model, "gpt-5-chat") {
		return false
	}
	for _, p := range reasoningPrefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// GetSystemMessageMode returns one of the SystemMessageMode constants.
func (r *CapabilityRegistry) GetSystemMessageMode(provider, model string) string {
	if mc, err := r.GetModelCapability(provider, model); err == nil && mc.SystemMessageMode != "" {
		return mc.SystemMessageMode
	}
	if r.IsReasoningModel(provider, model) {
		return SystemMessageModeDeveloper
	}
	return SystemMessageModeSystem
}

func (r *CapabilityRegistry) GetToolCapability(provider, model, toolID string) (*ToolCapability, error) {
	mc, err := r.GetModelCapability(provider, model)
	if err != nil {
		return nil, err
	}
	for i := range mc.Tools {
		if mc.Tools[i].Name == toolID {
			return &mc.Tools[i], nil
		}
	}
	return nil, fmt.Errorf("%s does not list tool %s", model, toolID)
}

// LoadCapabilitiesFromFile reads a YAML file in the embedded format and
// replaces the entry for the provider it names.
func (r *CapabilityRegistry) LoadCapabilitiesFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read capabilities: %w", err)
	}
	return r.load(data)
}

func (r *CapabilityRegistry) RegisterProviderCapabilities(provider string, caps *ProviderCapabilities) {
	r.mu.Lock()
	r.capabilities[provider] = caps
	r.mu.Unlock()
}

// LoadCapabilitiesFromFile loads into the process-wide registry.
func LoadCapabilitiesFromFile(path string) error {
	return GetCapabilityRegistry().LoadCapabilitiesFromFile(path)
}

// RegisterProviderCapabilities registers into the process-wide registry.
func RegisterProviderCapabilities(provider string, caps *ProviderCapabilities) {
	GetCapabilityRegistry().RegisterProviderCapabilities(provider, caps)
}
