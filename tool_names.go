package llmprovider

// ToolNameMapper translates between caller-facing tool names and the names
// the provider uses for its own tools.
type ToolNameMapper interface {
	// ProviderName returns the vendor tool name for a caller name.
	ProviderName(customName string) string
	// CustomName returns the caller name for a vendor tool name.
	CustomName(providerName string) string
}

// ToolNameMapping is the ToolNameMapper built from a request's tool list.
// Names with no mapping pass through unchanged. A nil mapping is valid.
type ToolNameMapping struct {
	toProvider map[string]string
	toCustom   map[string]string
}

// NewToolNameMapping maps each provider tool's caller-facing name to the vendor
// name recorded in the tool registry. Function tools keep their own names.
func NewToolNameMapping(tools []Tool) *ToolNameMapping {
	m := &ToolNameMapping{
		toProvider: make(map[string]string),
		toCustom:   make(map[string]string),
	}
	registry := GetToolRegistry()
	for _, tool := range tools {
		if tool.Type != ToolTypeProvider || tool.Provider == nil {
			continue
		}
		def, err := registry.Get(tool.Provider.ID)
		if err != nil {
			continue
		}
		custom := tool.Provider.Name
		if custom == "" {
			custom = def.ProviderName
		}
		m.toProvider[custom] = def.ProviderName
		m.toCustom[def.ProviderName] = custom
	}
	return m
}

// ProviderName returns the vendor tool name for a caller name.
func (m *ToolNameMapping) ProviderName(customName string) string {
	if m != nil {
		if name, ok := m.toProvider[customName]; ok {
			return name
		}
	}
	return customName
}

// CustomName returns the caller name for a vendor tool name.
func (m *ToolNameMapping) CustomName(providerName string) string {
	if m != nil {
		if name, ok := m.toCustom[providerName]; ok {
			return name
		}
	}
	return providerName
}
