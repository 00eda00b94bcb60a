package llmprovider

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ToolDefinition describes a built-in Responses API tool.
type ToolDefinition struct {
	ID            string        // e.g. "openai.web_search"
	ProviderName  string        // tool type on the wire, e.g. "web_search"
	ItemType      string        // output item type of its calls, e.g. "web_search_call"
	ExecutionSide ExecutionSide
	Description   string

	// Aliases are extra names MapToolByName accepts.
	Aliases []string
}

// New returns a provider tool for d configured with args.
func (d ToolDefinition) New(args map[string]interface{}) *Tool {
	return &Tool{Type: ToolTypeProvider, Provider: &ProviderToolSpec{ID: d.ID, Args: args}}
}

// ToolRegistry indexes tool definitions by id, wire name, item type and
// alias. Safe for concurrent use.
type ToolRegistry struct {
	mu     sync.RWMutex
	byID   map[string]ToolDefinition
	byName map[string]string // wire name or alias -> id
	byItem map[string]string // item type -> id
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		byID:   make(map[string]ToolDefinition),
		byName: make(map[string]string),
		byItem: make(map[string]string),
	}
}

var builtInTools = []ToolDefinition{
	{ID: ToolIDWebSearch, ProviderName: "web_search", ItemType: "web_search_call", Description: "Web search", Aliases: []string{"search"}},
	{ID: ToolIDFileSearch, ProviderName: "file_search", ItemType: "file_search_call", Description: "Vector store search"},
	{ID: ToolIDCodeInterpreter, ProviderName: "code_interpreter", ItemType: "code_interpreter_call", Description: "Python sandbox", Aliases: []string{"code_exec"}},
	{ID: ToolIDImageGeneration, ProviderName: "image_generation", ItemType: "image_generation_call", Description: "Image generation"},
	{ID: ToolIDLocalShell, ProviderName: "local_shell", ItemType: "local_shell_call", Description: "Local shell commands"},
	{ID: ToolIDShell, ProviderName: "shell", ItemType: "shell_call", Description: "Hosted shell commands"},
	{ID: ToolIDComputerUse, ProviderName: "computer_use_preview", ItemType: "computer_call", Description: "Computer use actions"},
	{ID: ToolIDMCP, ProviderName: "mcp", ItemType: "mcp_call", Description: "Remote MCP server tools"},
}

var defaultToolRegistry = sync.OnceValue(func() *ToolRegistry {
	r := NewToolRegistry()
	for _, def := range builtInTools {
		// Every built-in call item is reported by the API, never run locally.
		def.ExecutionSide = ExecutionSideServer
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
})

// GetToolRegistry returns the process-wide registry of built-in tools.
func GetToolRegistry() *ToolRegistry { return defaultToolRegistry() }

// Register adds def. Ids, wire names, aliases and item types must all be
// unused.
func (r *ToolRegistry) Register(def ToolDefinition) error {
	if def.ID == "" || def.ProviderName == "" {
		return errors.New("tool definition needs an id and a provider name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byID[def.ID]; dup {
		return fmt.Errorf("tool %s is already registered", def.ID)
	}
	names := append([]string{def.ProviderName}, def.Aliases...)
	for _, n := range names {
		if owner, dup := r.byName[n]; dup {
			return fmt.Errorf("tool name %s already belongs to %s", n, owner)
		}
	}
	if owner, dup := r.byItem[def.ItemType]; dup && def.ItemType != "" {
		return fmt.Errorf("item type %s already belongs to %s", def.ItemType, owner)
	}

	r.byID[def.ID] = def
	for _, n := range names {
		r.byName[n] = def.ID
	}
	if def.ItemType != "" {
		r.byItem[def.ItemType] = def.ID
	}
	return nil
}

func (r *ToolRegistry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("tool %s is not registered", id)
	}
	delete(r.byID, id)
	delete(r.byItem, def.ItemType)
	delete(r.byName, def.ProviderName)
	for _, a := range def.Aliases {
		delete(r.byName, a)
	}
	return nil
}

func (r *ToolRegistry) Get(id string) (ToolDefinition, error) {
	r.mu.RLock()
	def, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return ToolDefinition{}, fmt.Errorf("unknown tool: %s", id)
	}
	return def, nil
}

func (r *ToolRegistry) lookup(index map[string]string, key string) (ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := index[key]
	if !ok {
		return ToolDefinition{}, false
	}
	return r.byID[id], true
}

// GetByItemType finds the tool whose calls arrive as output items of itemType.
func (r *ToolRegistry) GetByItemType(itemType string) (ToolDefinition, bool) {
	return r.lookup(r.byItem, itemType)
}

// GetByProviderName finds a tool by wire name or alias.
func (r *ToolRegistry) GetByProviderName(name string) (ToolDefinition, bool) {
	return r.lookup(r.byName, name)
}

func (r *ToolRegistry) IsRegistered(id string) bool {
	_, err := r.Get(id)
	return err == nil
}

// List returns the registered ids in sorted order.
func (r *ToolRegistry) List() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Create returns an unconfigured tool for id.
func (r *ToolRegistry) Create(id string) (*Tool, error) {
	def, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return def.New(nil), nil
}

// RegisterTool registers def with the process-wide registry.
func RegisterTool(def ToolDefinition) error { return GetToolRegistry().Register(def) }

// CreateTool creates an unconfigured tool from the process-wide registry.
func CreateTool(id string) (*Tool, error) { return GetToolRegistry().Create(id) }
