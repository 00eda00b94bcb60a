package llmprovider

import (
	"errors"
	"fmt"
)

const (
	ToolTypeFunction = "function" // defined and executed by the caller
	ToolTypeProvider = "provider" // built into the API: web search, code interpreter, ...
)

// Built-in tool ids, as registered in the ToolRegistry.
const (
	ToolIDWebSearch       = "openai.web_search"
	ToolIDFileSearch      = "openai.file_search"
	ToolIDCodeInterpreter = "openai.code_interpreter"
	ToolIDImageGeneration = "openai.image_generation"
	ToolIDLocalShell      = "openai.local_shell"
	ToolIDShell           = "openai.shell"
	ToolIDComputerUse     = "openai.computer_use"
	ToolIDMCP             = "openai.mcp"
)

// ExecutionSide records who ran a tool call.
type ExecutionSide string

const (
	ExecutionSideServer ExecutionSide = "server"
	ExecutionSideClient ExecutionSide = "client"
)

type ToolChoiceMode string

const (
	ToolChoiceModeAuto     ToolChoiceMode = "auto"
	ToolChoiceModeRequired ToolChoiceMode = "required"
	ToolChoiceModeNone     ToolChoiceMode = "none"
	ToolChoiceModeSpecific ToolChoiceMode = "specific" // call ToolChoice.ToolName
)

type FunctionDetails struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON schema, type object
	Strict      *bool                  `json:"strict,omitempty"`
}

// ProviderToolSpec selects and configures a built-in tool.
type ProviderToolSpec struct {
	ID string `json:"id"` // ToolID constant

	// Name renames the tool for the caller; calls are reported under it.
	// Empty keeps the wire name.
	Name string `json:"name,omitempty"`

	// Args become the tool's options on the wire (search_context_size,
	// vector_store_ids, container, ...).
	Args map[string]interface{} `json:"args,omitempty"`
}

// Tool is a function tool or a built-in provider tool.
type Tool struct {
	Type     string            `json:"type"`
	Function FunctionDetails   `json:"function,omitempty"`
	Provider *ProviderToolSpec `json:"provider,omitempty"`
}

// Name is the name calls to this tool are reported under.
func (t *Tool) Name() string {
	if t.Type != ToolTypeProvider || t.Provider == nil {
		return t.Function.Name
	}
	switch def, err := GetToolRegistry().Get(t.Provider.ID); {
	case t.Provider.Name != "":
		return t.Provider.Name
	case err == nil:
		return def.ProviderName
	default:
		return t.Provider.ID
	}
}

func (t *Tool) Validate() error {
	switch t.Type {
	case ToolTypeFunction:
		fn := t.Function
		if fn.Name == "" {
			return errors.New("function name is required")
		}
		if typ, _ := fn.Parameters["type"].(string); typ != "object" {
			return errors.New("function parameters must be a JSON schema of type object")
		}
		return nil
	case ToolTypeProvider:
		if t.Provider == nil || t.Provider.ID == "" {
			return errors.New("provider tool id is required")
		}
		if !GetToolRegistry().IsRegistered(t.Provider.ID) {
			return fmt.Errorf("unknown provider tool: %s", t.Provider.ID)
		}
		return nil
	case "":
		return errors.New("tool type is required")
	}
	return fmt.Errorf("unsupported tool type %q", t.Type)
}

// ToolChoice constrains which tool the model calls.
type ToolChoice struct {
	Mode     ToolChoiceMode
	ToolName *string // set iff Mode is ToolChoiceModeSpecific
}

func (tc *ToolChoice) Validate() error {
	switch tc.Mode {
	case ToolChoiceModeAuto, ToolChoiceModeRequired, ToolChoiceModeNone:
		return nil
	case ToolChoiceModeSpecific:
		if tc.ToolName == nil || *tc.ToolName == "" {
			return errors.New("a specific tool choice needs a tool name")
		}
		return nil
	}
	return fmt.Errorf("invalid tool choice mode: %s", tc.Mode)
}

func NewToolChoice(mode ToolChoiceMode) (*ToolChoice, error) {
	tc := &ToolChoice{Mode: mode}
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	return tc, nil
}

// NewSpecificToolChoice forces a call to the tool with the caller-facing name.
func NewSpecificToolChoice(toolName string) (*ToolChoice, error) {
	tc := &ToolChoice{Mode: ToolChoiceModeSpecific, ToolName: &toolName}
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	return tc, nil
}

// MapToolByName returns an unconfigured built-in tool for a wire name
// ("web_search") or alias ("search", "code_exec").
func MapToolByName(name string) (*Tool, error) {
	def, ok := GetToolRegistry().GetByProviderName(name)
	if !ok {
		return nil, fmt.Errorf("unknown built-in tool: %s", name)
	}
	return def.New(nil), nil
}

// NewProviderTool returns a built-in tool. name overrides the name its
// calls are reported under; args are sent to the API as tool options.
func NewProviderTool(id, name string, args map[string]interface{}) (*Tool, error) {
	tool := &Tool{Type: ToolTypeProvider, Provider: &ProviderToolSpec{ID: id, Name: name, Args: args}}
	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("provider tool %s: %w", id, err)
	}
	return tool, nil
}

// NewWebSearchTool takes a search_context_size of low, medium or high; empty
// keeps the API default.
func NewWebSearchTool(contextSize string) (*Tool, error) {
	var args map[string]interface{}
	if contextSize != "" {
		args = map[string]interface{}{"search_context_size": contextSize}
	}
	return NewProviderTool(ToolIDWebSearch, "", args)
}

func NewFileSearchTool(vectorStoreIDs ...string) (*Tool, error) {
	if len(vectorStoreIDs) == 0 {
		return nil, errors.New("file search needs at least one vector store id")
	}
	return NewProviderTool(ToolIDFileSearch, "", map[string]interface{}{"vector_store_ids": vectorStoreIDs})
}

// NewCodeInterpreterTool runs in containerID, or in an automatic container
// when it is empty.
func NewCodeInterpreterTool(containerID string) (*Tool, error) {
	var container interface{} = map[string]interface{}{"type": "auto"}
	if containerID != "" {
		container = containerID
	}
	return NewProviderTool(ToolIDCodeInterpreter, "", map[string]interface{}{"container": container})
}

func NewImageGenerationTool() (*Tool, error) {
	return NewProviderTool(ToolIDImageGeneration, "", nil)
}

// NewCustomTool returns a function tool the caller executes. parameters
// must be a JSON schema object:
//
//	map[string]interface{}{
//		"type": "object",
//		"properties": map[string]interface{}{
//			"city": map[string]interface{}{"type": "string"},
//		},
//		"required": []string{"city"},
//	}
func NewCustomTool(name, description string, parameters map[string]interface{}) (*Tool, error) {
	if description == "" {
		return nil, errors.New("tool description is required")
	}
	tool := &Tool{
		Type:     ToolTypeFunction,
		Function: FunctionDetails{Name: name, Description: description, Parameters: parameters},
	}
	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("function tool %q: %w", name, err)
	}
	return tool, nil
}
