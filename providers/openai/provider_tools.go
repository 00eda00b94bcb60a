package openai

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

// isProviderToolItem reports whether the item type belongs to a registered
// provider-executed tool.
func isProviderToolItem(itemType string) bool {
	_, ok := llmprovider.GetToolRegistry().GetByItemType(itemType)
	return ok
}

// emitsCallOnAdd reports whether the tool call is announced as soon as the
// item is added. These tools take no streamed arguments.
func emitsCallOnAdd(itemType string) bool {
	switch itemType {
	case ItemTypeWebSearchCall, ItemTypeFileSearchCall, ItemTypeImageGenerationCall:
		return true
	default:
		return false
	}
}

func providerToolName(item *OutputItem, names llmprovider.ToolNameMapper) string {
	if item.Type == ItemTypeMCPCall {
		return "mcp." + item.Name
	}
	def, _ := llmprovider.GetToolRegistry().GetByItemType(item.Type)
	return names.CustomName(def.ProviderName)
}

// codeInterpreterArgsPrefix opens the JSON argument object of a code
// interpreter call up to the start of the code string.
func codeInterpreterArgsPrefix(containerID string) string {
	return `{"containerId":"` + escapeJSONString(containerID) + `","code":"`
}

const codeInterpreterArgsSuffix = `"}`

// escapeJSONString returns s encoded as the inside of a JSON string literal.
// Escaping is per character, so escaping chunks and concatenating them equals
// escaping the concatenation.
func escapeJSONString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return string(out[1 : len(out)-1])
}

// providerToolCall builds the ToolCallPart for a provider-executed item.
func providerToolCall(item *OutputItem, names llmprovider.ToolNameMapper) (llmprovider.ToolCallPart, error) {
	name := providerToolName(item, names)
	call := llmprovider.ToolCallPart{
		ID:               item.ID,
		Name:             name,
		ProviderExecuted: true,
		Metadata:         llmprovider.Metadata{ItemID: item.ID},
	}

	var err error
	switch item.Type {
	case ItemTypeCodeInterpreterCall:
		args := codeInterpreterArgsPrefix(item.ContainerID) + escapeJSONString(item.Code) + codeInterpreterArgsSuffix
		call.Params, err = llmprovider.ParseToolArguments(item.ID, name, args)
	case ItemTypeMCPCall:
		call.Params, err = llmprovider.ParseToolArguments(item.ID, name, item.Arguments)
	case ItemTypeComputerCall, ItemTypeLocalShellCall, ItemTypeShellCall:
		call.Params = map[string]any{"action": rawValue(item.Action)}
	default:
		call.Params = map[string]any{}
	}
	if err != nil {
		return llmprovider.ToolCallPart{}, err
	}
	return call, nil
}

// providerToolResult builds the ToolResultPart for a finished provider-executed item.
func providerToolResult(item *OutputItem, names llmprovider.ToolNameMapper) llmprovider.ToolResultPart {
	result := map[string]any{"status": item.Status}
	failed := item.Status == StatusFailed

	switch item.Type {
	case ItemTypeWebSearchCall:
		result["action"] = rawValue(item.Action)
	case ItemTypeFileSearchCall:
		queries := make([]any, 0, len(item.Queries))
		for _, q := range item.Queries {
			queries = append(queries, q)
		}
		result["queries"] = queries
		result["results"] = rawValue(item.Results)
	case ItemTypeCodeInterpreterCall:
		result["outputs"] = rawValue(item.Outputs)
	case ItemTypeImageGenerationCall:
		if item.Result != nil {
			result["result"] = *item.Result
		}
	case ItemTypeComputerCall:
		result["pendingSafetyChecks"] = rawValue(item.PendingSafetyChecks)
	case ItemTypeMCPCall:
		result["serverLabel"] = item.ServerLabel
		result["name"] = item.Name
		result["arguments"] = item.Arguments
		if item.Output != nil {
			result["output"] = *item.Output
		}
		if item.Error != nil && *item.Error != "" {
			result["error"] = *item.Error
			failed = true
		}
	}

	return llmprovider.ToolResultPart{
		ID:               item.ID,
		Name:             providerToolName(item, names),
		IsFailure:        failed,
		Result:           result,
		ProviderExecuted: true,
	}
}

// rawValue decodes vendor-provided JSON into plain Go values; empty input is nil.
func rawValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return gjson.ParseBytes(raw).Value()
}
