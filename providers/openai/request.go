package openai

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/tidwall/sjson"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

// ResponsesRequest is the body of POST /responses.
type ResponsesRequest struct {
	Model              string            `json:"model"`
	Input              []InputItem       `json:"input"`
	MaxOutputTokens    *int              `json:"max_output_tokens,omitempty"`
	Temperature        *float64          `json:"temperature,omitempty"`
	TopP               *float64          `json:"top_p,omitempty"`
	Store              *bool             `json:"store,omitempty"`
	PreviousResponseID *string           `json:"previous_response_id,omitempty"`
	Include            []string          `json:"include,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	Reasoning          *ReasoningConfig  `json:"reasoning,omitempty"`
	Text               *TextConfig       `json:"text,omitempty"`
	Tools              []json.RawMessage `json:"tools,omitempty"`
	ToolChoice         any               `json:"tool_choice,omitempty"` // "auto", "none", "required", or an object
	ParallelToolCalls  *bool             `json:"parallel_tool_calls,omitempty"`
	MaxToolCalls       *int              `json:"max_tool_calls,omitempty"`
	ServiceTier        *string           `json:"service_tier,omitempty"`
	User               *string           `json:"user,omitempty"`
	Stream             bool              `json:"stream,omitempty"`
}

// InputItem is one element of the request input. Which fields are set depends on Type.
type InputItem struct {
	Type string `json:"type,omitempty"` // "message", "function_call", "function_call_output", "reasoning", "item_reference"
	ID   string `json:"id,omitempty"`

	// message
	Role    string         `json:"role,omitempty"`
	Content []InputContent `json:"content,omitempty"`

	// function_call, function_call_output
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`

	// reasoning; the API requires the summary field even when empty
	Summary          *[]SummaryPart `json:"summary,omitempty"`
	EncryptedContent *string        `json:"encrypted_content,omitempty"`
}

// InputContent is one content part of an input message.
type InputContent struct {
	Type     string `json:"type"` // "input_text", "output_text", "input_image", "input_file"
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	FileID   string `json:"file_id,omitempty"`
	FileData string `json:"file_data,omitempty"`
	FileURL  string `json:"file_url,omitempty"`
	Filename string `json:"filename,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type ReasoningConfig struct {
	Effort  *string `json:"effort,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

type TextConfig struct {
	Format    *TextFormat `json:"format,omitempty"`
	Verbosity *string     `json:"verbosity,omitempty"`
}

type TextFormat struct {
	Type        string `json:"type"` // "text", "json_object", "json_schema"
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Schema      any    `json:"schema,omitempty"`
	Strict      *bool  `json:"strict,omitempty"`
}

const includeEncryptedReasoning = "reasoning.encrypted_content"

// requestBuilder carries the per-request state of BuildRequest.
type requestBuilder struct {
	provider   llmprovider.ProviderID
	params     *llmprovider.RequestParams
	store      bool
	reasoning  bool
	systemMode string
	warnings   []llmprovider.ValidationWarning
}

// BuildRequest converts a GenerateRequest into the Responses API body.
// Settings the API cannot honor are dropped and reported as warnings.
// Media it cannot accept fail with *llmprovider.UnsupportedMediaError.
func BuildRequest(req *llmprovider.GenerateRequest) (*ResponsesRequest, []llmprovider.ValidationWarning, error) {
	return buildRequest(llmprovider.ProviderOpenAI, req)
}

func buildRequest(provider llmprovider.ProviderID, req *llmprovider.GenerateRequest) (*ResponsesRequest, []llmprovider.ValidationWarning, error) {
	params := req.GetParams()
	if err := llmprovider.ValidateRequestParams(params); err != nil {
		return nil, nil, err
	}

	model := req.Model
	if model == "" && params.Model != nil {
		model = *params.Model
	}

	registry := llmprovider.GetCapabilityRegistry()
	b := &requestBuilder{
		provider:   provider,
		params:     params,
		store:      params.GetStore(true),
		reasoning:  registry.IsReasoningModel(llmprovider.ProviderOpenAI.String(), model),
		systemMode: registry.GetSystemMessageMode(llmprovider.ProviderOpenAI.String(), model),
	}

	input, err := b.convertMessages(req.Messages)
	if err != nil {
		return nil, nil, err
	}

	out := &ResponsesRequest{
		Model:              model,
		Input:              input,
		MaxOutputTokens:    params.MaxTokens,
		Store:              params.Store,
		PreviousResponseID: params.PreviousResponseID,
		Include:            slices.Clone(params.Include),
		Metadata:           params.Metadata,
		ParallelToolCalls:  params.ParallelToolCalls,
		MaxToolCalls:       params.MaxToolCalls,
		ServiceTier:        params.ServiceTier,
		User:               params.User,
	}

	b.applySampling(out)
	b.applyReasoning(out)
	b.applyTextFormat(out)
	b.warnUnsupported()

	if out.Tools, err = convertTools(params.Tools); err != nil {
		return nil, nil, err
	}
	if params.ToolChoice != nil {
		out.ToolChoice = convertToolChoice(params.ToolChoice, llmprovider.NewToolNameMapping(params.Tools))
	}

	return out, b.warnings, nil
}

func (b *requestBuilder) warn(code llmprovider.WarningCode, category, field string, value any, msg string) {
	b.warnings = append(b.warnings, llmprovider.ValidationWarning{
		Code:     code,
		Category: category,
		Field:    field,
		Value:    value,
		Message:  msg,
		Severity: llmprovider.SeverityWarning,
	})
}

// applySampling copies temperature and top_p, which reasoning models reject.
func (b *requestBuilder) applySampling(out *ResponsesRequest) {
	if !b.reasoning {
		out.Temperature = b.params.Temperature
		out.TopP = b.params.TopP
		return
	}
	if b.params.Temperature != nil {
		b.warn(llmprovider.WarningCodeParameterUnsupported, "parameter", "temperature", *b.params.Temperature,
			"temperature is not supported for reasoning models and was dropped")
	}
	if b.params.TopP != nil {
		b.warn(llmprovider.WarningCodeParameterUnsupported, "parameter", "top_p", *b.params.TopP,
			"top_p is not supported for reasoning models and was dropped")
	}
}

func (b *requestBuilder) applyReasoning(out *ResponsesRequest) {
	if !b.reasoning {
		// the validation engine reports reasoning options on non-reasoning models
		return
	}
	if b.params.HasReasoning() {
		out.Reasoning = &ReasoningConfig{
			Effort:  b.params.ReasoningEffort,
			Summary: b.params.ReasoningSummary,
		}
	}
	if !b.store && !slices.Contains(out.Include, includeEncryptedReasoning) {
		out.Include = append(out.Include, includeEncryptedReasoning)
	}
}

func (b *requestBuilder) applyTextFormat(out *ResponsesRequest) {
	var text TextConfig
	if rf := b.params.ResponseFormat; rf != nil {
		format := &TextFormat{Type: rf.Type}
		if rf.Type == "json_schema" {
			format.Name = rf.Name
			if format.Name == "" {
				format.Name = "response"
			}
			format.Description = rf.Description
			format.Schema = rf.JSONSchema
			format.Strict = rf.Strict
		}
		text.Format = format
	}
	text.Verbosity = b.params.TextVerbosity
	if text.Format != nil || text.Verbosity != nil {
		out.Text = &text
	}
}

func (b *requestBuilder) warnUnsupported() {
	p := b.params
	if p.TopK != nil {
		b.warn(llmprovider.WarningCodeParameterUnsupported, "parameter", "top_k", *p.TopK, "top_k is not supported and was dropped")
	}
	if len(p.Stop) > 0 {
		b.warn(llmprovider.WarningCodeParameterUnsupported, "parameter", "stop", p.Stop, "stop sequences are not supported and were dropped")
	}
	if p.Seed != nil {
		b.warn(llmprovider.WarningCodeParameterUnsupported, "parameter", "seed", *p.Seed, "seed is not supported and was dropped")
	}
	if p.FrequencyPenalty != nil {
		b.warn(llmprovider.WarningCodeParameterUnsupported, "parameter", "frequency_penalty", *p.FrequencyPenalty, "frequency_penalty is not supported and was dropped")
	}
	if p.PresencePenalty != nil {
		b.warn(llmprovider.WarningCodeParameterUnsupported, "parameter", "presence_penalty", *p.PresencePenalty, "presence_penalty is not supported and was dropped")
	}
}

// ===== Messages =====

func (b *requestBuilder) convertMessages(messages []llmprovider.Message) ([]InputItem, error) {
	var items []InputItem

	if b.params.System != nil && *b.params.System != "" {
		if item, ok := b.systemItem(*b.params.System); ok {
			items = append(items, item)
		}
	}

	for i, msg := range llmprovider.PrepareReplay(messages, b.provider) {
		var (
			converted []InputItem
			err       error
		)
		switch msg.Role {
		case llmprovider.RoleSystem, llmprovider.RoleDeveloper:
			if item, ok := b.systemItem(blocksText(msg.Blocks)); ok {
				converted = []InputItem{item}
			}
		case llmprovider.RoleUser:
			converted, err = b.convertUserMessage(msg)
		case llmprovider.RoleAssistant:
			converted = b.convertAssistantMessage(msg)
		default:
			err = fmt.Errorf("message %d: unsupported role %q", i, msg.Role)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, converted...)
	}
	return items, nil
}

// systemItem sends a system prompt with the role the model expects.
func (b *requestBuilder) systemItem(text string) (InputItem, bool) {
	switch b.systemMode {
	case llmprovider.SystemMessageModeRemove:
		b.warn(llmprovider.WarningCodeSystemMessageRemoved, "message", "system", nil,
			"system messages are not supported by this model and were removed")
		return InputItem{}, false
	case llmprovider.SystemMessageModeDeveloper:
		return InputItem{Role: llmprovider.RoleDeveloper, Content: []InputContent{{Type: "input_text", Text: text}}}, true
	default:
		return InputItem{Role: llmprovider.RoleSystem, Content: []InputContent{{Type: "input_text", Text: text}}}, true
	}
}

func blocksText(blocks []*llmprovider.Block) string {
	var parts []string
	for _, block := range blocks {
		if block.BlockType == llmprovider.BlockTypeText {
			parts = append(parts, block.GetText())
		}
	}
	return strings.Join(parts, "\n")
}

// convertUserMessage groups content blocks into one user message. Tool results
// become function_call_output items and split the message around them.
func (b *requestBuilder) convertUserMessage(msg llmprovider.Message) ([]InputItem, error) {
	var items []InputItem
	var content []InputContent

	flush := func() {
		if len(content) > 0 {
			items = append(items, InputItem{Role: llmprovider.RoleUser, Content: content})
			content = nil
		}
	}

	for i, block := range msg.Blocks {
		switch block.BlockType {
		case llmprovider.BlockTypeText:
			content = append(content, InputContent{Type: "input_text", Text: block.GetText()})
		case llmprovider.BlockTypeImage:
			c, err := imageContent(block)
			if err != nil {
				return nil, err
			}
			content = append(content, c)
		case llmprovider.BlockTypeDocument:
			c, err := fileContent(block, i)
			if err != nil {
				return nil, err
			}
			content = append(content, c)
		case llmprovider.BlockTypeToolResult:
			flush()
			callID, _ := block.GetToolUseID()
			items = append(items, InputItem{
				Type:   "function_call_output",
				CallID: callID,
				Output: block.GetText(),
			})
		default:
			b.warn(llmprovider.WarningCodeContentDropped, "message", "blocks", block.BlockType,
				fmt.Sprintf("%s blocks are not supported in user messages and were dropped", block.BlockType))
		}
	}
	flush()
	return items, nil
}

func imageContent(block *llmprovider.Block) (InputContent, error) {
	mediaType, _ := block.GetString("mime_type")
	if mediaType != "" && !strings.HasPrefix(mediaType, "image/") {
		return InputContent{}, &llmprovider.UnsupportedMediaError{
			MediaType:     mediaType,
			Functionality: "image blocks must carry an image media type",
		}
	}
	if mediaType == "" || mediaType == "image/*" {
		mediaType = "image/jpeg"
	}

	c := InputContent{Type: "input_image"}
	if detail, ok := block.GetString("detail"); ok {
		c.Detail = detail
	}
	switch {
	case hasString(block, "file_id"):
		c.FileID, _ = block.GetString("file_id")
	case hasString(block, "url"):
		c.ImageURL, _ = block.GetString("url")
	case hasString(block, "data"):
		data, _ := block.GetString("data")
		c.ImageURL = "data:" + mediaType + ";base64," + data
	default:
		return InputContent{}, fmt.Errorf("%w: image block needs url, data or file_id", llmprovider.ErrInvalidRequest)
	}
	return c, nil
}

func fileContent(block *llmprovider.Block, index int) (InputContent, error) {
	mediaType, _ := block.GetString("mime_type")
	if mediaType != "application/pdf" {
		return InputContent{}, &llmprovider.UnsupportedMediaError{
			MediaType:     mediaType,
			Functionality: "only PDF documents are accepted as file input",
		}
	}

	c := InputContent{Type: "input_file"}
	switch {
	case hasString(block, "file_id"):
		c.FileID, _ = block.GetString("file_id")
	case hasString(block, "url"):
		c.FileURL, _ = block.GetString("url")
	case hasString(block, "data"):
		data, _ := block.GetString("data")
		c.FileData = "data:application/pdf;base64," + data
		c.Filename, _ = block.GetString("filename")
		if c.Filename == "" {
			c.Filename = fmt.Sprintf("part-%d.pdf", index)
		}
	default:
		return InputContent{}, fmt.Errorf("%w: document block needs url, data or file_id", llmprovider.ErrInvalidRequest)
	}
	return c, nil
}

func hasString(block *llmprovider.Block, key string) bool {
	v, ok := block.GetString(key)
	return ok && v != ""
}

// convertAssistantMessage replays assistant output. Stored items are sent as
// item references; with store=false reasoning is sent back in full using its
// encrypted content.
func (b *requestBuilder) convertAssistantMessage(msg llmprovider.Message) []InputItem {
	var items []InputItem
	var content []InputContent
	reasoningIdx := make(map[string]int)

	flush := func() {
		if len(content) > 0 {
			items = append(items, InputItem{Type: "message", Role: llmprovider.RoleAssistant, Content: content})
			content = nil
		}
	}

	for _, block := range msg.Blocks {
		switch block.BlockType {
		case llmprovider.BlockTypeText:
			content = append(content, InputContent{Type: "output_text", Text: block.GetText()})

		case llmprovider.BlockTypeToolUse:
			flush()
			callID, _ := block.GetToolUseID()
			if block.IsServerSideTool() {
				if b.store {
					items = append(items, InputItem{Type: "item_reference", ID: callID})
				} else {
					b.warn(llmprovider.WarningCodeContentDropped, "message", "blocks", callID,
						"provider-executed tool calls can only be replayed with store=true and were dropped")
				}
				continue
			}
			name, _ := block.GetToolName()
			input, _ := block.GetToolInput()
			if input == nil {
				input = map[string]interface{}{}
			}
			args, err := json.Marshal(input)
			if err != nil {
				args = []byte("{}")
			}
			items = append(items, InputItem{
				Type:      "function_call",
				CallID:    callID,
				Name:      name,
				Arguments: string(args),
			})

		case llmprovider.BlockTypeThinking:
			flush()
			itemID, _ := block.GetString("item_id")
			if itemID == "" {
				b.warn(llmprovider.WarningCodeContentDropped, "message", "blocks", nil,
					"reasoning block without item_id was dropped")
				continue
			}

			if idx, seen := reasoningIdx[itemID]; seen {
				if items[idx].Summary != nil && block.GetText() != "" {
					*items[idx].Summary = append(*items[idx].Summary, SummaryPart{Type: "summary_text", Text: block.GetText()})
				}
				continue
			}

			if b.store {
				reasoningIdx[itemID] = len(items)
				items = append(items, InputItem{Type: "item_reference", ID: itemID})
				continue
			}

			encrypted, _ := block.GetString("encrypted_content")
			if encrypted == "" {
				b.warn(llmprovider.WarningCodeContentDropped, "message", "blocks", itemID,
					"reasoning without encrypted content cannot be replayed with store=false and was dropped")
				continue
			}
			summary := []SummaryPart{}
			if text := block.GetText(); text != "" {
				summary = append(summary, SummaryPart{Type: "summary_text", Text: text})
			}
			reasoningIdx[itemID] = len(items)
			items = append(items, InputItem{
				Type:             "reasoning",
				ID:               itemID,
				Summary:          &summary,
				EncryptedContent: &encrypted,
			})

		default:
			b.warn(llmprovider.WarningCodeContentDropped, "message", "blocks", block.BlockType,
				fmt.Sprintf("%s blocks are not supported in assistant messages and were dropped", block.BlockType))
		}
	}
	flush()
	return items
}

// ===== Tools =====

type functionToolJSON struct {
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
	Strict      *bool                  `json:"strict,omitempty"`
}

func convertTools(tools []llmprovider.Tool) ([]json.RawMessage, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	registry := llmprovider.GetToolRegistry()
	out := make([]json.RawMessage, 0, len(tools))
	for i := range tools {
		tool := &tools[i]
		switch tool.Type {
		case llmprovider.ToolTypeFunction:
			raw, err := json.Marshal(functionToolJSON{
				Type:        "function",
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
				Strict:      tool.Function.Strict,
			})
			if err != nil {
				return nil, fmt.Errorf("tool %d (%s): %w", i, tool.Name(), err)
			}
			out = append(out, raw)

		case llmprovider.ToolTypeProvider:
			def, err := registry.Get(tool.Provider.ID)
			if err != nil {
				return nil, fmt.Errorf("tool %d: %w", i, err)
			}
			raw, err := providerToolJSON(def.ProviderName, tool.Provider.Args)
			if err != nil {
				return nil, fmt.Errorf("tool %d (%s): %w", i, tool.Name(), err)
			}
			out = append(out, raw)

		default:
			return nil, fmt.Errorf("tool %d: unsupported tool type %q", i, tool.Type)
		}
	}
	return out, nil
}

// providerToolJSON writes {"type": vendorName} followed by args in key order.
func providerToolJSON(vendorName string, args map[string]interface{}) (json.RawMessage, error) {
	raw, err := sjson.Set("{}", "type", vendorName)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "type" {
			continue
		}
		if raw, err = sjson.Set(raw, escapePathKey(k), args[k]); err != nil {
			return nil, fmt.Errorf("arg %s: %w", k, err)
		}
	}
	return json.RawMessage(raw), nil
}

// escapePathKey makes a map key safe to use as a literal sjson path.
func escapePathKey(k string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)
	return r.Replace(k)
}

func convertToolChoice(tc *llmprovider.ToolChoice, names llmprovider.ToolNameMapper) any {
	switch tc.Mode {
	case llmprovider.ToolChoiceModeRequired:
		return "required"
	case llmprovider.ToolChoiceModeNone:
		return "none"
	case llmprovider.ToolChoiceModeSpecific:
		name := *tc.ToolName
		if vendor := names.ProviderName(name); vendor != name || isVendorToolName(name) {
			return map[string]interface{}{"type": vendor}
		}
		return map[string]interface{}{"type": "function", "name": name}
	default:
		return "auto"
	}
}

func isVendorToolName(name string) bool {
	def, ok := llmprovider.GetToolRegistry().GetByProviderName(name)
	return ok && def.ProviderName == name
}
