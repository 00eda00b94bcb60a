package lorem

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/sirupsen/logrus"

	llmprovider "github.com/haowjy/meridian-responses-go"
	"github.com/haowjy/meridian-responses-go/providers/openai"
)

// Provider is a mock provider that answers with lorem ipsum.
//
// It builds a Responses API response object and runs it through the same
// converters as the real provider, so callers exercise the real part model
// without an API key. Reasoning summaries are added when reasoning options are
// set, a function call when a function tool is offered, and a web search call
// with a URL citation when the web search tool is offered.
//
// Models: lorem-fast, lorem-medium, lorem-slow set the streaming speed;
// lorem-cutoff stops early with finish reason "length".
type Provider struct {
	generator     *loremgen.Lorem
	logger        *logrus.Entry
	ids           llmprovider.IDGenerator
	generateDelay time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) Option {
	return func(p *Provider) { p.logger = l }
}

// WithIDGenerator sets the generator for response and item ids.
func WithIDGenerator(g llmprovider.IDGenerator) Option {
	return func(p *Provider) { p.ids = g }
}

// WithGenerateDelay sets the simulated latency of GenerateResponse (default 2s).
func WithGenerateDelay(d time.Duration) Option {
	return func(p *Provider) { p.generateDelay = d }
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		generator:     loremgen.New(),
		ids:           llmprovider.UUIDGenerator{},
		generateDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logrus.NewEntry(logrus.StandardLogger()).WithField("provider", p.Name().String())
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() llmprovider.ProviderID {
	return llmprovider.ProviderLorem
}

// SupportsModel returns true if the model name starts with "lorem-".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// GenerateResponse returns a complete response after the configured delay.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error) {
	if err := p.checkModel(req.Model); err != nil {
		return nil, err
	}

	select {
	case <-time.After(p.generateDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	resp := p.buildResponse(req)
	parts, err := openai.ConvertResponse(resp, p.convertOptions(req))
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"model":  req.Model,
		"status": resp.Status,
		"items":  len(resp.Output),
	}).Info("lorem response generated")

	return &llmprovider.GenerateResponse{Parts: parts}, nil
}

// StreamResponse replays a generated response as a stream, pacing deltas by
// the model's speed. Cancelling ctx ends the stream with ctx.Err().
func (p *Provider) StreamResponse(ctx context.Context, req *llmprovider.GenerateRequest) (llmprovider.PartStream, error) {
	if err := p.checkModel(req.Model); err != nil {
		return nil, err
	}

	resp := p.buildResponse(req)
	p.logger.WithFields(logrus.Fields{
		"model":  req.Model,
		"status": resp.Status,
		"items":  len(resp.Output),
	}).Debug("lorem stream started")

	events := p.pacedEvents(ctx, openai.SimulateEvents(resp), streamDelay(req.Model))
	return llmprovider.OnceStream(openai.ConvertStream(events, p.convertOptions(req))), nil
}

func (p *Provider) checkModel(model string) error {
	if p.SupportsModel(model) {
		return nil
	}
	return &llmprovider.ModelError{
		Model:    model,
		Provider: p.Name().String(),
		Reason:   "model not supported by Lorem provider (must start with 'lorem-')",
		Err:      llmprovider.ErrInvalidModel,
	}
}

func (p *Provider) convertOptions(req *llmprovider.GenerateRequest) openai.ConvertOptions {
	params := req.GetParams()
	return openai.ConvertOptions{
		Store:     params.GetStore(true),
		ToolNames: llmprovider.NewToolNameMapping(params.Tools),
		IDs:       p.ids,
		Logger:    p.logger,
	}
}

// pacedEvents yields events, sleeping after each delta.
func (p *Provider) pacedEvents(ctx context.Context, events []openai.StreamEvent, delay time.Duration) iter.Seq2[openai.StreamEvent, error] {
	return func(yield func(openai.StreamEvent, error) bool) {
		for _, ev := range events {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(ev, nil) {
				return
			}

			var wait time.Duration
			switch ev.(type) {
			case *openai.OutputTextDeltaEvent, *openai.ReasoningSummaryTextDeltaEvent:
				wait = delay
			case *openai.FunctionCallArgumentsDeltaEvent:
				wait = delay / 10
			}
			if wait == 0 {
				continue
			}

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				yield(nil, ctx.Err())
				return
			case <-timer.C:
			}
		}
	}
}

// streamDelay returns the delay between words for a model.
//   - lorem-slow: 2 words/second
//   - lorem-fast: 30 words/second
//   - otherwise: 10 words/second
func streamDelay(model string) time.Duration {
	switch {
	case strings.Contains(model, "slow"):
		return 500 * time.Millisecond
	case strings.Contains(model, "fast"):
		return 33 * time.Millisecond
	default:
		return 100 * time.Millisecond
	}
}

// isCutoffModel returns true if the model should simulate a max_tokens cutoff.
func isCutoffModel(model string) bool {
	return strings.Contains(model, "cutoff") || strings.Contains(model, "small")
}

const maxTextWords = 60

// buildResponse generates the vendor response for a request.
func (p *Provider) buildResponse(req *llmprovider.GenerateRequest) *openai.Response {
	params := req.GetParams()
	id := p.ids.GenerateID()
	maxTokens := params.GetMaxTokens(4096)

	resp := &openai.Response{
		ID:        "resp_" + id,
		Object:    "response",
		CreatedAt: time.Now().Unix(),
		Model:     req.Model,
		Status:    openai.StatusCompleted,
	}

	reasoningWords := 0
	if params.HasReasoning() {
		item := openai.OutputItem{
			Type:   openai.ItemTypeReasoning,
			ID:     "rs_" + id,
			Status: openai.StatusCompleted,
		}
		for range 2 {
			text := p.generateTextWords(10)
			reasoningWords += len(strings.Fields(text))
			item.Summary = append(item.Summary, openai.SummaryPart{Type: "summary_text", Text: text})
		}
		if !params.GetStore(true) {
			encrypted := "lorem-encrypted-" + id
			item.EncryptedContent = &encrypted
		}
		resp.Output = append(resp.Output, item)
	}

	webSearch := hasProviderTool(params.Tools, llmprovider.ToolIDWebSearch)
	if webSearch {
		resp.Output = append(resp.Output, openai.OutputItem{
			Type:   openai.ItemTypeWebSearchCall,
			ID:     "ws_" + id,
			Status: openai.StatusCompleted,
			Action: json.RawMessage(`{"type":"search","query":"lorem ipsum"}`),
		})
	}

	cutoff := isCutoffModel(req.Model)
	limit := min(maxTokens, maxTextWords)
	targetWords := limit
	if cutoff {
		// generate past the limit, then cut
		targetWords += limit/2 + 1
	}
	words := strings.Fields(p.generateTextWords(targetWords))
	if cutoff && len(words) > limit {
		words = words[:limit]
	}
	if cutoff {
		resp.Status = openai.StatusIncomplete
		resp.IncompleteDetails = &openai.IncompleteDetails{Reason: "max_output_tokens"}
	}

	text := strings.Join(words, " ")
	content := openai.ContentPart{Type: openai.ContentTypeOutputText, Text: text}
	if webSearch && len(words) > 0 {
		start, end := 0, len(words[0])
		content.Annotations = []openai.Annotation{{
			Type:       openai.AnnotationTypeURLCitation,
			URL:        p.generator.Url(),
			Title:      p.generator.Sentence(2, 4),
			StartIndex: &start,
			EndIndex:   &end,
		}}
	}
	resp.Output = append(resp.Output, openai.OutputItem{
		Type:    openai.ItemTypeMessage,
		ID:      "msg_" + id,
		Status:  openai.StatusCompleted,
		Role:    llmprovider.RoleAssistant,
		Content: []openai.ContentPart{content},
	})

	argTokens := 0
	if tool := firstFunctionTool(params.Tools); tool != nil && !cutoff {
		args, _ := json.Marshal(mockInput(tool))
		argTokens = len(args) / 4
		resp.Output = append(resp.Output, openai.OutputItem{
			Type:      openai.ItemTypeFunctionCall,
			ID:        "fc_" + id,
			Status:    openai.StatusCompleted,
			CallID:    "call_" + id,
			Name:      tool.Function.Name,
			Arguments: string(args),
		})
	}

	input := estimateTokens(req.Messages)
	output := len(words) + reasoningWords + argTokens
	resp.Usage = &openai.Usage{
		InputTokens:         input,
		OutputTokens:        output,
		TotalTokens:         input + output,
		OutputTokensDetails: &openai.OutputTokensDetails{ReasoningTokens: reasoningWords},
	}
	return resp
}

func hasProviderTool(tools []llmprovider.Tool, id string) bool {
	for _, tool := range tools {
		if tool.Type == llmprovider.ToolTypeProvider && tool.Provider != nil && tool.Provider.ID == id {
			return true
		}
	}
	return false
}

func firstFunctionTool(tools []llmprovider.Tool) *llmprovider.Tool {
	for i := range tools {
		if tools[i].Type == llmprovider.ToolTypeFunction {
			return &tools[i]
		}
	}
	return nil
}

// mockInput fills each declared parameter with a lorem value of its type.
func mockInput(tool *llmprovider.Tool) map[string]interface{} {
	props, _ := tool.Function.Parameters["properties"].(map[string]interface{})
	if len(props) == 0 {
		return map[string]interface{}{"data": "mock input for " + tool.Function.Name}
	}

	input := make(map[string]interface{}, len(props))
	for name, raw := range props {
		schema, _ := raw.(map[string]interface{})
		switch schema["type"] {
		case "integer", "number":
			input[name] = 3
		case "boolean":
			input[name] = true
		case "array":
			input[name] = []string{"lorem", "ipsum"}
		case "object":
			input[name] = map[string]interface{}{}
		default:
			input[name] = fmt.Sprintf("lorem %s", name)
		}
	}
	return input
}

// generateTextWords generates lorem ipsum text with approximately targetWords words.
func (p *Provider) generateTextWords(targetWords int) string {
	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		wordCount += len(strings.Fields(sentence))
	}

	return strings.TrimSpace(sb.String())
}

// estimateTokens uses the word count of text blocks as a rough token count.
func estimateTokens(messages []llmprovider.Message) int {
	totalWords := 0
	for _, msg := range messages {
		for _, block := range msg.Blocks {
			if block.TextContent != nil {
				totalWords += len(strings.Fields(*block.TextContent))
			}
		}
	}
	return totalWords
}
