package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

// Provider implements llmprovider.Provider for the Responses API.
//
// The same provider serves an Azure OpenAI resource when configured with
// WithAzure: the key is sent as an api-key header and api-version is added
// to the URL.
type Provider struct {
	apiKey       string
	baseURL      string
	organization string
	project      string
	azure        bool
	apiVersion   string
	defaultStore *bool

	httpClient *http.Client
	logger     *logrus.Entry
	metrics    *Metrics
	ids        llmprovider.IDGenerator
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient replaces the HTTP client (default: 120s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// WithBaseURL points the provider at another endpoint (proxy, test server).
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithLogger sets the logger used by the provider and its converters.
func WithLogger(l *logrus.Entry) Option {
	return func(p *Provider) { p.logger = l }
}

// WithMetrics enables Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithIDGenerator sets the generator for source part ids.
func WithIDGenerator(g llmprovider.IDGenerator) Option {
	return func(p *Provider) { p.ids = g }
}

// WithOrganization sets the OpenAI-Organization and OpenAI-Project headers.
func WithOrganization(organization, project string) Option {
	return func(p *Provider) {
		p.organization = organization
		p.project = project
	}
}

// WithAzure switches to Azure OpenAI authentication.
func WithAzure(apiVersion string) Option {
	return func(p *Provider) {
		p.azure = true
		p.apiVersion = apiVersion
		if p.apiVersion == "" {
			p.apiVersion = defaultAPIVersion
		}
	}
}

// WithDefaultStore sets the store value for requests that leave it unset.
func WithDefaultStore(store bool) Option {
	return func(p *Provider) { p.defaultStore = &store }
}

// NewProvider creates a provider with the given API key.
func NewProvider(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, llmprovider.ErrInvalidAPIKey
	}

	p := &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		ids:        llmprovider.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logrus.NewEntry(logrus.StandardLogger()).WithField("provider", p.Name().String())
	}
	return p, nil
}

// NewProviderFromConfig creates a provider from a loaded Config.
// Options are applied after the configuration.
func NewProviderFromConfig(cfg *Config, opts ...Option) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := []Option{
		WithBaseURL(cfg.BaseURL),
		WithOrganization(cfg.Organization, cfg.Project),
	}
	if cfg.Timeout > 0 {
		base = append(base, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	if cfg.Store != nil {
		base = append(base, WithDefaultStore(*cfg.Store))
	}
	if cfg.Azure {
		base = append(base, WithAzure(cfg.APIVersion))
	}
	if cfg.LogLevel != "" {
		logger := logrus.New()
		level, _ := logrus.ParseLevel(cfg.LogLevel)
		logger.SetLevel(level)
		provider := llmprovider.ProviderOpenAI
		if cfg.Azure {
			provider = llmprovider.ProviderAzure
		}
		base = append(base, WithLogger(logrus.NewEntry(logger).WithField("provider", provider.String())))
	}

	return NewProvider(cfg.APIKey, append(base, opts...)...)
}

// Name returns the provider identifier.
func (p *Provider) Name() llmprovider.ProviderID {
	if p.azure {
		return llmprovider.ProviderAzure
	}
	return llmprovider.ProviderOpenAI
}

// SupportsModel reports whether the model is a Responses API model. Azure
// deployments have arbitrary names and are always accepted.
func (p *Provider) SupportsModel(model string) bool {
	if p.azure {
		return model != ""
	}
	if llmprovider.GetCapabilityRegistry().SupportsModel(llmprovider.ProviderOpenAI.String(), model) {
		return true
	}
	for _, prefix := range []string{"gpt-", "o1", "o3", "o4", "codex-", "computer-use-"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// GenerateResponse sends a non-streaming request and converts the complete response.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error) {
	body, opts, warnings, err := p.prepare(req, false)
	if err != nil {
		return nil, err
	}

	httpResp, err := p.do(ctx, body)
	if err != nil {
		p.metrics.observeRequest("generate", "error")
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		p.metrics.observeRequest("generate", "error")
		return nil, p.handleErrorResponse(httpResp, body.Model)
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		p.metrics.observeRequest("generate", "error")
		return nil, p.transportError(ctx, err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		p.metrics.observeRequest("generate", "error")
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	parts, err := ConvertResponse(&resp, opts)
	if err != nil {
		p.metrics.observeRequest("generate", "error")
		return nil, err
	}

	p.metrics.observeRequest("generate", "ok")
	p.logger.WithFields(logrus.Fields{
		"response_id": resp.ID,
		"model":       resp.Model,
		"status":      resp.Status,
	}).Info("response completed")

	return &llmprovider.GenerateResponse{Parts: parts, Warnings: warnings}, nil
}

// StreamResponse sends a streaming request. Request and HTTP errors are
// returned directly; everything after the response headers arrives through
// the stream. Ranging over the stream to the end or breaking out of it
// closes the connection. Warnings are logged.
func (p *Provider) StreamResponse(ctx context.Context, req *llmprovider.GenerateRequest) (llmprovider.PartStream, error) {
	body, opts, _, err := p.prepare(req, true)
	if err != nil {
		return nil, err
	}

	httpResp, err := p.do(ctx, body)
	if err != nil {
		p.metrics.observeRequest("stream", "error")
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		p.metrics.observeRequest("stream", "error")
		return nil, p.handleErrorResponse(httpResp, body.Model)
	}

	p.metrics.observeRequest("stream", "ok")
	events := p.sseEvents(ctx, ssestream.NewDecoder(httpResp))
	return llmprovider.OnceStream(ConvertStream(events, opts)), nil
}

// prepare builds the request body and converter options and collects warnings.
func (p *Provider) prepare(req *llmprovider.GenerateRequest, stream bool) (*ResponsesRequest, ConvertOptions, []llmprovider.ValidationWarning, error) {
	if !p.SupportsModel(req.Model) {
		return nil, ConvertOptions{}, nil, &llmprovider.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by the Responses API",
			Err:      llmprovider.ErrInvalidModel,
		}
	}

	req = p.applyDefaults(req)
	body, warnings, err := buildRequest(p.Name(), req)
	if err != nil {
		return nil, ConvertOptions{}, nil, err
	}
	body.Stream = stream

	warnings = append(llmprovider.GetValidationWarnings(llmprovider.ProviderOpenAI.String(), req), warnings...)
	for _, w := range warnings {
		p.logger.WithFields(logrus.Fields{
			"code":  w.Code,
			"field": w.Field,
		}).Warn(w.Message)
	}

	params := req.GetParams()
	opts := ConvertOptions{
		Store:     params.GetStore(true),
		ToolNames: llmprovider.NewToolNameMapping(params.Tools),
		IDs:       p.ids,
		Logger:    p.logger,
		Metrics:   p.metrics,
	}
	return body, opts, warnings, nil
}

// applyDefaults returns req with the provider's default store applied.
func (p *Provider) applyDefaults(req *llmprovider.GenerateRequest) *llmprovider.GenerateRequest {
	if p.defaultStore == nil || (req.Params != nil && req.Params.Store != nil) {
		return req
	}
	params := *req.GetParams()
	params.Store = p.defaultStore
	out := *req
	out.Params = &params
	return &out
}

func (p *Provider) endpoint() string {
	u := p.baseURL + "/responses"
	if p.azure {
		u += "?api-version=" + url.QueryEscape(p.apiVersion)
	}
	return u
}

func (p *Provider) do(ctx context.Context, body *ResponsesRequest) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if body.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	if p.azure {
		httpReq.Header.Set("api-key", p.apiKey)
	} else {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	if p.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", p.organization)
	}
	if p.project != "" {
		httpReq.Header.Set("OpenAI-Project", p.project)
	}

	p.logger.WithFields(logrus.Fields{
		"model":  body.Model,
		"stream": body.Stream,
	}).Debug("sending request")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, p.transportError(ctx, err)
	}
	return resp, nil
}

// sseEvents decodes server-sent events into stream events. The decoder is
// closed when the sequence ends or the consumer stops early.
func (p *Provider) sseEvents(ctx context.Context, dec ssestream.Decoder) iter.Seq2[StreamEvent, error] {
	return func(yield func(StreamEvent, error) bool) {
		defer dec.Close()

		for dec.Next() {
			raw := dec.Event()
			data := bytes.TrimSpace(raw.Data)
			if len(data) == 0 || string(data) == "[DONE]" {
				continue
			}

			ev, err := DecodeStreamEvent(raw.Type, data)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}

		if err := dec.Err(); err != nil {
			yield(nil, p.transportError(ctx, err))
		}
	}
}

// transportError classifies a failed round trip. Cancellation is returned
// as-is; timeouts become ErrTimeout.
func (p *Provider) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	if llmprovider.IsTimeout(err) {
		return &llmprovider.ProviderError{
			Code:      llmprovider.ErrorCodeTimeout,
			Provider:  p.Name().String(),
			Message:   err.Error(),
			Retryable: true,
			Err:       llmprovider.ErrTimeout,
		}
	}
	return &llmprovider.ProviderError{
		Code:      llmprovider.ErrorCodeProviderUnavailable,
		Provider:  p.Name().String(),
		Message:   err.Error(),
		Retryable: true,
		Err:       fmt.Errorf("%w: %w", llmprovider.ErrProviderUnavailable, err),
	}
}

// handleErrorResponse maps an HTTP error status to a library error.
func (p *Provider) handleErrorResponse(resp *http.Response, model string) error {
	body, _ := io.ReadAll(resp.Body)

	message := gjson.GetBytes(body, "error.message").String()
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	perr := &llmprovider.ProviderError{
		Provider:   p.Name().String(),
		StatusCode: resp.StatusCode,
		Message:    message,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		perr.Code = llmprovider.ErrorCodeAuth
		perr.Err = llmprovider.ErrInvalidAPIKey
	case resp.StatusCode == http.StatusNotFound:
		return &llmprovider.ModelError{
			Model:    model,
			Provider: p.Name().String(),
			Reason:   message,
			Err:      llmprovider.ErrInvalidModel,
		}
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		perr.Code = llmprovider.ErrorCodeTimeout
		perr.Retryable = true
		perr.Err = llmprovider.ErrTimeout
	case resp.StatusCode == http.StatusTooManyRequests:
		perr.Code = llmprovider.ErrorCodeRateLimited
		perr.Retryable = true
		perr.Err = llmprovider.ErrRateLimited
	case resp.StatusCode >= 500:
		perr.Code = llmprovider.ErrorCodeProviderUnavailable
		perr.Retryable = true
		perr.Err = llmprovider.ErrProviderUnavailable
	default:
		perr.Code = llmprovider.ErrorCodeInvalidRequest
		perr.Err = llmprovider.ErrInvalidRequest
	}

	p.logger.WithFields(logrus.Fields{
		"status": resp.StatusCode,
		"code":   perr.Code,
	}).Warn("request failed")
	return perr
}
