package saptiva

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://api.saptiva.com/v1"

	// Default model names per tier. Overridable per client.
	defaultFastModel      = "Saptiva Turbo"
	defaultReasoningModel = "Saptiva Cortex"
	defaultAdvancedModel  = "Saptiva Legacy"
)

// ModelTier selects a model by purpose rather than by name.
type ModelTier string

const (
	// TierFast is the cheap model used for identification and other short
	// extraction-heavy tasks.
	TierFast ModelTier = "fast"
	// TierReasoning is the deliberate model used for per-competitor analysis.
	TierReasoning ModelTier = "reasoning"
	// TierAdvanced is the strongest model, reserved for final report synthesis.
	TierAdvanced ModelTier = "advanced"
)

// Client performs chat completions against the Saptiva API.
type Client interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// CompletionOptions controls a single completion call.
type CompletionOptions struct {
	Tier         ModelTier
	Temperature  *float64
	MaxTokens    *int
	SystemPrompt string
}

// chatCompletionRequest is the request body for POST /chat/completions.
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the response from POST /chat/completions.
type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Index   int     `json:"index"`
	Message message `json:"message"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithModels overrides the per-tier model names. Empty names keep the default.
func WithModels(fast, reasoning, advanced string) Option {
	return func(c *httpClient) {
		if fast != "" {
			c.models[TierFast] = fast
		}
		if reasoning != "" {
			c.models[TierReasoning] = reasoning
		}
		if advanced != "" {
			c.models[TierAdvanced] = advanced
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	models  map[ModelTier]string
	http    *http.Client
}

// NewClient creates a Saptiva API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		models: map[ModelTier]string{
			TierFast:      defaultFastModel,
			TierReasoning: defaultReasoningModel,
			TierAdvanced:  defaultAdvancedModel,
		},
		http: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete issues one completion call and returns the text of the first
// choice. No retry is performed here; callers decide whether a failure is
// degraded or fatal.
func (c *httpClient) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	tier := opts.Tier
	if tier == "" {
		tier = TierFast
	}
	model, ok := c.models[tier]
	if !ok {
		return "", eris.Errorf("saptiva: unknown model tier %q", tier)
	}

	var msgs []message
	if opts.SystemPrompt != "" {
		msgs = append(msgs, message{Role: "system", Content: opts.SystemPrompt})
	}
	msgs = append(msgs, message{Role: "user", Content: prompt})

	body, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", eris.Wrap(err, "saptiva: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "saptiva: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrap(err, "saptiva: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "saptiva: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("saptiva: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "saptiva: unmarshal response")
	}

	if len(result.Choices) == 0 {
		return "", eris.New("saptiva: response has no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// Float returns a pointer to f, for CompletionOptions literals.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n, for CompletionOptions literals.
func Int(n int) *int { return &n }
