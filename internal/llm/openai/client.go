package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"jobmatch-backend/internal/llm"
	"jobmatch-backend/internal/shared/retry"
	"jobmatch-backend/internal/shared/telemetry"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultTemperature = 0.2
	defaultMaxTokens   = 900
	maxErrorBody       = 512
)

// Client implements llm.Completer against an OpenAI-compatible Chat Completions endpoint.
// OpenRouter speaks the same shape and differs only in base URL, model and headers.
type Client struct {
	provider    llm.Provider
	httpClient  *http.Client
	policy      retry.Policy
	temperature float64
	maxTokens   int
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client. The bearer token is
// still attached through an oauth2 transport wrapping its RoundTripper.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithSleep replaces the wait between attempts. Tests use it to skip real backoff.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.policy.Sleep = sleep
	}
}

// NewClient constructs a client for the resolved provider. timeout bounds each HTTP attempt.
func NewClient(p llm.Provider, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		provider:    p,
		httpClient:  &http.Client{Timeout: timeout},
		policy:      llm.RetryPolicy(),
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *c.httpClient
	wrapped.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: p.APIKey, TokenType: "Bearer"}),
		Base:   base,
	}
	c.httpClient = &wrapped
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends prompt as a single user message and returns the first choice's content.
// 429 and 5xx responses are retried under llm.RetryPolicy; every failure is an *llm.UpstreamError.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.provider.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", &llm.UpstreamError{Kind: llm.KindInvalidResponse, Message: "encode request", Err: err}
	}

	return retry.Do(ctx, c.policy, func(ctx context.Context, attempt int) (string, error) {
		started := time.Now()
		content, err := c.completeOnce(ctx, payload)
		fields := map[string]any{
			"provider":    c.provider.Name,
			"model":       c.provider.Model,
			"attempt":     attempt,
			"duration_ms": time.Since(started).Milliseconds(),
		}
		if err != nil {
			fields["kind"] = string(llm.KindOf(err))
			fields["err"] = err
			telemetry.Warn("llm.attempt.failed", fields)
			return "", err
		}
		telemetry.Debug("llm.attempt.ok", fields)
		return content, nil
	})
}

func (c *Client) completeOnce(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.ChatCompletionsURL(), bytes.NewReader(payload))
	if err != nil {
		return "", &llm.UpstreamError{Kind: llm.KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.provider.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", &llm.UpstreamError{Kind: llm.KindTimeout, Err: err}
		}
		return "", &llm.UpstreamError{Kind: llm.KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &llm.UpstreamError{Kind: llm.KindTransport, Status: resp.StatusCode, Err: err}
	}

	if kind := llm.ClassifyStatus(resp.StatusCode); kind != "" {
		return "", &llm.UpstreamError{
			Kind:       kind,
			Status:     resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    errorMessage(body),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &llm.UpstreamError{Kind: llm.KindInvalidResponse, Status: resp.StatusCode, Message: "response parse", Err: err}
	}
	if parsed.Error != nil {
		return "", &llm.UpstreamError{Kind: llm.KindInvalidResponse, Status: resp.StatusCode, Message: fmt.Sprintf("%s (%s)", parsed.Error.Message, parsed.Error.Type)}
	}
	if len(parsed.Choices) == 0 {
		return "", &llm.UpstreamError{Kind: llm.KindInvalidResponse, Status: resp.StatusCode, Message: "response missing choices"}
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", &llm.UpstreamError{Kind: llm.KindInvalidResponse, Status: resp.StatusCode, Message: "response empty content"}
	}
	if parsed.Usage != nil {
		telemetry.Debug("llm.usage", map[string]any{
			"model":             parsed.Model,
			"prompt_tokens":     parsed.Usage.PromptTokens,
			"completion_tokens": parsed.Usage.CompletionTokens,
			"total_tokens":      parsed.Usage.TotalTokens,
		})
	}
	return content, nil
}

// parseRetryAfter reads a Retry-After header given in seconds. HTTP-date values are ignored.
func parseRetryAfter(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func errorMessage(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}

var _ llm.Completer = (*Client)(nil)
