package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1/chat/completions"
)

// GroqClient calls the Groq Chat Completions API (OpenAI-compatible).
// See: https://console.groq.com/docs/api-reference
type GroqClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string

	rlMu      sync.RWMutex
	rlLast    RateLimitHeaders
	rlHasLast bool
}

// GroqOption customizes a GroqClient.
type GroqOption func(*GroqClient)

// WithGroqBaseURL points the client at another OpenAI-compatible endpoint.
func WithGroqBaseURL(u string) GroqOption {
	return func(g *GroqClient) {
		if strings.TrimSpace(u) != "" {
			g.baseURL = strings.TrimSpace(u)
		}
	}
}

// WithGroqHTTPClient replaces the default HTTP client (60s timeout).
func WithGroqHTTPClient(c *http.Client) GroqOption {
	return func(g *GroqClient) {
		if c != nil {
			g.http = c
		}
	}
}

// WithGroqTimeout sets the per-call HTTP timeout.
func WithGroqTimeout(d time.Duration) GroqOption {
	return func(g *GroqClient) {
		if d > 0 {
			g.http = &http.Client{Timeout: d}
		}
	}
}

// NewGroqClient creates a Groq client. If apiKey is empty, it falls back to GROQ_API_KEY env var.
func NewGroqClient(apiKey, model string, opts ...GroqOption) (*GroqClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("groq: api key is required")
	}
	if model == "" {
		model = DefaultGroqModel
	}
	g := &GroqClient{
		http:    &http.Client{Timeout: 60 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultGroqBaseURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GroqClient) Name() string { return "groq:" + g.model }
func (g *GroqClient) Close() error { return nil }

func (g *GroqClient) LastRateLimitHeaders() (RateLimitHeaders, bool) {
	g.rlMu.RLock()
	defer g.rlMu.RUnlock()
	return g.rlLast, g.rlHasLast
}

type groqChatReq struct {
	Model          string            `json:"model"`
	Messages       []groqMessage     `json:"messages"`
	Temperature    float32           `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}
type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type groqChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one system + user message pair and returns the first choice's content.
func (g *GroqClient) Complete(ctx context.Context, r Request) (string, error) {
	text, err := g.complete(ctx, r)
	if err != nil {
		return "", Failed("groq", err)
	}
	return text, nil
}

func (g *GroqClient) complete(ctx context.Context, r Request) (string, error) {
	reqBody := groqChatReq{
		Model:       g.model,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}
	if r.System != "" {
		reqBody.Messages = append(reqBody.Messages, groqMessage{Role: "system", Content: r.System})
	}
	reqBody.Messages = append(reqBody.Messages, groqMessage{Role: "user", Content: r.Prompt})
	if r.JSON {
		reqBody.ResponseFormat = map[string]string{"type": "json_object"}
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	headers, ok := parseGroqRateLimitHeaders(resp.Header)
	if ok {
		g.rlMu.Lock()
		g.rlLast, g.rlHasLast = headers, true
		g.rlMu.Unlock()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return "", fmt.Errorf("%w: %v", &RateLimitedError{Headers: headers}, err)
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return "", NewPermanentError(err)
		case resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), `"code":"context_length_exceeded"`):
			return "", NewPermanentError(err)
		}
		return "", err
	}
	var out groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
