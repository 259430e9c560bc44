// Package anthropic is a retrying client for the Anthropic Messages API.
// Failures are classified into retryable and terminal kinds; transient ones
// are retried with exponential backoff and jitter. Each call's retry loop is
// independent, so a Client is safe to share across concurrent requests.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 1024
	defaultTimeout   = 30 * time.Second

	maxAttempts = 3
	baseDelay   = 1000 * time.Millisecond
)

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Usage is the token accounting echoed by the API.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Reply is a successful model response. JSON is nil whenever Text is not
// syntactically valid JSON; callers must never assume it is present.
type Reply struct {
	Text  string
	JSON  map[string]any
	Usage Usage
	Model string
}

// Config holds the static credentials and tuning for a Client. The API key
// is threaded in explicitly; the client never consults the environment.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string        // defaults to the Anthropic API
	MaxTokens int           // defaults to 1024
	Timeout   time.Duration // per-attempt, defaults to 30s
}

// Client holds only static credentials and connection state, no per-call
// retry state, so it may be constructed once and reused.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	timeout    time.Duration
	httpClient *http.Client

	// Injectable for tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64 // uniform in [0,1)
}

// NewClient creates a Client from explicit configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		// Per-attempt timeouts come from context deadlines, not the
		// transport, so classification can tell timeout from refusal.
		httpClient: &http.Client{},
		sleep:      sleepCtx,
		jitter:     rand.Float64,
	}
}

// messagesRequest is the JSON body for POST /v1/messages.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// messagesResponse is the JSON returned by POST /v1/messages.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}

// apiError is the error envelope returned on non-2xx statuses.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Send posts the system prompt and conversation to the model. Transient
// failures are retried up to 3 total attempts, sleeping
// 1s*2^attempt plus up to 10% jitter between attempts (never after the
// last). A non-retryable classification aborts immediately. On success the
// text of all text-bearing content blocks is concatenated and a JSON parse
// is attempted; parse failure leaves Reply.JSON nil without raising.
func (c *Client) Send(ctx context.Context, system string, messages []Message) (*Reply, error) {
	if c.apiKey == "" {
		return nil, &ClientError{Kind: KindAuthentication, Message: "API key is not configured"}
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  messages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr *ClientError
	for attempt := range maxAttempts {
		reply, cerr := c.doSend(ctx, body)
		if cerr == nil {
			return reply, nil
		}
		if !cerr.Retryable {
			return nil, cerr
		}
		lastErr = cerr

		if attempt < maxAttempts-1 {
			base := baseDelay * time.Duration(1<<attempt)
			delay := base + time.Duration(c.jitter()*0.1*float64(base))
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

func (c *Client) doSend(ctx context.Context, body []byte) (*Reply, *ClientError) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Kind: KindUnknown, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		var env apiError
		if json.Unmarshal(respBody, &env) == nil && env.Error.Message != "" {
			msg = env.Error.Type + ": " + env.Error.Message
		}
		return nil, classifyStatus(resp.StatusCode, msg)
	}

	var mr messagesResponse
	if err := json.Unmarshal(respBody, &mr); err != nil {
		return nil, &ClientError{Kind: KindUnknown, Message: fmt.Sprintf("decoding response: %v", err)}
	}

	var sb strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()

	return &Reply{
		Text:  text,
		JSON:  ExtractJSON(text),
		Usage: mr.Usage,
		Model: mr.Model,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
