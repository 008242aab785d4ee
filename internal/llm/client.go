// Package llm talks to an OpenAI-compatible Chat Completions API to name
// topics, translate labels and tag named entities.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/uaenergy/news/internal/ratelimit"
	"github.com/uaenergy/news/internal/retry"
)

// DefaultModel is the chat model used when none is configured
const DefaultModel = "gpt-4o-mini"

// DefaultSeed keeps completions reproducible across runs
const DefaultSeed = 5

const maxResponseSize = 4 * 1024 * 1024

var (
	// ErrNoAPIKey is returned when no API key is configured
	ErrNoAPIKey = errors.New("OpenAI API key is not set")
	// ErrRefusal is returned when the model refuses to answer
	ErrRefusal = errors.New("model refused the request")
	// ErrEmptyResponse is returned when the API sends no choices
	ErrEmptyResponse = errors.New("empty completion")
)

// Options configures a Client
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Seed       int
	HTTPClient *http.Client
	Limiter    ratelimit.RateLimiter
	Retry      retry.Config
}

// Client is a minimal Chat Completions client
type Client struct {
	apiKey  string
	baseURL string
	model   string
	seed    int
	http    *http.Client
	limiter ratelimit.RateLimiter
	retry   retry.Config
	prompts Prompts
}

// NewClient builds a Client. The API key is required. A zero Seed falls back
// to DefaultSeed.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}

	return &Client{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		model:   opts.Model,
		seed:    opts.Seed,
		http:    opts.HTTPClient,
		limiter: opts.Limiter,
		retry:   opts.Retry,
		prompts: DefaultPrompts(),
	}, nil
}

// Model returns the configured chat model
func (c *Client) Model() string {
	return c.model
}

// SetPrompts replaces the built-in developer prompts
func (c *Client) SetPrompts(p Prompts) {
	c.prompts = p
}

// ResponseFormat is the response_format field of a completion request
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// JSONSchema describes a structured output
type JSONSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"schema"`
	Strict      bool           `json:"strict"`
}

// StructuredOutput builds a strict json_schema response format
func StructuredOutput(name, description string, schema map[string]any) *ResponseFormat {
	return &ResponseFormat{
		Type: "json_schema",
		JSONSchema: &JSONSchema{
			Name:        name,
			Description: description,
			Schema:      schema,
			Strict:      true,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Seed           int             `json:"seed"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Ask sends prompt as the developer message and text as the user message
// and returns the content of the first choice. Temperature is 0 and the
// seed is fixed. format may be nil for free text.
func (c *Client) Ask(ctx context.Context, text, prompt string, format *ResponseFormat) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "developer", Content: prompt},
			{Role: "user", Content: text},
		},
		Seed:           c.seed,
		Temperature:    0,
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	var content string
	err = retry.WithRetry(ctx, c.retry, func() error {
		var err error
		content, err = c.post(ctx, endpoint, body)
		return err
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(raw, &apiErr)
		return "", retry.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), apiErr.Error.Message)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", retry.Permanent(fmt.Errorf("decode response: %w", err))
	}

	log.Debug().
		Str("model", c.model).
		Int("prompt_tokens", out.Usage.PromptTokens).
		Int("completion_tokens", out.Usage.CompletionTokens).
		Dur("duration", time.Since(start)).
		Msg("Chat completion")

	if len(out.Choices) == 0 {
		return "", retry.Permanent(ErrEmptyResponse)
	}
	msg := out.Choices[0].Message
	if msg.Refusal != "" {
		return "", retry.Permanent(fmt.Errorf("%w: %s", ErrRefusal, msg.Refusal))
	}
	if msg.Content == "" {
		return "", retry.Permanent(fmt.Errorf("%w (finish reason %q)", ErrEmptyResponse, out.Choices[0].FinishReason))
	}
	return msg.Content, nil
}

// askJSON asks with a structured output format and decodes the answer into out
func (c *Client) askJSON(ctx context.Context, text, prompt string, format *ResponseFormat, out any) error {
	content, err := c.Ask(ctx, text, prompt, format)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode %s answer: %w", format.JSONSchema.Name, err)
	}
	return nil
}

// marshalIndent renders v as two-space indented JSON without HTML escaping
func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
