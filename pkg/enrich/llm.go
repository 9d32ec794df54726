package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	providerAnthropic = "anthropic"
	providerOpenAI    = "openai"
	providerOllama    = "ollama"
)

const callTimeout = 60 * time.Second

// CallFunc is the signature for one LLM inference call.
type CallFunc func(ctx context.Context, prompt string) (string, error)

// ClientConfig selects and authenticates the enrichment backend.
type ClientConfig struct {
	Provider string // "anthropic", "openai", or "ollama"
	Model    string
	APIKey   string // explicit key; falls back to provider env var
	BaseURL  string
}

// Client is the production enrichment backend. It implements Summarizer and
// Tagger over a single provider-specific HTTP caller.
type Client struct {
	call  CallFunc
	model string
}

// NewClient resolves the provider, model, and API key and returns a ready
// Client. Key resolution: explicit config, then ANTHROPIC_API_KEY /
// OPENAI_API_KEY; ollama needs none.
func NewClient(cfg ClientConfig) (*Client, error) {
	provider := strings.ToLower(cfg.Provider)
	model := cfg.Model

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = apiKeyFromEnv(provider)
	}
	if apiKey == "" && provider != providerOllama {
		return nil, fmt.Errorf("no API key configured for provider %q", provider)
	}

	switch provider {
	case providerAnthropic, "":
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.anthropic.com"
		}
		return &Client{call: newAnthropicCaller(apiKey, model, baseURL), model: model}, nil

	case providerOpenAI:
		if model == "" {
			model = "gpt-4o-mini"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com"
		}
		return &Client{call: newOpenAICaller(apiKey, model, baseURL), model: model}, nil

	case providerOllama:
		if model == "" {
			model = "llama3.2"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return &Client{call: newOllamaCaller(model, baseURL), model: model}, nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// NewClientWithCall builds a Client over a custom caller. Tests use this to
// substitute a deterministic backend.
func NewClientWithCall(call CallFunc, model string) *Client {
	return &Client{call: call, model: model}
}

// ModelName returns the resolved model identifier.
func (c *Client) ModelName() string { return c.model }

func apiKeyFromEnv(provider string) string {
	switch provider {
	case providerOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case providerOllama:
		return ""
	default:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}

// --- Anthropic caller ---

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newAnthropicCaller(apiKey, model, baseURL string) CallFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		reqBody := anthropicRequest{
			Model:     model,
			MaxTokens: 500,
			Messages: []anthropicMessage{
				{Role: "user", Content: prompt},
			},
		}

		body, err := postJSON(ctx, baseURL+"/v1/messages", reqBody, map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": "2023-06-01",
		})
		if err != nil {
			return "", &BackendError{Provider: providerAnthropic, Err: err}
		}

		var result anthropicResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", &BackendError{Provider: providerAnthropic, Err: fmt.Errorf("unmarshal response: %w", err)}
		}
		if result.Error != nil {
			return "", &BackendError{Provider: providerAnthropic, Err: errors.New(result.Error.Message)}
		}
		if len(result.Content) == 0 {
			return "", &BackendError{Provider: providerAnthropic, Err: errors.New("empty response content")}
		}

		return strings.TrimSpace(result.Content[0].Text), nil
	}
}

// --- OpenAI caller ---

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newOpenAICaller(apiKey, model, baseURL string) CallFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		reqBody := openAIRequest{
			Model: model,
			Messages: []openAIMessage{
				{Role: "user", Content: prompt},
			},
		}

		body, err := postJSON(ctx, baseURL+"/v1/chat/completions", reqBody, map[string]string{
			"Authorization": "Bearer " + apiKey,
		})
		if err != nil {
			return "", &BackendError{Provider: providerOpenAI, Err: err}
		}

		var result openAIResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", &BackendError{Provider: providerOpenAI, Err: fmt.Errorf("unmarshal response: %w", err)}
		}
		if result.Error != nil {
			return "", &BackendError{Provider: providerOpenAI, Err: errors.New(result.Error.Message)}
		}
		if len(result.Choices) == 0 {
			return "", &BackendError{Provider: providerOpenAI, Err: errors.New("no choices returned")}
		}

		return strings.TrimSpace(result.Choices[0].Message.Content), nil
	}
}

// --- Ollama caller ---

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func newOllamaCaller(model, baseURL string) CallFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		reqBody := ollamaRequest{
			Model:  model,
			Prompt: prompt,
			Stream: false,
		}

		body, err := postJSON(ctx, baseURL+"/api/generate", reqBody, nil)
		if err != nil {
			return "", &BackendError{Provider: providerOllama, Err: err}
		}

		var result ollamaResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", &BackendError{Provider: providerOllama, Err: fmt.Errorf("unmarshal response: %w", err)}
		}
		if result.Error != "" {
			return "", &BackendError{Provider: providerOllama, Err: errors.New(result.Error)}
		}

		return strings.TrimSpace(result.Response), nil
	}
}

func postJSON(ctx context.Context, url string, reqBody any, headers map[string]string) ([]byte, error) {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
