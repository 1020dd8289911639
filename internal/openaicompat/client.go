// Package openaicompat talks to any provider exposing the OpenAI chat
// completions API (OpenAI itself, Groq, OpenRouter).
package openaicompat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stomatrack/internal/models"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Known base URLs keyed by provider name.
var baseURLs = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"groq":       "https://api.groq.com/openai/v1",
	"openrouter": "https://openrouter.ai/api/v1",
}

var defaultModels = map[string]string{
	"openai":     openai.GPT4oMini,
	"groq":       "llama-3.3-70b-versatile",
	"openrouter": "meta-llama/llama-3.2-11b-vision-instruct:free",
}

// Client represents an OpenAI-compatible chat completions client.
type Client struct {
	api        *openai.Client
	provider   string
	baseURL    string
	modelName  string
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// Config holds configuration for the client.
type Config struct {
	Provider   string // "openai", "groq" or "openrouter"
	APIKey     string
	ModelName  string
	BaseURL    string // overrides the provider default
	MaxRetries int
	RetryDelay time.Duration
	HTTPClient *http.Client
}

// NewClient creates a new client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}

	if cfg.BaseURL == "" {
		url, ok := baseURLs[cfg.Provider]
		if !ok {
			return nil, fmt.Errorf("no base URL known for provider %q", cfg.Provider)
		}
		cfg.BaseURL = url
	}

	if cfg.ModelName == "" {
		cfg.ModelName = defaultModels[cfg.Provider]
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("model name is required for provider %q", cfg.Provider)
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	} else {
		apiCfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}

	logger.Info("Chat completions client initialized",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		provider:   cfg.Provider,
		baseURL:    cfg.BaseURL,
		modelName:  cfg.ModelName,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Generate sends one chat completion request and returns the first choice.
func (c *Client) Generate(ctx context.Context, req models.AIRequest) (string, error) {
	request := c.buildRequest(req)

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		content, err := c.generateOnce(ctx, request)
		if err == nil {
			return content, nil
		}

		lastErr = err
		c.logger.Warn("Chat completion attempt failed",
			zap.String("provider", c.provider),
			zap.Int("attempt", attempt),
			zap.Error(err))

		// Client errors other than rate limiting will not improve on retry.
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 &&
			apiErr.HTTPStatusCode != http.StatusTooManyRequests {
			break
		}

		if attempt < c.maxRetries {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", fmt.Errorf("%s failed after %d attempts: %w", c.provider, c.maxRetries, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, request openai.ChatCompletionRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", c.provider, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty response from %s", c.provider)
	}

	c.logger.Debug("Chat completion received",
		zap.String("provider", c.provider),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) buildRequest(req models.AIRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Images) == 0 {
		user.Content = req.Prompt
	} else {
		user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: req.Prompt,
		})
		for _, img := range req.Images {
			user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}
	messages = append(messages, user)

	maxTokens := 1024
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	request := openai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    messages,
		Temperature: 0.3,
		MaxTokens:   maxTokens,
	}
	if req.JSON {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return request
}

// Close is a no-op; the underlying HTTP client holds no resources to release.
func (c *Client) Close() error {
	return nil
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    c.provider,
		"model":       c.modelName,
		"base_url":    c.baseURL,
		"max_retries": c.maxRetries,
		"retry_delay": c.retryDelay.String(),
	}
}
