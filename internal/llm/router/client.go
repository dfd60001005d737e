package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/essayblitz/internal/llm"
)

const (
	DefaultBaseURL = "https://router.huggingface.co/v1"
	DefaultModel   = "HuggingFaceTB/SmolLM3-3B:hf-inference"
)

// Config - любой OpenAI-совместимый endpoint /chat/completions
// (Hugging Face router, OpenRouter, локальный vLLM)
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Params  llm.Params
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	params  llm.Params
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Params.MaxTokens == 0 {
		cfg.Params.MaxTokens = llm.DefaultMaxTokens
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		params:  cfg.Params,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type routerResponse struct {
	llm.ChatResponse
	Error json.RawMessage `json:"error,omitempty"`
}

// у разных роутеров error то строка, то объект
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (c *Client) Name() string { return "router" }

func (c *Client) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	req := llm.NewChatRequest(c.model, system, prompt, c.params)

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	respBody, statusCode, err := llm.DoRequest(c.client, httpReq)
	if err != nil {
		return "", err
	}

	if statusCode != http.StatusOK {
		return "", llm.HandleHTTPError(statusCode, respBody, c.logger, c.Name())
	}

	var chatResp routerResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if msg := errorMessage(chatResp.Error); msg != "" {
		return "", fmt.Errorf("%w: %s", llm.ErrRequestFailed, msg)
	}

	content, err := llm.ExtractContent(&chatResp.ChatResponse)
	if err != nil {
		return "", err
	}

	c.logger.Debug("router completion",
		zap.String("model", c.model),
		zap.Duration("took", time.Since(start)),
		zap.Int("response_len", len(content)),
		zap.String("finish_reason", chatResp.Choices[0].FinishReason),
	)

	return content, nil
}

func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return string(raw)
}

var _ llm.Client = (*Client)(nil)
