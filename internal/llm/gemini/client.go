package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kitbuilder587/essayblitz/internal/llm"
)

const DefaultModel = "gemini-1.5-flash"

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Params  llm.Params
}

type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	params  llm.Params
	logger  *zap.Logger
}

func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is empty", llm.ErrAuthFailed)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		client:  cl,
		model:   strings.TrimSpace(cfg.Model),
		timeout: cfg.Timeout,
		params:  cfg.Params,
		logger:  logger,
	}, nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	m := c.client.GenerativeModel(c.model)
	m.GenerationConfig = generationConfig(c.params)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", mapError(err, c.logger)
	}

	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return "", llm.ErrEmptyResponse
	}
	return txt, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func generationConfig(p llm.Params) genai.GenerationConfig {
	cfg := genai.GenerationConfig{
		Temperature: ptrFloat32(float32(p.Temperature)),
	}
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = ptrInt32(int32(p.MaxTokens))
	}
	if p.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

// mapError переводит ошибки Google API в общие ошибки llm
func mapError(err error, logger *zap.Logger) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return llm.ErrAuthFailed
		case http.StatusTooManyRequests:
			return llm.ErrRateLimit
		}
		logger.Error("gemini request failed",
			zap.Int("status", gerr.Code),
			zap.String("message", gerr.Message),
		)
		return fmt.Errorf("%w: status %d", llm.ErrRequestFailed, gerr.Code)
	}
	return fmt.Errorf("%w: %v", llm.ErrRequestFailed, err)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }

func ptrInt32(v int32) *int32 { return &v }

var _ llm.Client = (*Client)(nil)
