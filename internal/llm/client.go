package llm

import (
	"context"
	"errors"
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response")
	ErrRateLimit     = errors.New("rate limit exceeded")
)

// Client - модель, которая по system-инструкции и сообщению возвращает текст.
// Ретраев внутри нет.
type Client interface {
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Params - параметры генерации, общие для всех провайдеров
type Params struct {
	Temperature float64
	MaxTokens   int
	// просить у провайдера ответ строго в JSON, если он это умеет
	JSONMode bool
}

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1200
)

func DefaultParams() Params {
	return Params{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}
