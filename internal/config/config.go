package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

var (
	ErrMissingToken    = errors.New("TELEGRAM_BOT_TOKEN is required")
	ErrMissingAPIKey   = errors.New("api key for llm provider is required")
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrInvalidLLM      = errors.New("invalid llm parameters")
)

const (
	ProviderRouter = "router"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

type Config struct {
	Telegram  TelegramConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Feedback  FeedbackConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

type TelegramConfig struct {
	Token string
}

// DatabaseConfig: пустой URL - аудит выключен
type DatabaseConfig struct {
	URL string
}

type LLMConfig struct {
	Provider          string
	Router            RouterConfig
	Gemini            GeminiConfig
	Temperature       float64
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerMinute int
}

type RouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type FeedbackConfig struct {
	Rubric     domain.Rubric
	RubricFile string
}

type HTTPConfig struct {
	Addr        string
	MetricsAddr string
	// AllowOrigins - пусто значит любой origin
	AllowOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type SessionConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
	// DailyEssays - суточная квота на пользователя бота, 0 выключает
	DailyEssays int
}

// Load читает окружение. Порядок для рубрики: дефолты, потом RUBRIC_FILE,
// потом явные ESSAY_*/SCORE_*/FEEDBACK_FORMAT.
func Load() (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderMock)),
			Router: RouterConfig{
				APIKey:  getEnvOrDefault("ROUTER_API_KEY", os.Getenv("HF_TOKEN")),
				Model:   getEnvOrDefault("ROUTER_MODEL", "HuggingFaceTB/SmolLM3-3B:hf-inference"),
				BaseURL: getEnvOrDefault("ROUTER_BASE_URL", "https://router.huggingface.co/v1"),
			},
			Gemini: GeminiConfig{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
			},
			Temperature:       getEnvFloatOrDefault("LLM_TEMPERATURE", 0.7),
			MaxTokens:         getEnvIntOrDefault("LLM_MAX_TOKENS", 1200),
			Timeout:           time.Duration(getEnvIntOrDefault("LLM_TIMEOUT_SEC", 60)) * time.Second,
			RequestsPerMinute: getEnvIntOrDefault("LLM_REQUESTS_PER_MINUTE", 0),
		},
		Feedback: FeedbackConfig{
			Rubric:     domain.DefaultRubric(),
			RubricFile: os.Getenv("RUBRIC_FILE"),
		},
		HTTP: HTTPConfig{
			Addr:         getEnvOrDefault("HTTP_ADDR", ":8080"),
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9090"),
			AllowOrigins: splitList(os.Getenv("CORS_ALLOW_ORIGINS")),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Session: SessionConfig{
			TTL: time.Duration(getEnvIntOrDefault("SESSION_TTL_SEC", 3600)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 5),
			DailyEssays:       getEnvIntOrDefault("DAILY_ESSAY_LIMIT", 0),
		},
	}

	if cfg.Feedback.RubricFile != "" {
		rubric, err := LoadRubricFile(cfg.Feedback.RubricFile, cfg.Feedback.Rubric)
		if err != nil {
			return nil, err
		}
		cfg.Feedback.Rubric = rubric
	}

	if err := applyRubricEnv(&cfg.Feedback.Rubric); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyRubricEnv(r *domain.Rubric) error {
	if v := os.Getenv("ESSAY_MIN_WORDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ESSAY_MIN_WORDS: %w", domain.ErrInvalidMinWords)
		}
		r.MinWords = n
	}
	if v := os.Getenv("ESSAY_CATEGORIES"); v != "" {
		r.Categories = splitList(v)
	}
	r.Thresholds.Good = getEnvFloatOrDefault("SCORE_GOOD", r.Thresholds.Good)
	r.Thresholds.OK = getEnvFloatOrDefault("SCORE_OK", r.Thresholds.OK)
	if v := os.Getenv("FEEDBACK_FORMAT"); v != "" {
		f, err := domain.ParseFormatKind(v)
		if err != nil {
			return fmt.Errorf("FEEDBACK_FORMAT=%q: %w", v, err)
		}
		r.Format = f
	}
	return nil
}

// Validate проверяет политику фидбэка и провайдера. Токен бота тут не
// нужен: CLI и HTTP работают без него.
func (c *Config) Validate() error {
	if err := c.Feedback.Rubric.Validate(); err != nil {
		return fmt.Errorf("rubric: %w", err)
	}

	switch c.LLM.Provider {
	case ProviderRouter:
		if c.LLM.Router.APIKey == "" {
			return fmt.Errorf("%w: set ROUTER_API_KEY or HF_TOKEN", ErrMissingAPIKey)
		}
	case ProviderGemini:
		if c.LLM.Gemini.APIKey == "" {
			return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.LLM.Provider)
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 || c.LLM.MaxTokens <= 0 {
		return ErrInvalidLLM
	}
	return nil
}

// ValidateBot - то же плюс токен телеграма
func (c *Config) ValidateBot() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	return c.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
