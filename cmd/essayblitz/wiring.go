package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kitbuilder587/essayblitz/internal/config"
	"github.com/kitbuilder587/essayblitz/internal/domain"
	"github.com/kitbuilder587/essayblitz/internal/llm"
	"github.com/kitbuilder587/essayblitz/internal/llm/gemini"
	llmMock "github.com/kitbuilder587/essayblitz/internal/llm/mock"
	"github.com/kitbuilder587/essayblitz/internal/llm/router"
	"github.com/kitbuilder587/essayblitz/internal/metrics"
	"github.com/kitbuilder587/essayblitz/internal/repository"
	"github.com/kitbuilder587/essayblitz/internal/repository/postgres"
	"github.com/kitbuilder587/essayblitz/internal/service"
)

// app - всё, что нужно любой команде. close освобождает ресурсы в обратном порядке.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	llm      llm.Client
	users    service.UserService
	feedback service.FeedbackService
	closers  []func()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if rubricPath != "" {
		rubric, err := config.LoadRubricFile(rubricPath, cfg.Feedback.Rubric)
		if err != nil {
			return nil, err
		}
		if err := rubric.Validate(); err != nil {
			return nil, fmt.Errorf("rubric %s: %w", rubricPath, err)
		}
		cfg.Feedback.Rubric = rubric
	}
	return cfg, nil
}

// newApp собирает зависимости. withStorage=false для CLI-команд, которым
// аудит не нужен, даже если DATABASE_URL задан.
func newApp(ctx context.Context, cfg *config.Config, withStorage bool) (*app, error) {
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	client, err := a.newLLMClient(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.llm = llm.NewThrottled(client, cfg.LLM.RequestsPerMinute, logger)

	var logs repository.FeedbackLogRepository
	if withStorage && cfg.Database.URL != "" {
		db, err := postgres.New(ctx, cfg.Database.URL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		if err := db.Migrate(ctx); err != nil {
			a.close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database connected, feedback audit enabled")

		logs = postgres.NewFeedbackLogRepo(db)
		a.users = service.NewUserService(postgres.NewUserRepo(db), logger)
	} else if withStorage {
		logger.Info("DATABASE_URL is empty, feedback audit disabled")
	}

	a.feedback, err = service.NewFeedbackService(service.FeedbackServiceDeps{
		LLM:        a.llm,
		Logs:       logs,
		Logger:     logger,
		Metrics:    a.metrics,
		Rubric:     cfg.Feedback.Rubric,
		Timeout:    cfg.LLM.Timeout,
		DailyLimit: cfg.RateLimit.DailyEssays,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create feedback service: %w", err)
	}

	logger.Info("essayblitz ready",
		zap.String("provider", a.llm.Name()),
		zap.String("format", cfg.Feedback.Rubric.Format.String()),
		zap.Int("min_words", cfg.Feedback.Rubric.MinWords),
		zap.Strings("categories", cfg.Feedback.Rubric.Categories),
	)
	return a, nil
}

func (a *app) newLLMClient(ctx context.Context) (llm.Client, error) {
	cfg := a.cfg.LLM
	params := llm.Params{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		JSONMode:    a.cfg.Feedback.Rubric.Format != domain.FormatText,
	}

	switch cfg.Provider {
	case config.ProviderRouter:
		return router.New(router.Config{
			APIKey:  cfg.Router.APIKey,
			Model:   cfg.Router.Model,
			BaseURL: cfg.Router.BaseURL,
			Timeout: cfg.Timeout,
			Params:  params,
		}, a.logger), nil
	case config.ProviderGemini:
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Timeout,
			Params:  params,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return client, nil
	case config.ProviderMock:
		a.logger.Warn("using mock llm provider, feedback is canned")
		return llmMock.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
