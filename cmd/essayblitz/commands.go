package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/essayblitz/internal/cache/memory"
	"github.com/kitbuilder587/essayblitz/internal/feedback"
	"github.com/kitbuilder587/essayblitz/internal/httpapi"
	"github.com/kitbuilder587/essayblitz/internal/telegram"
)

// sampleEssay нужен команде prompt, когда файл не передан
const sampleEssay = `The summer my grandmother stopped recognizing me, I started cooking her recipes.
I did not know how to make dumplings, and the first batch fell apart in the pot.
She watched from the kitchen table and, for a moment, corrected my folding.`

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	sessions := memory.NewWithContext[telegram.Session](ctx, time.Minute)
	defer sessions.Stop()

	bot, err := telegram.New(telegram.BotConfig{
		Token:             cfg.Telegram.Token,
		Debug:             cfg.Log.Level == "debug",
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		SessionTTL:        cfg.Session.TTL,
	}, a.users, a.feedback, sessions, a.logger, a.metrics)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	metricsSrv := &http.Server{
		Addr:              cfg.HTTP.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(gctx)
	})

	g.Go(func() error {
		a.logger.Info("metrics server listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	return ignoreCanceled(g.Wait())
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	srv := httpapi.New(httpapi.Config{
		Addr:              cfg.HTTP.Addr,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		AllowOrigins:      cfg.HTTP.AllowOrigins,
	}, a.feedback, a.metrics, a.logger)

	return ignoreCanceled(srv.Run(ctx))
}

// runPrompt печатает ровно ту пару сообщений, что уйдет в модель.
// К модели не обращается, ключи провайдера не нужны.
func runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	essay := sampleEssay
	if len(args) == 1 {
		essay, err = readEssay(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	builder, err := feedback.NewBuilder(cfg.Feedback.Rubric, feedback.DefaultLabels())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== SYSTEM ===")
	fmt.Fprintln(out, builder.Instruction())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== USER ===")
	fmt.Fprintln(out, feedback.UserMessage(strings.TrimSpace(essay), promptOrDefault(promptText)))
	return nil
}

func readEssay(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read essay: %w", err)
	}
	return string(data), nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
