package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	rubricPath  string
	promptText  string
	jsonOutput  bool
	concurrency int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "essayblitz",
		Short: "essayblitz - structured feedback on personal essays",
		Long: `essayblitz asks a language model to review a personal essay against a
scoring rubric and turns the answer into structured feedback:
overall score, prompt fit, per-category scores, fixes and a polished paragraph.`,
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&rubricPath, "rubric", "", "Path to a rubric file (.toml or .yaml), applied on top of RUBRIC_FILE and env overrides")

	botCmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long:  "Run the Telegram bot together with the Prometheus metrics endpoint on METRICS_ADDR",
		Args:  cobra.NoArgs,
		RunE:  runBot,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve POST /v1/feedback, GET /v1/rubric, /healthz and /metrics on HTTP_ADDR",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	reviewCmd := &cobra.Command{
		Use:   "review <essay-file>...",
		Short: "Review essay files from the command line",
		Long:  "Review one or more essay files. Use - to read an essay from stdin.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReview,
	}
	reviewCmd.Flags().StringVarP(&promptText, "prompt", "p", "", "Essay prompt the essays answer")
	reviewCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print feedback as JSON")
	reviewCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 2, "How many essays to review in parallel")

	promptCmd := &cobra.Command{
		Use:   "prompt [essay-file]",
		Short: "Print the instruction sent to the model",
		Long:  "Print the system instruction and the user message built for an essay (a sample essay if no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPrompt,
	}
	promptCmd.Flags().StringVarP(&promptText, "prompt", "p", "", "Essay prompt the essay answers")

	rootCmd.AddCommand(botCmd, serveCmd, reviewCmd, promptCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext отменяется по SIGINT/SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
