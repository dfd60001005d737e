package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/essayblitz/internal/domain"
	"github.com/kitbuilder587/essayblitz/internal/service"
)

// reviewOutcome - результат по одному файлу. Ошибка одного файла не
// останавливает остальные.
type reviewOutcome struct {
	Path   string
	Result *service.ReviewResult
	Err    error
}

type reviewJSON struct {
	Path      string                `json:"path"`
	ID        string                `json:"id,omitempty"`
	WordCount int                   `json:"word_count,omitempty"`
	Provider  string                `json:"provider,omitempty"`
	Feedback  *domain.EssayFeedback `json:"feedback,omitempty"`
	Error     string                `json:"error,omitempty"`
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	if concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]reviewOutcome, len(args))
	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Reviewing essays"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range args {
		g.Go(func() error {
			defer bar.Add(1)

			outcomes[i].Path = path
			essay, err := readEssay(path, cmd.InOrStdin())
			if err != nil {
				outcomes[i].Err = err
				return nil
			}

			res, err := a.feedback.Review(gctx, &domain.FeedbackRequest{
				Essay:  essay,
				Prompt: promptText,
			})
			outcomes[i].Result = res
			outcomes[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()

	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(out, outcomes); err != nil {
			return err
		}
	} else {
		writeText(out, outcomes, a.feedback.Rubric().Thresholds)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d essays failed", failed, len(outcomes))
	}
	return ctx.Err()
}

func writeJSON(w io.Writer, outcomes []reviewOutcome) error {
	items := make([]reviewJSON, 0, len(outcomes))
	for _, o := range outcomes {
		item := reviewJSON{Path: o.Path}
		if o.Err != nil {
			item.Error = o.Err.Error()
		} else if o.Result != nil {
			fb := o.Result.Feedback
			item.ID = o.Result.ID
			item.WordCount = o.Result.WordCount
			item.Provider = o.Result.Provider
			item.Feedback = &fb
		}
		items = append(items, item)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func writeText(w io.Writer, outcomes []reviewOutcome, t domain.Thresholds) {
	for i, o := range outcomes {
		if len(outcomes) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "### %s\n\n", o.Path)
		}
		if o.Err != nil {
			fmt.Fprintf(w, "error: %v\n", o.Err)
			continue
		}
		fmt.Fprint(w, renderPlain(o.Result.Feedback, t))
	}
}

// renderPlain - текстовая версия отзыва для терминала
func renderPlain(fb domain.EssayFeedback, t domain.Thresholds) string {
	if fb.Degraded {
		if strings.TrimSpace(fb.RawText) == "" {
			return "The model returned an empty answer.\n"
		}
		return "Could not read a structured answer, showing the model output as is:\n\n" + fb.RawText + "\n"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "OVERALL %s [%s]\n", fb.OverallScore, t.Classify(fb.OverallScore))
	if fb.OverallComment != "" {
		sb.WriteString(fb.OverallComment + "\n")
	}

	if fb.PromptFitScore.Valid || fb.PromptFitComment != "" {
		fmt.Fprintf(&sb, "\nPrompt fit %s [%s]\n", fb.PromptFitScore, t.Classify(fb.PromptFitScore))
		if fb.PromptFitComment != "" {
			sb.WriteString(fb.PromptFitComment + "\n")
		}
	}

	if len(fb.Categories) > 0 {
		sb.WriteString("\nCategories\n")
		for _, c := range fb.Categories {
			fmt.Fprintf(&sb, "  %-16s %-6s [%s]", c.Name, c.Score, t.Classify(c.Score))
			if c.Reason != "" {
				sb.WriteString(" " + c.Reason)
			}
			sb.WriteString("\n")
		}
	}

	if len(fb.Fixes) > 0 {
		sb.WriteString("\nFixes\n")
		for i, fix := range fb.Fixes {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, fix)
		}
	}

	if fb.PolishedParagraph != "" {
		sb.WriteString("\nRewritten paragraph\n")
		sb.WriteString(fb.PolishedParagraph + "\n")
	}

	if fb.FinalNote != "" {
		sb.WriteString("\n" + fb.FinalNote + "\n")
	}

	return sb.String()
}

func promptOrDefault(p string) string {
	if p = strings.TrimSpace(p); p == "" {
		return domain.DefaultPrompt
	}
	return p
}
