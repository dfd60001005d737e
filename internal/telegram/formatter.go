package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

// лимит телеграма на одно сообщение
const maxMessageLength = 4096

// FormatFeedback рендерит отзыв в HTML для телеграма. Деградированный
// отзыв показывается как есть, без попытки что-то достроить.
func FormatFeedback(fb domain.EssayFeedback, t domain.Thresholds) string {
	if fb.Degraded {
		return FormatDegraded(fb.RawText)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <b>OVERALL %s</b>\n", getLevelIcon(t.Classify(fb.OverallScore)), fb.OverallScore))
	if fb.OverallComment != "" {
		sb.WriteString("<i>" + html.EscapeString(fb.OverallComment) + "</i>\n")
	}

	if fb.PromptFitScore.Valid || fb.PromptFitComment != "" {
		sb.WriteString(fmt.Sprintf("\n%s <b>Prompt fit %s</b>\n", getLevelIcon(t.Classify(fb.PromptFitScore)), fb.PromptFitScore))
		if fb.PromptFitComment != "" {
			sb.WriteString(html.EscapeString(fb.PromptFitComment) + "\n")
		}
	}

	if len(fb.Categories) > 0 {
		sb.WriteString("\n━━━━━━━━━━━━━━━━━━━━━\n")
		for _, c := range fb.Categories {
			sb.WriteString(fmt.Sprintf("%s <b>%s</b> %s",
				getLevelIcon(t.Classify(c.Score)),
				html.EscapeString(c.Name),
				c.Score,
			))
			if c.Reason != "" {
				sb.WriteString(" · " + html.EscapeString(c.Reason))
			}
			sb.WriteString("\n")
		}
	}

	if len(fb.Fixes) > 0 {
		sb.WriteString("\n<b>Fixes</b>\n")
		for i, fix := range fb.Fixes {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, html.EscapeString(fix)))
		}
	}

	if fb.PolishedParagraph != "" {
		sb.WriteString("\n<b>Rewritten paragraph</b>\n")
		sb.WriteString("<blockquote>" + html.EscapeString(fb.PolishedParagraph) + "</blockquote>\n")
	}

	if fb.FinalNote != "" {
		sb.WriteString("\n✨ " + html.EscapeString(fb.FinalNote))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func FormatDegraded(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "<i>The model returned an empty answer. Please send the essay again.</i>"
	}
	return "<i>I could not read the usual structure, so here is the feedback as the model wrote it:</i>\n\n" +
		html.EscapeString(raw)
}

// FormatRaw - ответ модели целиком, для /raw
func FormatRaw(raw string) string {
	return "<pre>" + html.EscapeString(strings.TrimSpace(raw)) + "</pre>"
}

func FormatHistory(entries []domain.FeedbackLog) string {
	var sb strings.Builder
	sb.WriteString("<b>Your recent essays:</b>\n\n")

	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s %s · %d words · %s\n",
			i+1,
			getStatusIcon(e.Status),
			e.CreatedAt.UTC().Format(time.DateTime),
			e.WordCount,
			html.EscapeString(e.Status),
		))
	}

	sb.WriteString(fmt.Sprintf("\nTotal: %d", len(entries)))
	return sb.String()
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > len(text) {
			splitPoint = maxLen
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSafeSplitPoint(text string, maxLen int) int {
	// ищем пробел или перевод строки, не ломая HTML-теги
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}

		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	// внутри тега - ищем конец
	if maxLen < len(text) && isInsideHTMLTag(text, maxLen) {
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				for j := i + 1; j < len(text) && j < i+50; j++ {
					if text[j] == '\n' || text[j] == ' ' {
						return j + 1
					}
				}
				return i + 1
			}
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return maxLen
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}

func getLevelIcon(level domain.Level) string {
	switch level {
	case domain.LevelGood:
		return "🟢"
	case domain.LevelOK:
		return "🟡"
	case domain.LevelBad:
		return "🔴"
	default:
		return "⚪"
	}
}

func getStatusIcon(status string) string {
	switch status {
	case domain.StatusOK:
		return "●"
	case domain.StatusDegraded:
		return "◐"
	default:
		return "○"
	}
}
