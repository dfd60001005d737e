package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/essayblitz/internal/domain"
	"github.com/kitbuilder587/essayblitz/internal/llm"
	"github.com/kitbuilder587/essayblitz/internal/ratelimit"
)

// статусы для метрик
const (
	statusCommand     = "command"
	statusRateLimited = "rate_limited"
	statusError       = "error"
)

const historyLimit = 5

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

// HandleMessage разбирает одно сообщение. Возвращает статус для метрик.
func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) string {
	h.bot.logger.Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Bool("is_command", msg.IsCommand()),
	)

	if msg.IsCommand() {
		h.handleCommand(ctx, msg)
		return statusCommand
	}
	return h.handleEssay(ctx, msg)
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "prompt":
		h.handlePrompt(ctx, msg)
	case "raw":
		h.handleRaw(ctx, msg)
	case "history":
		h.handleHistory(ctx, msg)
	default:
		h.bot.Send(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if h.bot.userService != nil {
		if _, err := h.bot.userService.GetOrCreate(ctx, msg.From.ID, msg.From.UserName); err != nil {
			h.bot.logger.Error("failed to register user", zap.Error(err))
			h.bot.Send(msg.Chat.ID, "Something went wrong. Please try again later.")
			return
		}
	}

	rubric := h.bot.feedbackService.Rubric()
	h.bot.Send(msg.Chat.ID, fmt.Sprintf(
		"Hi! Send me your essay (at least %d words) and I will score it and suggest fixes.\n\n"+
			"Set the essay prompt first with /prompt, or use /help for all commands.",
		rubric.MinWords,
	))
}

func (h *Handler) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	rubric := h.bot.feedbackService.Rubric()

	helpText := fmt.Sprintf(`<b>Commands:</b>

/start - Register and get started
/help - Show this help
/prompt text - Set the essay prompt for the next essays
/prompt - Clear the prompt
/raw - Show the last model answer as is
/history - Your last %d requests

<b>How to use:</b>
Send the essay as a plain message, at least %d words.
You can put the prompt on the first line:
<code>Prompt: A challenge you overcame</code>

<b>Scored on:</b> %s
🟢 %s and up · 🟡 %s and up · 🔴 below`,
		historyLimit,
		rubric.MinWords,
		html.EscapeString(strings.Join(rubric.Categories, ", ")),
		domain.NewScore(rubric.Thresholds.Good),
		domain.NewScore(rubric.Thresholds.OK),
	)

	h.bot.Send(msg.Chat.ID, helpText)
}

func (h *Handler) handlePrompt(ctx context.Context, msg *tgbotapi.Message) {
	prompt := ParsePromptCommand(msg.CommandArguments())

	s := h.bot.session(msg.Chat.ID)
	s.Prompt = prompt
	h.bot.saveSession(msg.Chat.ID, s)

	if h.bot.userService != nil {
		if err := h.bot.userService.SetPrompt(ctx, msg.From.ID, msg.From.UserName, prompt); err != nil {
			// в сессии промпт уже есть, просто не переживет рестарт
			h.bot.logger.Warn("failed to save prompt", zap.Error(err), zap.Int64("user_id", msg.From.ID))
		}
	}

	if prompt == "" {
		h.bot.Send(msg.Chat.ID, fmt.Sprintf("Prompt cleared. Essays will be reviewed as %q.", domain.DefaultPrompt))
		return
	}
	h.bot.Send(msg.Chat.ID, "Prompt set: <i>"+html.EscapeString(prompt)+"</i>\nNow send the essay.")
}

func (h *Handler) handleRaw(ctx context.Context, msg *tgbotapi.Message) {
	s := h.bot.session(msg.Chat.ID)
	if s.Last == nil {
		h.bot.Send(msg.Chat.ID, "No feedback yet. Send an essay first.")
		return
	}

	raw := strings.TrimSpace(s.Last.Feedback.RawText)
	if raw == "" {
		h.bot.Send(msg.Chat.ID, "The last model answer was empty.")
		return
	}

	// каждый кусок в своем <pre>, иначе тег порвется на границе
	for _, part := range SplitMessage(html.EscapeString(raw), maxMessageLength-len("<pre></pre>")) {
		if err := h.bot.Send(msg.Chat.ID, "<pre>"+part+"</pre>"); err != nil {
			h.bot.logger.Error("failed to send message", zap.Error(err))
		}
	}
}

func (h *Handler) handleHistory(ctx context.Context, msg *tgbotapi.Message) {
	entries, err := h.bot.feedbackService.History(ctx, msg.From.ID, historyLimit)
	if err != nil {
		h.bot.logger.Error("failed to load history", zap.Error(err))
		h.bot.Send(msg.Chat.ID, "Something went wrong. Please try again later.")
		return
	}
	if len(entries) == 0 {
		h.bot.Send(msg.Chat.ID, "No history yet.")
		return
	}
	h.bot.Send(msg.Chat.ID, FormatHistory(entries))
}

func (h *Handler) handleEssay(ctx context.Context, msg *tgbotapi.Message) string {
	key := ratelimit.UserKey(msg.From.ID)
	if !h.bot.rateLimiter.Allow(key) {
		h.bot.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", msg.From.ID),
			zap.Time("reset_at", h.bot.rateLimiter.ResetTime(key)),
		)
		h.bot.RecordRateLimitHit()
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(domain.ErrRateLimited))
		return statusRateLimited
	}

	var storedPrompt string
	if h.bot.userService != nil {
		user, err := h.bot.userService.GetOrCreate(ctx, msg.From.ID, msg.From.UserName)
		if err != nil {
			h.bot.logger.Error("failed to register user", zap.Error(err))
			h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
			return statusError
		}
		storedPrompt = user.Prompt
	}

	// порядок: строка Prompt: в сообщении, сессия, сохраненный /prompt
	essay, prompt := ParseEssayMessage(msg.Text)
	s := h.bot.session(msg.Chat.ID)
	if prompt == "" {
		prompt = s.Prompt
	}
	if prompt == "" {
		prompt = storedPrompt
	}

	h.bot.SendTyping(msg.Chat.ID)

	res, err := h.bot.feedbackService.Review(ctx, &domain.FeedbackRequest{
		UserID: msg.From.ID,
		Essay:  essay,
		Prompt: prompt,
	})
	if err != nil {
		h.bot.logger.Warn("essay review failed",
			zap.Error(err),
			zap.Int64("user_id", msg.From.ID),
		)
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return reviewStatus(err)
	}

	s.Last = res
	h.bot.saveSession(msg.Chat.ID, s)

	h.bot.SendLong(msg.Chat.ID, FormatFeedback(res.Feedback, h.bot.feedbackService.Rubric().Thresholds))

	if res.Feedback.Degraded {
		return domain.StatusDegraded
	}
	return domain.StatusOK
}

func reviewStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrEssayTooShort):
		return domain.StatusTooShort
	case errors.Is(err, domain.ErrEssayTooLong):
		return domain.StatusTooLong
	case errors.Is(err, domain.ErrInferenceFailed):
		return domain.StatusInferError
	case errors.Is(err, domain.ErrQuotaExceeded):
		return domain.StatusQuota
	default:
		return statusError
	}
}

func mapErrorToMessage(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("Your essay has %d words. Please send at least %d so the feedback is meaningful.", verr.Words, verr.MinWords)
	case errors.Is(err, domain.ErrEssayTooShort):
		return "Your essay is too short for meaningful feedback."
	case errors.Is(err, domain.ErrEssayTooLong):
		return fmt.Sprintf("Your essay is too long. The limit is %d characters.", domain.MaxEssayLength)
	case errors.Is(err, domain.ErrRateLimited):
		return "Too many essays at once. Please wait a minute."
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "You have reached today's essay limit. Please come back tomorrow."
	case errors.Is(err, context.DeadlineExceeded):
		return "The model took too long to answer. Please try again."
	case errors.Is(err, llm.ErrRateLimit):
		return "The model is busy right now. Please try again in a minute."
	case errors.Is(err, domain.ErrInferenceFailed):
		return "Could not get feedback from the model. Please try again later."
	default:
		return "Something went wrong. Please try again later."
	}
}
