package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kitbuilder587/essayblitz/internal/domain"
	"github.com/kitbuilder587/essayblitz/internal/llm"
	llmMock "github.com/kitbuilder587/essayblitz/internal/llm/mock"
)

func essayOf(words int) string {
	return strings.TrimSpace(strings.Repeat("word ", words))
}

func createTestMessage(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{
			ID:       userID,
			UserName: "testuser",
		},
		Chat: &tgbotapi.Chat{
			ID: userID,
		},
		Text: text,
	}
}

// createTestCommand - сообщение с entity bot_command, как его присылает телеграм
func createTestCommand(userID int64, text string) *tgbotapi.Message {
	msg := createTestMessage(userID, text)
	cmd, _, _ := strings.Cut(text, " ")
	msg.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: len(cmd)},
	}
	return msg
}

func TestMapErrorToMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"too short with counts",
			&domain.ValidationError{Words: 12, MinWords: 80},
			"Your essay has 12 words. Please send at least 80 so the feedback is meaningful.",
		},
		{"too short sentinel", domain.ErrEssayTooShort, "Your essay is too short for meaningful feedback."},
		{"too long", domain.ErrEssayTooLong, "Your essay is too long. The limit is 20000 characters."},
		{"rate limited", domain.ErrRateLimited, "Too many essays at once. Please wait a minute."},
		{"daily quota", domain.ErrQuotaExceeded, "You have reached today's essay limit. Please come back tomorrow."},
		{
			"inference timeout",
			&domain.InferenceError{Provider: "router", Err: context.DeadlineExceeded},
			"The model took too long to answer. Please try again.",
		},
		{
			"provider rate limit",
			&domain.InferenceError{Provider: "router", Err: llm.ErrRateLimit},
			"The model is busy right now. Please try again in a minute.",
		},
		{
			"inference failure",
			&domain.InferenceError{Provider: "gemini", Err: llm.ErrAuthFailed},
			"Could not get feedback from the model. Please try again later.",
		},
		{"unknown", errors.New("some random error"), "Something went wrong. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErrorToMessage(tt.err)
			if got != tt.want {
				t.Errorf("mapErrorToMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapErrorToMessage_WrappedErrors(t *testing.T) {
	wrappedErr := fmt.Errorf("review: %w", &domain.ValidationError{Words: 3, MinWords: 10})
	got := mapErrorToMessage(wrappedErr)
	if !strings.Contains(got, "has 3 words") {
		t.Errorf("mapErrorToMessage(wrapped) = %v", got)
	}
}

func TestReviewStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&domain.ValidationError{Words: 1, MinWords: 2}, domain.StatusTooShort},
		{domain.ErrEssayTooLong, domain.StatusTooLong},
		{&domain.InferenceError{Err: llm.ErrRequestFailed}, domain.StatusInferError},
		{errors.New("boom"), statusError},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := reviewStatus(tt.err); got != tt.want {
				t.Errorf("reviewStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandler_Essay(t *testing.T) {
	tb := createTestBot(t, llmMock.New(), 100)

	status := tb.handler.HandleMessage(context.Background(), createTestMessage(123, essayOf(20)))

	if status != domain.StatusOK {
		t.Errorf("status = %q, want ok", status)
	}
	if tb.llm.Calls() != 1 {
		t.Errorf("llm calls = %d, want 1", tb.llm.Calls())
	}
	if tb.users.CallCount != 1 {
		t.Errorf("user registrations = %d, want 1", tb.users.CallCount)
	}
	if tb.out.actions != 1 {
		t.Errorf("typing actions = %d, want 1", tb.out.actions)
	}
	if !strings.Contains(tb.out.Last(), "<b>OVERALL 8/10</b>") {
		t.Errorf("reply should render feedback, got:\n%s", tb.out.Last())
	}
	if !strings.Contains(tb.llm.LastPrompt, "Prompt: "+domain.DefaultPrompt) {
		t.Errorf("empty prompt should default, got %q", tb.llm.LastPrompt)
	}

	entries := tb.logs.All()
	if len(entries) != 1 || entries[0].UserID != 123 {
		t.Errorf("audit entries = %+v", entries)
	}
	if tb.session(123).Last == nil {
		t.Error("session should keep the last feedback")
	}
}

func TestHandler_Essay_TooShort(t *testing.T) {
	tb := createTestBot(t, llmMock.New(), 100)

	status := tb.handler.HandleMessage(context.Background(), createTestMessage(1, "just four words here"))

	if status != domain.StatusTooShort {
		t.Errorf("status = %q, want too_short", status)
	}
	if tb.llm.Calls() != 0 {
		t.Error("too short essay must not reach the model")
	}
	want := "Your essay has 4 words. Please send at least 10 so the feedback is meaningful."
	if tb.out.Last() != want {
		t.Errorf("reply = %q, want %q", tb.out.Last(), want)
	}
}

func TestHandler_Essay_Degraded(t *testing.T) {
	tb := createTestBot(t, llmMock.New().WithResponse("Lovely essay <3 keep going"), 100)

	status := tb.handler.HandleMessage(context.Background(), createTestMessage(1, essayOf(20)))

	if status != domain.StatusDegraded {
		t.Errorf("status = %q, want degraded", status)
	}
	if !strings.Contains(tb.out.Last(), "Lovely essay &lt;3 keep going") {
		t.Errorf("degraded reply should carry raw text, got:\n%s", tb.out.Last())
	}
}

func TestHandler_Essay_InferenceError(t *testing.T) {
	tb := createTestBot(t, llmMock.New().WithError(llm.ErrRequestFailed), 100)

	status := tb.handler.HandleMessage(context.Background(), createTestMessage(1, essayOf(20)))

	if status != domain.StatusInferError {
		t.Errorf("status = %q, want inference_error", status)
	}
	if tb.out.Last() != "Could not get feedback from the model. Please try again later." {
		t.Errorf("reply = %q", tb.out.Last())
	}
	if tb.session(1).Last != nil {
		t.Error("failed request should not touch the session feedback")
	}
}

func TestHandler_Essay_UserError(t *testing.T) {
	tb := createTestBot(t, llmMock.New(), 100)
	tb.users.GetOrCreateFunc = func(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
		return nil, errors.New("db down")
	}

	status := tb.handler.HandleMessage(context.Background(), createTestMessage(1, essayOf(20)))

	if status != statusError {
		t.Errorf("status = %q, want error", status)
	}
	if tb.llm.Calls() != 0 {
		t.Error("model should not be called when registration fails")
	}
}

func TestHandler_Essay_NoUserService(t *testing.T) {
	tb := createTestBot(t, llmMock.New(), 100)
	tb.userService = nil

	if status := tb.handler.HandleMessage(context.Background(), createTestMessage(1, essayOf(20))); status != domain.StatusOK {
		t.Errorf("status = %q, want ok", status)
	}
}

func TestHandler_PromptCommand(t *testing.T) {
	tb := createTestBot(t, llmMock.New(), 100)
	ctx := context.Background()

	status := tb.handler.HandleMessage(ctx, createTestCommand(1, "/prompt   Why  this college?"))
	if status != statusCommand {
		t.Errorf("status = %q, want command", status)
	}
	if !strings.Contains(tb.out.Last(), "Why this college?") {
		t.Errorf("reply = %q", tb.out.Last())
	}

	tb.handler.HandleMessage(ctx, createTestMessage(1, essayOf(20)))
	if !strings.HasPrefix(tb.llm.LastPrompt, "Prompt: Why this college?\n") {
		t.Errorf("session prompt not used, got %q", tb.llm.LastPrompt)
	}

	// промпт в первой строке важнее сессии
	tb.handler.HandleMessage(ctx, createTestMessage(1, "Prompt: A hobby\n"+essayOf(20)))
	if !strings.HasPrefix(tb.llm.LastPrompt, "Prompt: A hobby\n") {
		t.Errorf("inline prompt not used, got %q", tb.llm.LastPrompt)
	}
	if tb.session(1).Prompt != "Why this college?" {
		t.Error("inline prompt should not replace the session prompt")
	}

	tb.handler.HandleMessage(ctx, createTestCommand(1, "/prompt"))
	if !strings.Contains(tb.out.Last(), "Prompt cleared") {
		t.Errorf("reply = %q", tb.out.Last())
	}
	tb.handler.HandleMessage(ctx, createTestMessage(1, essayOf(20)))
	if !strings.HasPrefix(tb.llm.LastPrompt, "Prompt: "+domain.DefaultPrompt+"\n") {
		t.Errorf("cleared prompt should default, got %q", tb.llm.LastPrompt)
	}
}

func TestHandler_PromptSurvivesSessionLoss(t *testing.T) {
	tb := createTestBot(t, llmMock.New(), 100)
	ctx := context.Background()

	tb.handler.HandleMessage(ctx, createTestCommand(1, "/prompt Why this college?"))
	if tb.users.prompts[1] != "Why this college?" {
		t.Fatalf("stored prompt = %q", tb.users.prompts[1])
	}

	// сессия истекла или бот перезапустился
	tb.sessions.Delete(sessionKey(1))

	tb.handler.HandleMessage(ctx, createTestMessage(1, essayOf(20)))
	if !strings.HasPrefix(tb.llm.LastPrompt, "Prompt: Why this college?\n") {
		t.Errorf("stored prompt not used, got %q", tb.llm.LastPrompt)
	}
}

func TestHandler_RawCommand(t *testing.T) {
	tb := createTestBot(t, llmMock.New().WithResponse("OVERALL: 9/10 -> great <3"), 100)
	ctx := context.Background()

	tb.handler.HandleMessage(ctx, createTestCommand(1, "/raw"))
	if tb.out.Last() != "No feedback yet. Send an essay first." {
		t.Errorf("reply before essay = %q", tb.out.Last())
	}

	tb.handler.HandleMessage(ctx, createTestMessage(1, essayOf(20)))
	tb.handler.HandleMessage(ctx, createTestCommand(1, "/raw"))

	want := "<pre>OVERALL: 9/10 -&gt; great &lt;3</pre>"
	if tb.out.Last() != want {
		t.Errorf("raw reply = %q, want %q", tb.out.Last(), want)
	}
}

func TestHandler_HistoryCommand(t *testing.T) {
	tb := createTestBot(t, llmMock.New(), 100)
	ctx := context.Background()

	tb.handler.HandleMessage(ctx, createTestCommand(1, "/history"))
	if tb.out.Last() != "No history yet." {
		t.Errorf("empty history reply = %q", tb.out.Last())
	}

	tb.handler.HandleMessage(ctx, createTestMessage(1, essayOf(20)))
	tb.handler.HandleMessage(ctx, createTestMessage(1, "too short"))
	tb.handler.HandleMessage(ctx, createTestCommand(1, "/history"))

	reply := tb.out.Last()
	for _, want := range []string{"20 words · ok", "2 words · too_short", "Total: 2"} {
		if !strings.Contains(reply, want) {
			t.Errorf("history reply missing %q:\n%s", want, reply)
		}
	}
}

func TestHandler_StartAndHelp(t *testing.T) {
	tb := createTestBot(t, llmMock.New(), 100)
	ctx := context.Background()

	tb.handler.HandleMessage(ctx, createTestCommand(1, "/start"))
	if !strings.Contains(tb.out.Last(), "at least 10 words") {
		t.Errorf("start reply = %q", tb.out.Last())
	}
	if tb.users.CallCount != 1 {
		t.Errorf("start should register the user")
	}

	tb.handler.HandleMessage(ctx, createTestCommand(1, "/help"))
	help := tb.out.Last()
	for _, want := range []string{"/prompt", "/raw", "/history", "Impact, Authenticity", "🟢 9/10 and up", "🟡 7/10 and up"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q", want)
		}
	}
	if tb.llm.Calls() != 0 {
		t.Error("commands must not call the model")
	}
}

func TestHandler_UnknownCommand(t *testing.T) {
	tb := createTestBot(t, llmMock.New(), 100)

	tb.handler.HandleMessage(context.Background(), createTestCommand(1, "/quick test"))

	if tb.out.Last() != "Unknown command. Use /help to see what I can do." {
		t.Errorf("reply = %q", tb.out.Last())
	}
	if tb.llm.Calls() != 0 {
		t.Error("unknown command must not call the model")
	}
}
