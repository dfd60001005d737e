package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/essayblitz/internal/cache"
	"github.com/kitbuilder587/essayblitz/internal/metrics"
	"github.com/kitbuilder587/essayblitz/internal/ratelimit"
	"github.com/kitbuilder587/essayblitz/internal/service"
)

const surface = "telegram"

type BotConfig struct {
	Token             string
	Debug             bool
	RequestsPerMinute int
	SessionTTL        time.Duration
}

// Session - состояние одного чата: промпт для следующих эссе и последний
// отзыв (нужен для /raw). Перезаписывается каждым новым эссе.
type Session struct {
	Prompt string
	Last   *service.ReviewResult
}

// sender - то, что бот умеет отправлять; в проде это *tgbotapi.BotAPI
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api             *tgbotapi.BotAPI
	out             sender
	userService     service.UserService
	feedbackService service.FeedbackService
	sessions        cache.Cache[Session]
	sessionTTL      time.Duration
	logger          *zap.Logger
	metrics         *metrics.Metrics
	handler         *Handler
	rateLimiter     *ratelimit.Limiter
	wg              sync.WaitGroup
}

// New создает бота. userSvc может быть nil, тогда пользователи не регистрируются.
func New(cfg BotConfig, userSvc service.UserService, feedbackSvc service.FeedbackService, sessions cache.Cache[Session], logger *zap.Logger, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	api.Debug = cfg.Debug

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}

	rateLimiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RequestsPerMinute,
	})

	bot := &Bot{
		api:             api,
		out:             api,
		userService:     userSvc,
		feedbackService: feedbackSvc,
		sessions:        sessions,
		sessionTTL:      cfg.SessionTTL,
		logger:          logger,
		metrics:         m,
		rateLimiter:     rateLimiter,
	}

	bot.handler = NewHandler(bot)

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
	)

	return bot, nil
}

func (b *Bot) Run(ctx context.Context) error {
	defer b.rateLimiter.Stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping, waiting for handlers to finish")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.logger.Info("all handlers finished")
			return ctx.Err()
		case update := <-updates:
			if !handleable(update) {
				continue
			}
			b.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleable: сообщения из каналов и часть служебных приходят без From,
// отвечать на них некому
func handleable(update tgbotapi.Update) bool {
	return update.Message != nil && update.Message.From != nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if !handleable(update) {
		return
	}
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			chatID := int64(0)
			if update.Message != nil && update.Message.Chat != nil {
				chatID = update.Message.Chat.ID
			}
			b.logger.Error("panic in update handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", chatID),
			)
			if b.metrics != nil {
				b.metrics.RecordRequest(surface, "panic", time.Since(startTime))
			}
		}
	}()

	status := b.handler.HandleMessage(ctx, update.Message)

	if b.metrics != nil {
		b.metrics.RecordRequest(surface, status, time.Since(startTime))
	}
}

func (b *Bot) Send(chatID int64, text string) error {
	if b.out == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	_, err := b.out.Send(msg)
	return err
}

// SendLong режет длинный HTML по лимиту телеграма
func (b *Bot) SendLong(chatID int64, text string) {
	for _, part := range SplitMessage(text, maxMessageLength) {
		if err := b.Send(chatID, part); err != nil {
			b.logger.Error("failed to send message",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
			)
		}
	}
}

func (b *Bot) SendTyping(chatID int64) {
	if b.out == nil {
		return
	}
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	b.out.Send(action)
}

func (b *Bot) RecordRateLimitHit() {
	if b.metrics != nil {
		b.metrics.RecordRateLimitHit(surface)
	}
}

func sessionKey(chatID int64) string {
	return "chat:" + strconv.FormatInt(chatID, 10)
}

func (b *Bot) session(chatID int64) Session {
	if b.sessions == nil {
		return Session{}
	}
	s, _ := b.sessions.Get(sessionKey(chatID))
	return s
}

func (b *Bot) saveSession(chatID int64, s Session) {
	if b.sessions == nil {
		return
	}
	b.sessions.Set(sessionKey(chatID), s, b.sessionTTL)

	if b.metrics != nil {
		if counter, ok := b.sessions.(interface{ Len() int }); ok {
			b.metrics.SetActiveSessions(counter.Len())
		}
	}
}
