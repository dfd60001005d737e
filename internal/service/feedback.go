package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kitbuilder587/essayblitz/internal/domain"
	"github.com/kitbuilder587/essayblitz/internal/feedback"
	"github.com/kitbuilder587/essayblitz/internal/llm"
	"github.com/kitbuilder587/essayblitz/internal/metrics"
	"github.com/kitbuilder587/essayblitz/internal/repository"
)

const (
	DefaultInferenceTimeout = 60 * time.Second
	DefaultHistoryLimit     = 10
)

type FeedbackService interface {
	Review(ctx context.Context, req *domain.FeedbackRequest) (*ReviewResult, error)
	History(ctx context.Context, userID int64, limit int) ([]domain.FeedbackLog, error)
	Rubric() domain.Rubric
	Instruction() string
}

// ReviewResult - разобранный отзыв плюс метаданные запроса
type ReviewResult struct {
	ID        string
	Feedback  domain.EssayFeedback
	Format    domain.FormatKind
	WordCount int
	Provider  string
	Duration  time.Duration
}

// FeedbackServiceDeps - зависимости FeedbackService. Logs и Metrics
// опциональны: без них аудит и метрики просто не пишутся.
type FeedbackServiceDeps struct {
	LLM     llm.Client
	Logs    repository.FeedbackLogRepository
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Rubric  domain.Rubric
	Labels  feedback.Labels
	Timeout time.Duration
	// DailyLimit - сколько эссе пользователь может прислать за сутки.
	// 0 - без ограничения. Работает только с аудитом.
	DailyLimit int
}

type feedbackService struct {
	llm     llm.Client
	logs    repository.FeedbackLogRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
	rubric  domain.Rubric
	builder *feedback.Builder
	parser  *feedback.Parser
	timeout time.Duration
	daily   int
	newID   func() string
	now     func() time.Time
}

func NewFeedbackService(deps FeedbackServiceDeps) (FeedbackService, error) {
	if deps.LLM == nil {
		return nil, errors.New("feedback service: llm client is required")
	}
	if err := deps.Rubric.Validate(); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultInferenceTimeout
	}
	if len(deps.Labels.Overall) == 0 {
		deps.Labels = feedback.DefaultLabels()
	}

	builder, err := feedback.NewBuilder(deps.Rubric, deps.Labels)
	if err != nil {
		return nil, err
	}

	return &feedbackService{
		llm:     deps.LLM,
		logs:    deps.Logs,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		rubric:  deps.Rubric,
		builder: builder,
		parser:  feedback.NewParser(deps.Rubric.Categories, deps.Labels),
		timeout: deps.Timeout,
		daily:   deps.DailyLimit,
		newID:   uuid.NewString,
		now:     time.Now,
	}, nil
}

func (s *feedbackService) Rubric() domain.Rubric { return s.rubric }

func (s *feedbackService) Instruction() string { return s.builder.Instruction() }

// Review: проверка длины, запрос к модели, разбор ответа. Деградированный
// разбор не ошибка, вызывающий показывает сырой текст.
func (s *feedbackService) Review(ctx context.Context, req *domain.FeedbackRequest) (*ReviewResult, error) {
	start := time.Now()
	id := s.newID()

	if s.metrics != nil {
		s.metrics.IncRequestsInFlight()
		defer s.metrics.DecRequestsInFlight()
	}

	req.Sanitize()
	entry := &domain.FeedbackLog{
		ID:       id,
		UserID:   req.UserID,
		Format:   s.builder.Format(),
		Provider: s.llm.Name(),
	}

	if err := req.Validate(); err != nil {
		entry.Status = domain.StatusTooLong
		s.audit(ctx, entry, start)
		return nil, err
	}

	if err := s.checkQuota(ctx, req.UserID); err != nil {
		return nil, err
	}

	payload, err := s.builder.Build(req.Essay, req.Prompt, s.rubric.MinWords)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			entry.WordCount = verr.Words
		}
		entry.Status = domain.StatusTooShort
		s.audit(ctx, entry, start)
		return nil, err
	}
	entry.WordCount = payload.WordCount

	if s.metrics != nil {
		s.metrics.ObserveEssayWords(payload.WordCount)
	}

	s.logger.Info("reviewing essay",
		zap.String("request_id", id),
		zap.Int64("user_id", req.UserID),
		zap.Int("word_count", payload.WordCount),
		zap.String("format", payload.Format.String()),
		zap.String("provider", s.llm.Name()),
	)

	raw, err := s.infer(ctx, payload)
	if err != nil {
		entry.Status = domain.StatusInferError
		s.audit(ctx, entry, start)
		s.logger.Error("inference failed",
			zap.String("request_id", id),
			zap.String("provider", s.llm.Name()),
			zap.Error(err),
		)
		return nil, &domain.InferenceError{Provider: s.llm.Name(), Err: err}
	}

	fb, parseErr := s.parser.Diagnose(raw, payload.Format)
	if parseErr != nil {
		s.logger.Warn("model response degraded",
			zap.String("request_id", id),
			zap.String("format", payload.Format.String()),
			zap.Int("raw_length", len(raw)),
			zap.NamedError("reason", parseErr),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordParse(payload.Format.String(), fb.Degraded)
	}

	entry.Degraded = fb.Degraded
	entry.Status = domain.StatusOK
	if fb.Degraded {
		entry.Status = domain.StatusDegraded
	}
	s.audit(ctx, entry, start)

	duration := time.Since(start)
	s.logger.Info("essay reviewed",
		zap.String("request_id", id),
		zap.Bool("degraded", fb.Degraded),
		zap.Int("categories", len(fb.Categories)),
		zap.Duration("duration", duration),
	)

	return &ReviewResult{
		ID:        id,
		Feedback:  fb,
		Format:    payload.Format,
		WordCount: payload.WordCount,
		Provider:  s.llm.Name(),
		Duration:  duration,
	}, nil
}

// checkQuota считает запросы за последние сутки по аудиту. Анонимные
// запросы (UserID 0) не ограничиваются, для них есть лимитер по IP.
func (s *feedbackService) checkQuota(ctx context.Context, userID int64) error {
	if s.daily <= 0 || s.logs == nil || userID == 0 {
		return nil
	}

	count, err := s.logs.CountByUserSince(ctx, userID, s.now().Add(-24*time.Hour))
	if err != nil {
		s.logger.Warn("failed to check daily quota", zap.Int64("user_id", userID), zap.Error(err))
		return nil
	}
	if count >= s.daily {
		s.logger.Info("daily quota exceeded",
			zap.Int64("user_id", userID),
			zap.Int("count", count),
			zap.Int("limit", s.daily),
		)
		return domain.ErrQuotaExceeded
	}
	return nil
}

func (s *feedbackService) infer(ctx context.Context, payload feedback.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.llm.CompleteWithSystem(ctx, payload.SystemInstruction, payload.UserMessage)

	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordLLMRequest(s.llm.Name(), status, time.Since(start))
	}
	return raw, err
}

// audit пишет только метаданные. Ошибка аудита не ломает ответ пользователю.
func (s *feedbackService) audit(ctx context.Context, entry *domain.FeedbackLog, start time.Time) {
	if s.logs == nil {
		return
	}
	entry.DurationMS = time.Since(start).Milliseconds()

	// отмена запроса пользователем не должна терять запись
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write feedback log",
			zap.String("request_id", entry.ID),
			zap.Error(err),
		)
	}
}

func (s *feedbackService) History(ctx context.Context, userID int64, limit int) ([]domain.FeedbackLog, error) {
	if s.logs == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.logs.ListByUser(ctx, userID, limit)
}
