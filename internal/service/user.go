package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/essayblitz/internal/domain"
	"github.com/kitbuilder587/essayblitz/internal/repository"
)

type UserService interface {
	// GetOrCreate регистрирует пользователя при первом сообщении и
	// обновляет username и last_seen_at при следующих
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	// SetPrompt сохраняет промпт эссе. Пустая строка сбрасывает его.
	SetPrompt(ctx context.Context, telegramID int64, username, prompt string) error
}

type userService struct {
	repo   repository.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *userService) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	user, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		s.touch(ctx, user, username)
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	newUser := &domain.User{
		TelegramID: telegramID,
		Username:   username,
		LastSeenAt: s.now(),
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		// два апдейта от одного пользователя могли прийти одновременно
		if errors.Is(err, domain.ErrUserExists) {
			return s.repo.GetByTelegramID(ctx, telegramID)
		}
		return nil, err
	}

	s.logger.Info("new user registered",
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)
	return newUser, nil
}

func (s *userService) SetPrompt(ctx context.Context, telegramID int64, username, prompt string) error {
	user, err := s.GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return err
	}
	if user.Prompt == prompt {
		return nil
	}

	user.Prompt = prompt
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Debug("essay prompt saved",
		zap.Int64("telegram_id", telegramID),
		zap.Int("prompt_length", len(prompt)),
	)
	return nil
}

// touch: ошибка обновления не мешает ответить пользователю
func (s *userService) touch(ctx context.Context, user *domain.User, username string) {
	user.Username = username
	user.LastSeenAt = s.now()

	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Warn("failed to update user",
			zap.Error(err),
			zap.Int64("telegram_id", user.TelegramID),
		)
	}
}
