package repository

import (
	"context"
	"time"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

type UserRepository interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	// Create возвращает ErrUserExists, если пользователь уже заведен
	Create(ctx context.Context, user *domain.User) error
	// Update перезаписывает username, prompt и last_seen_at
	Update(ctx context.Context, user *domain.User) error
}

// FeedbackLogRepository - журнал запросов. Только метаданные: ни эссе,
// ни ответ модели сюда не попадают.
type FeedbackLogRepository interface {
	Create(ctx context.Context, entry *domain.FeedbackLog) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.FeedbackLog, error)
	CountByUserSince(ctx context.Context, userID int64, since time.Time) (int, error)
}
