package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

// MockUserRepository хранит копии, как настоящая база: правка
// полученного пользователя без Update ничего не меняет.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[int64]domain.User // key: TelegramID
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[int64]domain.User),
	}
}

func (m *MockUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[telegramID]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.TelegramID]; exists {
		return domain.ErrUserExists
	}

	now := time.Now()
	user.ID = user.TelegramID
	user.CreatedAt = now
	if user.LastSeenAt.IsZero() {
		user.LastSeenAt = now
	}
	m.users[user.TelegramID] = *user
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.users[user.TelegramID]
	if !exists {
		return domain.ErrUserNotFound
	}
	stored.Username = user.Username
	stored.Prompt = user.Prompt
	stored.LastSeenAt = user.LastSeenAt
	m.users[user.TelegramID] = stored
	return nil
}

type MockFeedbackLogRepository struct {
	mu      sync.RWMutex
	entries []domain.FeedbackLog
	ids     map[string]struct{}

	// CreateErr - если задана, Create всегда падает с ней
	CreateErr error
}

func NewMockFeedbackLogRepository() *MockFeedbackLogRepository {
	return &MockFeedbackLogRepository{
		ids: make(map[string]struct{}),
	}
}

func (m *MockFeedbackLogRepository) Create(ctx context.Context, entry *domain.FeedbackLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, exists := m.ids[entry.ID]; exists {
		return domain.ErrDuplicateLog
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.ids[entry.ID] = struct{}{}
	m.entries = append(m.entries, *entry)
	return nil
}

// ListByUser: новые сверху, как в postgres
func (m *MockFeedbackLogRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.FeedbackLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]domain.FeedbackLog, 0)
	for _, e := range m.entries {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockFeedbackLogRepository) CountByUserSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, e := range m.entries {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// All - все записи в порядке вставки, для тестов
func (m *MockFeedbackLogRepository) All() []domain.FeedbackLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.FeedbackLog, len(m.entries))
	copy(out, m.entries)
	return out
}

var (
	_ UserRepository        = (*MockUserRepository)(nil)
	_ FeedbackLogRepository = (*MockFeedbackLogRepository)(nil)
)
