package domain

import "time"

// User - пользователь бота. ID совпадает с telegram id.
// Prompt переживает перезапуск бота, в отличие от сессии.
type User struct {
	ID         int64
	TelegramID int64
	Username   string
	Prompt     string
	LastSeenAt time.Time
	CreatedAt  time.Time
}
