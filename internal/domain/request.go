package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// лимит на символы, чтобы не отправлять в модель роман
const MaxEssayLength = 20000

type FeedbackRequest struct {
	UserID int64
	Essay  string
	Prompt string
}

func (r *FeedbackRequest) Validate() error {
	if utf8.RuneCountInString(r.Essay) > MaxEssayLength {
		return ErrEssayTooLong
	}
	return nil
}

func (r *FeedbackRequest) Sanitize() {
	r.Essay = strings.TrimSpace(r.Essay)
	r.Prompt = strings.TrimSpace(r.Prompt)
}

// FeedbackLog - метаданные одного запроса для аудита. Сам отзыв не хранится.
type FeedbackLog struct {
	ID         string
	UserID     int64
	WordCount  int
	Format     FormatKind
	Provider   string
	Status     string
	Degraded   bool
	DurationMS int64
	CreatedAt  time.Time
}

const (
	StatusOK         = "ok"
	StatusDegraded   = "degraded"
	StatusTooShort   = "too_short"
	StatusTooLong    = "too_long"
	StatusInferError = "inference_error"
	StatusQuota      = "quota_exceeded"
)
