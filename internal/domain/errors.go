package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrDuplicateLog = errors.New("feedback log entry already exists")
)

var (
	ErrEssayTooShort   = errors.New("essay too short")
	ErrEssayTooLong    = errors.New("essay too long")
	ErrInferenceFailed = errors.New("inference request failed")
	ErrRateLimited     = errors.New("too many requests")
	ErrQuotaExceeded   = errors.New("daily essay quota exceeded")
)

// ValidationError - эссе короче минимума. Показывается пользователю до
// любого обращения к модели.
type ValidationError struct {
	Words    int
	MinWords int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d words, need at least %d", ErrEssayTooShort, e.Words, e.MinWords)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrEssayTooShort
}

// InferenceError - сбой внешнего вызова модели (сеть, авторизация, лимиты).
// Ядро не ретраит, хост решает сам.
type InferenceError struct {
	Provider string
	Err      error
}

func (e *InferenceError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("%s: %v", ErrInferenceFailed, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrInferenceFailed, e.Provider, e.Err)
}

func (e *InferenceError) Is(target error) bool {
	return target == ErrInferenceFailed
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
