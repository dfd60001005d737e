package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidFormat      = errors.New("invalid feedback format")
	ErrInvalidMinWords    = errors.New("min words must be positive")
	ErrNoCategories       = errors.New("at least one category is required")
	ErrDuplicateCategory  = errors.New("duplicate category name")
	ErrInvalidThresholds  = errors.New("thresholds must satisfy 0 <= ok <= good <= 10")
	ErrEmptyCategoryLabel = errors.New("empty category name")
)

const (
	DefaultMinWords  = 80
	DefaultPrompt    = "Free choice"
	DefaultGoodScore = 9.0
	DefaultOKScore   = 7.0
)

var DefaultCategories = []string{
	"Impact",
	"Authenticity",
	"Storytelling",
	"Clarity",
	"Writing Quality",
}

// FormatKind - какой контракт ответа просим у модели
type FormatKind string

const (
	FormatText FormatKind = "text"
	FormatJSON FormatKind = "json"
	// FormatAuto: просим JSON, при неудаче разбираем как текст
	FormatAuto FormatKind = "auto"
)

func (f FormatKind) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatAuto:
		return true
	}
	return false
}

func (f FormatKind) String() string { return string(f) }

func ParseFormatKind(s string) (FormatKind, error) {
	f := FormatKind(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", ErrInvalidFormat
	}
	return f, nil
}

// Level - цвет плашки для рендера
type Level string

const (
	LevelGood    Level = "good"
	LevelOK      Level = "ok"
	LevelBad     Level = "bad"
	LevelNeutral Level = "neutral"
)

type Thresholds struct {
	Good float64 `json:"good" toml:"good" yaml:"good"`
	OK   float64 `json:"ok" toml:"ok" yaml:"ok"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Good: DefaultGoodScore, OK: DefaultOKScore}
}

// Classify: >= Good -> good, >= OK -> ok, иначе bad. Отсутствующая оценка нейтральна.
func (t Thresholds) Classify(s Score) Level {
	switch {
	case !s.Valid:
		return LevelNeutral
	case s.Value >= t.Good:
		return LevelGood
	case s.Value >= t.OK:
		return LevelOK
	default:
		return LevelBad
	}
}

func (t Thresholds) Validate() error {
	if t.OK < MinScore || t.Good > MaxScore || t.OK > t.Good {
		return ErrInvalidThresholds
	}
	return nil
}

// Rubric - политика запроса и разбора, задается хостом
type Rubric struct {
	MinWords   int
	Categories []string
	Thresholds Thresholds
	Format     FormatKind
}

func DefaultRubric() Rubric {
	cats := make([]string, len(DefaultCategories))
	copy(cats, DefaultCategories)
	return Rubric{
		MinWords:   DefaultMinWords,
		Categories: cats,
		Thresholds: DefaultThresholds(),
		Format:     FormatText,
	}
}

func (r Rubric) Validate() error {
	if r.MinWords <= 0 {
		return ErrInvalidMinWords
	}
	if len(r.Categories) == 0 {
		return ErrNoCategories
	}
	seen := make(map[string]struct{}, len(r.Categories))
	for _, c := range r.Categories {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" {
			return ErrEmptyCategoryLabel
		}
		if _, ok := seen[key]; ok {
			return ErrDuplicateCategory
		}
		seen[key] = struct{}{}
	}
	if !r.Format.IsValid() {
		return ErrInvalidFormat
	}
	return r.Thresholds.Validate()
}
