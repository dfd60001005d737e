package feedback

import (
	"errors"
	"sort"
	"strings"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

var (
	errEmptyResponse = errors.New("empty response")
	errNoSections    = errors.New("no recognizable sections")
)

// Parser превращает ответ модели в EssayFeedback. Никогда не возвращает
// ошибку: если контракт не соблюден, получается деградированный результат
// с сырым текстом.
type Parser struct {
	categories []string
	// для матчинга строк по префиксу: длинные имена раньше коротких
	byLength []string
	labels   Labels
}

func NewParser(categories []string, labels Labels) *Parser {
	cats := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}

	byLength := make([]string, len(cats))
	copy(byLength, cats)
	sort.SliceStable(byLength, func(i, j int) bool {
		return len(byLength[i]) > len(byLength[j])
	})

	return &Parser{
		categories: cats,
		byLength:   byLength,
		labels:     labels,
	}
}

// Parse разбирает ответ в ожидаемом формате. FormatAuto сначала пробует
// JSON, потом текстовые правила.
func (p *Parser) Parse(raw string, format domain.FormatKind) domain.EssayFeedback {
	if strings.TrimSpace(raw) == "" {
		return domain.DegradedFeedback(raw)
	}

	switch format {
	case domain.FormatJSON:
		fb, err := p.parseJSON(raw)
		if err != nil {
			return domain.DegradedFeedback(raw)
		}
		return fb
	case domain.FormatAuto:
		if fb, err := p.parseJSON(raw); err == nil {
			return fb
		}
		return p.parseText(raw)
	default:
		return p.parseText(raw)
	}
}

// Diagnose - то же, что Parse, но еще говорит, почему случилась деградация.
// Нужен только для логов.
func (p *Parser) Diagnose(raw string, format domain.FormatKind) (domain.EssayFeedback, error) {
	fb := p.Parse(raw, format)
	switch {
	case !fb.Degraded:
		return fb, nil
	case strings.TrimSpace(raw) == "":
		return fb, errEmptyResponse
	case format == domain.FormatText:
		return fb, errNoSections
	}
	_, err := p.parseJSON(raw)
	return fb, err
}

func (p *Parser) canonicalCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range p.categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return name, false
}

func (p *Parser) orderCategories(found map[string]domain.CategoryScore, extra []string) []domain.CategoryScore {
	out := make([]domain.CategoryScore, 0, len(found))
	for _, c := range p.categories {
		if cs, ok := found[c]; ok {
			out = append(out, cs)
		}
	}
	for _, name := range extra {
		out = append(out, found[name])
	}
	return out
}
