package feedback

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Labels - заголовки секций текстового формата. Первый элемент каждого
// списка идет в инструкцию, остальные - варианты, которые модели любят
// писать вместо него.
type Labels struct {
	Overall       []string
	PromptFit     []string
	Fixes         []string
	Paragraph     []string
	Encouragement []string
	// заголовки без данных, их просто пропускаем
	Skip []string
}

func DefaultLabels() Labels {
	return Labels{
		Overall:   []string{"OVERALL", "OVERALL SCORE", "OVERALL FEELING", "OVERALL RATING"},
		PromptFit: []string{"PROMPT FIT", "PROMPT CONNECTION", "HOW WELL IT MATCHES THE PROMPT", "PROMPT MATCH"},
		Fixes: []string{
			"3 FIXES",
			"TOP 3 FIXES",
			"FIXES",
			"3 SMALL THINGS TO MAKE IT EVEN BETTER",
			"3 THINGS TO IMPROVE",
		},
		Paragraph:     []string{"REWRITTEN PARAGRAPH", "ONE PARAGRAPH REWRITTEN", "POLISHED PARAGRAPH"},
		Encouragement: []string{"ONE SENTENCE OF ENCOURAGEMENT", "FINAL WORDS OF ENCOURAGEMENT", "ENCOURAGEMENT", "FINAL NOTE"},
		Skip:          []string{"SCORES", "CATEGORY SCORES", "SCORES (BE GENTLE BUT HONEST)"},
	}
}

func (l Labels) primary(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// normalizeLine убирает markdown-обвязку: маркеры списков, решетки, жирный шрифт
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "__", "")
	line = strings.TrimLeft(line, "#>*-•· \t")
	return strings.TrimSpace(line)
}

// matchPrefix ищет самый длинный подходящий лейбл в начале строки.
// Возвращает остаток строки после лейбла.
func matchPrefix(line string, labels []string) (rest string, ok bool) {
	best := -1
	for _, label := range labels {
		if len(label) <= best || !hasLabelPrefix(line, label) {
			continue
		}
		best = len(label)
		rest = line[len(label):]
		ok = true
	}
	return rest, ok
}

func hasLabelPrefix(line, label string) bool {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return false
	}
	if len(line) == len(label) {
		return true
	}
	// "OVERALL" не должен совпасть с "OVERALLY"
	next, _ := utf8.DecodeRuneInString(line[len(label):])
	return !unicode.IsLetter(next) && !unicode.IsDigit(next)
}

// matchHeader - лейбл секции, после которого строка кончается или идет
// двоеточие. Допускается пояснение в скобках: "ONE PARAGRAPH REWRITTEN (...):".
// Обычная фраза "Encouragement from my coach..." заголовком не считается.
func matchHeader(line string, labels []string) (rest string, ok bool) {
	rest, ok = matchPrefix(line, labels)
	if !ok {
		return "", false
	}
	tail := strings.TrimSpace(rest)
	if strings.HasPrefix(tail, "(") {
		if end := strings.Index(tail, ")"); end != -1 {
			tail = strings.TrimSpace(tail[end+1:])
		}
	}
	if tail == "" || strings.HasPrefix(tail, ":") {
		return rest, true
	}
	return "", false
}

// matchExact - вся строка и есть лейбл (двоеточие в конце допускается)
func matchExact(line string, labels []string) bool {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ":"))
	for _, label := range labels {
		if strings.EqualFold(trimmed, label) {
			return true
		}
	}
	return false
}

// afterSeparator - текст после первого двоеточия, либо весь остаток
func afterSeparator(rest string) string {
	if idx := strings.Index(rest, ":"); idx != -1 {
		return strings.TrimSpace(rest[idx+1:])
	}
	return strings.TrimSpace(rest)
}
