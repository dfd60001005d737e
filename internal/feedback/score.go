package feedback

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

var (
	outOfTenRegex    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*10\b`)
	leadingNumRegex  = regexp.MustCompile(`^(\d+(?:\.\d+)?)(?:\s|$|[^\d./])`)
	anyNumRegex      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	denominatorRegex = regexp.MustCompile(`/\s*10\b`)
	numberedRegex    = regexp.MustCompile(`^(\d+)[.)]\s+(\S.*)$`)
)

// ExtractScore - общее правило для всех строк с оценкой:
// сначала "N/10", потом число в начале строки, потом любое число.
// Если цифр нет, оценки нет.
func ExtractScore(s string) domain.Score {
	s = strings.TrimSpace(s)

	if m := outOfTenRegex.FindStringSubmatch(s); m != nil {
		return parseScore(m[1])
	}
	if m := leadingNumRegex.FindStringSubmatch(s); m != nil {
		return parseScore(m[1])
	}
	// "X/10" из шаблона - это не оценка 10
	if m := anyNumRegex.FindString(denominatorRegex.ReplaceAllString(s, "")); m != "" {
		return parseScore(m)
	}
	return domain.NoScore
}

func parseScore(s string) domain.Score {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.NoScore
	}
	return domain.NewScore(v)
}

var commentSeparators = []string{"→", "->", "=>", " — ", " – ", " - ", "|"}

// extractComment берет текст после стрелки; если стрелки нет -
// все, что осталось после вырезания оценки.
func extractComment(s string) string {
	for _, sep := range commentSeparators {
		if idx := strings.Index(s, sep); idx != -1 {
			return cleanComment(s[idx+len(sep):])
		}
	}

	if loc := outOfTenRegex.FindStringIndex(s); loc != nil {
		return cleanComment(s[:loc[0]] + s[loc[1]:])
	}
	if m := leadingNumRegex.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
		return cleanComment(strings.TrimPrefix(strings.TrimSpace(s), m[1]))
	}
	return cleanComment(s)
}

func cleanComment(s string) string {
	return strings.TrimSpace(strings.TrimLeft(s, " \t:;,.-–—"))
}
