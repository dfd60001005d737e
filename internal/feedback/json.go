package feedback

import (
	"regexp"
	"strings"
)

var codeFenceRegex = regexp.MustCompile("```(?:json|JSON)?\\s*([\\s\\S]*?)```")

// extractJSON достает JSON-объект из ответа LLM, который может быть
// завернут в ```json ... ``` или окружен текстом. Недописанный объект
// возвращается как есть - дальше его отвергнет json.Unmarshal.
func extractJSON(s string) string {
	if m := codeFenceRegex.FindStringSubmatch(s); len(m) > 1 {
		s = m[1]
	}
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	if start == -1 {
		return s
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return s[start:]
}

// sanitizeJSON экранирует сырые переводы строк внутри строковых значений -
// модели часто так пишут переписанный абзац.
func sanitizeJSON(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			sb.WriteByte(ch)
			escaped = false
			continue
		}
		switch {
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString && ch == '\n':
			sb.WriteString(`\n`)
			continue
		case inString && ch == '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			sb.WriteString(`\n`)
			continue
		}
		sb.WriteByte(ch)
	}

	return sb.String()
}
