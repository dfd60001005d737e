package telegram

import (
	"strings"
)

const promptLinePrefix = "prompt:"

// ParseEssayMessage отделяет промпт от эссе. Если первая непустая строка
// начинается с "Prompt:", она задает промпт только для этого эссе.
// Иначе весь текст - эссе, а промпт берется из сессии.
func ParseEssayMessage(text string) (essay, prompt string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	first, rest, _ := strings.Cut(text, "\n")
	trimmed := strings.TrimSpace(first)
	if len(trimmed) < len(promptLinePrefix) || !strings.EqualFold(trimmed[:len(promptLinePrefix)], promptLinePrefix) {
		return text, ""
	}

	prompt = normalizeSpaces(trimmed[len(promptLinePrefix):])
	return strings.TrimSpace(rest), prompt
}

// ParsePromptCommand: "/prompt  Why   us?" -> "Why us?". "/prompt" без
// аргументов дает пустую строку, это сброс.
func ParsePromptCommand(args string) string {
	return normalizeSpaces(args)
}

func normalizeSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
