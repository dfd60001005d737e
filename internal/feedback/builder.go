package feedback

import (
	"fmt"
	"strings"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

// Request - то, что уходит в модель: system-инструкция + user-сообщение
type Request struct {
	SystemInstruction string
	UserMessage       string
	Format            domain.FormatKind
	WordCount         int
}

// Builder собирает запрос к модели. Чистая функция от входа, без I/O.
type Builder struct {
	instruction string
	format      domain.FormatKind
}

func NewBuilder(rubric domain.Rubric, labels Labels) (*Builder, error) {
	format := rubric.Format
	if format == "" {
		format = domain.FormatText
	}

	instruction, err := Instruction(format, rubric.Categories, labels)
	if err != nil {
		return nil, err
	}

	return &Builder{
		instruction: instruction,
		format:      format,
	}, nil
}

// Build проверяет длину эссе и собирает payload. Пустой промпт
// заменяется на "Free choice".
func (b *Builder) Build(essay, prompt string, minWords int) (Request, error) {
	if minWords <= 0 {
		minWords = domain.DefaultMinWords
	}

	essay = strings.TrimSpace(essay)
	words := CountWords(essay)
	if words < minWords {
		return Request{}, &domain.ValidationError{Words: words, MinWords: minWords}
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = domain.DefaultPrompt
	}

	return Request{
		SystemInstruction: b.instruction,
		UserMessage:       UserMessage(essay, prompt),
		Format:            b.format,
		WordCount:         words,
	}, nil
}

func (b *Builder) Instruction() string { return b.instruction }

func (b *Builder) Format() domain.FormatKind { return b.format }

func UserMessage(essay, prompt string) string {
	return fmt.Sprintf("Prompt: %s\n\nEssay:\n%s", prompt, essay)
}

func CountWords(s string) int {
	return len(strings.Fields(s))
}
