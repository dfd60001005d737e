package domain

// CategoryScore - одно измерение рубрики (Impact, Clarity, ...)
type CategoryScore struct {
	Name   string `json:"name"`
	Score  Score  `json:"score"`
	Reason string `json:"reason"`
}

// EssayFeedback - разобранный ответ модели. Парсер строит его за один проход,
// рендеры только читают.
type EssayFeedback struct {
	OverallScore      Score           `json:"overall_score"`
	OverallComment    string          `json:"overall_comment"`
	PromptFitScore    Score           `json:"prompt_fit_score"`
	PromptFitComment  string          `json:"prompt_fit_comment"`
	Categories        []CategoryScore `json:"categories"`
	Fixes             []string        `json:"fixes"`
	PolishedParagraph string          `json:"polished_paragraph"`
	FinalNote         string          `json:"final_note"`
	Degraded          bool            `json:"degraded"`
	RawText           string          `json:"raw_text"`

	// строки, которые текстовый парсер не смог отнести ни к одной секции
	Unmatched []string `json:"unmatched,omitempty"`
}

// DegradedFeedback - результат, когда структуру извлечь не удалось.
// Сырой текст сохраняется всегда.
func DegradedFeedback(raw string) EssayFeedback {
	return EssayFeedback{
		OverallScore:   NoScore,
		PromptFitScore: NoScore,
		Categories:     []CategoryScore{},
		Fixes:          []string{},
		Degraded:       true,
		RawText:        raw,
	}
}

func (f EssayFeedback) Category(name string) (CategoryScore, bool) {
	for _, c := range f.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return CategoryScore{}, false
}

// HasStructure - нашлась ли хоть одна секция контракта
func (f EssayFeedback) HasStructure() bool {
	return f.OverallScore.Valid ||
		f.PromptFitScore.Valid ||
		f.OverallComment != "" ||
		f.PromptFitComment != "" ||
		len(f.Categories) > 0 ||
		len(f.Fixes) > 0 ||
		f.PolishedParagraph != "" ||
		f.FinalNote != ""
}
