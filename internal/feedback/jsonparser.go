package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

var (
	errMissingField   = errors.New("missing required field")
	errNotAnObject    = errors.New("expected json object")
	errTrailingTokens = errors.New("unexpected data after categories object")
)

type jsonFeedback struct {
	OverallScore      *float64        `json:"overall_score"`
	OverallComment    string          `json:"overall_comment"`
	PromptFitScore    *float64        `json:"prompt_fit_score"`
	PromptFitComment  string          `json:"prompt_fit_comment"`
	Categories        json.RawMessage `json:"categories"`
	Fixes             *[]string       `json:"fixes"`
	PolishedParagraph string          `json:"polished_paragraph"`
	FinalNote         string          `json:"final_note"`
}

type jsonCategory struct {
	Score  *float64 `json:"score"`
	Reason string   `json:"reason"`
}

// parseJSON декодирует контракт B. Любая ошибка означает деградацию,
// решение принимает вызывающий.
func (p *Parser) parseJSON(raw string) (domain.EssayFeedback, error) {
	payload := sanitizeJSON(extractJSON(raw))

	var in jsonFeedback
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		return domain.EssayFeedback{}, fmt.Errorf("decode feedback: %w", err)
	}

	switch {
	case in.OverallScore == nil:
		return domain.EssayFeedback{}, fmt.Errorf("%w: overall_score", errMissingField)
	case in.PromptFitScore == nil:
		return domain.EssayFeedback{}, fmt.Errorf("%w: prompt_fit_score", errMissingField)
	case len(in.Categories) == 0 || string(in.Categories) == "null":
		return domain.EssayFeedback{}, fmt.Errorf("%w: categories", errMissingField)
	case in.Fixes == nil:
		return domain.EssayFeedback{}, fmt.Errorf("%w: fixes", errMissingField)
	}

	categories, err := p.decodeCategories(in.Categories)
	if err != nil {
		return domain.EssayFeedback{}, err
	}

	// список отдаем как есть: длина и пустые пункты не трогаем
	fixes := append([]string{}, (*in.Fixes)...)

	return domain.EssayFeedback{
		OverallScore:      domain.NewScore(*in.OverallScore),
		OverallComment:    in.OverallComment,
		PromptFitScore:    domain.NewScore(*in.PromptFitScore),
		PromptFitComment:  in.PromptFitComment,
		Categories:        categories,
		Fixes:             fixes,
		PolishedParagraph: in.PolishedParagraph,
		FinalNote:         in.FinalNote,
		RawText:           raw,
	}, nil
}

// decodeCategories читает объект категорий токенами, чтобы сохранить
// порядок ключей: сначала категории рубрики в ее порядке, потом
// незнакомые в порядке документа.
func (p *Parser) decodeCategories(data json.RawMessage) ([]domain.CategoryScore, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode categories: %w", errNotAnObject)
	}

	found := make(map[string]domain.CategoryScore)
	var extra []string

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode categories: %w", err)
		}
		name, _ := tok.(string)

		var c jsonCategory
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode category %q: %w", name, err)
		}

		canonical, known := p.canonicalCategory(name)
		if _, dup := found[canonical]; dup {
			continue
		}

		score := domain.NoScore
		if c.Score != nil {
			score = domain.NewScore(*c.Score)
		}
		found[canonical] = domain.CategoryScore{
			Name:   canonical,
			Score:  score,
			Reason: c.Reason,
		}
		if !known {
			extra = append(extra, canonical)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if dec.More() {
		return nil, errTrailingTokens
	}

	return p.orderCategories(found, extra), nil
}
