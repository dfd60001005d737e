package feedback

import (
	"strings"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

type scanState int

const (
	stateScanning scanState = iota
	stateInFixes
	stateInParagraph
	stateDone
)

func (s scanState) String() string {
	switch s {
	case stateScanning:
		return "scanning"
	case stateInFixes:
		return "in_fixes"
	case stateInParagraph:
		return "in_paragraph"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// textScanner - один проход по непустым строкам ответа в формате A
type textScanner struct {
	p     *Parser
	state scanState

	fixesSeen   bool
	notePending bool
	overallSeen bool
	fitSeen     bool

	fb         domain.EssayFeedback
	categories map[string]domain.CategoryScore
	paragraph  []string
}

func (p *Parser) parseText(raw string) domain.EssayFeedback {
	sc := &textScanner{
		p:          p,
		state:      stateScanning,
		categories: make(map[string]domain.CategoryScore),
		fb: domain.EssayFeedback{
			Fixes: []string{},
		},
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sc.step(line)
	}

	return sc.finish(raw)
}

func (sc *textScanner) step(line string) {
	norm := normalizeLine(line)
	labels := sc.p.labels

	switch sc.state {
	case stateDone:
		if sc.notePending {
			sc.fb.FinalNote = norm
			sc.notePending = false
			return
		}
		sc.unmatched(line)
		return
	case stateInParagraph:
		if rest, ok := matchHeader(norm, labels.Encouragement); ok {
			sc.flushParagraph()
			sc.encouragement(rest)
			return
		}
		sc.paragraph = append(sc.paragraph, line)
		return
	}

	if rest, ok := matchPrefix(norm, labels.Overall); ok && !sc.overallSeen && isSectionLine(rest) {
		rest = afterSeparator(rest)
		sc.fb.OverallScore = ExtractScore(rest)
		sc.fb.OverallComment = extractComment(rest)
		sc.overallSeen = true
		sc.state = stateScanning
		return
	}

	if rest, ok := matchPrefix(norm, labels.PromptFit); ok && !sc.fitSeen && isSectionLine(rest) {
		rest = afterSeparator(rest)
		sc.fb.PromptFitScore = ExtractScore(rest)
		sc.fb.PromptFitComment = extractComment(rest)
		sc.fitSeen = true
		sc.state = stateScanning
		return
	}

	if sc.category(norm) {
		sc.state = stateScanning
		return
	}

	if matchExact(norm, labels.Fixes) {
		sc.state = stateInFixes
		sc.fixesSeen = true
		return
	}

	if sc.state == stateInFixes || sc.fixesSeen {
		if m := numberedRegex.FindStringSubmatch(norm); m != nil {
			sc.fb.Fixes = append(sc.fb.Fixes, strings.TrimSpace(m[2]))
			return
		}
	}

	if rest, ok := matchHeader(norm, labels.Paragraph); ok {
		sc.state = stateInParagraph
		if first := afterSeparator(rest); first != "" && strings.Contains(rest, ":") {
			sc.paragraph = append(sc.paragraph, first)
		}
		return
	}

	if rest, ok := matchHeader(norm, labels.Encouragement); ok {
		sc.encouragement(rest)
		return
	}

	if matchExact(norm, labels.Skip) {
		return
	}

	sc.unmatched(line)
}

// category: строка начинается с имени категории рубрики
func (sc *textScanner) category(norm string) bool {
	for _, name := range sc.p.byLength {
		if !hasLabelPrefix(norm, name) {
			continue
		}
		rest := norm[len(name):]
		if !isSectionLine(rest) {
			return false
		}
		if _, dup := sc.categories[name]; dup {
			return false
		}

		rest = afterSeparator(rest)
		sc.categories[name] = domain.CategoryScore{
			Name:   name,
			Score:  ExtractScore(rest),
			Reason: extractComment(rest),
		}
		return true
	}
	return false
}

// isSectionLine отсекает обычные предложения вроде "Overall, the essay...":
// после лейбла должно быть двоеточие или число
func isSectionLine(rest string) bool {
	return strings.Contains(rest, ":") || anyNumRegex.MatchString(rest)
}

func (sc *textScanner) encouragement(rest string) {
	note := afterSeparator(rest)
	sc.state = stateDone
	if note == "" {
		sc.notePending = true
		return
	}
	sc.fb.FinalNote = note
}

func (sc *textScanner) flushParagraph() {
	if len(sc.paragraph) > 0 {
		sc.fb.PolishedParagraph = strings.Join(sc.paragraph, "\n")
	}
	sc.paragraph = nil
}

func (sc *textScanner) unmatched(line string) {
	sc.fb.Unmatched = append(sc.fb.Unmatched, line)
}

// finish: конец входа из любого состояния - валидный, возможно неполный результат
func (sc *textScanner) finish(raw string) domain.EssayFeedback {
	if sc.state == stateInParagraph {
		sc.flushParagraph()
	}

	sc.fb.Categories = sc.p.orderCategories(sc.categories, nil)
	sc.fb.RawText = raw

	if !sc.fb.HasStructure() {
		return domain.DegradedFeedback(raw)
	}
	return sc.fb
}
