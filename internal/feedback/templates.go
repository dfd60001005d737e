package feedback

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

var textInstructionTemplate = template.Must(template.New("text").Parse(
	`You are a warm but honest college admissions essay coach.
Give feedback in this exact plain-text format and nothing else:

{{.Overall}}: X/10 → one sentence about the essay as a whole

{{.PromptFit}}: X/10 → one short sentence about how well it answers the prompt

SCORES
{{range .Categories}}{{.}}: X/10 → one reason
{{end}}
{{.Fixes}}
1. first concrete fix
2. second concrete fix
3. third concrete fix

{{.Paragraph}}:
[one improved paragraph from the essay, nothing else]

{{.Encouragement}}:
one warm, uplifting sentence`))

var jsonInstructionTemplate = template.Must(template.New("json").Parse(
	`You are a warm but honest college admissions essay coach.
Respond with a single JSON object only. No markdown, no code fences, no text around it.
The object must have exactly these fields:
{
  "overall_score": number from 0 to 10,
  "overall_comment": "one sentence about the essay as a whole",
  "prompt_fit_score": number from 0 to 10,
  "prompt_fit_comment": "one short sentence about how well it answers the prompt",
  "categories": {
{{- range $i, $c := .Categories}}{{if $i}},{{end}}
    {{printf "%q" $c}}: {"score": number from 0 to 10, "reason": "one reason"}
{{- end}}
  },
  "fixes": ["first concrete fix", "second concrete fix", "third concrete fix"],
  "polished_paragraph": "one improved paragraph from the essay",
  "final_note": "one warm, uplifting sentence"
}`))

type instructionData struct {
	Overall       string
	PromptFit     string
	Fixes         string
	Paragraph     string
	Encouragement string
	Categories    []string
}

// Instruction рендерит system-инструкцию для выбранного контракта.
// FormatAuto просит JSON.
func Instruction(format domain.FormatKind, categories []string, labels Labels) (string, error) {
	data := instructionData{
		Overall:       labels.primary(labels.Overall),
		PromptFit:     labels.primary(labels.PromptFit),
		Fixes:         labels.primary(labels.Fixes),
		Paragraph:     labels.primary(labels.Paragraph),
		Encouragement: labels.primary(labels.Encouragement),
		Categories:    categories,
	}

	tmpl := jsonInstructionTemplate
	switch format {
	case domain.FormatText:
		tmpl = textInstructionTemplate
	case domain.FormatJSON, domain.FormatAuto:
	default:
		return "", domain.ErrInvalidFormat
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s instruction: %w", format, err)
	}
	return buf.String(), nil
}
