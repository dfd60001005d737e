package feedback

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

func TestInstruction_Text(t *testing.T) {
	categories := domain.DefaultCategories
	got, err := Instruction(domain.FormatText, categories, DefaultLabels())
	if err != nil {
		t.Fatalf("Instruction() error = %v", err)
	}

	wantLines := []string{
		"OVERALL: X/10",
		"PROMPT FIT: X/10",
		"SCORES",
		"3 FIXES",
		"REWRITTEN PARAGRAPH:",
		"ONE SENTENCE OF ENCOURAGEMENT:",
	}
	for _, c := range categories {
		wantLines = append(wantLines, c+": X/10")
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("text instruction missing %q", want)
		}
	}
}

func TestInstruction_JSON(t *testing.T) {
	categories := []string{"Impact", `Voice "and" tone`}
	got, err := Instruction(domain.FormatJSON, categories, DefaultLabels())
	if err != nil {
		t.Fatalf("Instruction() error = %v", err)
	}

	for _, key := range []string{
		`"overall_score"`, `"overall_comment"`, `"prompt_fit_score"`, `"prompt_fit_comment"`,
		`"categories"`, `"fixes"`, `"polished_paragraph"`, `"final_note"`,
	} {
		if !strings.Contains(got, key) {
			t.Errorf("json instruction missing key %s", key)
		}
	}
	if !strings.Contains(got, `"Impact":`) {
		t.Error("json instruction missing category Impact")
	}
	quoted, _ := json.Marshal(`Voice "and" tone`)
	if !strings.Contains(got, string(quoted)) {
		t.Errorf("category with quotes must be escaped, got:\n%s", got)
	}
}

func TestInstruction_AutoAsksForJSON(t *testing.T) {
	auto, err := Instruction(domain.FormatAuto, domain.DefaultCategories, DefaultLabels())
	if err != nil {
		t.Fatalf("Instruction(auto) error = %v", err)
	}
	js, err := Instruction(domain.FormatJSON, domain.DefaultCategories, DefaultLabels())
	if err != nil {
		t.Fatalf("Instruction(json) error = %v", err)
	}
	if auto != js {
		t.Error("auto format should render the json instruction")
	}
}

func TestInstruction_CustomLabels(t *testing.T) {
	labels := DefaultLabels()
	labels.Overall = []string{"OVERALL FEELING", "OVERALL"}

	got, err := Instruction(domain.FormatText, []string{"Voice"}, labels)
	if err != nil {
		t.Fatalf("Instruction() error = %v", err)
	}
	if !strings.Contains(got, "OVERALL FEELING: X/10") {
		t.Error("instruction should use the first label of each list")
	}
	if !strings.Contains(got, "Voice: X/10") {
		t.Error("instruction should list custom categories")
	}
}
