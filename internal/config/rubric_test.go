package config

import (
	"errors"
	"testing"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

func TestParseRubric(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		ext     string
		check   func(t *testing.T, r domain.Rubric)
		wantErr error
	}{
		{
			name: "toml full",
			ext:  ".toml",
			data: `
min_words = 200
categories = ["Voice", "Structure"]
format = "json"

[thresholds]
good = 8
ok = 6
`,
			check: func(t *testing.T, r domain.Rubric) {
				if r.MinWords != 200 || r.Format != domain.FormatJSON {
					t.Errorf("rubric = %+v", r)
				}
				if len(r.Categories) != 2 || r.Categories[0] != "Voice" {
					t.Errorf("Categories = %v", r.Categories)
				}
				if r.Thresholds.Good != 8 || r.Thresholds.OK != 6 {
					t.Errorf("Thresholds = %+v", r.Thresholds)
				}
			},
		},
		{
			name: "yaml partial keeps base",
			ext:  ".yml",
			data: "thresholds:\n  ok: 6.5\n",
			check: func(t *testing.T, r domain.Rubric) {
				if r.MinWords != domain.DefaultMinWords {
					t.Errorf("MinWords = %d, want default", r.MinWords)
				}
				if r.Thresholds.Good != 9 || r.Thresholds.OK != 6.5 {
					t.Errorf("Thresholds = %+v", r.Thresholds)
				}
				if len(r.Categories) != len(domain.DefaultCategories) {
					t.Errorf("Categories = %v", r.Categories)
				}
			},
		},
		{
			name: "yaml categories",
			ext:  ".YAML",
			data: "categories:\n  - Impact\n  - Humor\nformat: auto\n",
			check: func(t *testing.T, r domain.Rubric) {
				if len(r.Categories) != 2 || r.Categories[1] != "Humor" || r.Format != domain.FormatAuto {
					t.Errorf("rubric = %+v", r)
				}
			},
		},
		{
			name:    "unsupported extension",
			ext:     ".json",
			data:    `{}`,
			wantErr: ErrUnsupportedRubricFile,
		},
		{
			name:    "bad format value",
			ext:     ".toml",
			data:    `format = "html"`,
			wantErr: domain.ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRubric([]byte(tt.data), tt.ext, domain.DefaultRubric())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseRubric() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRubric() error = %v", err)
			}
			tt.check(t, r)
		})
	}
}

func TestParseRubric_MalformedFile(t *testing.T) {
	if _, err := ParseRubric([]byte("min_words = ["), ".toml", domain.DefaultRubric()); err == nil {
		t.Error("malformed toml should fail")
	}
	if _, err := ParseRubric([]byte("categories: [a, b"), ".yaml", domain.DefaultRubric()); err == nil {
		t.Error("malformed yaml should fail")
	}
}

func TestParseRubric_DoesNotMutateBase(t *testing.T) {
	base := domain.DefaultRubric()
	_, err := ParseRubric([]byte(`categories = ["X"]`), ".toml", base)
	if err != nil {
		t.Fatalf("ParseRubric() error = %v", err)
	}
	if base.Categories[0] != "Impact" {
		t.Error("base rubric must not change")
	}
}
