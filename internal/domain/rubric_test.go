package domain

import (
	"errors"
	"testing"
)

func TestFormatKind_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		format FormatKind
		want   bool
	}{
		{
			name:   "text is valid",
			format: "text",
			want:   true,
		},
		{
			name:   "json is valid",
			format: "json",
			want:   true,
		},
		{
			name:   "auto is valid",
			format: "auto",
			want:   true,
		},
		{
			name:   "empty is invalid",
			format: "",
			want:   false,
		},
		{
			name:   "xml is invalid",
			format: "xml",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.IsValid(); got != tt.want {
				t.Errorf("FormatKind.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFormatKind(t *testing.T) {
	tests := []struct {
		input   string
		want    FormatKind
		wantErr bool
	}{
		{"text", FormatText, false},
		{" JSON ", FormatJSON, false},
		{"Auto", FormatAuto, false},
		{"yaml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormatKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormatKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormatKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestThresholds_Classify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name  string
		score Score
		want  Level
	}{
		{
			name:  "ten is good",
			score: NewScore(10),
			want:  LevelGood,
		},
		{
			name:  "nine is good",
			score: NewScore(9),
			want:  LevelGood,
		},
		{
			name:  "eight is ok",
			score: NewScore(8),
			want:  LevelOK,
		},
		{
			name:  "seven is ok",
			score: NewScore(7),
			want:  LevelOK,
		},
		{
			name:  "six point nine is bad",
			score: NewScore(6.9),
			want:  LevelBad,
		},
		{
			name:  "zero is bad",
			score: NewScore(0),
			want:  LevelBad,
		},
		{
			name:  "missing score is neutral",
			score: NoScore,
			want:  LevelNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := th.Classify(tt.score); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{"defaults", DefaultThresholds(), false},
		{"equal", Thresholds{Good: 5, OK: 5}, false},
		{"ok above good", Thresholds{Good: 6, OK: 8}, true},
		{"good above max", Thresholds{Good: 11, OK: 7}, true},
		{"negative ok", Thresholds{Good: 9, OK: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRubric_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(r *Rubric)
		wantErr error
	}{
		{
			name:    "default rubric is valid",
			modify:  func(r *Rubric) {},
			wantErr: nil,
		},
		{
			name:    "zero min words",
			modify:  func(r *Rubric) { r.MinWords = 0 },
			wantErr: ErrInvalidMinWords,
		},
		{
			name:    "no categories",
			modify:  func(r *Rubric) { r.Categories = nil },
			wantErr: ErrNoCategories,
		},
		{
			name:    "duplicate category ignoring case",
			modify:  func(r *Rubric) { r.Categories = []string{"Impact", "impact"} },
			wantErr: ErrDuplicateCategory,
		},
		{
			name:    "blank category",
			modify:  func(r *Rubric) { r.Categories = []string{"Impact", "  "} },
			wantErr: ErrEmptyCategoryLabel,
		},
		{
			name:    "unknown format",
			modify:  func(r *Rubric) { r.Format = "xml" },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "bad thresholds",
			modify:  func(r *Rubric) { r.Thresholds = Thresholds{Good: 5, OK: 7} },
			wantErr: ErrInvalidThresholds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRubric()
			tt.modify(&r)
			err := r.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultRubric_CopiesCategories(t *testing.T) {
	r := DefaultRubric()
	r.Categories[0] = "Changed"

	if DefaultCategories[0] != "Impact" {
		t.Error("DefaultRubric must not share the DefaultCategories slice")
	}
}
