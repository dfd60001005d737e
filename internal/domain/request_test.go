package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestFeedbackRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     FeedbackRequest
		wantErr error
	}{
		{
			name:    "normal essay",
			req:     FeedbackRequest{UserID: 1, Essay: "An essay about my summer."},
			wantErr: nil,
		},
		{
			name:    "exactly at limit",
			req:     FeedbackRequest{Essay: strings.Repeat("a", MaxEssayLength)},
			wantErr: nil,
		},
		{
			name:    "multibyte runes counted as one",
			req:     FeedbackRequest{Essay: strings.Repeat("я", MaxEssayLength)},
			wantErr: nil,
		},
		{
			name:    "over limit",
			req:     FeedbackRequest{Essay: strings.Repeat("a", MaxEssayLength+1)},
			wantErr: ErrEssayTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFeedbackRequest_Sanitize(t *testing.T) {
	req := FeedbackRequest{Essay: "  \n essay text \n", Prompt: "\t prompt "}
	req.Sanitize()

	if req.Essay != "essay text" {
		t.Errorf("Essay = %q", req.Essay)
	}
	if req.Prompt != "prompt" {
		t.Errorf("Prompt = %q", req.Prompt)
	}
}
