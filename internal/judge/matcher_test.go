package judge

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMatcherEvaluate(t *testing.T) {
	m := NewMatcher()
	ctx := context.Background()

	tests := []struct {
		name        string
		recognized  string
		wantCorrect bool
		wantTones   bool // tone-specific feedback expected
	}{
		{"exact character match", "你好", true, false},
		{"exact jyutping match", "nei5 hou2", true, false},
		{"jyutping case and spacing ignored", " NEI5 HOU2 ", true, false},
		{"wrong tones get tone feedback", "nei2 hou1", false, true},
		{"different word is plain incorrect", "再見", false, false},
		{"different syllables are plain incorrect", "zoi3 gin3", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := m.Evaluate(ctx, Input{Recognized: tt.recognized}, "你好", "nei5 hou2")
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if result.Correct != tt.wantCorrect {
				t.Errorf("Correct = %v, want %v", result.Correct, tt.wantCorrect)
			}
			hasTones := strings.Contains(result.Feedback, "tones")
			if hasTones != tt.wantTones {
				t.Errorf("feedback %q, tone hint expected: %v", result.Feedback, tt.wantTones)
			}
			if result.Recognized != strings.TrimSpace(tt.recognized) {
				t.Errorf("Recognized = %q, want %q", result.Recognized, strings.TrimSpace(tt.recognized))
			}
		})
	}
}

func TestMatcherEmptyInputIsEvaluationError(t *testing.T) {
	m := NewMatcher()

	_, err := m.Evaluate(context.Background(), Input{Recognized: "   "}, "你好", "nei5 hou2")
	if !errors.Is(err, ErrEvaluation) {
		t.Errorf("expected ErrEvaluation for empty recognition, got %v", err)
	}
}
