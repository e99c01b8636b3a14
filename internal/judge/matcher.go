package judge

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Matcher judges a submission by comparing recognized text against the
// expected word. It accepts either the Chinese characters or the
// jyutping transliteration; a jyutping match with wrong tone numbers is
// still incorrect but gets tone-specific feedback.
type Matcher struct{}

// NewMatcher creates a text-comparison judge
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Evaluate compares in.Recognized with the expected text and jyutping.
// An empty recognition is an evaluation failure, not a mismatch.
func (m *Matcher) Evaluate(ctx context.Context, in Input, expectedText, expectedJyutping string) (Result, error) {
	recognized := strings.TrimSpace(in.Recognized)
	if recognized == "" {
		return Result{}, fmt.Errorf("%w: no recognized text", ErrEvaluation)
	}

	if normalize(recognized) == normalize(expectedText) {
		return Result{
			Correct:    true,
			Feedback:   "Pronunciation accepted",
			Recognized: recognized,
		}, nil
	}

	if normalize(recognized) == normalize(expectedJyutping) {
		return Result{
			Correct:    true,
			Feedback:   "Pronunciation accepted",
			Recognized: recognized,
		}, nil
	}

	// Same syllables, different tones
	if stripTones(recognized) == stripTones(expectedJyutping) {
		return Result{
			Correct:    false,
			Feedback:   fmt.Sprintf("Close, but check the tones: expected %q", expectedJyutping),
			Recognized: recognized,
		}, nil
	}

	return Result{
		Correct:    false,
		Feedback:   fmt.Sprintf("Heard %q, expected %q (%s)", recognized, expectedText, expectedJyutping),
		Recognized: recognized,
	}, nil
}

// normalize lowercases and removes all whitespace
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// stripTones removes tone digits from a normalized jyutping string
func stripTones(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, normalize(s))
}
