// Package judge evaluates whether a player's pronunciation matches an
// expected word. A non-match is a valid false result, never an error;
// errors are reserved for input the judge cannot process at all.
package judge

import (
	"context"
	"errors"
)

// ErrEvaluation marks unrecoverable evaluation failures (corrupt audio,
// recognizer outage). Callers are expected to degrade to an incorrect
// verdict rather than abort the game.
var ErrEvaluation = errors.New("pronunciation evaluation failed")

// Input carries one submission: either raw audio or text the client
// already recognized on-device.
type Input struct {
	Audio      []byte
	AudioMIME  string
	Recognized string
}

// Result is the judge's verdict on one submission
type Result struct {
	Correct    bool
	Feedback   string
	Recognized string
}

// Judge is the pluggable correctness oracle consumed by the game engine
type Judge interface {
	Evaluate(ctx context.Context, in Input, expectedText, expectedJyutping string) (Result, error)
}

// Func adapts a plain function to the Judge interface
type Func func(ctx context.Context, in Input, expectedText, expectedJyutping string) (Result, error)

// Evaluate calls f
func (f Func) Evaluate(ctx context.Context, in Input, expectedText, expectedJyutping string) (Result, error) {
	return f(ctx, in, expectedText, expectedJyutping)
}
