package judge

import (
	"context"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SpeechJudge transcribes submitted audio with Google Cloud Speech and
// then judges the transcript with a Matcher. Clips are a few seconds of
// a single word, so the synchronous Recognize API is enough.
type SpeechJudge struct {
	client       *speech.Client
	matcher      *Matcher
	languageCode string
	maxRetries   int
}

// NewSpeechJudge creates a judge backed by Google Cloud Speech.
// Credentials come from the environment (GOOGLE_APPLICATION_CREDENTIALS).
func NewSpeechJudge(ctx context.Context, languageCode string) (*SpeechJudge, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	return &SpeechJudge{
		client:       client,
		matcher:      NewMatcher(),
		languageCode: languageCode,
		maxRetries:   3,
	}, nil
}

// Close releases the underlying gRPC connection
func (j *SpeechJudge) Close() error {
	return j.client.Close()
}

// Evaluate transcribes the audio and compares the transcript with the
// expected word. When the client already recognized text on-device the
// transcription step is skipped.
func (j *SpeechJudge) Evaluate(ctx context.Context, in Input, expectedText, expectedJyutping string) (Result, error) {
	if strings.TrimSpace(in.Recognized) != "" {
		return j.matcher.Evaluate(ctx, in, expectedText, expectedJyutping)
	}

	if len(in.Audio) == 0 {
		return Result{}, fmt.Errorf("%w: no audio data", ErrEvaluation)
	}

	transcript, err := j.transcribe(ctx, in.Audio, in.AudioMIME)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	if transcript == "" {
		return Result{}, fmt.Errorf("%w: no speech detected", ErrEvaluation)
	}

	return j.matcher.Evaluate(ctx, Input{Recognized: transcript}, expectedText, expectedJyutping)
}

func (j *SpeechJudge) transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode: j.languageCode,
			Encoding:     inferEncoding(mimeType),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	resp, err := j.recognizeWithRetry(ctx, req)
	if err != nil {
		return "", err
	}

	var full strings.Builder
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		alt := r.Alternatives[0]
		if strings.TrimSpace(alt.Transcript) == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(strings.TrimSpace(alt.Transcript))
	}

	return full.String(), nil
}

func (j *SpeechJudge) recognizeWithRetry(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
	backoff := 500 * time.Millisecond
	var last error

	for attempt := 0; attempt <= j.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, err := j.client.Recognize(ctx, req)
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == j.maxRetries {
			break
		}

		time.Sleep(backoff)
		backoff *= 2
	}

	return nil, last
}

func inferEncoding(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))

	switch {
	case strings.Contains(m, "wav"):
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mp3") || strings.Contains(m, "mpeg"):
		return speechpb.RecognitionConfig_MP3
	case strings.Contains(m, "ogg") || strings.Contains(m, "opus"):
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(m, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}
