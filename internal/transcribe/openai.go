package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIWhisper transcribes via the hosted whisper-1 model. It is the
// primary provider: fastest and most accurate, but subject to quota, auth
// and network failures that the chain absorbs.
type OpenAIWhisper struct {
	client openaigo.Client
}

// NewOpenAIWhisper builds the provider. Callers must not construct it with
// an empty key; skip the primary entirely instead.
func NewOpenAIWhisper(apiKey string) *OpenAIWhisper {
	client := openaigo.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		option.WithMaxRetries(0),
	)
	return &OpenAIWhisper{client: client}
}

func (o *OpenAIWhisper) Name() string { return "openai-whisper" }

func (o *OpenAIWhisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	resp, err := o.client.Audio.Transcriptions.New(ctx, openaigo.AudioTranscriptionNewParams{
		Model: openaigo.AudioModelWhisper1,
		File:  f,
	})
	if err != nil {
		return "", fmt.Errorf("whisper-1 transcription: %w", err)
	}
	return resp.Text, nil
}
