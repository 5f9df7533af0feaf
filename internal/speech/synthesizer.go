// Package speech turns composed response text into a playable MP3 artifact
// using the Google Translate TTS endpoint.
package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxChunkRunes bounds each TTS request; the endpoint rejects long inputs.
const maxChunkRunes = 200

// Synthesizer fetches speech audio chunk by chunk and writes one artifact
// per call. There is no fallback provider: synthesis failure is fatal to
// the pipeline and surfaces as a spoken apology upstream.
type Synthesizer struct {
	baseURL    string
	client     *http.Client
	scratchDir string
	artifacts  *ArtifactStore
}

func NewSynthesizer(scratchDir string, artifacts *ArtifactStore) *Synthesizer {
	return &Synthesizer{
		baseURL:    "https://translate.google.com/translate_tts",
		client:     &http.Client{Timeout: 30 * time.Second},
		scratchDir: scratchDir,
		artifacts:  artifacts,
	}
}

// Synthesize renders text in the given language to a call-scoped MP3 file,
// overwriting any prior artifact for the same call, and registers the path
// in the artifact store.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang, callID string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("synthesize: empty text")
	}
	if strings.TrimSpace(lang) == "" {
		lang = "en"
	}

	if err := os.MkdirAll(s.scratchDir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	name := "response.mp3"
	if callID != "" {
		name = "response-" + callID + ".mp3"
	}
	outPath := filepath.Join(s.scratchDir, name)

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}

	for _, chunk := range splitChunks(text, maxChunkRunes) {
		if err := s.fetchChunk(ctx, chunk, lang, out); err != nil {
			out.Close()
			os.Remove(outPath)
			return "", err
		}
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}

	s.artifacts.Register(callID, outPath)
	return outPath, nil
}

func (s *Synthesizer) fetchChunk(ctx context.Context, chunk, lang string, out io.Writer) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts status %d", resp.StatusCode)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write tts audio: %w", err)
	}
	return nil
}

// splitChunks breaks text at sentence boundaries where possible, falling
// back to whitespace, so each piece stays under the endpoint's input cap.
func splitChunks(text string, maxRunes int) []string {
	var chunks []string
	rest := strings.TrimSpace(text)
	for rest != "" {
		runes := []rune(rest)
		if len(runes) <= maxRunes {
			chunks = append(chunks, rest)
			break
		}

		// window is a byte prefix of rest, so byte offsets below stay valid.
		window := string(runes[:maxRunes])
		cut := strings.LastIndexAny(window, ".?!")
		if cut < 0 {
			cut = strings.LastIndexAny(window, " \t\n")
		}
		if cut <= 0 {
			cut = len(window) - 1
		}

		chunk := strings.TrimSpace(window[:cut+1])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		rest = strings.TrimSpace(rest[cut+1:])
	}
	return chunks
}
