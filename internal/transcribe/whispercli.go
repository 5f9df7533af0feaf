package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// WhisperCLI transcribes with a local whisper.cpp binary. Slower and less
// accurate than the hosted model, but it has no external dependency, which
// is exactly why it sits second in the chain.
type WhisperCLI struct {
	cliPath   string
	modelPath string
	language  string
}

func NewWhisperCLI(cliPath, modelPath, language string) *WhisperCLI {
	if strings.TrimSpace(cliPath) == "" {
		cliPath = "whisper-cli"
	}
	if strings.TrimSpace(language) == "" {
		language = "en"
	}
	return &WhisperCLI{cliPath: cliPath, modelPath: modelPath, language: language}
}

func (w *WhisperCLI) Name() string { return "whisper-cli" }

func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(w.modelPath); err != nil {
		return "", fmt.Errorf("whisper model not found: %s", w.modelPath)
	}

	tmpDir, err := os.MkdirTemp("", "arogyaline-whisper-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)
	outPrefix := filepath.Join(tmpDir, "out")

	// whisper.cpp CLI flag set varies slightly across builds; keep this conservative.
	args := []string{
		"-m", w.modelPath,
		"-f", audioPath,
		"-l", w.language,
		"-otxt",
		"-of", outPrefix,
		"-nt",
	}

	cmd := exec.CommandContext(ctx, w.cliPath, args...)
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", context.Canceled
		}
		detail := strings.TrimSpace(stderr.String())
		// whisper.cpp can be extremely chatty; keep errors readable.
		if len(detail) > 4<<10 {
			detail = strings.TrimSpace(detail[len(detail)-(4<<10):])
		}
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("whisper.cpp failed: %s", detail)
	}

	b, err := os.ReadFile(outPrefix + ".txt")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
