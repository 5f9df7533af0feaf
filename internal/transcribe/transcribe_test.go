package transcribe

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubTranscriber struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubTranscriber) Name() string { return s.name }

func (s *stubTranscriber) Transcribe(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestChainPrimarySuccessShortCircuits(t *testing.T) {
	primary := &stubTranscriber{name: "primary", text: "I have a fever"}
	secondary := &stubTranscriber{name: "secondary", text: "unused"}

	res := NewChain(primary, secondary).Run(context.Background(), "a.wav")
	if res.Degraded {
		t.Fatalf("Degraded = true, want primary success")
	}
	if res.Text != "I have a fever" {
		t.Fatalf("Text = %q, want primary transcript", res.Text)
	}
	if res.Provider != "primary" {
		t.Fatalf("Provider = %q, want %q", res.Provider, "primary")
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary calls = %d, want 0", secondary.calls)
	}
}

func TestChainFallsThroughToSecondary(t *testing.T) {
	primary := &stubTranscriber{name: "primary", err: errors.New("quota exceeded")}
	secondary := &stubTranscriber{name: "secondary", text: "I have a cough"}

	res := NewChain(primary, secondary).Run(context.Background(), "a.wav")
	if res.Degraded {
		t.Fatalf("Degraded = true, want secondary success")
	}
	if res.Text != "I have a cough" {
		t.Fatalf("Text = %q, want secondary transcript", res.Text)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("calls = %d/%d, want exactly one attempt each", primary.calls, secondary.calls)
	}
}

func TestChainExhaustionYieldsSentinel(t *testing.T) {
	primary := &stubTranscriber{name: "primary", err: errors.New("auth failed")}
	secondary := &stubTranscriber{name: "secondary", err: errors.New("model missing")}

	res := NewChain(primary, secondary).Run(context.Background(), "a.wav")
	if !res.Degraded {
		t.Fatalf("Degraded = false after total failure")
	}
	if res.Text != Sentinel {
		t.Fatalf("Text = %q, want sentinel %q", res.Text, Sentinel)
	}
	if !strings.Contains(res.Reason, "auth failed") || !strings.Contains(res.Reason, "model missing") {
		t.Fatalf("Reason = %q, want both provider failures recorded", res.Reason)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("calls = %d/%d, want no retries", primary.calls, secondary.calls)
	}
}

func TestChainTreatsEmptyTranscriptAsFailure(t *testing.T) {
	primary := &stubTranscriber{name: "primary", text: "   "}
	secondary := &stubTranscriber{name: "secondary", text: "something hurts"}

	res := NewChain(primary, secondary).Run(context.Background(), "a.wav")
	if res.Text != "something hurts" {
		t.Fatalf("Text = %q, want secondary transcript", res.Text)
	}
}

func TestChainWithNoProvidersIsDegraded(t *testing.T) {
	res := NewChain().Run(context.Background(), "a.wav")
	if !res.Degraded || res.Text != Sentinel {
		t.Fatalf("Result = %+v, want degraded sentinel", res)
	}
}

func TestChainProvidersReportsAttemptOrder(t *testing.T) {
	c := NewChain(
		&stubTranscriber{name: "openai-whisper"},
		&stubTranscriber{name: "whisper-cli"},
	)
	got := c.Providers()
	if len(got) != 2 || got[0] != "openai-whisper" || got[1] != "whisper-cli" {
		t.Fatalf("Providers() = %v, want [openai-whisper whisper-cli]", got)
	}
}
