// Package transcribe converts recorded caller audio to text. Providers are
// arranged in an ordered chain; the first success wins and exhaustion yields
// a sentinel transcript rather than an error, so downstream stages always
// receive usable text.
package transcribe

import (
	"context"
	"log"
	"strings"
)

// Sentinel is the transcript used when every provider fails.
const Sentinel = "Unable to transcribe user speech."

// Transcriber converts one local audio file to text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Result is the outcome of a chain run. Degraded results carry the sentinel
// text plus the reasons each provider failed.
type Result struct {
	Text     string
	Provider string
	Degraded bool
	Reason   string
}

// Chain tries each transcriber once, in order. There is no retry and no
// backoff: the secondary exists precisely because the primary is flaky.
type Chain struct {
	providers []Transcriber
}

// NewChain builds a chain over the given providers in priority order. A
// provider that should be skipped (e.g. primary with no credential) is
// simply not passed in.
func NewChain(providers ...Transcriber) *Chain {
	return &Chain{providers: providers}
}

// Providers returns the names of the chained providers in attempt order.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Run attempts each provider once and never returns an error.
func (c *Chain) Run(ctx context.Context, audioPath string) Result {
	var reasons []string
	for _, p := range c.providers {
		text, err := p.Transcribe(ctx, audioPath)
		if err != nil {
			log.Printf("transcribe: %s failed: %v", p.Name(), err)
			reasons = append(reasons, p.Name()+": "+err.Error())
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			log.Printf("transcribe: %s returned empty transcript", p.Name())
			reasons = append(reasons, p.Name()+": empty transcript")
			continue
		}
		return Result{Text: text, Provider: p.Name()}
	}
	return Result{
		Text:     Sentinel,
		Degraded: true,
		Reason:   strings.Join(reasons, "; "),
	}
}
