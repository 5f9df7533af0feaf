// Package pipeline sequences the call-processing stages for one inbound
// recording: fetch, transcribe, triage, locate, synthesize, persist,
// notify. Transitions are strictly sequential and forward-only; fatal
// stages abort to Failed while contained stages degrade to sentinels and
// keep the run alive.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/arogyaline/arogyaline/internal/geo"
	"github.com/arogyaline/arogyaline/internal/observability"
	"github.com/arogyaline/arogyaline/internal/store"
	"github.com/arogyaline/arogyaline/internal/transcribe"
	"github.com/arogyaline/arogyaline/internal/triage"
)

// State names one pipeline stage or terminal condition.
type State string

const (
	StateAwaitingRecording State = "awaiting_recording"
	StateFetching          State = "fetching"
	StateTranscribing      State = "transcribing"
	StateTriaging          State = "triaging"
	StateLocating          State = "locating"
	StateSynthesizing      State = "synthesizing"
	StatePersisting        State = "persisting"
	StateNotifying         State = "notifying"
	StateResponding        State = "responding"
	StateResponded         State = "responded"
	StateFailed            State = "failed"
)

// Sentinels substituted when the clinic lookup degrades.
const (
	ClinicNotFoundName    = "Nearest clinic not found"
	ClinicNotFoundAddress = ""
)

// Fetcher retrieves the remote recording into scratch storage.
type Fetcher interface {
	Fetch(ctx context.Context, recordingURL, destDir string) (string, error)
}

// TranscriberChain converts audio to text without ever failing.
type TranscriberChain interface {
	Run(ctx context.Context, audioPath string) transcribe.Result
}

// Locator resolves a region to a nearby clinic, nil when none found.
type Locator interface {
	FindNearestClinic(ctx context.Context, region string) (*geo.Clinic, error)
}

// Synthesizer renders response text to a call-scoped audio artifact.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang, callID string) (string, error)
}

// Dispatcher sends the SMS summary. A nil Dispatcher disables dispatch.
type Dispatcher interface {
	Send(ctx context.Context, to, body string) error
}

// Publisher receives each persisted consultation, e.g. for a live feed.
type Publisher interface {
	Publish(c store.Consultation)
}

// Outcome is the terminal result of one pipeline run.
type Outcome struct {
	State        State
	CallID       string
	ResponseText string
	Transcript   string
	Degraded     bool
	FailedStage  State
	Err          error
	Consultation *store.Consultation
	Path         []State
	SMSAttempted bool
}

// Failed reports whether the run ended with the apology response.
func (o Outcome) Failed() bool { return o.State == StateFailed }

// Orchestrator owns error containment and response composition for the
// whole call-processing sequence.
type Orchestrator struct {
	fetcher     Fetcher
	chain       TranscriberChain
	locator     Locator
	synthesizer Synthesizer
	store       store.Store
	dispatcher  Dispatcher
	publisher   Publisher
	metrics     *observability.Metrics

	scratchDir    string
	defaultRegion string
	ttsLanguage   string
}

type Options struct {
	ScratchDir    string
	DefaultRegion string
	TTSLanguage   string
}

func NewOrchestrator(
	fetcher Fetcher,
	chain TranscriberChain,
	locator Locator,
	synthesizer Synthesizer,
	st store.Store,
	dispatcher Dispatcher,
	publisher Publisher,
	metrics *observability.Metrics,
	opts Options,
) *Orchestrator {
	if opts.TTSLanguage == "" {
		opts.TTSLanguage = "en"
	}
	return &Orchestrator{
		fetcher:       fetcher,
		chain:         chain,
		locator:       locator,
		synthesizer:   synthesizer,
		store:         st,
		dispatcher:    dispatcher,
		publisher:     publisher,
		metrics:       metrics,
		scratchDir:    opts.ScratchDir,
		defaultRegion: opts.DefaultRegion,
		ttsLanguage:   opts.TTSLanguage,
	}
}

// Process runs the full pipeline for one inbound recording event. It blocks
// for the duration of the run and always reaches a terminal state; the
// caller turns the outcome into the telephony response.
func (p *Orchestrator) Process(ctx context.Context, callerID, recordingURL string) Outcome {
	out := Outcome{
		CallID: uuid.NewString(),
		Path:   []State{StateAwaitingRecording},
	}

	if recordingURL == "" {
		log.Printf("pipeline %s: no recording url received", out.CallID)
		return p.fail(out, StateAwaitingRecording, fmt.Errorf("missing recording url"))
	}

	// Fetching: fatal on failure.
	out.Path = append(out.Path, StateFetching)
	start := time.Now()
	audioPath, err := p.fetcher.Fetch(ctx, recordingURL, p.scratchDir)
	p.metrics.ObserveStage(string(StateFetching), time.Since(start))
	if err != nil {
		p.metrics.ProviderErrors.WithLabelValues("telephony", string(StateFetching)).Inc()
		log.Printf("pipeline %s: fetch failed: %v", out.CallID, err)
		return p.fail(out, StateFetching, err)
	}

	// Transcribing: contained; the chain substitutes the sentinel itself.
	out.Path = append(out.Path, StateTranscribing)
	start = time.Now()
	res := p.chain.Run(ctx, audioPath)
	p.metrics.ObserveStage(string(StateTranscribing), time.Since(start))
	if res.Degraded {
		p.metrics.ProviderErrors.WithLabelValues("transcription", string(StateTranscribing)).Inc()
		out.Degraded = true
	}
	out.Transcript = res.Text
	log.Printf("pipeline %s: transcript (%s): %q", out.CallID, res.Provider, res.Text)

	// Triaging: never fails by contract.
	out.Path = append(out.Path, StateTriaging)
	match := triage.MatchText(res.Text)

	// Locating: contained; sentinel clinic on any failure. Invoked exactly
	// once per run to respect the geocoder's rate policy.
	out.Path = append(out.Path, StateLocating)
	clinicName, clinicAddress := ClinicNotFoundName, ClinicNotFoundAddress
	start = time.Now()
	clinic, err := p.locator.FindNearestClinic(ctx, p.defaultRegion)
	p.metrics.ObserveStage(string(StateLocating), time.Since(start))
	if err != nil {
		p.metrics.ProviderErrors.WithLabelValues("geocoder", string(StateLocating)).Inc()
		log.Printf("pipeline %s: clinic lookup failed: %v", out.CallID, err)
		out.Degraded = true
	} else if clinic != nil {
		clinicName, clinicAddress = clinic.Name, clinic.Address
	}

	out.ResponseText = composeResponse(res.Text, match.Condition, match.Advice, clinicName)

	// Synthesizing: fatal on failure, no fallback provider.
	out.Path = append(out.Path, StateSynthesizing)
	start = time.Now()
	if _, err := p.synthesizer.Synthesize(ctx, out.ResponseText, p.ttsLanguage, out.CallID); err != nil {
		p.metrics.ObserveStage(string(StateSynthesizing), time.Since(start))
		p.metrics.ProviderErrors.WithLabelValues("tts", string(StateSynthesizing)).Inc()
		log.Printf("pipeline %s: synthesis failed: %v", out.CallID, err)
		return p.fail(out, StateSynthesizing, err)
	}
	p.metrics.ObserveStage(string(StateSynthesizing), time.Since(start))

	// Persisting: synchronous commit before the response; failure here
	// still aborts to the apology since nothing was recorded.
	out.Path = append(out.Path, StatePersisting)
	record := &store.Consultation{
		Caller:        callerID,
		Timestamp:     time.Now().UTC(),
		RecordingURL:  recordingURL,
		Transcript:    res.Text,
		Condition:     match.Condition,
		Advice:        match.Advice,
		ClinicName:    clinicName,
		ClinicAddress: clinicAddress,
	}
	start = time.Now()
	if err := p.store.Save(ctx, record); err != nil {
		p.metrics.ObserveStage(string(StatePersisting), time.Since(start))
		log.Printf("pipeline %s: persist failed: %v", out.CallID, err)
		return p.fail(out, StatePersisting, err)
	}
	p.metrics.ObserveStage(string(StatePersisting), time.Since(start))
	p.metrics.ConsultationsSaved.Inc()
	out.Consultation = record

	if p.publisher != nil {
		p.publisher.Publish(*record)
	}

	// Notifying: contained; never blocks the caller response.
	out.Path = append(out.Path, StateNotifying)
	if p.dispatcher != nil && callerID != "" {
		out.SMSAttempted = true
		if err := p.dispatcher.Send(ctx, callerID, out.ResponseText); err != nil {
			p.metrics.SMSDispatches.WithLabelValues("error").Inc()
			log.Printf("pipeline %s: sms dispatch failed: %v", out.CallID, err)
		} else {
			p.metrics.SMSDispatches.WithLabelValues("sent").Inc()
		}
	} else {
		p.metrics.SMSDispatches.WithLabelValues("skipped").Inc()
	}

	out.Path = append(out.Path, StateResponding, StateResponded)
	out.State = StateResponded
	p.metrics.PipelineRuns.WithLabelValues("responded").Inc()
	return out
}

func (p *Orchestrator) fail(out Outcome, stage State, err error) Outcome {
	out.State = StateFailed
	out.FailedStage = stage
	out.Err = err
	out.Path = append(out.Path, StateFailed)
	p.metrics.PipelineRuns.WithLabelValues("failed").Inc()
	return out
}

// composeResponse interpolates the session fields into the spoken/SMS text.
// Every field may be a sentinel placeholder; the sentence still reads.
func composeResponse(transcript, condition, advice, clinicName string) string {
	return fmt.Sprintf(
		"You said: %s. It seems like %s. My advice: %s. The nearest clinic is %s. Please take care.",
		transcript, condition, advice, clinicName,
	)
}
