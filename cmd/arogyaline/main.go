package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arogyaline/arogyaline/internal/config"
	"github.com/arogyaline/arogyaline/internal/geo"
	"github.com/arogyaline/arogyaline/internal/httpapi"
	"github.com/arogyaline/arogyaline/internal/notify"
	"github.com/arogyaline/arogyaline/internal/observability"
	"github.com/arogyaline/arogyaline/internal/pipeline"
	"github.com/arogyaline/arogyaline/internal/recording"
	"github.com/arogyaline/arogyaline/internal/speech"
	"github.com/arogyaline/arogyaline/internal/store"
	"github.com/arogyaline/arogyaline/internal/transcribe"
)

// buildTranscribers orders the speech-to-text providers cloud-first,
// local-second: the hosted model is faster and more accurate, the CLI has no
// external dependency. An absent API key skips the primary entirely.
func buildTranscribers(cfg config.Config) []transcribe.Transcriber {
	var transcribers []transcribe.Transcriber
	if cfg.OpenAIAPIKey != "" {
		transcribers = append(transcribers, transcribe.NewOpenAIWhisper(cfg.OpenAIAPIKey))
	}
	transcribers = append(transcribers, transcribe.NewWhisperCLI(cfg.WhisperCLI, cfg.WhisperModelPath, cfg.WhisperLanguage))
	return transcribers
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	log.Printf("twilio account configured: %v", cfg.TwilioAccountSID != "")

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	records, err := store.New(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("consultation store init failed: %v", err)
	}
	defer records.Close()
	if cfg.DatabaseURL != "" {
		log.Printf("consultation store: postgres")
	} else {
		log.Printf("consultation store: sqlite (%s)", cfg.SQLitePath)
	}

	fetcher := recording.NewFetcher(cfg.TwilioAccountSID, cfg.TwilioAuthToken)

	if cfg.OpenAIAPIKey == "" {
		log.Printf("transcribe: OPENAI_API_KEY not set; primary provider disabled")
	}
	chain := transcribe.NewChain(buildTranscribers(cfg)...)
	log.Printf("transcribe providers: %v", chain.Providers())

	locator := geo.NewLocator(cfg.NominatimBaseURL, cfg.NominatimUserAgent)

	artifacts := speech.NewArtifactStore()
	synthesizer := speech.NewSynthesizer(cfg.ScratchDir, artifacts)

	var dispatcher pipeline.Dispatcher
	if cfg.SMSEnabled() {
		dispatcher = notify.NewDispatcher(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	} else {
		log.Printf("notify: messaging credentials missing; SMS disabled")
	}

	feed := httpapi.NewFeedHub(metrics)

	orchestrator := pipeline.NewOrchestrator(
		fetcher,
		chain,
		locator,
		synthesizer,
		records,
		dispatcher,
		feed,
		metrics,
		pipeline.Options{
			ScratchDir:    cfg.ScratchDir,
			DefaultRegion: cfg.DefaultRegion,
			TTSLanguage:   cfg.TTSLanguage,
		},
	)

	api := httpapi.New(cfg, orchestrator, records, artifacts, feed, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
