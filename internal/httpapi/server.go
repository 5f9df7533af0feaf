package httpapi

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/arogyaline/arogyaline/internal/config"
	"github.com/arogyaline/arogyaline/internal/observability"
	"github.com/arogyaline/arogyaline/internal/pipeline"
	"github.com/arogyaline/arogyaline/internal/speech"
	"github.com/arogyaline/arogyaline/internal/store"
)

// Pipeline runs one call-processing sequence to a terminal state.
type Pipeline interface {
	Process(ctx context.Context, callerID, recordingURL string) pipeline.Outcome
}

type Server struct {
	cfg       config.Config
	pipeline  Pipeline
	records   store.Store
	artifacts *speech.ArtifactStore
	feed      *FeedHub
	metrics   *observability.Metrics
	upgrader  websocket.Upgrader
}

func New(cfg config.Config, pl Pipeline, records store.Store, artifacts *speech.ArtifactStore, feed *FeedHub, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:       cfg,
		pipeline:  pl,
		records:   records,
		artifacts: artifacts,
		feed:      feed,
		metrics:   metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser feed connections from the same origin.
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/voice", s.handleVoice)
	r.Post("/process_recording", s.handleProcessRecording)
	r.Get("/tts_response", s.handleLatestAudio)
	r.Get("/tts_response/{callID}", s.handleCallAudio)
	r.Get("/dashboard", s.handleDashboard)
	r.Get("/dashboard/ws", s.handleFeedWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OK"))
}

// handleVoice answers the inbound call: greet, record once, hand off to
// /process_recording.
func (s *Server) handleVoice(w http.ResponseWriter, _ *http.Request) {
	respondTwiML(w,
		twimlSay{Text: "Hello! Please describe your symptoms after the beep. You have fifteen seconds."},
		twimlRecord{
			Action:    "/process_recording",
			Method:    http.MethodPost,
			MaxLength: s.cfg.RecordMaxSeconds,
			PlayBeep:  true,
			Trim:      "trim-silence",
		},
		twimlSay{Text: "No recording received. Goodbye."},
	)
}

// handleProcessRecording runs the whole pipeline within this request; the
// telephony provider holds the call open until we answer.
func (s *Server) handleProcessRecording(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondTwiML(w, twimlSay{Text: "Sorry, an error occurred while processing your symptoms. Please try again later."})
		return
	}
	recordingURL := r.PostForm.Get("RecordingUrl")
	caller := r.PostForm.Get("From")
	log.Printf("httpapi: processing recording from %s: %s", caller, recordingURL)

	out := s.pipeline.Process(r.Context(), caller, recordingURL)
	if out.Failed() {
		if out.FailedStage == pipeline.StateAwaitingRecording {
			respondTwiML(w, twimlSay{Text: "Sorry, we didn't receive any recording."})
			return
		}
		respondTwiML(w, twimlSay{Text: "Sorry, an error occurred while processing your symptoms. Please try again later."})
		return
	}

	respondTwiML(w,
		twimlSay{Text: "Here is your health analysis."},
		twimlPlay{URL: absoluteURL(r, "/tts_response/"+out.CallID)},
		twimlSay{Text: "Thank you for using our AI health assistant. Goodbye!"},
	)
}

func (s *Server) handleCallAudio(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	path, ok := s.artifacts.Lookup(callID)
	if !ok {
		http.Error(w, "No TTS file found", http.StatusNotFound)
		return
	}
	s.serveAudio(w, path)
}

// handleLatestAudio keeps the historical unscoped route alive: it serves
// whatever was synthesized most recently.
func (s *Server) handleLatestAudio(w http.ResponseWriter, _ *http.Request) {
	path := s.artifacts.Latest()
	if path == "" {
		http.Error(w, "No TTS file found", http.StatusNotFound)
		return
	}
	s.serveAudio(w, path)
}

func (s *Server) serveAudio(w http.ResponseWriter, path string) {
	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "No TTS file found", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("httpapi: serve audio: %v", err)
	}
}

func (s *Server) handleFeedWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.feed.add(conn)
	defer s.feed.remove(conn)

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(feedReadWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(feedReadWait))
		return nil
	})

	// Read loop only detects disconnect; the feed is one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(feedReadWait))
	}
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + path
}
