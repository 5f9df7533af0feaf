package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all runtime settings for the triage line service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	OpenAIAPIKey string

	WhisperCLI       string
	WhisperModelPath string
	WhisperLanguage  string

	NominatimBaseURL   string
	NominatimUserAgent string

	DefaultRegion    string
	TTSLanguage      string
	RecordMaxSeconds int
	DashboardLimit   int

	DatabaseURL string
	SQLitePath  string
	ScratchDir  string
}

// SMSEnabled reports whether all messaging credentials are present.
// Missing credentials silently disable SMS dispatch.
func (c Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

// Load reads a local .env (when present) plus environment variables and
// applies safe defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BindAddr:           envOrDefault("APP_BIND_ADDR", ""),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "arogyaline"),
		TwilioAccountSID:   envTrimmed("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    envTrimmed("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:   envTrimmed("TWILIO_PHONE_NUMBER"),
		OpenAIAPIKey:       envTrimmed("OPENAI_API_KEY"),
		WhisperCLI:         envOrDefault("WHISPER_CLI", "whisper-cli"),
		WhisperModelPath:   envOrDefault("WHISPER_MODEL_PATH", ".models/whisper/ggml-base.en.bin"),
		WhisperLanguage:    envOrDefault("WHISPER_LANGUAGE", "en"),
		NominatimBaseURL:   envOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: envOrDefault("NOMINATIM_USER_AGENT", "arogyaline/1.0"),
		DefaultRegion:      envOrDefault("DEFAULT_REGION", "Hyderabad, India"),
		TTSLanguage:        envOrDefault("TTS_LANGUAGE", "en"),
		RecordMaxSeconds:   15,
		DashboardLimit:     50,
		DatabaseURL:        envTrimmed("DATABASE_URL"),
		SQLitePath:         envOrDefault("SQLITE_PATH", "data/consultations.db"),
		ScratchDir:         envOrDefault("SCRATCH_DIR", os.TempDir()),
		ShutdownTimeout:    15 * time.Second,
	}

	// PORT keeps parity with the usual PaaS convention; APP_BIND_ADDR wins
	// when both are set.
	if cfg.BindAddr == "" {
		cfg.BindAddr = ":" + envOrDefault("PORT", "5000")
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RecordMaxSeconds, err = intFromEnv("RECORD_MAX_SECONDS", cfg.RecordMaxSeconds)
	if err != nil {
		return Config{}, err
	}
	cfg.DashboardLimit, err = intFromEnv("DASHBOARD_LIMIT", cfg.DashboardLimit)
	if err != nil {
		return Config{}, err
	}

	if cfg.RecordMaxSeconds < 1 || cfg.RecordMaxSeconds > 120 {
		return Config{}, fmt.Errorf("RECORD_MAX_SECONDS must be between 1 and 120")
	}
	if cfg.DashboardLimit <= 0 {
		return Config{}, fmt.Errorf("DASHBOARD_LIMIT must be positive")
	}
	if cfg.ShutdownTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be at least 1s")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
