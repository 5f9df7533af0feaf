package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":5000" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":5000")
	}
	if cfg.DefaultRegion != "Hyderabad, India" {
		t.Fatalf("DefaultRegion = %q, want default", cfg.DefaultRegion)
	}
	if cfg.RecordMaxSeconds != 15 {
		t.Fatalf("RecordMaxSeconds = %d, want 15", cfg.RecordMaxSeconds)
	}
	if cfg.DashboardLimit != 50 {
		t.Fatalf("DashboardLimit = %d, want 50", cfg.DashboardLimit)
	}
	if cfg.SMSEnabled() {
		t.Fatalf("SMSEnabled() = true with no credentials")
	}
}

func TestLoadPortEnvFeedsBindAddr(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("PORT", "8123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8123" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8123")
	}
}

func TestLoadBindAddrWinsOverPort(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("PORT", "8123")
	t.Setenv("APP_BIND_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9090")
	}
}

func TestLoadSMSEnabledRequiresAllCredentials(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SMSEnabled() {
		t.Fatalf("SMSEnabled() = true without sender number")
	}

	t.Setenv("TWILIO_PHONE_NUMBER", "+15550001111")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.SMSEnabled() {
		t.Fatalf("SMSEnabled() = false with full credentials")
	}
}

func TestLoadRejectsBadRecordMaxSeconds(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("RECORD_MAX_SECONDS", "0")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "RECORD_MAX_SECONDS") {
		t.Fatalf("Load() error = %v, want RECORD_MAX_SECONDS validation error", err)
	}
}

func TestLoadRejectsBadDashboardLimit(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("DASHBOARD_LIMIT", "-1")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DASHBOARD_LIMIT") {
		t.Fatalf("Load() error = %v, want DASHBOARD_LIMIT validation error", err)
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"PORT",
		"TWILIO_ACCOUNT_SID",
		"TWILIO_AUTH_TOKEN",
		"TWILIO_PHONE_NUMBER",
		"OPENAI_API_KEY",
		"WHISPER_CLI",
		"WHISPER_MODEL_PATH",
		"WHISPER_LANGUAGE",
		"NOMINATIM_BASE_URL",
		"NOMINATIM_USER_AGENT",
		"DEFAULT_REGION",
		"TTS_LANGUAGE",
		"RECORD_MAX_SECONDS",
		"DASHBOARD_LIMIT",
		"DATABASE_URL",
		"SQLITE_PATH",
		"SCRATCH_DIR",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}
