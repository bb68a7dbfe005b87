package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDRESS", "OPENAI_API_KEY", "REALTIME_MODEL",
		"REALTIME_BASE_URL", "DEEPGRAM_API_KEY", "ALLOWED_ORIGINS",
		"SPEECH_WAIT_DEFAULT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.HTTPAddress != ":8080" {
		t.Errorf("HTTPAddress = %q", cfg.HTTPAddress)
	}
	if cfg.RealtimeModel != "gpt-realtime" {
		t.Errorf("RealtimeModel = %q", cfg.RealtimeModel)
	}
	if cfg.RealtimeBaseURL != "https://api.openai.com" {
		t.Errorf("RealtimeBaseURL = %q", cfg.RealtimeBaseURL)
	}
	if cfg.SpeechWaitDefault != 8*time.Second {
		t.Errorf("SpeechWaitDefault = %v", cfg.SpeechWaitDefault)
	}
	if len(cfg.AllowedOrigins) == 0 {
		t.Error("default origins empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9999")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REALTIME_MODEL", "gpt-realtime-mini")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example , https://b.example,")
	t.Setenv("SPEECH_WAIT_DEFAULT", "15s")

	cfg := Load()
	if cfg.HTTPAddress != ":9999" {
		t.Errorf("HTTPAddress = %q", cfg.HTTPAddress)
	}
	if cfg.OpenAIKey != "sk-test" {
		t.Errorf("OpenAIKey = %q", cfg.OpenAIKey)
	}
	if cfg.RealtimeModel != "gpt-realtime-mini" {
		t.Errorf("RealtimeModel = %q", cfg.RealtimeModel)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.SpeechWaitDefault != 15*time.Second {
		t.Errorf("SpeechWaitDefault = %v", cfg.SpeechWaitDefault)
	}
}

func TestLoadRejectsBadWaitDuration(t *testing.T) {
	t.Setenv("SPEECH_WAIT_DEFAULT", "soon")
	cfg := Load()
	if cfg.SpeechWaitDefault != 8*time.Second {
		t.Errorf("SpeechWaitDefault = %v, want default kept", cfg.SpeechWaitDefault)
	}
}
