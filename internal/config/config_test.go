package config

import (
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("EVENT_LOG_CAP", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("ADMIN_JWT_SECRET", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Fatalf("expected gemini default, got %s", cfg.Provider)
	}
	if cfg.EventLogCap != 200 {
		t.Fatalf("expected default event log cap 200, got %d", cfg.EventLogCap)
	}
	if cfg.RedisAddr != "" || cfg.AdminJWTSecret != "" {
		t.Fatalf("expected empty optional settings, got %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("EVENT_LOG_CAP", "50")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ELEVENLABS_AGENT_MEDIUM", "agent-medium")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.EventLogCap != 50 {
		t.Fatalf("expected event log cap 50, got %d", cfg.EventLogCap)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected redis addr: %s", cfg.RedisAddr)
	}
	if cfg.VoiceAgents[3] != "agent-medium" {
		t.Fatalf("expected medium agent wired, got %+v", cfg.VoiceAgents)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")

	if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "unsupported AI provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestLoadConfigRejectsNonPositiveEventLogCap(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("EVENT_LOG_CAP", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for zero event log cap")
	}
}

func TestLoadConfigIgnoresMalformedEventLogCap(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("EVENT_LOG_CAP", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.EventLogCap != 200 {
		t.Fatalf("expected fallback to default, got %d", cfg.EventLogCap)
	}
}
