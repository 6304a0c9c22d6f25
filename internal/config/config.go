package config

import (
	"errors"
	"os"
	"strconv"
)

// app config, AI provider plus platform-level knobs
type Config struct {
	Provider       string
	EventLogCap    int
	RedisAddr      string
	AdminJWTSecret string
	VoiceAgents    map[int]string
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider:       getEnvOrDefault("AI_PROVIDER", "gemini"),
		EventLogCap:    getEnvIntOrDefault("EVENT_LOG_CAP", 200),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		VoiceAgents: map[int]string{
			1: os.Getenv("ELEVENLABS_AGENT_EASY"),
			2: os.Getenv("ELEVENLABS_AGENT_MODERATE"),
			3: os.Getenv("ELEVENLABS_AGENT_MEDIUM"),
			4: os.Getenv("ELEVENLABS_AGENT_HARD"),
			5: os.Getenv("ELEVENLABS_AGENT_EXPERT"),
		},
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	// Gemini validation is handled by gemini.NewConfig()
	if config.EventLogCap < 1 {
		return errors.New("EVENT_LOG_CAP must be a positive integer")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
