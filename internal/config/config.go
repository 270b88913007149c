package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            int
	DatabaseURL     string
	LogLevel        string
	OpenAIAPIKey    string
	AnalysisModel   string
	DetectionModel  string
	TranscribeModel string
	NatsURL         string
	NatsToken       string
	SlackBotToken   string
	SlackChannel    string
	APIToken        string
}

func Load() Config {
	return Config{
		Port:            envInt("CLARITY_PORT", 8460),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		AnalysisModel:   envStr("CLARITY_ANALYSIS_MODEL", "gpt-5"),
		DetectionModel:  envStr("CLARITY_DETECTION_MODEL", "gpt-4o-mini"),
		TranscribeModel: envStr("CLARITY_TRANSCRIBE_MODEL", "gpt-4o-mini-transcribe"),
		NatsURL:         envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:       envStr("NATS_TOKEN", ""),
		SlackBotToken:   envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:    envStr("SLACK_ALERTS_CHANNEL", ""),
		APIToken:        envStr("CLARITY_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
