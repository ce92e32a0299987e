package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAITextModel   string
	OpenAIImageModel  string
	OpenAISpeechModel string
	OpenAIVoice       string

	// Per-attempt timeouts for upstream calls. Image and speech synthesis are
	// slower than text completion, so they get a wider bound.
	UpstreamTextTimeout  time.Duration
	UpstreamMediaTimeout time.Duration

	// Wall-clock deadlines for a whole gateway request, per action class.
	RequestTextDeadline  time.Duration
	RequestMediaDeadline time.Duration

	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryBackoff      float64
	RetryJitter       time.Duration

	// QuotaErrorTerms are upstream message substrings treated as quota or
	// rate-limit failures. The vocabulary is vendor-specific, so it stays
	// overridable instead of hard-coded.
	QuotaErrorTerms []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAITextModel:   getEnv("OPENAI_TEXT_MODEL", "gpt-4o-mini"),
		OpenAIImageModel:  getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		OpenAISpeechModel: getEnv("OPENAI_SPEECH_MODEL", "tts-1"),
		OpenAIVoice:       getEnv("OPENAI_VOICE", "onyx"),

		UpstreamTextTimeout:  getEnvDuration("UPSTREAM_TEXT_TIMEOUT_SECONDS", 120),
		UpstreamMediaTimeout: getEnvDuration("UPSTREAM_MEDIA_TIMEOUT_SECONDS", 180),
		RequestTextDeadline:  getEnvDuration("REQUEST_TEXT_DEADLINE_SECONDS", 150),
		RequestMediaDeadline: getEnvDuration("REQUEST_MEDIA_DEADLINE_SECONDS", 240),

		RetryMaxAttempts:  getEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: getEnvDuration("RETRY_INITIAL_DELAY_SECONDS", 1),
		RetryBackoff:      getEnvFloat("RETRY_BACKOFF_MULTIPLIER", 2.0),
		RetryJitter:       time.Millisecond * time.Duration(getEnvInt("RETRY_JITTER_MS", 250)),

		QuotaErrorTerms: getEnvList("QUOTA_ERROR_TERMS", []string{"rate limit", "quota", "too many requests", "billing"}),

		HTTPReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT_SECONDS", 15),
		HTTPWriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT_SECONDS", 300),
		HTTPIdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT_SECONDS", 60),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallbackSeconds int) time.Duration {
	return time.Second * time.Duration(getEnvInt(key, fallbackSeconds))
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
