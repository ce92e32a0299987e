package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Empty values read as unset, so this keeps the test hermetic against
	// whatever the host environment carries.
	for _, key := range []string{
		"PORT", "OPENAI_BASE_URL", "OPENAI_TEXT_MODEL", "OPENAI_IMAGE_MODEL",
		"UPSTREAM_TEXT_TIMEOUT_SECONDS", "UPSTREAM_MEDIA_TIMEOUT_SECONDS",
		"REQUEST_TEXT_DEADLINE_SECONDS", "REQUEST_MEDIA_DEADLINE_SECONDS",
		"RETRY_MAX_ATTEMPTS", "RETRY_INITIAL_DELAY_SECONDS",
		"RETRY_BACKOFF_MULTIPLIER", "RETRY_JITTER_MS",
		"QUOTA_ERROR_TERMS", "RATE_LIMIT_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.OpenAIBaseURL != "https://api.openai.com/v1" {
		t.Fatalf("OpenAIBaseURL = %q", cfg.OpenAIBaseURL)
	}
	if cfg.OpenAITextModel != "gpt-4o-mini" || cfg.OpenAIImageModel != "dall-e-3" {
		t.Fatalf("models = %q %q", cfg.OpenAITextModel, cfg.OpenAIImageModel)
	}
	if cfg.UpstreamTextTimeout != 120*time.Second || cfg.UpstreamMediaTimeout != 180*time.Second {
		t.Fatalf("upstream timeouts = %v %v", cfg.UpstreamTextTimeout, cfg.UpstreamMediaTimeout)
	}
	if cfg.RequestTextDeadline != 150*time.Second || cfg.RequestMediaDeadline != 240*time.Second {
		t.Fatalf("request deadlines = %v %v", cfg.RequestTextDeadline, cfg.RequestMediaDeadline)
	}
	if cfg.RetryMaxAttempts != 3 || cfg.RetryInitialDelay != time.Second {
		t.Fatalf("retry = %d attempts, %v initial delay", cfg.RetryMaxAttempts, cfg.RetryInitialDelay)
	}
	if cfg.RetryBackoff != 2.0 || cfg.RetryJitter != 250*time.Millisecond {
		t.Fatalf("retry = %v multiplier, %v jitter", cfg.RetryBackoff, cfg.RetryJitter)
	}
	if len(cfg.QuotaErrorTerms) != 4 {
		t.Fatalf("quota terms = %v", cfg.QuotaErrorTerms)
	}
	if cfg.RateLimitPerMin != 30 {
		t.Fatalf("RateLimitPerMin = %d", cfg.RateLimitPerMin)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_BACKOFF_MULTIPLIER", "1.5")
	t.Setenv("RETRY_JITTER_MS", "100")
	t.Setenv("UPSTREAM_TEXT_TIMEOUT_SECONDS", "30")
	t.Setenv("QUOTA_ERROR_TERMS", "resource exhausted, insufficient balance")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com,https://admin.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "9090" || cfg.OpenAIAPIKey != "sk-test" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.RetryMaxAttempts != 5 || cfg.RetryBackoff != 1.5 || cfg.RetryJitter != 100*time.Millisecond {
		t.Fatalf("retry overrides not applied: %+v", cfg)
	}
	if cfg.UpstreamTextTimeout != 30*time.Second {
		t.Fatalf("UpstreamTextTimeout = %v", cfg.UpstreamTextTimeout)
	}
	if len(cfg.QuotaErrorTerms) != 2 || cfg.QuotaErrorTerms[0] != "resource exhausted" {
		t.Fatalf("QuotaErrorTerms = %v", cfg.QuotaErrorTerms)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigIgnoresUnparseableNumbers(t *testing.T) {
	t.Setenv("RETRY_MAX_ATTEMPTS", "many")
	t.Setenv("RETRY_BACKOFF_MULTIPLIER", "fast")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RetryMaxAttempts != 3 || cfg.RetryBackoff != 2.0 {
		t.Fatalf("bad values did not fall back: %+v", cfg)
	}
}
