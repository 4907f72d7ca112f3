package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv unsets keys for the duration of the test. envconfig treats a set
// but empty variable as a value, so t.Setenv(key, "") is not enough.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func setBaseEnv(t *testing.T) {
	t.Helper()
	clearEnv(t,
		"ASSEMBLYAI_API_KEY",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_SOURCE",
		"SENTRY_DSN", "SENTRY_ENVIRONMENT", "SENTRY_TRACES_SAMPLE_RATE",
		"ENVIRONMENT", "ALLOWED_ORIGINS",
		"ANALYSIS_MAX_CONCURRENT", "ANALYSIS_MAX_UPLOAD_MB",
		"DETECTOR_SCALE_FACTOR", "QUESTIONS_CACHE_TTL",
	)
	t.Setenv("SPEECH_PROVIDER", "static")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8000" {
		t.Errorf("expected port 8000, got %s", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected allowed origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Analysis.MaxConcurrent != 2 {
		t.Errorf("expected max concurrent 2, got %d", cfg.Analysis.MaxConcurrent)
	}
	if cfg.Analysis.MaxUploadBytes != 500<<20 {
		t.Errorf("expected 500MB upload limit, got %d", cfg.Analysis.MaxUploadBytes)
	}
	if cfg.Detector.ScaleFactor != 1.1 {
		t.Errorf("expected scale factor 1.1, got %v", cfg.Detector.ScaleFactor)
	}
	if cfg.LLM.QuestionTTL != 24*time.Hour {
		t.Errorf("expected 24h question TTL, got %v", cfg.LLM.QuestionTTL)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected kafka disabled by default")
	}
	if cfg.Kafka.Topic != "presence.analysis.completed" {
		t.Errorf("unexpected kafka topic %s", cfg.Kafka.Topic)
	}
	if cfg.Sentry.Environment != "development" {
		t.Errorf("expected sentry environment to follow server environment, got %q", cfg.Sentry.Environment)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SENTRY_TRACES_SAMPLE_RATE", "0.25")
	t.Setenv("ANALYSIS_MAX_CONCURRENT", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("unexpected allowed origins %v", cfg.Server.AllowedOrigins)
	}
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("unexpected kafka config %+v", cfg.Kafka)
	}
	if cfg.Sentry.TracesSampleRate != 0.25 {
		t.Errorf("expected traces sample rate 0.25, got %v", cfg.Sentry.TracesSampleRate)
	}
	if cfg.Analysis.MaxConcurrent != 4 {
		t.Errorf("expected max concurrent 4, got %d", cfg.Analysis.MaxConcurrent)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid static", func(c *Config) {}, false},
		{"assemblyai without key", func(c *Config) { c.Speech.Provider = "assemblyai" }, true},
		{"assemblyai with key", func(c *Config) {
			c.Speech.Provider = "assemblyai"
			c.Speech.AssemblyAI.APIKey = "k"
		}, false},
		{"unknown provider", func(c *Config) { c.Speech.Provider = "whisper" }, true},
		{"zero concurrency", func(c *Config) { c.Analysis.MaxConcurrent = 0 }, true},
		{"scale factor too small", func(c *Config) { c.Detector.ScaleFactor = 1.0 }, true},
		{"kafka without brokers", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Speech:   SpeechConfig{Provider: "static"},
				Analysis: AnalysisConfig{MaxConcurrent: 1, MaxUploadBytes: 1},
				Detector: DetectorConfig{ScaleFactor: 1.1},
			}
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
