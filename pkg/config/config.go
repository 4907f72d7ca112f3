package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Analysis AnalysisConfig
	Speech   SpeechConfig
	Detector DetectorConfig
	LLM      LLMConfig
	Kafka    KafkaConfig
	Sentry   SentryConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled     bool
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration. An empty URL selects the in-memory cache.
type RedisConfig struct {
	URL string
}

// JWTConfig holds JWT configuration. An empty secret disables API auth.
type JWTConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
}

// AnalysisConfig holds pipeline and upload settings
type AnalysisConfig struct {
	UploadDir      string
	TempDir        string
	MaxUploadBytes int64
	MaxConcurrent  int
	Timeout        time.Duration
	FFmpegThreads  int
	MaxFrameWidth  int
}

// SpeechConfig selects and configures the speech recognition provider
type SpeechConfig struct {
	Provider     string // "assemblyai", "google" or "static"
	LanguageCode string
	AssemblyAI   AssemblyAIConfig
	StaticText   string
}

// AssemblyAIConfig holds AssemblyAI credentials
type AssemblyAIConfig struct {
	APIKey  string
	BaseURL string
}

// DetectorConfig holds face detector settings
type DetectorConfig struct {
	CascadePath  string
	MinSize      int
	MaxSize      int
	ShiftFactor  float64
	ScaleFactor  float64
	IoUThreshold float64
	MinQuality   float64
}

// LLMConfig holds the question-generation model settings
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	QuestionTTL time.Duration
}

// KafkaConfig holds analysis event publishing settings
type KafkaConfig struct {
	Enabled bool     `default:"false"`
	Brokers []string `default:"localhost:9092"`
	Topic   string   `default:"presence.analysis.completed"`
	Source  string   `default:"presence-api"`
}

// SentryConfig holds error reporting settings. An empty DSN disables reporting.
type SentryConfig struct {
	DSN              string
	Environment      string
	TracesSampleRate float64 `split_words:"true" default:"0"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS", "http://localhost:3000"),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Enabled:     getEnvAsBool("DB_ENABLED", false),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "presence_ai"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 2),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "presence-ai"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", "24h"),
		},
		Storage: StorageConfig{
			Enabled:         getEnvAsBool("STORAGE_ENABLED", false),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "presence-ai"),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Analysis: AnalysisConfig{
			UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
			TempDir:        getEnv("ANALYSIS_TEMP_DIR", os.TempDir()),
			MaxUploadBytes: int64(getEnvAsInt("ANALYSIS_MAX_UPLOAD_MB", 500)) << 20,
			MaxConcurrent:  getEnvAsInt("ANALYSIS_MAX_CONCURRENT", 2),
			Timeout:        getEnvAsDuration("ANALYSIS_TIMEOUT", "15m"),
			FFmpegThreads:  getEnvAsInt("FFMPEG_THREADS", 0),
			MaxFrameWidth:  getEnvAsInt("ANALYSIS_MAX_FRAME_WIDTH", 640),
		},
		Speech: SpeechConfig{
			Provider:     strings.ToLower(getEnv("SPEECH_PROVIDER", "assemblyai")),
			LanguageCode: getEnv("SPEECH_LANGUAGE", "en-US"),
			AssemblyAI: AssemblyAIConfig{
				APIKey:  getEnv("ASSEMBLYAI_API_KEY", ""),
				BaseURL: getEnv("ASSEMBLYAI_BASE_URL", ""),
			},
			StaticText: getEnv("SPEECH_STATIC_TEXT", ""),
		},
		Detector: DetectorConfig{
			CascadePath:  getEnv("DETECTOR_CASCADE_PATH", "./cascade/facefinder"),
			MinSize:      getEnvAsInt("DETECTOR_MIN_SIZE", 20),
			MaxSize:      getEnvAsInt("DETECTOR_MAX_SIZE", 1000),
			ShiftFactor:  getEnvAsFloat("DETECTOR_SHIFT_FACTOR", 0.1),
			ScaleFactor:  getEnvAsFloat("DETECTOR_SCALE_FACTOR", 1.1),
			IoUThreshold: getEnvAsFloat("DETECTOR_IOU_THRESHOLD", 0.2),
			MinQuality:   getEnvAsFloat("DETECTOR_MIN_QUALITY", 5.0),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			BaseURL:     getEnv("GROQ_API_URL", "https://api.groq.com"),
			Model:       getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
			Timeout:     getEnvAsDuration("GROQ_TIMEOUT", "30s"),
			QuestionTTL: getEnvAsDuration("QUESTIONS_CACHE_TTL", "24h"),
		},
	}

	if err := envconfig.Process("KAFKA", &config.Kafka); err != nil {
		return nil, fmt.Errorf("failed to load kafka config: %w", err)
	}
	if err := envconfig.Process("SENTRY", &config.Sentry); err != nil {
		return nil, fmt.Errorf("failed to load sentry config: %w", err)
	}
	if config.Sentry.Environment == "" {
		config.Sentry.Environment = config.Server.Environment
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Speech.Provider {
	case "assemblyai":
		if c.Speech.AssemblyAI.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required when SPEECH_PROVIDER=assemblyai")
		}
	case "google", "static":
	default:
		return fmt.Errorf("unknown SPEECH_PROVIDER %q", c.Speech.Provider)
	}
	if c.Analysis.MaxConcurrent < 1 {
		return fmt.Errorf("ANALYSIS_MAX_CONCURRENT must be at least 1")
	}
	if c.Analysis.MaxUploadBytes <= 0 {
		return fmt.Errorf("ANALYSIS_MAX_UPLOAD_MB must be positive")
	}
	if c.Detector.ScaleFactor <= 1.0 {
		return fmt.Errorf("DETECTOR_SCALE_FACTOR must be greater than 1")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
