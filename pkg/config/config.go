package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Anthropic AnthropicConfig
	AzureDI   AzureDIConfig
	Pipeline  PipelineConfig
	Matching  MatchingConfig
	Reconcile ReconcileConfig
	Export    ExportConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type AnthropicConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Version   string
	MaxTokens int
	Timeout   time.Duration
}

type AzureDIConfig struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	ModelID      string
	Timeout      time.Duration
	PollInterval time.Duration
}

type PipelineConfig struct {
	UploadDir    string
	MaxAttempts  int
	RetryBackoff time.Duration
}

// MatchingConfig holds the default registry-matching thresholds.
// Tenants may override them per row; see models.Tenant.
type MatchingConfig struct {
	MinSimilarity float64
}

type ReconcileConfig struct {
	Tolerance      string // decimal amount, e.g. "0" or "10"
	DateWindowDays int
}

type ExportConfig struct {
	TTL time.Duration
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// If no .env file was found we continue with plain environment
	// variables (Docker/K8s deployments).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	llmMaxTokens, _ := strconv.Atoi(getEnv("ANTHROPIC_MAX_TOKENS", "1024"))
	llmTimeout, _ := strconv.Atoi(getEnv("ANTHROPIC_TIMEOUT_SECONDS", "60"))
	ocrTimeout, _ := strconv.Atoi(getEnv("AZURE_DI_TIMEOUT_SECONDS", "90"))
	ocrPoll, _ := strconv.Atoi(getEnv("AZURE_DI_POLL_INTERVAL_MS", "1500"))
	maxAttempts, _ := strconv.Atoi(getEnv("PIPELINE_MAX_ATTEMPTS", "3"))
	retryBackoff, _ := strconv.Atoi(getEnv("PIPELINE_RETRY_BACKOFF_MS", "500"))
	minSimilarity, _ := strconv.ParseFloat(getEnv("MATCH_MIN_SIMILARITY", "0.70"), 64)
	dateWindow, _ := strconv.Atoi(getEnv("RECONCILE_DATE_WINDOW_DAYS", "3"))
	exportTTL, _ := strconv.Atoi(getEnv("CSV_EXPORT_TTL_SECONDS", "900"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "keiriflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Anthropic: AnthropicConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest"),
			BaseURL:   getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			Version:   getEnv("ANTHROPIC_VERSION", "2023-06-01"),
			MaxTokens: llmMaxTokens,
			Timeout:   time.Duration(llmTimeout) * time.Second,
		},
		AzureDI: AzureDIConfig{
			Endpoint:     getEnv("AZURE_DI_ENDPOINT", ""),
			APIKey:       getEnv("AZURE_DI_KEY", ""),
			APIVersion:   getEnv("AZURE_DI_API_VERSION", "2024-02-29-preview"),
			ModelID:      getEnv("AZURE_DI_MODEL_ID", "prebuilt-invoice"),
			Timeout:      time.Duration(ocrTimeout) * time.Second,
			PollInterval: time.Duration(ocrPoll) * time.Millisecond,
		},
		Pipeline: PipelineConfig{
			UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
			MaxAttempts:  maxAttempts,
			RetryBackoff: time.Duration(retryBackoff) * time.Millisecond,
		},
		Matching: MatchingConfig{
			MinSimilarity: minSimilarity,
		},
		Reconcile: ReconcileConfig{
			Tolerance:      getEnv("RECONCILE_TOLERANCE", "0"),
			DateWindowDays: dateWindow,
		},
		Export: ExportConfig{
			TTL: time.Duration(exportTTL) * time.Second,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
