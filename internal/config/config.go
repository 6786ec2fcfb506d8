package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is assembled without logging so it can be loaded before the
// logger exists. EnvFileLoaded reports whether a .env file was read.
type Config struct {
	EnvFileLoaded bool

	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	LLM      LLMConfig
	Fetch    FetchConfig
	Storage  StorageConfig
	Render   RenderConfig
	Session  SessionConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	TopK       int
}

// LLMConfig selects the vendor and the model used for each capability.
type LLMConfig struct {
	Provider        string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	ChatModel       string
	ContentModel    string
	LayoutModel     string
	ExtractionModel string
	EmbeddingModel  string
	MaxOutputTokens int
	Timeout         time.Duration
}

type FetchConfig struct {
	Mode        string
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
	ChromePath  string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type RenderConfig struct {
	PdftoppmPath string
	DPI          int
}

type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() *Config {
	envFileLoaded := godotenv.Load() == nil

	provider := strings.ToLower(getEnv("LLM_PROVIDER", "gemini"))

	return &Config{
		EnvFileLoaded: envFileLoaded,
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", true),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_critic"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_guidelines"),
			TopK:       getEnvAsInt("QDRANT_TOP_K", 3),
		},
		LLM: LLMConfig{
			Provider:        provider,
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			ChatModel:       getEnv("CHAT_MODEL", defaultModel(provider, "chat")),
			ContentModel:    getEnv("CONTENT_MODEL", defaultModel(provider, "content")),
			LayoutModel:     getEnv("LAYOUT_MODEL", defaultModel(provider, "layout")),
			ExtractionModel: getEnv("EXTRACTION_MODEL", defaultModel(provider, "extraction")),
			EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			MaxOutputTokens: getEnvAsInt("MAX_OUTPUT_TOKENS", 4096),
			Timeout:         getEnvAsDuration("MODEL_TIMEOUT", "3m"),
		},
		Fetch: FetchConfig{
			Mode:        strings.ToLower(getEnv("FETCH_MODE", "http")),
			MaxAttempts: getEnvAsInt("FETCH_MAX_ATTEMPTS", 5),
			RetryDelay:  getEnvAsDuration("FETCH_RETRY_DELAY", "1s"),
			Timeout:     getEnvAsDuration("FETCH_TIMEOUT", "30s"),
			ChromePath:  getEnv("CHROME_PATH", ""),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Render: RenderConfig{
			PdftoppmPath: getEnv("PDFTOPPM_PATH", "pdftoppm"),
			DPI:          getEnvAsInt("RENDER_DPI", 300),
		},
		Session: SessionConfig{
			IdleTTL:       getEnvAsDuration("SESSION_IDLE_TTL", "2h"),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", "5m"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", true),
		},
	}
}

// APIKey returns the key of the configured provider.
func (c *LLMConfig) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

func defaultModel(provider, capability string) string {
	switch provider {
	case "openai":
		if capability == "extraction" {
			return "gpt-4o-mini"
		}
		return "gpt-4o"
	case "anthropic":
		if capability == "extraction" {
			return "claude-3-5-haiku-latest"
		}
		return "claude-sonnet-4-5"
	default:
		if capability == "extraction" {
			return "gemini-2.5-flash-lite"
		}
		return "gemini-2.5-flash"
	}
}

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
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
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
