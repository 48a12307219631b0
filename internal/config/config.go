package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Completion provider: "gemini" or "openai"
	CompletionProvider string
	CompletionTimeout  time.Duration

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// OpenAI-compatible endpoint
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Sessions
	SessionSecret      string
	SessionIdleTimeout time.Duration
	PassphraseHash     string

	// Optional backing services
	DatabaseURL string
	RedisURL    string

	// HTTP
	RateLimitPerMinute int
	FrontendURL        string
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// MissingEnvError is returned by Load when a required variable is absent.
// It is fatal at startup and never retried.
type MissingEnvError struct {
	Key string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("required environment variable %s is not set", e.Key)
}

// Load reads the configuration for the provider named by COMPLETION_PROVIDER.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	return load(getEnvOrDefault("COMPLETION_PROVIDER", ProviderGemini))
}

// LoadFor reads the configuration as if provider were selected, ignoring
// COMPLETION_PROVIDER.
func LoadFor(provider string) (*Config, error) {
	godotenv.Load()

	return load(provider)
}

func load(provider string) (*Config, error) {
	// Both keys are read so tools like listmodels can use Gemini regardless of
	// the chat provider; only the selected provider's key is required.
	var requiredKey string
	switch provider {
	case ProviderGemini:
		requiredKey = "GEMINI_API_KEY"
	case ProviderOpenAI:
		requiredKey = "OPENAI_API_KEY"
	default:
		return nil, fmt.Errorf("unknown COMPLETION_PROVIDER %q (want %q or %q)", provider, ProviderGemini, ProviderOpenAI)
	}
	if _, err := requireEnv(requiredKey); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		CompletionProvider:   provider,
		CompletionTimeout:    time.Duration(getEnvAsIntOrDefault("COMPLETION_TIMEOUT_SECONDS", 0)) * time.Second,
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		OpenAIAPIKey:         getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        getEnvOrDefault("OPENAI_BASE_URL", ""),
		OpenAIModel:          getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		SessionSecret:        getEnvOrDefault("SESSION_SECRET", ""),
		SessionIdleTimeout:   time.Duration(getEnvAsIntOrDefault("SESSION_IDLE_TIMEOUT_MINUTES", 120)) * time.Minute,
		PassphraseHash:       getEnvOrDefault("CHAT_PASSPHRASE_HASH", ""),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		RateLimitPerMinute:   getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 30),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.GeminiConcurrentReqs < 1 {
		cfg.GeminiConcurrentReqs = 1
	}

	return cfg, nil
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", &MissingEnvError{Key: key}
	}
	return val, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
