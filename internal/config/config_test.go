package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestRequireEnv_Missing(t *testing.T) {
	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")

	_, err := requireEnv("NONEXISTENT_REQUIRED_VAR")
	var missing *MissingEnvError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected *MissingEnvError, got %v", err)
	}
	if missing.Key != "NONEXISTENT_REQUIRED_VAR" {
		t.Errorf("Expected key in error, got %q", missing.Key)
	}
}

func TestRequireEnv_ReturnsValue(t *testing.T) {
	t.Setenv("TEST_REQUIRED", "value123")

	result, err := requireEnv("TEST_REQUIRED")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestLoad_MissingAPIKeyIsFatal(t *testing.T) {
	t.Setenv("COMPLETION_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	if cfg != nil {
		t.Fatalf("expected no config when the API key is missing")
	}
	var missing *MissingEnvError
	if !errors.As(err, &missing) || missing.Key != "GEMINI_API_KEY" {
		t.Fatalf("expected MissingEnvError for GEMINI_API_KEY, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COMPLETION_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("COMPLETION_TIMEOUT_SECONDS", "")
	t.Setenv("GEMINI_CONCURRENT_REQUESTS", "0")
	t.Setenv("SESSION_IDLE_TIMEOUT_MINUTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CompletionProvider != ProviderGemini {
		t.Errorf("Expected gemini provider by default, got %q", cfg.CompletionProvider)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("Expected default model, got %q", cfg.GeminiModel)
	}
	if cfg.CompletionTimeout != 0 {
		t.Errorf("Expected no timeout by default, got %s", cfg.CompletionTimeout)
	}
	if cfg.GeminiConcurrentReqs != 1 {
		t.Errorf("Expected concurrency clamped to 1, got %d", cfg.GeminiConcurrentReqs)
	}
	if cfg.SessionIdleTimeout != 120*time.Minute {
		t.Errorf("Expected 120m idle timeout, got %s", cfg.SessionIdleTimeout)
	}
}

func TestLoad_OpenAIProvider(t *testing.T) {
	t.Setenv("COMPLETION_PROVIDER", "openai")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")

	t.Setenv("OPENAI_API_KEY", "")
	_, err := Load()
	var missing *MissingEnvError
	if !errors.As(err, &missing) || missing.Key != "OPENAI_API_KEY" {
		t.Fatalf("expected MissingEnvError for OPENAI_API_KEY, got %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-test" || cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("unexpected openai config: key=%q model=%q", cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("COMPLETION_PROVIDER", "llama")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoad_OpenAIProviderKeepsGeminiKey(t *testing.T) {
	t.Setenv("COMPLETION_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-x")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GeminiAPIKey != "g-key" {
		t.Errorf("Expected GEMINI_API_KEY to be read, got %q", cfg.GeminiAPIKey)
	}
	if cfg.OpenAIAPIKey != "sk-x" {
		t.Errorf("Expected OPENAI_API_KEY to be read, got %q", cfg.OpenAIAPIKey)
	}
}

func TestLoad_GeminiProviderDoesNotRequireOpenAIKey(t *testing.T) {
	t.Setenv("COMPLETION_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadFor_IgnoresSelectedProvider(t *testing.T) {
	t.Setenv("COMPLETION_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := LoadFor(ProviderGemini)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CompletionProvider != ProviderGemini || cfg.GeminiAPIKey != "g-key" {
		t.Errorf("unexpected config: provider=%q key=%q", cfg.CompletionProvider, cfg.GeminiAPIKey)
	}

	t.Setenv("GEMINI_API_KEY", "")
	_, err = LoadFor(ProviderGemini)
	var missing *MissingEnvError
	if !errors.As(err, &missing) || missing.Key != "GEMINI_API_KEY" {
		t.Fatalf("expected MissingEnvError for GEMINI_API_KEY, got %v", err)
	}
}
