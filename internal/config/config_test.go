package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raphaelgruber/legal-advisor/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "LLM_MODEL", "MAX_TOKENS", "GOOGLE_API_KEY", "OPENAI_API_KEY",
		"ANTHROPIC_API_KEY", "MAX_PDF_SIZE_MB", "MEMORY_TYPE", "MAX_MEMORY_ITEMS",
		"REQUEST_TIMEOUT", "LOG_FILE", "LOG_LEVEL", "DEBUG_MODE", "SERVER_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, ProviderGoogleAI, cfg.LLMProvider)
	assert.Equal(t, "gemini-2.0-pro-exp-02-05", cfg.LLMModel)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, 10.0, cfg.MaxPDFSizeMB)
	assert.Equal(t, MemoryBuffer, cfg.MemoryType)
	assert.Equal(t, 10, cfg.MaxMemoryItems)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.DebugMode)
	assert.Equal(t, "8501", cfg.ServerPort)
	assert.Contains(t, cfg.LogFile, filepath.Join("logs", "legal_bot_"))
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("MAX_TOKENS", "1024")
	t.Setenv("MAX_PDF_SIZE_MB", "2.5")
	t.Setenv("MEMORY_TYPE", MemoryBufferWindow)
	t.Setenv("MAX_MEMORY_ITEMS", "3")
	t.Setenv("REQUEST_TIMEOUT", "45s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEBUG_MODE", "True")

	cfg := Load()
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, 2.5, cfg.MaxPDFSizeMB)
	assert.Equal(t, 6, cfg.MemoryWindow())
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.DebugMode)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_TOKENS", "lots")
	t.Setenv("MAX_PDF_SIZE_MB", "big")

	cfg := Load()
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, 10.0, cfg.MaxPDFSizeMB)
}

func TestValidate(t *testing.T) {
	valid := Config{
		LLMProvider:  ProviderGoogleAI,
		GoogleAPIKey: "key",
		MaxPDFSizeMB: 10,
		MemoryType:   MemoryBuffer,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing google key", func(c *Config) { c.GoogleAPIKey = "" }, true},
		{"missing openai key", func(c *Config) { c.LLMProvider = ProviderOpenAI }, true},
		{"missing anthropic key", func(c *Config) { c.LLMProvider = ProviderAnthropic }, true},
		{"ollama needs no key", func(c *Config) { c.LLMProvider = ProviderOllama; c.GoogleAPIKey = "" }, false},
		{"bedrock needs no key", func(c *Config) { c.LLMProvider = ProviderBedrock; c.GoogleAPIKey = "" }, false},
		{"unknown provider", func(c *Config) { c.LLMProvider = "watson" }, true},
		{"zero size limit", func(c *Config) { c.MaxPDFSizeMB = 0 }, true},
		{"unknown memory type", func(c *Config) { c.MemoryType = "summary" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrConfiguration)
			assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
		})
	}
}

func TestMemoryWindow(t *testing.T) {
	tests := []struct {
		name  string
		typ   string
		items int
		want  int
	}{
		{"unbounded buffer", MemoryBuffer, 10, 0},
		{"window of ten exchanges", MemoryBufferWindow, 10, 20},
		{"window with zero items", MemoryBufferWindow, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{MemoryType: tt.typ, MaxMemoryItems: tt.items}
			assert.Equal(t, tt.want, cfg.MemoryWindow())
		})
	}
}

func TestRedactedKey(t *testing.T) {
	cfg := Config{LLMProvider: ProviderGoogleAI, GoogleAPIKey: "secret"}
	assert.Equal(t, "[REDACTED]", cfg.RedactedKey())

	cfg = Config{LLMProvider: ProviderOllama}
	assert.Empty(t, cfg.RedactedKey())
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("hello", "query", "force majeure")
	logger.Debug("hidden")

	assert.Contains(t, stderr.String(), "hello")
	assert.Contains(t, file.String(), `"msg":"hello"`)
	assert.Contains(t, file.String(), `"app":"legal_bot"`)
	assert.NotContains(t, stderr.String(), "hidden")
}

func TestSetupLoggerCreatesDirectory(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "bot.log")
	logger, cleanup := SetupLogger(logFile, slog.LevelInfo)
	defer cleanup()

	logger.Info("written")
	assert.FileExists(t, logFile)
}

func TestSetupSplitLoggerFileKeepsInfo(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "bot.log")
	logger, cleanup := SetupSplitLogger(logFile, slog.LevelWarn, slog.LevelInfo)

	logger.Info("file only")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"file only"`)
}
