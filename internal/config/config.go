// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/legal-advisor/internal/apperr"
)

// Provider identifies the LLM backend.
type Provider string

const (
	ProviderGoogleAI  Provider = "googleai"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
	ProviderBedrock   Provider = "bedrock"
)

// Memory types.
const (
	MemoryBuffer       = "conversation_buffer"
	MemoryBufferWindow = "conversation_buffer_window"
)

// App metadata shown by the hosts.
const (
	AppName    = "Legal Advisor AI"
	AppVersion = "1.0.0"
)

// AcceptedFileTypes lists upload extensions without the dot.
var AcceptedFileTypes = []string{"pdf"}

// Config holds all configuration values.
type Config struct {
	// LLM
	LLMProvider     Provider
	LLMModel        string
	MaxTokens       int
	GoogleAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	AWSRegion       string

	// Documents
	MaxPDFSizeMB float64

	// Memory
	MemoryType     string
	MaxMemoryItems int

	// Per-request deadline for model calls; zero disables it.
	RequestTimeout time.Duration

	// Logging
	LogFile   string
	LogLevel  slog.Level
	DebugMode bool

	// Web host
	ServerPort string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		LLMProvider:     Provider(strings.ToLower(getEnv("LLM_PROVIDER", string(ProviderGoogleAI)))),
		LLMModel:        getEnv("LLM_MODEL", "gemini-2.0-pro-exp-02-05"),
		MaxTokens:       getEnvInt("MAX_TOKENS", 4096),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),

		MaxPDFSizeMB: getEnvFloat("MAX_PDF_SIZE_MB", 10),

		MemoryType:     getEnv("MEMORY_TYPE", MemoryBuffer),
		MaxMemoryItems: getEnvInt("MAX_MEMORY_ITEMS", 10),

		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 0),

		LogFile:   getEnv("LOG_FILE", defaultLogFile(time.Now())),
		LogLevel:  parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
		DebugMode: strings.EqualFold(getEnv("DEBUG_MODE", "false"), "true"),

		ServerPort: getEnv("SERVER_PORT", "8501"),
	}
}

// Validate checks that the settings required at startup are present.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGoogleAI:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("%w: GOOGLE_API_KEY is not set in environment", apperr.ErrConfiguration)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is not set in environment", apperr.ErrConfiguration)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY is not set in environment", apperr.ErrConfiguration)
		}
	case ProviderOllama, ProviderBedrock:
		// Credentials come from the local server or the AWS credential chain.
	default:
		return fmt.Errorf("%w: unsupported LLM provider %q", apperr.ErrConfiguration, c.LLMProvider)
	}

	if c.MaxPDFSizeMB <= 0 {
		return fmt.Errorf("%w: MAX_PDF_SIZE_MB must be positive", apperr.ErrConfiguration)
	}
	if c.MemoryType != MemoryBuffer && c.MemoryType != MemoryBufferWindow {
		return fmt.Errorf("%w: unknown MEMORY_TYPE %q", apperr.ErrConfiguration, c.MemoryType)
	}
	return nil
}

// MemoryWindow returns the memory bound in turns, or 0 when unbounded.
// MAX_MEMORY_ITEMS counts exchanges, and every exchange is two turns.
func (c Config) MemoryWindow() int {
	if c.MemoryType != MemoryBufferWindow || c.MaxMemoryItems <= 0 {
		return 0
	}
	return c.MaxMemoryItems * 2
}

// RedactedKey returns a display form of the active provider's credential.
func (c Config) RedactedKey() string {
	var key string
	switch c.LLMProvider {
	case ProviderGoogleAI:
		key = c.GoogleAPIKey
	case ProviderOpenAI:
		key = c.OpenAIAPIKey
	case ProviderAnthropic:
		key = c.AnthropicAPIKey
	}
	if key == "" {
		return ""
	}
	return "[REDACTED]"
}

func defaultLogFile(now time.Time) string {
	return filepath.Join("logs", "legal_bot_"+now.Format("2006-01-02")+".log")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
