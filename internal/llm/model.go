// Package llm invokes the configured chat model through langchaingo.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/legal-advisor/internal/apperr"
	"github.com/raphaelgruber/legal-advisor/internal/config"
	"github.com/raphaelgruber/legal-advisor/internal/metrics"
	"github.com/raphaelgruber/legal-advisor/internal/prompt"
	"github.com/raphaelgruber/legal-advisor/internal/response"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model wraps a langchaingo model and answers composed legal prompts.
type Model struct {
	llm       llms.Model
	modelName string
	maxTokens int
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithMetrics records generation timings and token usage.
func WithMetrics(mc *metrics.Collector) Option {
	return func(m *Model) { m.metrics = mc }
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithMaxTokens caps the length of generated answers. Zero leaves the provider default.
func WithMaxTokens(n int) Option {
	return func(m *Model) { m.maxTokens = n }
}

// NewModel creates an LLM model based on configuration.
func NewModel(ctx context.Context, cfg config.Config, opts ...Option) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderGoogleAI:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("%w: Google API key required", apperr.ErrAPIKey)
		}
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.GoogleAPIKey),
			googleai.WithDefaultModel(cfg.LLMModel),
			googleai.WithDefaultMaxTokens(cfg.MaxTokens),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: create googleai model: %w", apperr.ErrAPIKey, err)
		}

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OpenAI API key required", apperr.ErrAPIKey)
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: create openai model: %w", apperr.ErrAPIKey, err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%w: Anthropic API key required", apperr.ErrAPIKey)
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: create anthropic model: %w", apperr.ErrAPIKey, err)
		}

	case config.ProviderBedrock:
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if awsErr != nil {
			return nil, fmt.Errorf("%w: load aws config: %w", apperr.ErrAPIKey, awsErr)
		}
		model, err = bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", apperr.ErrConfiguration, cfg.LLMProvider)
	}

	opts = append([]Option{WithMaxTokens(cfg.MaxTokens)}, opts...)
	return New(model, cfg.LLMModel, opts...), nil
}

// New wraps an existing langchaingo model.
func New(model llms.Model, modelName string, opts ...Option) *Model {
	m := &Model{
		llm:       model,
		modelName: modelName,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// Invoke sends the rendered prompt and returns the chain-style result: the
// template inputs echoed back with the generated answer under "text".
// An answer that is a JSON object is returned as its own ordered fields.
func (m *Model) Invoke(ctx context.Context, p prompt.Payload) (response.Result, error) {
	var callOpts []llms.CallOption
	if m.maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(m.maxTokens))
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, p.Prompt),
	}

	m.logger.Debug("llm request", "model", m.modelName, "prompt_len", len(p.Prompt), "has_document", p.HasDocument)

	start := time.Now()
	resp, err := m.llm.GenerateContent(ctx, messages, callOpts...)
	duration := time.Since(start)

	if err != nil {
		m.logger.Warn("llm request failed", "model", m.modelName, "duration_ms", duration.Milliseconds(), "error", err)
		return response.Result{}, classify(err)
	}

	if len(resp.Choices) == 0 {
		return response.Result{}, fmt.Errorf("%w: no response choices", apperr.ErrModelInvocation)
	}

	choice := resp.Choices[0]
	inputTokens, outputTokens := tokenUsage(choice.GenerationInfo)
	if m.metrics != nil {
		m.metrics.RecordLLMUsage(metrics.OpLLMGenerate, duration, inputTokens, outputTokens)
	}

	m.logger.Debug("llm request complete",
		"model", m.modelName,
		"duration_ms", duration.Milliseconds(),
		"input_tokens", inputTokens,
		"output_tokens", outputTokens,
	)

	if obj, ok := jsonObject(choice.Content); ok {
		result, err := response.FromJSON(obj)
		if err == nil {
			m.logger.Debug("structured answer", "model", m.modelName, "fields", result.Fields().Len())
			return result, nil
		}
		m.logger.Debug("answer looks like JSON but does not decode", "error", err)
	}

	return response.FromPairs(
		prompt.VarHumanInput, p.HumanInput,
		prompt.VarChatHistory, p.ChatHistory,
		prompt.VarText, choice.Content,
	), nil
}

// jsonObject returns the answer as a JSON object payload when the model
// replied with one, optionally inside a ```json fence.
func jsonObject(content string) ([]byte, bool) {
	s := strings.TrimSpace(content)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		rest = strings.TrimPrefix(rest, "json")
		body, found := strings.CutSuffix(strings.TrimSpace(rest), "```")
		if !found {
			return nil, false
		}
		s = strings.TrimSpace(body)
	}
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, false
	}
	return []byte(s), true
}

var (
	inputTokenKeys  = []string{"input_tokens", "InputTokens", "PromptTokens", "prompt_tokens"}
	outputTokenKeys = []string{"output_tokens", "OutputTokens", "CompletionTokens", "completion_tokens"}
)

// tokenUsage reads token counts from provider-specific generation info.
func tokenUsage(info map[string]any) (input, output int64) {
	return firstInt(info, inputTokenKeys), firstInt(info, outputTokenKeys)
}

func firstInt(info map[string]any, keys []string) int64 {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}
