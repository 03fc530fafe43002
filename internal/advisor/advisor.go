// Package advisor runs the legal query pipeline: validation, document
// extraction, prompt composition, model invocation, normalisation and
// conversation memory.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphaelgruber/legal-advisor/internal/apperr"
	"github.com/raphaelgruber/legal-advisor/internal/config"
	"github.com/raphaelgruber/legal-advisor/internal/document"
	"github.com/raphaelgruber/legal-advisor/internal/memory"
	"github.com/raphaelgruber/legal-advisor/internal/metrics"
	"github.com/raphaelgruber/legal-advisor/internal/prompt"
	"github.com/raphaelgruber/legal-advisor/internal/response"
)

// AnalysisQuery is the standard request used for document analysis.
const AnalysisQuery = "Please analyze this legal document and provide a comprehensive summary."

// Invoker is the model collaborator.
type Invoker interface {
	Invoke(ctx context.Context, p prompt.Payload) (response.Result, error)
}

// Config holds the pipeline settings.
type Config struct {
	MaxDocumentSizeMB float64
	// MemoryWindow bounds memory in turns; zero keeps everything.
	MemoryWindow int
	// RequestTimeout bounds each model call; zero disables it.
	RequestTimeout time.Duration
}

// ConfigFrom derives pipeline settings from application configuration.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		MaxDocumentSizeMB: cfg.MaxPDFSizeMB,
		MemoryWindow:      cfg.MemoryWindow(),
		RequestTimeout:    cfg.RequestTimeout,
	}
}

// QueryRequest is a single user request. DocumentPath is optional.
type QueryRequest struct {
	Query        string
	DocumentPath string
}

// Advisor answers legal questions for one conversation.
// It is not safe for concurrent use; hosts serialise calls per conversation.
type Advisor struct {
	cfg       Config
	invoker   Invoker
	extractor document.Extractor
	composer  *prompt.Composer
	memory    *memory.Memory
	metrics   *metrics.Collector
	logger    *slog.Logger
	observer  Observer
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithExtractor replaces the PDF extractor.
func WithExtractor(e document.Extractor) Option {
	return func(a *Advisor) { a.extractor = e }
}

// WithComposer replaces the prompt composer.
func WithComposer(c *prompt.Composer) Option {
	return func(a *Advisor) { a.composer = c }
}

// WithMetrics records pipeline timings.
func WithMetrics(mc *metrics.Collector) Option {
	return func(a *Advisor) { a.metrics = mc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Advisor) { a.logger = logger }
}

// WithObserver reports stage transitions.
func WithObserver(o Observer) Option {
	return func(a *Advisor) { a.observer = o }
}

// New creates an advisor around a model collaborator.
func New(cfg Config, invoker Invoker, opts ...Option) (*Advisor, error) {
	if invoker == nil {
		return nil, fmt.Errorf("%w: no model configured", apperr.ErrConfiguration)
	}
	if cfg.MaxDocumentSizeMB <= 0 {
		return nil, fmt.Errorf("%w: maximum document size must be positive", apperr.ErrConfiguration)
	}

	a := &Advisor{
		cfg:      cfg,
		invoker:  invoker,
		composer: prompt.NewComposer(),
		memory:   memory.New(cfg.MemoryWindow),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.extractor == nil {
		a.extractor = document.NewPDFExtractor(a.logger)
	}

	a.logger.Info("legal advisor initialized", "memory_window", cfg.MemoryWindow, "max_document_mb", cfg.MaxDocumentSizeMB)
	return a, nil
}

// SetObserver replaces the stage observer. Pass nil to stop reporting.
func (a *Advisor) SetObserver(o Observer) {
	a.observer = o
}

// Process runs the pipeline and returns the formatted answer or a classified error.
// Memory changes only when an answer is returned.
func (a *Advisor) Process(ctx context.Context, req QueryRequest) (string, error) {
	start := time.Now()
	answer, err := a.process(ctx, req)
	if a.metrics != nil {
		op := metrics.OpQuery
		if err != nil {
			op = metrics.OpQueryFailed
		}
		a.metrics.RecordTiming(op, time.Since(start))
	}
	if err != nil {
		a.stage(StageError)
		return "", err
	}
	a.stage(StageDone)
	return answer, nil
}

func (a *Advisor) process(ctx context.Context, req QueryRequest) (string, error) {
	a.stage(StageValidating)
	if strings.TrimSpace(req.Query) == "" {
		return "", fmt.Errorf("%w: empty query", apperr.ErrInvalidQuery)
	}

	var documentText, documentName string
	if req.DocumentPath != "" {
		documentName = filepath.Base(req.DocumentPath)
		a.logger.Info("processing query with document", "document", req.DocumentPath)

		sizeMB, err := document.SizeMB(req.DocumentPath)
		if err != nil {
			return "", err
		}
		if sizeMB > a.cfg.MaxDocumentSizeMB {
			a.logger.Warn("document too large", "size_mb", fmt.Sprintf("%.2f", sizeMB), "max_mb", a.cfg.MaxDocumentSizeMB)
			return "", fmt.Errorf("%w: document exceeds the maximum size of %gMB", apperr.ErrDocumentTooLarge, a.cfg.MaxDocumentSizeMB)
		}

		a.stage(StageExtracting)
		text, ok := a.extract(ctx, req.DocumentPath)
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: extracting %s: %w", apperr.ErrCancelled, documentName, err)
		}
		if !ok {
			a.logger.Error("failed to extract text from pdf", "document", documentName)
			return "", fmt.Errorf("%w: could not extract text from %s", apperr.ErrExtractionFailed, documentName)
		}
		documentText = text
	} else {
		a.logger.Info("processing general legal query")
	}

	a.stage(StageComposing)
	payload, err := a.composer.Compose(a.memory.PromptContext(), req.Query, documentText)
	if err != nil {
		return "", err
	}

	a.stage(StageInvoking)
	a.logAPIRequest("llm_chain", map[string]any{"query": req.Query, "has_document": req.DocumentPath != ""})

	invokeCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	result, err := a.invoker.Invoke(invokeCtx, payload)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %w", apperr.ErrCancelled, ctxErr)
		}
		return "", invocationError(err)
	}

	a.stage(StageNormalizing)
	answer := response.Normalize(result)

	a.stage(StageUpdatingMemory)
	a.memory.Append(memory.UserTurn(req.Query))
	a.memory.Append(memory.AssistantTurn(answer))

	a.logUserInteraction(req.Query, len(answer), documentName)
	return answer, nil
}

// ProcessQuery runs the pipeline and always returns a display string:
// the answer, or the user-facing message for the failure.
func (a *Advisor) ProcessQuery(ctx context.Context, req QueryRequest) string {
	answer, err := a.Process(ctx, req)
	if err != nil {
		return a.failure(ctx, err, "process_query", apperr.DefaultFallback)
	}
	return answer
}

// GetResponse answers a question without a document.
func (a *Advisor) GetResponse(ctx context.Context, query string) string {
	a.logger.Info("getting response for query", "query", truncate(query, 50))
	return a.ProcessQuery(ctx, QueryRequest{Query: query})
}

// AnalyzeDocument summarises the PDF at path with the standard analysis query.
func (a *Advisor) AnalyzeDocument(ctx context.Context, path string) string {
	a.logger.Info("analyzing document", "document", path)

	if _, err := os.Stat(path); err != nil {
		a.logger.Error("document not found", "document", path)
		return apperr.UserMessage(apperr.ErrDocumentNotFound, "")
	}

	answer, err := a.Process(ctx, QueryRequest{Query: AnalysisQuery, DocumentPath: path})
	if err != nil {
		return a.failure(ctx, err, "analyze_document", "Failed to analyze document")
	}
	return answer
}

// Reset clears the conversation memory.
func (a *Advisor) Reset() {
	a.logger.Info("resetting conversation memory")
	a.memory.Clear()
}

// History returns a copy of the conversation memory, oldest first.
func (a *Advisor) History() []memory.Turn {
	return a.memory.Turns()
}

func (a *Advisor) extract(ctx context.Context, path string) (string, bool) {
	if a.metrics != nil {
		defer a.metrics.Time(metrics.OpPDFExtract)()
	}
	return a.extractor.Extract(ctx, path)
}

func (a *Advisor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.cfg.RequestTimeout)
}

func (a *Advisor) stage(s Stage) {
	if a.observer != nil {
		a.observer(s)
	}
}

// passThrough lists collaborator error kinds reported as-is.
var passThrough = map[apperr.Kind]bool{
	apperr.KindAPIKey:           true,
	apperr.KindDocumentTooLarge: true,
	apperr.KindExtractionFailed: true,
	apperr.KindModelInvocation:  true,
}

func invocationError(err error) error {
	if passThrough[apperr.KindOf(err)] {
		return err
	}
	return fmt.Errorf("%w: %v", apperr.ErrModelInvocation, err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
