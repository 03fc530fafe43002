package advisor

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/raphaelgruber/legal-advisor/internal/apperr"
)

const redacted = "[REDACTED]"

// sensitiveParams are never written to the log.
var sensitiveParams = map[string]bool{
	"api_key": true,
}

func (a *Advisor) logAPIRequest(endpoint string, params map[string]any) {
	attrs := make([]any, 0, len(params))
	for _, k := range slices.Sorted(maps.Keys(params)) {
		v := params[k]
		if sensitiveParams[k] {
			v = redacted
		}
		attrs = append(attrs, slog.Any(k, v))
	}
	a.logger.Info("api request",
		"endpoint", endpoint,
		slog.Group("params", attrs...),
	)
}

func (a *Advisor) logUserInteraction(query string, responseLength int, documentName string) {
	attrs := []any{"query", query, "response_length", responseLength}
	if documentName != "" {
		attrs = append(attrs, "document", documentName)
	}
	a.logger.Info("user interaction", attrs...)
}

// failure logs err with its kind and returns the user-facing message.
func (a *Advisor) failure(ctx context.Context, err error, op, fallback string) string {
	kind := apperr.KindOf(err)
	level := slog.LevelWarn
	if kind == apperr.KindUnexpected || kind == apperr.KindModelInvocation || kind == apperr.KindAPIKey {
		level = slog.LevelError
	}
	a.logger.Log(ctx, level, "query failed", "op", op, "kind", string(kind), "error", err)
	return apperr.UserMessage(err, fallback)
}
