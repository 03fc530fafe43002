package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/legal-advisor/internal/advisor"
	"github.com/raphaelgruber/legal-advisor/internal/apperr"
	"github.com/raphaelgruber/legal-advisor/internal/client"
	"github.com/raphaelgruber/legal-advisor/internal/document"
	"github.com/raphaelgruber/legal-advisor/internal/glossary"
	"github.com/raphaelgruber/legal-advisor/internal/metrics"
)

// backend answers chat commands, either in-process or through a web host.
type backend interface {
	Ask(ctx context.Context, query string) (string, error)
	Analyze(ctx context.Context, path, query string) (string, error)
	Reset(ctx context.Context) error
	Stats(ctx context.Context) ([]string, error)
	Define(ctx context.Context, term string) (glossary.Entry, error)
	Close() error
}

// localBackend runs the pipeline in this process.
type localBackend struct {
	advisor  *advisor.Advisor
	glossary *glossary.Glossary
	metrics  *metrics.Collector
}

func (b *localBackend) Ask(ctx context.Context, query string) (string, error) {
	return b.advisor.GetResponse(ctx, query), nil
}

func (b *localBackend) Analyze(ctx context.Context, path, query string) (string, error) {
	if err := document.ValidateFileType(path); err != nil {
		return apperr.UserMessage(err, ""), nil
	}
	if query == "" {
		return b.advisor.AnalyzeDocument(ctx, path), nil
	}
	return b.advisor.ProcessQuery(ctx, advisor.QueryRequest{Query: query, DocumentPath: path}), nil
}

func (b *localBackend) Reset(context.Context) error {
	b.advisor.Reset()
	return nil
}

func (b *localBackend) Stats(context.Context) ([]string, error) {
	return b.metrics.Snapshot().Lines(), nil
}

func (b *localBackend) Define(_ context.Context, term string) (glossary.Entry, error) {
	entry, ok := b.glossary.Lookup(term)
	if !ok {
		return glossary.Entry{}, fmt.Errorf("term %q not found", term)
	}
	return entry, nil
}

func (b *localBackend) Close() error { return nil }

// remoteBackend drives one session of a running web host.
type remoteBackend struct {
	client    *client.Client
	chat      *client.Chat
	sessionID string
}

// openRemote creates a session on the host and opens its chat stream.
func openRemote(ctx context.Context, c *client.Client) (*remoteBackend, error) {
	view, err := c.CreateSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	chat, err := c.OpenChat(ctx, view.ID)
	if err != nil {
		_ = c.DeleteSession(ctx, view.ID)
		return nil, err
	}
	return &remoteBackend{client: c, chat: chat, sessionID: view.ID}, nil
}

func (b *remoteBackend) Ask(ctx context.Context, query string) (string, error) {
	return b.chat.Ask(ctx, query)
}

func (b *remoteBackend) Analyze(ctx context.Context, path, query string) (string, error) {
	return b.client.Analyze(ctx, b.sessionID, path, query)
}

func (b *remoteBackend) Reset(ctx context.Context) error {
	return b.chat.Reset(ctx)
}

func (b *remoteBackend) Stats(ctx context.Context) ([]string, error) {
	stats, err := b.client.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return append(stats.Snapshot.Lines(), fmt.Sprintf("sessions: %d", stats.Sessions)), nil
}

func (b *remoteBackend) Define(ctx context.Context, term string) (glossary.Entry, error) {
	entry, err := b.client.Define(ctx, term)
	if err != nil {
		return glossary.Entry{}, err
	}
	return *entry, nil
}

func (b *remoteBackend) Close() error {
	err := b.chat.Close()
	if delErr := b.client.DeleteSession(context.Background(), b.sessionID); delErr != nil && err == nil {
		err = delErr
	}
	return err
}
