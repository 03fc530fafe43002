// Package session keeps the conversations served by the web and MCP hosts.
// Each session owns one advisor and serialises its queries.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/legal-advisor/internal/advisor"
	"github.com/raphaelgruber/legal-advisor/internal/apperr"
	"github.com/raphaelgruber/legal-advisor/internal/document"
	"github.com/raphaelgruber/legal-advisor/internal/memory"
)

// WelcomeMessage opens every conversation.
const WelcomeMessage = "Welcome to Legal Advisor AI. I'm here to provide professional legal assistance with " +
	"questions, documents, and research. How may I assist you with your legal matter today?"

// DefaultTitle names a conversation before its first question.
const DefaultTitle = "New Chat"

const titleLength = 30

// Message is one entry of the displayed conversation.
type Message struct {
	Role    memory.Role `json:"role"`
	Content string      `json:"content"`
	Time    time.Time   `json:"time"`
}

// Info summarises a session for listings.
type Info struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
}

// Session is one conversation. Its methods are safe for concurrent use;
// queries run one at a time.
type Session struct {
	id        string
	createdAt time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	advisor  *advisor.Advisor
	messages []Message
}

func newSession(id string, adv *advisor.Advisor, logger *slog.Logger) *Session {
	s := &Session{
		id:        id,
		createdAt: time.Now(),
		logger:    logger.With("session", id),
		advisor:   adv,
	}
	s.messages = []Message{s.message(memory.RoleAssistant, WelcomeMessage)}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Ask answers a question and records both sides of the exchange.
func (s *Session) Ask(ctx context.Context, query string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, s.message(memory.RoleUser, query))
	answer := s.advisor.GetResponse(ctx, query)
	s.messages = append(s.messages, s.message(memory.RoleAssistant, answer))
	return answer
}

// Analyze stores an uploaded document in a temporary file, runs it through
// the advisor and removes the file. An empty query requests the standard analysis.
func (s *Session) Analyze(ctx context.Context, r io.Reader, filename, query string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompt := query
	if prompt == "" {
		prompt = fmt.Sprintf("Please analyze the content of this legal document: %s", filename)
	}
	s.messages = append(s.messages, s.message(memory.RoleUser, prompt))

	answer := s.analyze(ctx, r, filename, query)
	s.messages = append(s.messages, s.message(memory.RoleAssistant, answer))
	return answer
}

func (s *Session) analyze(ctx context.Context, r io.Reader, filename, query string) string {
	path, err := document.SaveUpload(r, filename)
	if err != nil {
		s.logger.Warn("upload rejected", "file", filename, "kind", string(apperr.KindOf(err)), "error", err)
		return apperr.UserMessage(err, "Failed to save the uploaded document")
	}
	defer document.Cleanup(s.logger, path)

	size, _ := document.SizeMB(path)
	hash, err := document.FileHash(path)
	if err != nil {
		s.logger.Warn("failed to hash upload", "file", filename, "error", err)
	}
	s.logger.Info("document uploaded", "file", filename, "size_mb", fmt.Sprintf("%.2f", size), "md5", hash)

	if query == "" {
		return s.advisor.AnalyzeDocument(ctx, path)
	}
	return s.advisor.ProcessQuery(ctx, advisor.QueryRequest{Query: query, DocumentPath: path})
}

// Reset clears the advisor memory and starts a fresh displayed conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.advisor.Reset()
	s.messages = []Message{s.message(memory.RoleAssistant, WelcomeMessage)}
}

// Messages returns a copy of the displayed conversation.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// History returns the advisor memory replayed into prompts.
func (s *Session) History() []memory.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.advisor.History()
}

// Title is derived from the first user message.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.title()
}

// Info summarises the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Info{
		ID:           s.id,
		Title:        s.title(),
		CreatedAt:    s.createdAt,
		MessageCount: len(s.messages),
	}
}

func (s *Session) title() string {
	for _, m := range s.messages {
		if m.Role != memory.RoleUser {
			continue
		}
		r := []rune(m.Content)
		if len(r) > titleLength {
			return string(r[:titleLength]) + "..."
		}
		return m.Content
	}
	return DefaultTitle
}

func (s *Session) message(role memory.Role, content string) Message {
	return Message{Role: role, Content: content, Time: time.Now()}
}
