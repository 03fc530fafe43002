package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/raphaelgruber/legal-advisor/internal/advisor"
	"github.com/raphaelgruber/legal-advisor/internal/memory"
	"github.com/raphaelgruber/legal-advisor/internal/prompt"
	"github.com/raphaelgruber/legal-advisor/internal/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInvoker struct {
	mu       sync.Mutex
	payloads []prompt.Payload
}

func (e *echoInvoker) Invoke(_ context.Context, p prompt.Payload) (response.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.payloads = append(e.payloads, p)
	return response.PlainText("answer: " + p.HumanInput), nil
}

type fixedExtractor struct{ text string }

func (f fixedExtractor) Extract(context.Context, string) (string, bool) {
	return f.text, f.text != ""
}

var quiet = slog.New(slog.DiscardHandler)

func newManager(t *testing.T, inv advisor.Invoker, opts ...advisor.Option) *Manager {
	t.Helper()
	return NewManager(func() (*advisor.Advisor, error) {
		return advisor.New(advisor.Config{MaxDocumentSizeMB: 1}, inv, append([]advisor.Option{advisor.WithLogger(quiet)}, opts...)...)
	}, quiet)
}

func TestSessionAsk(t *testing.T) {
	m := newManager(t, &echoInvoker{})
	s, err := m.Create()
	require.NoError(t, err)

	answer := s.Ask(context.Background(), "What is a tort?")
	assert.Equal(t, "answer: What is a tort?", answer)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, WelcomeMessage, msgs[0].Content)
	assert.Equal(t, memory.RoleUser, msgs[1].Role)
	assert.Equal(t, memory.RoleAssistant, msgs[2].Role)
	assert.Len(t, s.History(), 2)
}

func TestSessionTitle(t *testing.T) {
	m := newManager(t, &echoInvoker{})
	s, err := m.Create()
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, s.Title())

	s.Ask(context.Background(), "Can you explain the process of filing for bankruptcy?")
	assert.Equal(t, "Can you explain the process of...", s.Title())
	s.Ask(context.Background(), "Second question")
	assert.Equal(t, "Can you explain the process of...", s.Title())
}

func TestSessionReset(t *testing.T) {
	m := newManager(t, &echoInvoker{})
	s, err := m.Create()
	require.NoError(t, err)

	s.Ask(context.Background(), "q")
	s.Reset()

	assert.Empty(t, s.History())
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, WelcomeMessage, msgs[0].Content)
	assert.Equal(t, DefaultTitle, s.Title())
}

func TestSessionAnalyze(t *testing.T) {
	t.Run("standard analysis", func(t *testing.T) {
		inv := &echoInvoker{}
		m := newManager(t, inv, advisor.WithExtractor(fixedExtractor{text: "Lease terms"}))
		s, err := m.Create()
		require.NoError(t, err)

		answer := s.Analyze(context.Background(), strings.NewReader("%PDF-1.4"), "lease.pdf", "")
		assert.Equal(t, "answer: "+advisor.AnalysisQuery, answer)
		require.Len(t, inv.payloads, 1)
		assert.Contains(t, inv.payloads[0].Text, "Document Content:\nLease terms")

		msgs := s.Messages()
		assert.Equal(t, "Please analyze the content of this legal document: lease.pdf", msgs[1].Content)
	})

	t.Run("custom question", func(t *testing.T) {
		inv := &echoInvoker{}
		m := newManager(t, inv, advisor.WithExtractor(fixedExtractor{text: "Lease terms"}))
		s, err := m.Create()
		require.NoError(t, err)

		answer := s.Analyze(context.Background(), strings.NewReader("%PDF-1.4"), "lease.pdf", "Is the deposit refundable?")
		assert.Equal(t, "answer: Is the deposit refundable?", answer)
	})

	t.Run("wrong file type", func(t *testing.T) {
		inv := &echoInvoker{}
		m := newManager(t, inv)
		s, err := m.Create()
		require.NoError(t, err)

		answer := s.Analyze(context.Background(), strings.NewReader("hello"), "notes.txt", "")
		assert.Equal(t, "Invalid file type: Only PDF documents are supported.", answer)
		assert.Empty(t, inv.payloads)
	})

	t.Run("oversized upload", func(t *testing.T) {
		inv := &echoInvoker{}
		m := newManager(t, inv, advisor.WithExtractor(fixedExtractor{text: "x"}))
		s, err := m.Create()
		require.NoError(t, err)

		big := strings.NewReader(strings.Repeat("x", 2*1024*1024))
		answer := s.Analyze(context.Background(), big, "big.pdf", "")
		assert.Equal(t, "Document too large: Please upload a smaller document.", answer)
		assert.Empty(t, inv.payloads)
	})

	t.Run("unreadable pdf", func(t *testing.T) {
		inv := &echoInvoker{}
		m := newManager(t, inv, advisor.WithExtractor(fixedExtractor{}))
		s, err := m.Create()
		require.NoError(t, err)

		answer := s.Analyze(context.Background(), strings.NewReader("garbage"), "scan.pdf", "")
		assert.Contains(t, answer, "Error processing PDF")
		assert.Empty(t, inv.payloads)
	})
}

func TestManagerLifecycle(t *testing.T) {
	m := newManager(t, &echoInvoker{})

	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, m.Len())

	got, ok := m.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID(), list[0].ID)
	assert.Equal(t, 1, list[0].MessageCount)

	assert.True(t, m.Delete(a.ID()))
	assert.False(t, m.Delete(a.ID()))
	_, ok = m.Get(a.ID())
	assert.False(t, ok)
}

func TestManagerFactoryError(t *testing.T) {
	m := NewManager(func() (*advisor.Advisor, error) {
		return nil, errors.New("no credentials")
	}, quiet)

	_, err := m.Create()
	assert.ErrorContains(t, err, "no credentials")
	assert.Zero(t, m.Len())
}

func TestSessionsDoNotShareMemory(t *testing.T) {
	m := newManager(t, &echoInvoker{})
	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)

	a.Ask(context.Background(), "only in a")

	assert.Len(t, a.History(), 2)
	assert.Empty(t, b.History())
}

func TestConcurrentAsksAreSerialised(t *testing.T) {
	m := newManager(t, &echoInvoker{})
	s, err := m.Create()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Ask(context.Background(), "q")
		}()
	}
	wg.Wait()

	assert.Len(t, s.History(), 20)
	assert.Len(t, s.Messages(), 21)
}
