// Package client talks to a running legal advisor web host.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/legal-advisor/internal/glossary"
	"github.com/raphaelgruber/legal-advisor/internal/session"
	"github.com/raphaelgruber/legal-advisor/internal/web"
)

// Client is an HTTP client for the web host API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client.
// If baseURL is empty, uses LEGAL_ADVISOR_URL env var or defaults to localhost:8501.
// Timeout can be configured via LEGAL_ADVISOR_CLIENT_TIMEOUT env var (default 5m for document analysis).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("LEGAL_ADVISOR_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8501"
	}

	timeout := 5 * time.Minute
	if t := os.Getenv("LEGAL_ADVISOR_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// errorResponse is the error payload returned by the host.
type errorResponse struct {
	Error string `json:"error"`
}

// do sends a request and decodes a JSON response into result (if non-nil).
func (c *Client) do(req *http.Request, wantStatus int, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("server error: %s - %s", resp.Status, e.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func (c *Client) request(ctx context.Context, method, path string, body any, wantStatus int, result any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, wantStatus, result)
}

// =============================================================================
// SESSIONS
// =============================================================================

// CreateSession starts a new conversation.
func (c *Client) CreateSession(ctx context.Context) (*web.SessionView, error) {
	var view web.SessionView
	if err := c.request(ctx, http.MethodPost, "/api/sessions", nil, http.StatusCreated, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListSessions returns all conversations, newest first.
func (c *Client) ListSessions(ctx context.Context) ([]session.Info, error) {
	var infos []session.Info
	if err := c.request(ctx, http.MethodGet, "/api/sessions", nil, http.StatusOK, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// GetSession returns a conversation with its messages.
func (c *Client) GetSession(ctx context.Context, id string) (*web.SessionView, error) {
	var view web.SessionView
	if err := c.request(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteSession removes a conversation.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(id), nil, http.StatusNoContent, nil)
}

// ResetSession clears a conversation's memory.
func (c *Client) ResetSession(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(id)+"/reset", nil, http.StatusOK, nil)
}

// =============================================================================
// QUERIES
// =============================================================================

// Ask sends a question and returns the advisor's reply.
func (c *Client) Ask(ctx context.Context, sessionID, query string) (string, error) {
	var answer web.AnswerView
	path := "/api/sessions/" + url.PathEscape(sessionID) + "/query"
	if err := c.request(ctx, http.MethodPost, path, web.QueryRequest{Query: query}, http.StatusOK, &answer); err != nil {
		return "", err
	}
	return answer.Response, nil
}

// Analyze uploads the document at path. An empty query requests the standard analysis.
func (c *Client) Analyze(ctx context.Context, sessionID, path, query string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", fmt.Errorf("copy document: %w", err)
	}
	if query != "" {
		if err := mw.WriteField("query", query); err != nil {
			return "", fmt.Errorf("write query field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	endpoint := c.baseURL + "/api/sessions/" + url.PathEscape(sessionID) + "/documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var answer web.AnswerView
	if err := c.do(req, http.StatusOK, &answer); err != nil {
		return "", err
	}
	return answer.Response, nil
}

// =============================================================================
// GLOSSARY & STATS
// =============================================================================

// Glossary returns all glossary entries.
func (c *Client) Glossary(ctx context.Context) ([]glossary.Entry, error) {
	var entries []glossary.Entry
	if err := c.request(ctx, http.MethodGet, "/api/glossary", nil, http.StatusOK, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Define looks up one glossary term.
func (c *Client) Define(ctx context.Context, term string) (*glossary.Entry, error) {
	var entry glossary.Entry
	if err := c.request(ctx, http.MethodGet, "/api/glossary?term="+url.QueryEscape(term), nil, http.StatusOK, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Stats returns runtime statistics of the host.
func (c *Client) Stats(ctx context.Context) (*web.StatsView, error) {
	var stats web.StatsView
	if err := c.request(ctx, http.MethodGet, "/api/stats", nil, http.StatusOK, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// =============================================================================
// CHAT STREAM
// =============================================================================

// Chat is an open websocket conversation.
type Chat struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// OpenChat connects to the chat websocket of a session.
func (c *Client) OpenChat(ctx context.Context, sessionID string) (*Chat, error) {
	wsURL := strings.Replace(c.baseURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL+"/ws/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}
	return &Chat{conn: conn}, nil
}

// Send submits a frame and waits for the reply.
func (ch *Chat) Send(ctx context.Context, frame web.Frame) (web.Frame, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	// Unblock the read when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ch.conn.Close()
		case <-done:
		}
	}()

	if err := ch.conn.WriteJSON(frame); err != nil {
		return web.Frame{}, fmt.Errorf("send frame: %w", err)
	}

	var reply web.Frame
	if err := ch.conn.ReadJSON(&reply); err != nil {
		if ctx.Err() != nil {
			return web.Frame{}, ctx.Err()
		}
		return web.Frame{}, fmt.Errorf("read frame: %w", err)
	}
	if reply.Type == web.FrameError {
		return reply, fmt.Errorf("chat error: %s", reply.Content)
	}
	return reply, nil
}

// Ask sends a question over the chat stream.
func (ch *Chat) Ask(ctx context.Context, query string) (string, error) {
	reply, err := ch.Send(ctx, web.Frame{Type: web.FrameQuery, Query: query})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

// Reset clears the conversation memory over the chat stream.
func (ch *Chat) Reset(ctx context.Context) error {
	_, err := ch.Send(ctx, web.Frame{Type: web.FrameReset})
	return err
}

// Close closes the websocket.
func (ch *Chat) Close() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	_ = ch.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return ch.conn.Close()
}
