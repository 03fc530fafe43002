// Package memory keeps the conversation log that is replayed into every prompt.
package memory

import (
	"github.com/tmc/langchaingo/llms"
)

// Role tags who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Prefixes used when rendering the log into a prompt.
const (
	HumanPrefix = "Human"
	AIPrefix    = "AI"
)

// Turn is one role-tagged message. Turns are values; copies never alias.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn creates a user turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn creates an assistant turn.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// Memory is an ordered log of turns with optional sliding-window eviction.
// It has a single owner and is not safe for concurrent use.
type Memory struct {
	turns  []Turn
	window int
}

// New creates a memory that keeps at most window turns.
// A window of zero or less keeps everything.
func New(window int) *Memory {
	if window < 0 {
		window = 0
	}
	return &Memory{window: window}
}

// Append adds a turn at the end, evicting the oldest turns past the window.
func (m *Memory) Append(turn Turn) {
	m.turns = append(m.turns, turn)
	if m.window > 0 && len(m.turns) > m.window {
		evicted := len(m.turns) - m.window
		m.turns = append(m.turns[:0:0], m.turns[evicted:]...)
	}
}

// Clear empties the log.
func (m *Memory) Clear() {
	m.turns = nil
}

// Len returns the number of turns held.
func (m *Memory) Len() int {
	return len(m.turns)
}

// Window returns the configured bound (0 = unbounded).
func (m *Memory) Window() int {
	return m.window
}

// Turns returns a copy of the log, oldest first.
func (m *Memory) Turns() []Turn {
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Messages converts the log into langchaingo chat messages.
func (m *Memory) Messages() []llms.ChatMessage {
	msgs := make([]llms.ChatMessage, 0, len(m.turns))
	for _, t := range m.turns {
		switch t.Role {
		case RoleAssistant:
			msgs = append(msgs, llms.AIChatMessage{Content: t.Content})
		default:
			msgs = append(msgs, llms.HumanChatMessage{Content: t.Content})
		}
	}
	return msgs
}

// PromptContext renders the log as role-labelled lines, oldest first.
// An empty log renders as an empty string.
func (m *Memory) PromptContext() string {
	if len(m.turns) == 0 {
		return ""
	}
	rendered, err := llms.GetBufferString(m.Messages(), HumanPrefix, AIPrefix)
	if err != nil {
		// Only human and AI messages are produced above, so this is unreachable.
		return ""
	}
	return rendered
}
