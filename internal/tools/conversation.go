package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefineInput defines the input schema for the define_term tool.
type DefineInput struct {
	Term string `json:"term,omitempty" jsonschema:"Glossary term, case insensitive. Empty returns a random term"`
}

// NewDefineHandler creates the define_term tool handler.
func NewDefineHandler(deps *Dependencies) mcp.ToolHandlerFor[DefineInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DefineInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.Term) == "" {
			entry := deps.Glossary.Random()
			return TextResult(fmt.Sprintf("%s: %s", entry.Term, entry.Definition)), nil, nil
		}

		entry, ok := deps.Glossary.Lookup(input.Term)
		if !ok {
			terms := make([]string, 0, deps.Glossary.Len())
			for _, e := range deps.Glossary.Terms() {
				terms = append(terms, e.Term)
			}
			return ErrorResult(fmt.Sprintf("term %q not found", input.Term),
				"Known terms:\n"+FormatResults(terms)), nil, nil
		}
		return TextResult(fmt.Sprintf("%s: %s", entry.Term, entry.Definition)), nil, nil
	}
}

// ResetInput defines the (empty) input schema for the reset_conversation tool.
type ResetInput struct{}

// NewResetHandler creates the reset_conversation tool handler.
func NewResetHandler(deps *Dependencies) mcp.ToolHandlerFor[ResetInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ResetInput) (*mcp.CallToolResult, any, error) {
		deps.Session.Reset()
		deps.Logger.Info("conversation reset")
		return TextResult("Conversation history cleared."), nil, nil
	}
}

// StatsInput defines the (empty) input schema for the stats tool.
type StatsInput struct{}

// NewStatsHandler creates the stats tool handler.
func NewStatsHandler(deps *Dependencies) mcp.ToolHandlerFor[StatsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, any, error) {
		lines := deps.Metrics.Snapshot().Lines()
		if len(lines) == 1 {
			lines = append(lines, "no queries recorded yet")
		}
		return TextResult(FormatResults(lines)), nil, nil
	}
}
