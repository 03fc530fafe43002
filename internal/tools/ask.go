package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/legal-advisor/internal/apperr"
)

// AskInput defines the input schema for the ask_legal_question tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"required,The legal question to answer"`
}

// NewAskHandler creates the ask_legal_question tool handler.
func NewAskHandler(deps *Dependencies) mcp.ToolHandlerFor[AskInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.Question) == "" {
			return ErrorResult("question is required", "Provide the legal question to answer"), nil, nil
		}

		answer := deps.Session.Ask(ctx, input.Question)
		deps.Logger.Info("ask_legal_question completed", "answer_len", len(answer))
		return TextResult(answer), nil, nil
	}
}

// AnalyzeInput defines the input schema for the analyze_document tool.
type AnalyzeInput struct {
	Path     string `json:"path" jsonschema:"required,Path to a PDF document on the local filesystem"`
	Question string `json:"question,omitempty" jsonschema:"Optional question about the document. Defaults to a comprehensive summary"`
}

// NewAnalyzeHandler creates the analyze_document tool handler.
func NewAnalyzeHandler(deps *Dependencies) mcp.ToolHandlerFor[AnalyzeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
		if input.Path == "" {
			return ErrorResult("path is required", "Provide the path of a PDF document"), nil, nil
		}

		f, err := os.Open(input.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return ErrorResult(apperr.UserMessage(apperr.ErrDocumentNotFound, ""), "Check the path and try again"), nil, nil
			}
			return ErrorResult("failed to open document: "+err.Error(), ""), nil, nil
		}
		defer f.Close()

		answer := deps.Session.Analyze(ctx, f, filepath.Base(input.Path), input.Question)
		deps.Logger.Info("analyze_document completed", "file", filepath.Base(input.Path), "answer_len", len(answer))
		return TextResult(answer), nil, nil
	}
}
