package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_legal_question",
		Description: "Ask the legal advisor a question. The conversation is remembered across calls",
	}, NewAskHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_document",
		Description: "Analyze a local PDF legal document, optionally answering a question about it",
	}, NewAnalyzeHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "define_term",
		Description: "Look up a term in the legal glossary. Without a term, returns a random entry",
	}, NewDefineHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reset_conversation",
		Description: "Clear the conversation memory and start over",
	}, NewResetHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stats",
		Description: "Show query, PDF extraction and model call statistics",
	}, NewStatsHandler(deps))
}
