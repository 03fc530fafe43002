// Package prompt builds the model input from the legal template, the
// conversation context and the user's query.
package prompt

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

// Template variable names.
const (
	VarText        = "text"
	VarChatHistory = "chat_history"
	VarHumanInput  = "human_input"
)

// Payload is the composed input handed to the model collaborator.
type Payload struct {
	// Text is the question or document block substituted for the text variable.
	Text string
	// ChatHistory is the rendered conversation memory.
	ChatHistory string
	// HumanInput is the raw user query.
	HumanInput string
	// Prompt is the fully rendered template.
	Prompt string
	// HasDocument reports whether Text carries document content.
	HasDocument bool
}

// Composer renders payloads from a fixed template.
type Composer struct {
	template prompts.PromptTemplate
}

// NewComposer creates a composer over the legal template.
func NewComposer() *Composer {
	return NewComposerWithTemplate(LegalTemplate)
}

// NewComposerWithTemplate creates a composer over a custom Go template that
// uses the same three variables.
func NewComposerWithTemplate(tmpl string) *Composer {
	return &Composer{
		template: prompts.NewPromptTemplate(tmpl, []string{VarText, VarChatHistory, VarHumanInput}),
	}
}

// Compose fills the template. An empty documentText means no document is attached.
func (c *Composer) Compose(memoryContext, humanInput, documentText string) (Payload, error) {
	text := TextBlock(humanInput, documentText)

	rendered, err := c.template.Format(map[string]any{
		VarText:        text,
		VarChatHistory: memoryContext,
		VarHumanInput:  humanInput,
	})
	if err != nil {
		return Payload{}, fmt.Errorf("render prompt: %w", err)
	}

	return Payload{
		Text:        text,
		ChatHistory: memoryContext,
		HumanInput:  humanInput,
		Prompt:      rendered,
		HasDocument: documentText != "",
	}, nil
}

// TextBlock builds the value of the text variable.
func TextBlock(query, documentText string) string {
	if documentText != "" {
		return "Document Analysis Request: " + query + "\n\nDocument Content:\n" + documentText
	}
	return "Legal Question: " + query
}
