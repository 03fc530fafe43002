package response

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PriorityKeys are checked in order; the first one present is the answer.
var PriorityKeys = []string{"text", "output", "response", "answer", "result"}

// skippedKeys never appear in a synthesised response.
var skippedKeys = map[string]bool{
	"memory": true,
	"input":  true,
}

// Normalize converts a result into the string shown to the user. It never fails.
func Normalize(r Result) string {
	if r.IsText() {
		return r.text
	}

	for _, key := range PriorityKeys {
		if v, ok := r.fields.Get(key); ok {
			return v
		}
	}

	var sb strings.Builder
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		if skippedKeys[pair.Key] {
			continue
		}
		sb.WriteString("**")
		sb.WriteString(Heading(pair.Key))
		sb.WriteString("**:\n")
		sb.WriteString(pair.Value)
		sb.WriteString("\n\n")
	}

	if sb.Len() == 0 {
		return r.String()
	}
	return sb.String()
}

// Heading turns a result key into a title: "key_risks" -> "Key Risks".
// A Caser is stateful, so each call gets its own.
func Heading(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}
