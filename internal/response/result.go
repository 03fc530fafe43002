// Package response turns the variably shaped output of the model collaborator
// into a single display string.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fields is an insertion-ordered mapping of result keys to values.
type Fields = orderedmap.OrderedMap[string, string]

// Result is the tagged union received from the model collaborator:
// either plain text or an ordered set of named fields.
type Result struct {
	text   string
	fields *Fields
}

// PlainText wraps a string result.
func PlainText(s string) Result {
	return Result{text: s}
}

// Structured wraps an ordered field mapping. A nil mapping is treated as empty.
func Structured(fields *Fields) Result {
	if fields == nil {
		fields = orderedmap.New[string, string]()
	}
	return Result{fields: fields}
}

// FromPairs builds a structured result from alternating key/value arguments.
// A trailing key without a value gets an empty value.
func FromPairs(kv ...string) Result {
	fields := orderedmap.New[string, string]()
	for i := 0; i < len(kv); i += 2 {
		var v string
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		fields.Set(kv[i], v)
	}
	return Structured(fields)
}

// FromJSON decodes a collaborator payload. A JSON string becomes PlainText;
// a JSON object becomes Structured with key order preserved and non-string
// values kept in their JSON form. Anything else is kept as raw text.
func FromJSON(data []byte) (Result, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Result{}, fmt.Errorf("empty payload")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Result{}, fmt.Errorf("decode string result: %w", err)
		}
		return PlainText(s), nil

	case '{':
		raw := orderedmap.New[string, json.RawMessage]()
		if err := json.Unmarshal(trimmed, raw); err != nil {
			return Result{}, fmt.Errorf("decode structured result: %w", err)
		}
		fields := orderedmap.New[string, string]()
		for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
			fields.Set(pair.Key, rawValue(pair.Value))
		}
		return Structured(fields), nil

	default:
		return PlainText(string(trimmed)), nil
	}
}

// rawValue unquotes JSON strings and keeps every other value verbatim.
func rawValue(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}

// IsText reports whether the result is plain text.
func (r Result) IsText() bool {
	return r.fields == nil
}

// Fields returns the structured mapping (nil for plain text results).
func (r Result) Fields() *Fields {
	return r.fields
}

// String renders the generic representation used as the last-resort fallback.
func (r Result) String() string {
	if r.IsText() {
		return r.text
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		if pair != r.fields.Oldest() {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %s", pair.Key, pair.Value)
	}
	buf.WriteByte('}')
	return buf.String()
}
