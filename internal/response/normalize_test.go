package response

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlainTextIsIdentity(t *testing.T) {
	inputs := []string{"", "Force majeure is ...", "**bold**\n\nmulti\nline", "  padded  "}
	for _, in := range inputs {
		assert.Equal(t, in, Normalize(PlainText(in)))
	}
}

func TestNormalizePriorityKeys(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "text wins over output",
			result: FromPairs("output", "from output", "text", "from text"),
			want:   "from text",
		},
		{
			name:   "text wins regardless of position",
			result: FromPairs("answer", "a", "result", "r", "response", "resp", "text", "t"),
			want:   "t",
		},
		{
			name:   "output before response",
			result: FromPairs("response", "resp", "output", "out"),
			want:   "out",
		},
		{
			name:   "response before answer",
			result: FromPairs("answer", "ans", "response", "resp"),
			want:   "resp",
		},
		{
			name:   "answer before result",
			result: FromPairs("result", "res", "answer", "ans"),
			want:   "ans",
		},
		{
			name:   "result alone",
			result: FromPairs("memory", "m", "result", "res"),
			want:   "res",
		},
		{
			name:   "empty text still wins",
			result: FromPairs("text", "", "output", "ignored"),
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.result))
		})
	}
}

func TestNormalizeSynthesisesBlocks(t *testing.T) {
	result := FromPairs(
		"summary", "Short summary",
		"memory", "should be skipped",
		"key_risks", "Indemnity clause",
		"input", "also skipped",
		"recommended_actions", "Consult counsel",
	)

	want := "**Summary**:\nShort summary\n\n" +
		"**Key Risks**:\nIndemnity clause\n\n" +
		"**Recommended Actions**:\nConsult counsel\n\n"

	assert.Equal(t, want, Normalize(result))
}

func TestNormalizeConcurrentSynthesis(t *testing.T) {
	want := "**Key Risks**:\nx\n\n**Recommended Actions**:\ny\n\n"

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for range 200 {
				results[g] = append(results[g], Normalize(FromPairs("key_risks", "x", "recommended_actions", "y")))
			}
		}(g)
	}
	wg.Wait()

	for _, got := range results {
		require.Len(t, got, 200)
		for _, s := range got {
			assert.Equal(t, want, s)
		}
	}
}

func TestNormalizeFallsBackToGenericForm(t *testing.T) {
	t.Run("only skipped keys", func(t *testing.T) {
		result := FromPairs("input", "q", "memory", "m")
		assert.Equal(t, "{input: q, memory: m}", Normalize(result))
	})

	t.Run("empty mapping", func(t *testing.T) {
		assert.Equal(t, "{}", Normalize(Structured(nil)))
	})
}

func TestHeading(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"summary", "Summary"},
		{"key_risks", "Key Risks"},
		{"EXPERT_advice", "Expert Advice"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Heading(tt.in))
		})
	}
}

func TestFromJSON(t *testing.T) {
	t.Run("string payload", func(t *testing.T) {
		r, err := FromJSON([]byte(`"plain answer"`))
		require.NoError(t, err)
		assert.True(t, r.IsText())
		assert.Equal(t, "plain answer", Normalize(r))
	})

	t.Run("object keeps key order", func(t *testing.T) {
		r, err := FromJSON([]byte(`{"zeta": "last letter", "alpha": 1, "nested": {"a": true}}`))
		require.NoError(t, err)
		require.False(t, r.IsText())

		want := "**Zeta**:\nlast letter\n\n" +
			"**Alpha**:\n1\n\n" +
			"**Nested**:\n{\"a\": true}\n\n"
		assert.Equal(t, want, Normalize(r))
	})

	t.Run("object with text key", func(t *testing.T) {
		r, err := FromJSON([]byte(`{"human_input": "What is force majeure?", "text": "Force majeure is ..."}`))
		require.NoError(t, err)
		assert.Equal(t, "Force majeure is ...", Normalize(r))
	})

	t.Run("other json kept raw", func(t *testing.T) {
		r, err := FromJSON([]byte(`[1, 2]`))
		require.NoError(t, err)
		assert.Equal(t, "[1, 2]", Normalize(r))
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := FromJSON([]byte("   "))
		assert.Error(t, err)
	})

	t.Run("malformed object", func(t *testing.T) {
		_, err := FromJSON([]byte(`{"text": `))
		assert.Error(t, err)
	})
}
