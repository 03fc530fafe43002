// Package glossary provides definitions of common legal terms.
package glossary

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed glossary.yaml
var defaultData []byte

// Entry is a legal term with its plain-language definition.
type Entry struct {
	Term       string `yaml:"term" json:"term"`
	Definition string `yaml:"definition" json:"definition"`
}

// Glossary is an immutable, alphabetically sorted set of entries.
type Glossary struct {
	entries []Entry
	index   map[string]int
}

// Default returns the built-in glossary.
func Default() *Glossary {
	g, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("glossary: embedded data: %v", err))
	}
	return g
}

// Parse reads a YAML list of entries.
func Parse(data []byte) (*Glossary, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse glossary: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Term) < strings.ToLower(entries[j].Term)
	})

	g := &Glossary{entries: entries, index: make(map[string]int, len(entries))}
	for i, e := range entries {
		key := normalize(e.Term)
		if key == "" {
			return nil, fmt.Errorf("parse glossary: entry %d has no term", i)
		}
		if _, dup := g.index[key]; dup {
			return nil, fmt.Errorf("parse glossary: duplicate term %q", e.Term)
		}
		g.index[key] = i
	}
	return g, nil
}

// Terms returns all entries sorted by term.
func (g *Glossary) Terms() []Entry {
	out := make([]Entry, len(g.entries))
	copy(out, g.entries)
	return out
}

// Len returns the number of entries.
func (g *Glossary) Len() int {
	return len(g.entries)
}

// Lookup finds a term, ignoring case and surrounding whitespace.
func (g *Glossary) Lookup(term string) (Entry, bool) {
	i, ok := g.index[normalize(term)]
	if !ok {
		return Entry{}, false
	}
	return g.entries[i], true
}

// Random returns an arbitrary entry, used as the term of the day.
func (g *Glossary) Random() Entry {
	if len(g.entries) == 0 {
		return Entry{}
	}
	return g.entries[rand.IntN(len(g.entries))]
}

func normalize(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}
