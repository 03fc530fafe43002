package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/raphaelgruber/legal-advisor/internal/glossary"
	"github.com/spf13/cobra"
)

var glossaryRandom bool

var glossaryCmd = &cobra.Command{
	Use:   "glossary [term]",
	Short: "Look up legal terms",
	Long: `List the legal glossary, or look up a single term (case insensitive).

Examples:
  legal-advisor glossary
  legal-advisor glossary "habeas corpus"
  legal-advisor glossary --random`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var term string
		if len(args) == 1 {
			term = args[0]
		}
		return printGlossary(cmd.OutOrStdout(), glossary.Default(), term, glossaryRandom)
	},
}

func init() {
	glossaryCmd.Flags().BoolVar(&glossaryRandom, "random", false, "show a random term of the day")
}

func printGlossary(out io.Writer, g *glossary.Glossary, term string, random bool) error {
	switch {
	case random:
		printEntry(out, g.Random())
	case term != "":
		entry, ok := g.Lookup(term)
		if !ok {
			return fmt.Errorf("term %q not found in glossary", term)
		}
		printEntry(out, entry)
	default:
		fmt.Fprintf(out, "Legal Glossary (%d terms)\n", g.Len())
		fmt.Fprintln(out, strings.Repeat("═", 39))
		for _, e := range g.Terms() {
			fmt.Fprintln(out)
			printEntry(out, e)
		}
	}
	return nil
}

func printEntry(out io.Writer, e glossary.Entry) {
	fmt.Fprintln(out, speakerStyle.Render(e.Term))
	fmt.Fprintf(out, "  %s\n", e.Definition)
}
