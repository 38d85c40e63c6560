package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/manifest"
)

const descriptionWidth = 60

// searchCommand lists libraries matching a term.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		provider string
		maxHits  int
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search a provider's catalog for libraries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.projectEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			p, err := e.provider(provider)
			if err != nil {
				return err
			}
			groups, err := p.Catalog().Search(ctx, args[0], maxHits)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				printInfo("No libraries found for %q on %s", args[0], p.ID())
				return nil
			}
			fmt.Fprintln(stdout, renderGroups(groups))
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "provider to search (default: libman.json defaultProvider, else cdnjs)")
	cmd.Flags().IntVarP(&maxHits, "max", "n", 20, "maximum number of results")
	return cmd
}

// provider returns the named provider, or the project's default.
func (e *env) provider(id string) (library.Provider, error) {
	if id == "" {
		id = defaultProviderID
		if m, err := manifest.FromFile(e.manifestPath(), e.deps); err == nil && m.DefaultProvider != "" {
			id = m.DefaultProvider
		}
	}
	p, ok := e.deps.Provider(id)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", id, e.deps.IDs())
	}
	return p, nil
}

// renderGroups draws search hits as a table.
func renderGroups(groups []library.Group) string {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{g.DisplayName, g.LatestVersion, truncate(g.Description, descriptionWidth)}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Library", "Latest", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 2:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// shellComplete offers library id completions for cobra's shell
// completion. Candidates are full replacements of toComplete.
func (c *CLI) shellComplete(ctx context.Context, providerID, toComplete string) []string {
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := c.projectEnv(ctx)
	if err != nil {
		return nil
	}
	defer e.close()
	p, err := e.provider(providerID)
	if err != nil {
		return nil
	}
	set, err := p.Catalog().CompletionSet(ctx, toComplete, len(toComplete))
	if err != nil {
		return nil
	}
	return expandCompletions(toComplete, set)
}

// expandCompletions applies each item to the set's span of text.
func expandCompletions(text string, set library.CompletionSet) []string {
	start := min(max(set.Start, 0), len(text))
	end := min(start+max(set.Length, 0), len(text))
	out := make([]string, 0, len(set.Completions))
	for _, item := range set.Completions {
		v := text[:start] + item.InsertionText + text[end:]
		if item.Description != "" {
			v += "\t" + item.Description
		}
		out = append(out, v)
	}
	return out
}
