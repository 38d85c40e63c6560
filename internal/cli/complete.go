package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/libman/pkg/completion"
)

// completeCommand prints completions for a partial library id. Editors
// call it to drive their own completion UI.
func (c *CLI) completeCommand() *cobra.Command {
	var (
		provider string
		caret    int
	)

	cmd := &cobra.Command{
		Use:   "complete <partial-library-id>",
		Short: "Print completions for a partial library id",
		Long: `Complete prints the replaceable span and the candidates for a partial library id.

The first line is "<start> <length> <type>"; each following line is a tab
separated display text, insertion text and description. With the caret
after the version separator ("jquery@3") versions are completed, otherwise
names.`,
		Example: `  libman complete jque
  libman complete @types/react@ --caret 13 -p unpkg`,
		Args: cobra.ExactArgs(1),
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
			if caret < 0 {
				caret = len(args[0])
			}

			s := completion.NewSession(e.deps)
			t := s.Begin(completion.Request{ProviderID: p.ID(), Text: args[0], Caret: caret})
			set, err := s.Resolve(ctx, t)
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "%d %d %s\n", set.Start, set.Length, set.Type)
			for _, item := range set.Completions {
				fmt.Fprintf(stdout, "%s\t%s\t%s\n", item.DisplayText, item.InsertionText, item.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "provider whose catalog completes (default: libman.json defaultProvider, else cdnjs)")
	cmd.Flags().IntVar(&caret, "caret", -1, "caret position in the input (default: end of input)")
	return cmd
}
