package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/libman/pkg/manifest"
)

// uninstallCommand removes a library's files and its libman.json entry.
func (c *CLI) uninstallCommand() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "uninstall <library>",
		Short: "Delete a library's files and remove it from libman.json",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return c.manifestLibraryIDs(cmd), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.projectEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			m, err := e.loadManifest()
			if err != nil {
				return err
			}
			state, err := pickLibrary(ctx, m, args[0], m.Resolve(args[0], provider))
			if err != nil {
				return err
			}

			res := m.Uninstall(ctx, state)
			sum := printResults(m, []manifest.Result{res}, "removed from")
			if sum.failed > 0 || sum.cancelled > 0 {
				return errFailed{sum}
			}
			return m.Save(ctx, e.manifestPath())
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "only consider entries from this provider")
	return cmd
}

// manifestLibraryIDs lists the ids in the project's libman.json for shell
// completion.
func (c *CLI) manifestLibraryIDs(cmd *cobra.Command) []string {
	e, err := c.projectEnv(cmd.Context())
	if err != nil {
		return nil
	}
	defer e.close()
	m, err := e.loadManifest()
	if err != nil {
		return nil
	}
	var ids []string
	for _, l := range m.Libraries() {
		ids = append(ids, m.LibraryID(l))
	}
	return ids
}
