package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/manifest"
)

// deleteStale removes files the previous version installed that the new
// one no longer does.
func (c *CLI) deleteStale(ctx context.Context, e *env, old, current *library.GoalState) {
	if current == nil {
		return
	}
	var stale []string
	for _, dest := range old.Destinations() {
		if _, ok := current.InstalledFiles[dest]; !ok {
			stale = append(stale, dest)
		}
	}
	if len(stale) == 0 {
		return
	}
	if err := e.host.DeleteFiles(ctx, stale...); err != nil {
		c.Logger.Warn("could not delete files of the previous version", "err", err)
		return
	}
	printDetail("removed %d files of the previous version", len(stale))
}

// updateCommand moves a library to another version.
func (c *CLI) updateCommand() *cobra.Command {
	var (
		provider string
		to       string
		pre      bool
	)

	cmd := &cobra.Command{
		Use:   "update <library>",
		Short: "Update a library in libman.json to a newer version",
		Long: `Update changes the version of a library in libman.json and restores it.

Without --to, the newest stable version is chosen; --pre also considers
pre-releases. libman.json is left unchanged when the new version cannot be
restored.`,
		Args: cobra.ExactArgs(1),
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
			p, ok := e.deps.Provider(state.ProviderID)
			if !ok {
				return fmt.Errorf("unknown provider %q", state.ProviderID)
			}

			version := to
			if version == "" || library.IsLatestTag(version) {
				version, err = p.Catalog().GetLatestVersion(ctx, state.Name, pre)
				if err != nil {
					return err
				}
				if version == "" {
					return fmt.Errorf("no versions found for %s", state.Name)
				}
			}
			if version == state.Version {
				printInfo("%s is already at %s", StyleHighlight.Render(state.Name), version)
				return nil
			}

			old := p.GoalState(ctx, state).Value

			updated, _ := m.ReplaceVersion(state, version)
			res := m.RestoreLibrary(ctx, updated)
			sum := printResults(m, []manifest.Result{res}, "updated in")
			if !res.Success() {
				m.ReplaceVersion(state, state.Version)
				return errFailed{sum}
			}
			if err := m.Save(ctx, e.manifestPath()); err != nil {
				return err
			}
			if old != nil {
				c.deleteStale(ctx, e, old, p.GoalState(ctx, updated).Value)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "only consider entries from this provider")
	cmd.Flags().StringVar(&to, "to", "", "version to update to (default: latest)")
	cmd.Flags().BoolVar(&pre, "pre", false, "allow pre-release versions when picking the latest")
	return cmd
}
