package cli

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/libman/pkg/manifest"
)

// cleanCommand deletes every file libman.json would restore.
func (c *CLI) cleanCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete all library files restored from libman.json",
		Long: `Clean deletes the files each library in libman.json installs and removes
folders that become empty. Other files in the destinations are kept.

With --dry-run the files are only listed.`,
		Args: cobra.NoArgs,
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
			if dryRun {
				return listCleanTargets(ctx, e, m)
			}
			sum := printResults(m, m.Clean(ctx), "cleaned from")
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if sum.failed > 0 {
				return errFailed{sum}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "list the files clean would delete without deleting them")
	return cmd
}

// listCleanTargets prints the files clean would delete, relative to the
// project, and the problems of entries whose files cannot be computed.
func listCleanTargets(ctx context.Context, e *env, m *manifest.Manifest) error {
	goals, errs := m.GoalStates(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var files []string
	for _, g := range goals {
		for _, dest := range g.Destinations() {
			if rel, err := filepath.Rel(e.host.WorkingDirectory(), dest); err == nil {
				dest = rel
			}
			files = append(files, filepath.ToSlash(dest))
		}
	}
	slices.Sort(files)
	for _, f := range files {
		printFile(f)
	}
	for _, err := range errs {
		printCodedError("", err)
	}
	printInfo("%d files would be deleted", len(files))
	return nil
}
