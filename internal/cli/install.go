package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/libman/pkg/manifest"
	"github.com/matzehuels/libman/pkg/providers/cdnjs"
)

// defaultProviderID is used when neither a flag nor libman.json names one.
const defaultProviderID = cdnjs.ID

// installCommand adds a library to libman.json and restores it.
func (c *CLI) installCommand() *cobra.Command {
	var (
		provider    string
		destination string
		files       []string
	)

	cmd := &cobra.Command{
		Use:   "install <library>",
		Short: "Add a library to libman.json and restore it",
		Long: `Install resolves a library, copies its files into the destination and records
it in libman.json. libman.json is created when it does not exist yet.

A library without a version installs the newest stable release.`,
		Example: `  libman install jquery@3.7.1 -d wwwroot/lib/jquery
  libman install @popperjs/core -p unpkg --files dist/umd/popper.min.js
  libman install vendor/widget -p filesystem -d wwwroot/widget`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return c.shellComplete(cmd.Context(), provider, toComplete), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.projectEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			m, err := manifest.FromFile(e.manifestPath(), e.deps)
			if manifest.IsNotExist(err) {
				m = manifest.New(e.deps)
				if provider == "" {
					m.DefaultProvider = defaultProviderID
				}
				printInfo("Creating %s", manifest.FileName)
			} else if err != nil {
				return err
			}

			spin := newSpinner(ctx, fmt.Sprintf("Installing %s...", args[0]))
			spin.Start()
			res := m.InstallLibrary(ctx, manifest.InstallOptions{
				LibraryID:   args[0],
				ProviderID:  provider,
				Destination: destination,
				Files:       files,
			})
			spin.Stop()

			sum := printResults(m, []manifest.Result{res}, "installed to")
			if res.Cancelled {
				return context.Canceled
			}
			if sum.failed > 0 {
				return errFailed{sum}
			}
			return m.Save(ctx, e.manifestPath())
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "provider to install from (default: libman.json defaultProvider)")
	cmd.Flags().StringVarP(&destination, "destination", "d", "", "folder to install into, relative to the project")
	cmd.Flags().StringSliceVar(&files, "files", nil, "files to install; globs allowed, \"!\" excludes (default: all)")
	return cmd
}
