package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/libman/pkg/manifest"
)

// initCommand creates an empty libman.json.
func (c *CLI) initCommand() *cobra.Command {
	var (
		provider    string
		destination string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new libman.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.projectEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			path := e.manifestPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if provider != "" {
				if _, ok := e.deps.Provider(provider); !ok {
					return fmt.Errorf("unknown provider %q (available: %v)", provider, e.deps.IDs())
				}
			}

			m := manifest.New(e.deps)
			m.DefaultProvider = provider
			m.DefaultDestination = destination
			if err := m.Save(cmd.Context(), path); err != nil {
				return err
			}
			printSuccess("Created %s", manifest.FileName)
			printFile(path)
			printNextStep("Add a library", "libman install jquery@3.7.1 -d wwwroot/lib/jquery")
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "default-provider", "p", "cdnjs", "default provider for new entries")
	cmd.Flags().StringVarP(&destination, "default-destination", "d", "", "default destination for new entries")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing libman.json")
	return cmd
}
