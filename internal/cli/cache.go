package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the library cache",
	}

	cmd.AddCommand(c.cacheCleanCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheCleanCommand creates the "cache clean" subcommand.
func (c *CLI) cacheCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "clean [provider]",
		Aliases: []string{"clear"},
		Short:   "Delete cached library files and catalog metadata",
		Long: `Clean empties the library cache. With a provider argument only that
provider's files are removed; otherwise the search response cache goes too.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.loadSettings()
			if err != nil {
				return err
			}
			dir, err := cacheDir(store)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if len(args) == 1 {
				dir = filepath.Join(dir, args[0])
			}

			count, err := clearDir(dir)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Removed %d cached files", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// clearDir removes everything below dir, keeping dir itself, and returns
// the number of files removed. A missing dir is empty.
func clearDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count := 0
	_ = filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			count++
		}
		return nil
	})
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.loadSettings()
			if err != nil {
				return err
			}
			dir, err := cacheDir(store)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
