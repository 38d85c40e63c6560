package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/libman/pkg/settings"
)

// configCommand manages user-wide settings.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write libman settings",
		Long: `Config manages the user-wide settings file.

An environment variable with the same name as a setting overrides the
stored value.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "get <name>",
		Short:     "Print a setting's effective value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: settings.Known,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.loadSettings()
			if err != nil {
				return err
			}
			v, ok := store.TryGetValue(args[0])
			if !ok {
				return fmt.Errorf("%s is not set", args[0])
			}
			fmt.Fprintln(stdout, v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <name> <value>",
		Short:     "Store a setting",
		Args:      cobra.ExactArgs(2),
		ValidArgs: settings.Known,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.loadSettings()
			if err != nil {
				return err
			}
			if !slices.Contains(settings.Known, args[0]) {
				printWarning("%s is not a setting libman reads", args[0])
			}
			if err := validateSetting(args[0], args[1]); err != nil {
				return err
			}
			if err := store.SetValue(args[0], args[1]); err != nil {
				return err
			}
			printSuccess("Set %s", StyleHighlight.Render(args[0]))
			if _, env := os.LookupEnv(args[0]); env {
				printDetail("the %s environment variable overrides this value", args[0])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "unset <name>",
		Short:     "Remove a stored setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: settings.Known,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.loadSettings()
			if err != nil {
				return err
			}
			if err := store.RemoveValue(args[0]); err != nil {
				return err
			}
			printSuccess("Removed %s", StyleHighlight.Render(args[0]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show every known setting and where its value comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.loadSettings()
			if err != nil {
				return err
			}
			printDetail("File: %s", store.Path())
			for _, name := range settings.Known {
				value, source := "-", ""
				if v, ok := os.LookupEnv(name); ok {
					value, source = v, " (env)"
				} else if v, ok := store.Stored(name); ok {
					value = v
				}
				printKeyValue(name, value+source)
			}
			for _, name := range store.Names() {
				if !slices.Contains(settings.Known, name) {
					v, _ := store.Stored(name)
					printKeyValue(name, v+" (unused)")
				}
			}
			return nil
		},
	})

	return cmd
}
