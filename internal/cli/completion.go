package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts. Library arguments
// of install complete against the provider catalogs.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for libman.

Bash:
  $ source <(libman completion bash)

Zsh:
  $ libman completion zsh > "${fpath[1]}/_libman"

Fish:
  $ libman completion fish | source

PowerShell:
  PS> libman completion powershell | Out-String | Invoke-Expression

Once loaded, "libman install jq<TAB>" completes library names from the
default provider and "libman install jquery@<TAB>" completes versions.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
