package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand prints a completion script for the requested shell.
// Flags like --exclusion-key and --workers are completed along with
// subcommand names.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish|powershell",
		Short: "Print a shell completion script",
		Long: `Print a completion script for kdeps to stdout.

Load it into the current shell:

  bash        source <(kdeps completion bash)
  zsh         source <(kdeps completion zsh)
  fish        kdeps completion fish | source
  powershell  kdeps completion powershell | Out-String | Invoke-Expression

To keep completions across sessions, write the script to your shell's
completion directory, for example:

  kdeps completion bash > ~/.local/share/bash-completion/completions/kdeps
  kdeps completion zsh  > "${fpath[1]}/_kdeps"
  kdeps completion fish > ~/.config/fish/completions/kdeps.fish
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
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
