package cli

import (
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/spf13/cobra"
)

// dashCmd opens the dashboard explicitly; it is also the root default.
var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the live dashboard",
	Long: `Open the full-screen dashboard with process, chart, drive and system tabs.

Keys: / filter, m match mode, s sort, n start a process, x terminate,
X force kill, 1-4 switch tabs, ? help, q quit.

Examples:
  resmon dash
  resmon dash --interval 500ms --window 120
  resmon dash --filter "user:postgres" --exact`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashCommand(cmd.Context(), dashFlags)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for resmon.

Examples:
  # Bash
  resmon completion bash > /etc/bash_completion.d/resmon

  # Zsh
  resmon completion zsh > "${fpath[1]}/_resmon"

  # Fish
  resmon completion fish > ~/.config/fish/completions/resmon.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(out)
		case "zsh":
			return root.GenZshCompletion(out)
		case "fish":
			return root.GenFishCompletion(out, true)
		case "powershell":
			return root.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrExec,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	AddDashFlags(dashCmd, &dashFlags)

	rootCmd.AddCommand(dashCmd)
	rootCmd.AddCommand(completionCmd)
}
