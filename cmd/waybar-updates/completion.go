package main

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for waybar-updates.

To load completions:

Bash:
  $ source <(waybar-updates completion bash)
  # To load completions for each session, execute once:
  $ waybar-updates completion bash > /etc/bash_completion.d/waybar-updates

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ waybar-updates completion zsh > "${fpath[1]}/_waybar-updates"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ waybar-updates completion fish | source
  # To load completions for each session, execute once:
  $ waybar-updates completion fish > ~/.config/fish/completions/waybar-updates.fish

PowerShell:
  PS> waybar-updates completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
