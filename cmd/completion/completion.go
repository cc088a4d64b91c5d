// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

var installHints = map[string]string{
	"bash":       "rpa completion bash > /etc/bash_completion.d/rpa",
	"zsh":        "rpa completion zsh > ~/.zsh/completions/_rpa",
	"fish":       "rpa completion fish > ~/.config/fish/completions/rpa.fish",
	"powershell": "rpa completion powershell >> $PROFILE",
}

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for rpa.

  Bash:       rpa completion bash > /etc/bash_completion.d/rpa
  Zsh:        rpa completion zsh > ~/.zsh/completions/_rpa
  Fish:       rpa completion fish > ~/.config/fish/completions/rpa.fish
  PowerShell: rpa completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			hint, ok := installHints[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", args[0])
			}
			fmt.Fprintf(w, "# rpa %s completion\n# Install: %s\n\n", args[0], hint)

			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(w)
			case "zsh":
				return rootCmd.GenZshCompletion(w)
			case "fish":
				return rootCmd.GenFishCompletion(w, true)
			default:
				return rootCmd.GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}
