package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridtree/pkg/chunk"
	"github.com/matzehuels/gridtree/pkg/render/partition"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for gridtree.

Besides command and flag names the scripts complete marker files (*.json)
for build, inspect and plot, the export formats for build --format, config
files for build --config and image formats for plot --output.

Bash:
  $ source <(gridtree completion bash)
  $ gridtree completion bash > /etc/bash_completion.d/gridtree

Zsh (compinit must be enabled):
  $ gridtree completion zsh > "${fpath[1]}/_gridtree"

Fish:
  $ gridtree completion fish > ~/.config/fish/completions/gridtree.fish

PowerShell:
  PS> gridtree completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(stdout)
			}
			return nil
		},
	}

	return cmd
}

// registerCompletions attaches argument and flag completion to the
// subcommands of root.
func (c *CLI) registerCompletions(root *cobra.Command) {
	flags := map[string]map[string]completionFunc{
		"build": {
			"format": completeWords(chunk.Formats()...),
			"config": completeExt("toml", "yaml", "yml", "json"),
		},
		"inspect": {"output": completeExt("dot", "gv", "svg")},
		"plot":    {"output": completeExt(partition.Formats...)},
	}
	for _, cmd := range root.Commands() {
		funcs, ok := flags[cmd.Name()]
		if !ok {
			continue
		}
		cmd.ValidArgsFunction = completeExt("json")
		for name, fn := range funcs {
			if err := cmd.RegisterFlagCompletionFunc(name, fn); err != nil {
				c.Logger.Warn("register completion", "command", cmd.Name(), "flag", name, "error", err)
			}
		}
	}
}

type completionFunc = func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)

// completeExt offers files with one of the given extensions.
func completeExt(exts ...string) completionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeWords offers a fixed word list and no files.
func completeWords(words ...string) completionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return words, cobra.ShellCompDirectiveNoFileComp
	}
}
