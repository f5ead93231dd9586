package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func init() {
	commands = append(commands, &cli.Command{
		Name:      "completion",
		Usage:     "Print the shell completion script for ratc",
		Category:  "version",
		ArgsUsage: "[bash|zsh]",
		Action:    completion,
	})
}

const bashCompletion = `_ratc_complete() {
	local cur opts
	COMPREPLY=()
	cur="${COMP_WORDS[COMP_CWORD]}"
	if [[ "$cur" == "-"* ]]; then
		opts=$("${COMP_WORDS[@]:0:$COMP_CWORD}" "${cur}" --generate-bash-completion)
	else
		opts=$("${COMP_WORDS[@]:0:$COMP_CWORD}" --generate-bash-completion)
	fi
	COMPREPLY=($(compgen -W "${opts}" -- "${cur}"))
	return 0
}
complete -o bashdefault -o default -F _ratc_complete ratc
`

const zshCompletion = `#compdef ratc
_ratc() {
	local -a opts
	local cur
	cur=${words[-1]}
	if [[ "$cur" == "-"* ]]; then
		opts=("${(@f)$(${words[@]:0:#words[@]-1} ${cur} --generate-bash-completion)}")
	else
		opts=("${(@f)$(${words[@]:0:#words[@]-1} --generate-bash-completion)}")
	fi
	if [[ "${opts[1]}" != "" ]]; then
		_describe 'values' opts
	else
		_files
	fi
}
compdef _ratc ratc
`

func completion(c *cli.Context) error {
	shell := c.Args().First()
	if shell == "" {
		shell = filepath.Base(os.Getenv("SHELL"))
	}

	switch shell {
	case "bash":
		fmt.Fprint(c.App.Writer, bashCompletion)
	case "zsh":
		fmt.Fprint(c.App.Writer, zshCompletion)
	default:
		return cli.Exit(color.RedString("Unsupported shell for autocomplete: %q", shell), 1)
	}
	return nil
}
