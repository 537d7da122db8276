package app

import (
	"slices"
	"strings"

	"github.com/urfave/cli/v2"
)

// reorderArgs lets flags follow positional arguments, as in
// `bardock new foo --name bar`. The urfave parser stops at the first
// positional, so the arguments after the selected leaf command are rewritten
// to flags first, then "--", then positionals. args[0] is the program name.
func reorderArgs(cmds []*cli.Command, args []string) []string {
	if len(args) < 2 {
		return args
	}
	return append([]string{args[0]}, reorderTail(cmds, args[1:])...)
}

func reorderTail(cmds []*cli.Command, args []string) []string {
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") {
			if arg == "--" {
				return args
			}
			continue
		}
		cmd := findCommand(cmds, arg)
		if cmd == nil {
			return args
		}
		head := slices.Clone(args[:i+1])
		if len(cmd.Subcommands) > 0 {
			return append(head, reorderTail(cmd.Subcommands, args[i+1:])...)
		}
		return append(head, flagsFirst(cmd, args[i+1:])...)
	}
	return args
}

func findCommand(cmds []*cli.Command, name string) *cli.Command {
	for _, cmd := range cmds {
		if cmd.HasName(name) {
			return cmd
		}
	}
	return nil
}

// flagsFirst moves the flags in args ahead of the positionals. A value flag
// with nothing after it leaves args untouched so the command reports it.
func flagsFirst(cmd *cli.Command, args []string) []string {
	takesValue := make(map[string]bool)
	for _, f := range cmd.Flags {
		_, isBool := f.(*cli.BoolFlag)
		for _, name := range f.Names() {
			takesValue[name] = !isBool
		}
	}

	var flags, positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positionals = append(positionals, args[i+1:]...)
			i = len(args)
		case len(arg) > 1 && arg[0] == '-':
			flags = append(flags, arg)
			name := strings.TrimLeft(arg, "-")
			if strings.Contains(name, "=") || !takesValue[name] {
				continue
			}
			if i+1 == len(args) {
				return args
			}
			i++
			flags = append(flags, args[i])
		default:
			positionals = append(positionals, arg)
		}
	}

	if len(positionals) == 0 {
		return flags
	}
	return append(append(flags, "--"), positionals...)
}
