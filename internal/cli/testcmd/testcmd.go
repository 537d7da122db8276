// Package testcmd implements `bardock test`, which accepts its arguments and
// does nothing else yet.
package testcmd

import (
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/bardock-dev/bardock/internal/cli/usage"
)

// TestCommand returns the definition for the "test" command.
func TestCommand() *cli.Command {
	return &cli.Command{
		Name:      "test",
		Usage:     "Placeholder; parses its arguments and exits",
		ArgsUsage: "<arg1> [arg2]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return usage.Missing(c, "<arg1>")
			}
			if c.NArg() > 2 {
				return usage.Unexpected(c, c.Args().Slice()[2:])
			}
			log.Debug("test command", "arg1", c.Args().Get(0), "arg2", c.Args().Get(1))
			return nil
		},
	}
}
