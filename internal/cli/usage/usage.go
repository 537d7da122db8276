// Package usage builds the usage errors commands return for bad arguments.
package usage

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/bardock-dev/bardock/internal/core/failure"
)

// Line renders the one-line usage of the command running in c.
func Line(c *cli.Context) string {
	name := "bardock"
	if c != nil && c.App != nil && c.App.Name != "" {
		name = c.App.Name
	}
	if c == nil || c.Command == nil || c.Command.Name == "" || c.Command.Name == name {
		return name + " [global options] command [command options]"
	}
	path := c.Command.HelpName
	if path == "" {
		path = name + " " + c.Command.Name
	}
	parts := []string{path, "[command options]"}
	if c.Command.ArgsUsage != "" {
		parts = append(parts, c.Command.ArgsUsage)
	}
	return strings.Join(parts, " ")
}

// Errorf returns a usage error whose message ends with the usage line.
func Errorf(c *cli.Context, format string, args ...any) error {
	return failure.New(failure.KindUsage, nil, "%s\n\nUSAGE:\n   %s", fmt.Sprintf(format, args...), Line(c))
}

// Missing reports a required positional argument that was not given.
func Missing(c *cli.Context, arg string) error {
	return Errorf(c, "missing required argument %s", arg)
}

// Unexpected reports positional arguments beyond what a command takes.
func Unexpected(c *cli.Context, args []string) error {
	return Errorf(c, "unexpected argument %q", args[0])
}

// OnError turns flag parsing failures into usage errors. It has the shape of
// cli.OnUsageErrorFunc.
func OnError(c *cli.Context, err error, _ bool) error {
	return Errorf(c, "%v", err)
}
