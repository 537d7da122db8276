// Package newcmd implements `bardock new`.
package newcmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/bardock-dev/bardock/internal/cli/usage"
	"github.com/bardock-dev/bardock/internal/core/config"
	"github.com/bardock-dev/bardock/internal/core/failure"
	"github.com/bardock-dev/bardock/internal/core/generator"
)

// NewCommand returns the definition for the "new" command. cfg is the
// process context captured at startup.
func NewCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a new Python extension crate at <path>",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Set the library name (defaults to the last segment of <path>)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return usage.Missing(c, "<path>")
			}
			if c.NArg() > 1 {
				return usage.Unexpected(c, c.Args().Tail())
			}

			opts := generator.Options{
				Path: c.Args().First(),
				Name: c.String("name"),
			}
			res, err := generator.Generate(c.Context, opts, cfg)
			if err != nil {
				return failure.Wrap(err, "failed to create Python extension project %s", opts.Path)
			}

			created := color.New(color.FgGreen, color.Bold).SprintFunc()
			_, _ = fmt.Fprintf(c.App.Writer, "%s Python extension project `%s` at %s\n", created("Created"), res.Name, res.Dir)
			return nil
		},
	}
}
