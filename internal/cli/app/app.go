// Package app assembles the bardock command line and maps its errors to exit
// codes.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/bardock-dev/bardock/internal/cli/newcmd"
	"github.com/bardock-dev/bardock/internal/cli/self"
	"github.com/bardock-dev/bardock/internal/cli/testcmd"
	"github.com/bardock-dev/bardock/internal/cli/usage"
	"github.com/bardock-dev/bardock/internal/core/config"
	"github.com/bardock-dev/bardock/internal/core/failure"
)

// Version is reported by --version and compared against releases by
// `self update`.
var Version = "v0.1.0"

// New builds the application. Output goes to stdout and diagnostics to
// stderr; nothing is written to the process streams directly.
func New(cfg *config.Config, stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "bardock",
		HelpName:  "bardock",
		Usage:     "python extension builder",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				log.Debug("unknown command", "name", c.Args().First())
			}
			if err := cli.ShowAppHelp(c); err != nil {
				return err
			}
			return failure.ErrHelp
		},
		Commands: []*cli.Command{
			newcmd.NewCommand(cfg),
			testcmd.TestCommand(),
			self.NewSelfCommand(),
		},
		OnUsageError: func(c *cli.Context, err error, sub bool) error {
			return exit(usage.OnError(c, err, sub))
		},
		// Run reports errors and picks the exit code; urfave must not exit.
		ExitErrHandler: func(*cli.Context, error) {},
	}
	for _, cmd := range app.Commands {
		decorate(cmd)
	}
	return app
}

// decorate routes the errors of cmd and its subcommands through exit.
func decorate(cmd *cli.Command) {
	if action := cmd.Action; action != nil {
		cmd.Action = func(c *cli.Context) error {
			return exit(action(c))
		}
	}
	cmd.OnUsageError = func(c *cli.Context, err error, sub bool) error {
		return exit(usage.OnError(c, err, sub))
	}
	for _, sub := range cmd.Subcommands {
		decorate(sub)
	}
}

// Run executes args (including the program name) and returns the process
// exit code. Errors are reported on stderr.
func Run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	app := New(cfg, stdout, stderr)
	err := app.RunContext(ctx, reorderArgs(app.Commands, args))
	if err == nil {
		return failure.ExitOK
	}

	code := failure.ExitCode(err)
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		code = coder.ExitCode()
	}
	if code != failure.ExitOK {
		Report(stderr, err)
	}
	return code
}

// Report writes err to w: the outermost message after "error:", then each
// underlying cause on its own line.
func Report(w io.Writer, err error) {
	var shell *exitError
	if errors.As(err, &shell) {
		err = shell.err
	}
	chain := failure.Chain(err)
	if len(chain) == 0 {
		return
	}

	label := color.New(color.FgRed, color.Bold).SprintFunc()
	_, _ = fmt.Fprintf(w, "%s %s\n", label("error:"), chain[0])
	if len(chain) == 1 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", label("Caused by:"))
	for _, cause := range chain[1:] {
		_, _ = fmt.Fprintf(w, "    %s\n", cause)
	}
}
