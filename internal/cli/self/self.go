package self

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/urfave/cli/v2"

	"github.com/bardock-dev/bardock/internal/cli/usage"
	"github.com/bardock-dev/bardock/internal/core/failure"
)

// DefaultSource is the GitHub repository releases are fetched from.
const DefaultSource = "bardock-dev/bardock"

// NewSelfCommand creates a new command for self-management.
func NewSelfCommand() *cli.Command {
	return &cli.Command{
		Name:  "self",
		Usage: "Manage the bardock CLI itself",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update bardock to the latest release",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Automatically confirm the update",
					},
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Check for available updates without installing",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Specify a custom GitHub update source as 'owner/repo' (e.g., '" + DefaultSource + "')",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable verbose output",
					},
				},
				Action: updateAction,
			},
		},
	}
}

// currentVersion parses the running binary's version, with or without a
// leading "v".
func currentVersion(raw string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return nil, failure.New(failure.KindUnknown, err,
			"unable to parse current version %q; expected vX.Y.Z or X.Y.Z", raw)
	}
	return v, nil
}

// sourceSlug validates --source. An empty value selects DefaultSource.
func sourceSlug(c *cli.Context, flag string) (string, error) {
	if flag == "" {
		return DefaultSource, nil
	}
	owner, repo, ok := strings.Cut(flag, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", usage.Errorf(c, "invalid --source %q; expected 'owner/repo'", flag)
	}
	return flag, nil
}

// confirm asks on out and reads a y/N answer from in.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(strings.ToLower(input)) == "y"
}

func updateAction(c *cli.Context) error {
	out := c.App.Writer
	verbose := c.Bool("verbose")

	current, err := currentVersion(c.App.Version)
	if err != nil {
		return err
	}
	slug, err := sourceSlug(c, c.String("source"))
	if err != nil {
		return err
	}
	if verbose {
		_, _ = fmt.Fprintf(out, "bardock current version: %s\n", current)
		_, _ = fmt.Fprintf(out, "Using GitHub source: %s\n", slug)
	}
	log.Info("checking for updates", "source", slug, "current", current)

	ghSource, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return failure.New(failure.KindUnknown, err, "unable to create GitHub source")
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: ghSource})
	if err != nil {
		return failure.New(failure.KindUnknown, err, "unable to initialize updater")
	}

	latest, found, err := updater.DetectLatest(c.Context, selfupdate.ParseSlug(slug))
	if err != nil {
		return failure.New(failure.KindUnknown, err, "unable to detect latest version")
	}
	if !found || !latest.GreaterThan(current.String()) {
		_, _ = fmt.Fprintf(out, "Current version %s is already the latest.\n", c.App.Version)
		return nil
	}

	if verbose {
		_, _ = fmt.Fprintf(out, "Latest version detected: %s (Release URL: %s)\n", latest.Version(), latest.URL)
		if latest.ReleaseNotes != "" {
			_, _ = fmt.Fprintf(out, "Release Notes:\n%s\n", latest.ReleaseNotes)
		}
	}
	_, _ = fmt.Fprintf(out, "New version available: %s (current: %s)\n", latest.Version(), c.App.Version)

	if c.Bool("check") {
		return nil
	}
	if !c.Bool("yes") && !confirm(c.App.Reader, out, "Do you want to update? (y/N): ") {
		_, _ = fmt.Fprintln(out, "Update cancelled.")
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return failure.New(failure.KindUnknown, err, "could not get executable path")
	}
	log.Info("updating", "version", latest.Version(), "path", execPath)
	if err := updater.UpdateTo(c.Context, latest, execPath); err != nil {
		return failure.New(failure.KindUnknown, err, "failed to update to %s", latest.Version())
	}

	_, _ = fmt.Fprintf(out, "Successfully updated to version %s.\n", latest.Version())
	return nil
}
