// Package cargo runs the external project generator.
package cargo

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bardock-dev/bardock/internal/core/failure"
)

// Output holds what the generator printed.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// New runs `<exe> new <path>` with the parent environment, capturing both
// output streams.
func New(ctx context.Context, exe, path string) (*Output, error) {
	return run(ctx, exe, "new", path)
}

func run(ctx context.Context, exe string, args ...string) (*Output, error) {
	cmd := exec.CommandContext(ctx, exe, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("running external generator", "cmd", cmd.String())
	if err := cmd.Start(); err != nil {
		return nil, failure.New(failure.KindSubprocessLaunch, err, "failed to call %s", exe)
	}

	err := cmd.Wait()
	out := &Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	log.Debug("external generator finished", "stdout", string(out.Stdout), "stderr", string(out.Stderr))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, failure.New(failure.KindSubprocessFailed, errors.New(stderrText(out.Stderr)),
				"%s %s failed with %s", exe, strings.Join(args, " "), exitErr.ProcessState)
		}
		return out, failure.New(failure.KindSubprocessFailed, err, "%s %s failed", exe, strings.Join(args, " "))
	}
	return out, nil
}

func stderrText(b []byte) string {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "(no output on standard error)"
	}
	return s
}
