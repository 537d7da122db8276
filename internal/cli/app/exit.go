package app

import (
	"github.com/urfave/cli/v2"

	"github.com/bardock-dev/bardock/internal/core/failure"
)

// exitError is the outer shell around a failure. It adds nothing to the
// message and only carries the exit code.
type exitError struct {
	err  error
	code int
}

var _ cli.ExitCoder = (*exitError)(nil)

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func (e *exitError) ExitCode() int { return e.code }

// exit wraps err with the exit code of its kind. Help requests map to nil.
func exit(err error) error {
	if err == nil {
		return nil
	}
	code := failure.ExitCode(err)
	if code == failure.ExitOK {
		return nil
	}
	return &exitError{err: err, code: code}
}
