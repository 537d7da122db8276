// Package failure classifies the errors bardock can hit and carries the
// context chain that ends up in the final diagnostic.
package failure

import (
	"errors"
	"fmt"
)

// Kind identifies which stage of a run failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindUsage
	KindSubprocessLaunch
	KindSubprocessFailed
	KindManifestIo
	KindManifestParse
	KindManifestShape
	KindManifestSerialize
	KindTemplateIo
	KindCleanup
	KindInvalidPathForName
)

var kindNames = map[Kind]string{
	KindUnknown:            "Unknown",
	KindUsage:              "Usage",
	KindSubprocessLaunch:   "SubprocessLaunch",
	KindSubprocessFailed:   "SubprocessFailed",
	KindManifestIo:         "ManifestIo",
	KindManifestParse:      "ManifestParse",
	KindManifestShape:      "ManifestShape",
	KindManifestSerialize:  "ManifestSerialize",
	KindTemplateIo:         "TemplateIo",
	KindCleanup:            "Cleanup",
	KindInvalidPathForName: "InvalidPathForName",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Exit codes handed back to the shell.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitFailure = 101
)

// ErrHelp is returned by the root command after it prints help for a bare or
// unknown invocation. It exits with ExitOK.
var ErrHelp = errors.New("help requested")

// Error is one layer of context around a cause. Kind is left as KindUnknown
// by Wrap so that an outer message does not hide the classification made
// further down.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New classifies err as kind and attaches a message to it. err may be nil
// when the failure has no underlying cause.
func New(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Wrap attaches a context message to err without changing its kind.
// It returns nil when err is nil.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the first classification found walking from the outermost
// layer inwards, or KindUnknown.
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return KindUnknown
		}
		if e.Kind != KindUnknown {
			return e.Kind
		}
		err = e.Err
	}
	return KindUnknown
}

// Is reports whether err was classified as kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrHelp):
		return ExitOK
	case KindOf(err) == KindUsage:
		return ExitUsage
	default:
		return ExitFailure
	}
}

// Chain lists the messages of err from the outermost layer to the root
// cause. Layers without a message of their own are skipped, and the walk ends
// at the first error that is not an *Error.
func Chain(err error) []string {
	var chain []string
	for err != nil {
		e, ok := err.(*Error)
		if !ok {
			// A foreign error's message already spells out what it wraps.
			return append(chain, err.Error())
		}
		if e.Msg != "" {
			chain = append(chain, e.Msg)
		}
		err = e.Err
	}
	return chain
}
