// Package overlay turns a freshly generated binary crate manifest into one
// that builds a Python extension module.
package overlay

import (
	"github.com/bardock-dev/bardock/internal/core/config"
	"github.com/bardock-dev/bardock/internal/core/failure"
	"github.com/bardock-dev/bardock/internal/core/manifest"
)

const (
	CrateType = "cdylib"

	PyO3Name    = "pyo3"
	PyO3Version = "0.11.1"
	PyO3Feature = "extension-module"

	// log keeps a plain key/value line under [dependencies] next to the
	// pyo3 sub-table.
	LogName    = "log"
	LogVersion = "0.4.8"
)

// Target is the set of values written into a manifest. Lib keys and
// dependency entries are overwritten; everything else in the manifest is
// left alone.
type Target struct {
	LibPath      string
	CrateTypes   []string
	Dependencies map[string]any
}

// Default returns the pyo3 extension-module overlay.
func Default() Target {
	return Target{
		LibPath:    config.LibEntryPoint,
		CrateTypes: []string{CrateType},
		Dependencies: map[string]any{
			PyO3Name: map[string]any{
				"version":  PyO3Version,
				"features": []any{PyO3Feature},
			},
			LogName: LogVersion,
		},
	}
}

// Apply writes the default overlay for a package called name into m.
func Apply(m *manifest.Manifest, name string) error {
	return Default().Apply(m, name)
}

// Apply ensures m has a lib section pointing at the library entry point with
// the overlay crate types, and that every overlay dependency is present.
// Applying it more than once yields the same manifest.
func (o Target) Apply(m *manifest.Manifest, name string) error {
	lib, err := m.EnsureTable(manifest.Lib)
	if err != nil {
		return failure.Wrap(err, "failed to generate updated manifest")
	}
	lib["name"] = name
	lib["path"] = o.LibPath
	lib["crate-type"] = stringArray(o.CrateTypes)

	deps, err := m.EnsureTable(manifest.Dependencies)
	if err != nil {
		return failure.Wrap(err, "failed to generate updated manifest")
	}
	for dep, spec := range o.Dependencies {
		deps[dep] = clone(spec)
	}
	return nil
}

func stringArray(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// clone copies tables and arrays so manifests never share overlay values.
func clone(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = clone(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = clone(e)
		}
		return out
	}
	return v
}
