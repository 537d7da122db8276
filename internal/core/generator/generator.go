// Package generator creates a Python extension crate: it lets cargo lay out
// a binary crate, then turns it into a cdylib with a pyo3 entry point.
package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/bardock-dev/bardock/internal/core/cargo"
	"github.com/bardock-dev/bardock/internal/core/config"
	"github.com/bardock-dev/bardock/internal/core/failure"
	"github.com/bardock-dev/bardock/internal/core/manifest"
	"github.com/bardock-dev/bardock/internal/core/overlay"
	"github.com/bardock-dev/bardock/internal/core/template"
)

// Options is what the user asked for on the command line.
type Options struct {
	// Path is the directory to create, relative to the working directory
	// or absolute.
	Path string
	// Name overrides the library name. Empty means the last segment of Path.
	Name string
}

// Result describes a generated project.
type Result struct {
	Dir     string
	Name    string
	Written []string
}

// PackageName returns opts.Name when set, otherwise the final segment of
// opts.Path as written. A path ending in a separator has no final segment.
func PackageName(opts Options) (string, error) {
	if opts.Name != "" {
		if err := validateName(opts.Name); err != nil {
			return "", failure.New(failure.KindInvalidPathForName, err, "invalid package name %q", opts.Name)
		}
		return opts.Name, nil
	}

	base := lastSegment(opts.Path)
	if base == "" || base == "." || base == ".." {
		return "", failure.New(failure.KindInvalidPathForName, nil,
			"unable to derive a package name from path %q; pass --name", opts.Path)
	}
	if err := validateName(base); err != nil {
		return "", failure.New(failure.KindInvalidPathForName, err,
			"unable to derive a package name from path %q; pass --name", opts.Path)
	}
	return base, nil
}

// lastSegment returns what follows the final separator of path, which is
// empty when path ends in one.
func lastSegment(path string) string {
	if i := strings.LastIndexAny(path, "/"+string(filepath.Separator)); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Generate runs every step in order and stops at the first failure. Nothing
// is rolled back: whatever cargo created stays on disk.
func Generate(ctx context.Context, opts Options, cfg *config.Config) (*Result, error) {
	dir := cfg.Resolve(opts.Path)
	name, err := PackageName(opts)
	if err != nil {
		return nil, err
	}

	log.Info("Initialising new cargo project", "path", dir, "name", name)
	if _, err := cargo.New(ctx, cfg.Cargo(), dir); err != nil {
		return nil, failure.Wrap(err, "unable to create a cargo project at %s", dir)
	}

	manifestPath := filepath.Join(dir, config.ManifestName)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	for _, key := range m.Unrecognized() {
		log.Debug("preserving unrecognized manifest section", "key", key)
	}

	if err := overlay.Apply(m, name); err != nil {
		return nil, err
	}
	if err := m.Write(manifestPath); err != nil {
		return nil, failure.Wrap(err, "unable to update manifest %s", manifestPath)
	}
	log.Info("Updated manifest", "path", manifestPath)

	written, err := template.Emit(dir, cfg.GOOS())
	if err != nil {
		return nil, err
	}
	for _, path := range written {
		log.Info("Wrote template", "path", path)
	}

	if err := removeBinEntryPoint(dir); err != nil {
		return nil, err
	}

	log.Info("New cargo project generated", "path", dir)
	return &Result{
		Dir:     dir,
		Name:    name,
		Written: append([]string{manifestPath}, written...),
	}, nil
}

// removeBinEntryPoint deletes the main.rs left by `cargo new`. cargo always
// writes it, so a missing file is an error.
func removeBinEntryPoint(dir string) error {
	path := filepath.Join(dir, filepath.FromSlash(config.BinEntryPoint))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return failure.New(failure.KindCleanup, err, "main.rs not found at path %s", path)
		}
		return failure.New(failure.KindCleanup, err, "unable to remove %s", path)
	}
	log.Info("Removed binary entry point", "path", path)
	return nil
}

func validateName(name string) error {
	switch {
	case !utf8.ValidString(name):
		return errInvalidName("is not valid UTF-8")
	case strings.ContainsAny(name, `/\`):
		return errInvalidName("contains a path separator")
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return errInvalidName("contains a non-printable character")
		}
	}
	return nil
}

type errInvalidName string

func (e errInvalidName) Error() string { return "name " + string(e) }
