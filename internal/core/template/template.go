// Package template writes the fixed source files of a Python extension
// crate.
package template

import (
	"os"
	"path/filepath"

	"github.com/bardock-dev/bardock/internal/core/config"
	"github.com/bardock-dev/bardock/internal/core/failure"
)

// LinkerConfigPath is the cargo config file written on macOS, relative to
// the project root.
const LinkerConfigPath = ".cargo/config"

// LibSource is the library entry point. The module name is a placeholder
// for users to rename; it is not derived from the package name.
const LibSource = `use pyo3::prelude::*;
use pyo3::wrap_pyfunction;

/// Formats the sum of two numbers as string.
#[pyfunction]
fn sum_as_string(a: usize, b: usize) -> PyResult<String> {
    Ok((a + b).to_string())
}

/// A Python module implemented in Rust.
#[pymodule]
fn string_sum(py: Python, m: &PyModule) -> PyResult<()> {
    m.add_wrapped(wrap_pyfunction!(sum_as_string))?;

    Ok(())
}`

// LinkerConfig lets the macOS linker leave Python symbols unresolved until
// the interpreter loads the library.
const LinkerConfig = `[target.x86_64-apple-darwin]
rustflags = [
  "-C", "link-arg=-undefined",
  "-C", "link-arg=dynamic_lookup",
]`

// NeedsLinkerConfig reports whether goos requires LinkerConfig.
func NeedsLinkerConfig(goos string) bool {
	return goos == "darwin"
}

// Emit writes the library entry point under root and, when goos needs it,
// the linker config. It returns the paths written.
func Emit(root, goos string) ([]string, error) {
	lib, err := WriteLib(root)
	if err != nil {
		return nil, err
	}
	written := []string{lib}
	if NeedsLinkerConfig(goos) {
		conf, err := WriteLinkerConfig(root)
		if err != nil {
			return written, err
		}
		written = append(written, conf)
	}
	return written, nil
}

// WriteLib creates or truncates src/lib.rs under root.
func WriteLib(root string) (string, error) {
	path := filepath.Join(root, filepath.FromSlash(config.LibEntryPoint))
	if err := writeFile(path, LibSource); err != nil {
		return "", failure.New(failure.KindTemplateIo, err, "unable to write %s", config.LibEntryPoint)
	}
	return path, nil
}

// WriteLinkerConfig creates .cargo/config under root.
func WriteLinkerConfig(root string) (string, error) {
	path := filepath.Join(root, filepath.FromSlash(LinkerConfigPath))
	if err := writeFile(path, LinkerConfig); err != nil {
		return "", failure.New(failure.KindTemplateIo, err, "unable to create %s file for macOS", LinkerConfigPath)
	}
	return path, nil
}

func writeFile(path, contents string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(contents), 0644)
}
