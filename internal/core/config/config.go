// Package config holds the process context captured once at startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ManifestName is the manifest file the external generator writes.
const ManifestName = "Cargo.toml"

// Entry points inside a generated project, relative to its root.
const (
	LibEntryPoint = "src/lib.rs"
	BinEntryPoint = "src/main.rs"
)

// CargoEnv overrides the executable used as the external project generator.
const CargoEnv = "BARDOCK_CARGO"

const defaultCargo = "cargo"

// Config is read-only after construction and passed explicitly to
// everything that needs it.
type Config struct {
	cwd   string
	cargo string
	goos  string
}

// New builds a Config from explicit values. Empty cargo and goos fall back to
// "cargo" and the running OS.
func New(cwd, cargo, goos string) *Config {
	if cargo == "" {
		cargo = defaultCargo
	}
	if goos == "" {
		goos = runtime.GOOS
	}
	return &Config{cwd: cwd, cargo: cargo, goos: goos}
}

// Default captures the current working directory of the process and reads
// the generator override from getenv.
func Default(getenv func(string) string) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("couldn't get the current directory of the process: %w", err)
	}
	return New(cwd, getenv(CargoEnv), runtime.GOOS), nil
}

// Cwd returns the working directory captured at startup.
func (c *Config) Cwd() string { return c.cwd }

// Cargo returns the external generator executable.
func (c *Config) Cargo() string { return c.cargo }

// GOOS returns the operating system artifacts are generated for.
func (c *Config) GOOS() string { return c.goos }

// Resolve returns path joined onto the captured working directory. Absolute
// paths are returned cleaned.
func (c *Config) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.cwd, path)
}
