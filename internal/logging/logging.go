// Package logging sets up the process-wide logger from the environment.
package logging

import (
	"errors"
	"io"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// LevelEnv selects the log level (debug, info, warn, error, fatal).
const LevelEnv = "BARDOCK_LOG"

// DotenvFile is loaded from the working directory before the logger is set
// up.
const DotenvFile = ".env"

// DefaultLevel applies when LevelEnv is unset or invalid.
const DefaultLevel = log.WarnLevel

// LoadDotenv loads files (DotenvFile when none are given) into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{DotenvFile}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Init builds a logger writing to w at the level named by LevelEnv and makes
// it the default logger.
func Init(getenv func(string) string, w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "bardock",
		Level:  DefaultLevel,
	})

	if raw := strings.TrimSpace(getenv(LevelEnv)); raw != "" {
		level, err := log.ParseLevel(strings.ToLower(raw))
		if err != nil {
			logger.Warn("ignoring invalid log level", "env", LevelEnv, "value", raw)
		} else {
			logger.SetLevel(level)
		}
	}

	log.SetDefault(logger)
	return logger
}
