package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sadopc/drivetheory/internal/store"
)

const (
	EnvLogLevel = "DRIVETHEORY_LOG_LEVEL"
	LogFileName = "drivetheory.log"
)

// LoadEnv reads KEY=VALUE pairs from the given files (default ".env") into
// the process environment. Missing files are ignored; variables already set
// win over file values.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", f, err)
	}
	return nil
}

// ResolveDBPath returns flagValue when set, else the DRIVETHEORY_DB / XDG
// default.
func ResolveDBPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return store.DefaultDBPath()
}

// ParseLevel maps debug/info/warn/error (case-insensitive) to a slog level.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LevelFromEnv is ParseLevel over flagValue, falling back to
// DRIVETHEORY_LOG_LEVEL when the flag is empty.
func LevelFromEnv(flagValue string) (slog.Level, error) {
	if flagValue == "" {
		flagValue = os.Getenv(EnvLogLevel)
	}
	return ParseLevel(flagValue)
}

func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenLogFile appends to the log file next to the database.
func OpenLogFile(dbPath string) (*os.File, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
