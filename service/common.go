package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"inkwell/app/repositories"
	"inkwell/config"

	"github.com/rs/zerolog"
)

var osExit = os.Exit

// storeExists reports whether the configured database is on disk.
func storeExists(cfg config.StorageConfig) (bool, error) {
	_, err := os.Stat(cfg.Path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// openStore opens the configured store, creating the directories it lives in.
func openStore(cfg config.StorageConfig, logger zerolog.Logger) (repositories.Store, error) {
	dir := cfg.Path
	if cfg.Driver == repositories.DriverSQLite {
		dir = filepath.Dir(cfg.Path)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	return repositories.Open(cfg.Driver, cfg.Path, repositories.WithLogger(logger))
}

// confirm asks a yes/no question on out and reads the answer from in.
// Anything but y or yes counts as no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
