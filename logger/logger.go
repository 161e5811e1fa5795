package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"inkwell/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the process logger from cfg and installs it as the global
// zerolog logger. Output goes to stderr.
func New(cfg config.LogConfig, env string) zerolog.Logger {
	return install(newLogger(os.Stderr, cfg, env))
}

func newLogger(w io.Writer, cfg config.LogConfig, env string) zerolog.Logger {
	format := cfg.Format
	if format == "" {
		format = "json"
		if env == config.EnvDevelopment {
			format = "console"
		}
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "inkwell").Logger()
}

func install(l zerolog.Logger) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = l
	return l
}
