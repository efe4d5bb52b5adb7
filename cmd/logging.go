package cmd

import (
	"io"
	"os"
	"time"

	"github.com/jfmyers9/albumlog/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func parseLevel(logLevel string) zerolog.Level {
	switch logLevel {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// setupLogger returns the run logger and a closer for its output. With
// log.file set, output goes to a size-rotated file; otherwise to stderr
// in console format.
func setupLogger(cfg config.LogConfig) (zerolog.Logger, io.Closer) {
	if cfg.File != "" {
		w := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		logger := zerolog.New(w).
			Level(parseLevel(cfg.Level)).
			With().
			Timestamp().
			Logger()
		return logger, w
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
	return logger, nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
