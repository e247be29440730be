// Package logging builds the logrus loggers shared by the dashboard binaries.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/case-dashboard/internal/domain"
)

// New creates a logger from the logging configuration. Unknown levels fall
// back to info; an output file that cannot be opened falls back to stderr.
func New(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(cfg.Format) == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	if cfg.Filename != "" {
		file, err := os.OpenFile(filepath.Clean(cfg.Filename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			logger.SetOutput(file)
		} else {
			logger.SetOutput(os.Stderr)
			logger.WithError(err).WithField("filename", cfg.Filename).Warn("Failed to open log file, using stderr")
		}
	}

	return logger
}

// Discard returns a logger that drops every entry
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
