package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"invoiceguard/internal/config"
)

// New builds the process logger from cfg. "json" selects structured output;
// anything else gets the text formatter.
func New(cfg *config.LogConfig) *logrus.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *config.LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Discard returns a logger that drops everything. Used in tests and tools.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
