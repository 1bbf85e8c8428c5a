// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mapexe/storefront-backend/internal/config"
)

// Setup applies the configured format and level. Unknown levels fall back
// to info.
func Setup(cfg config.LogConfig) {
	configure(logrus.StandardLogger(), cfg, os.Stdout)
}

func configure(l *logrus.Logger, cfg config.LogConfig, out io.Writer) {
	l.SetOutput(out)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
}
