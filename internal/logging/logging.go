// Package logging configures the router's structured logger: logrus to
// stderr by default, with an optional rotating file sink.
package logging

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	// Level is one of logrus's level names: "debug", "info", "warn",
	// "error".
	Level string

	// FilePath, when non-empty, writes logs to a rotating file via
	// lumberjack instead of stderr.
	FilePath string
}

// New builds a *logrus.Logger per Options. An empty Level defaults to info.
func New(opts Options) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(orDefault(opts.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if opts.FilePath != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	} else {
		log.SetOutput(os.Stderr)
	}

	return log, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
