// Package logging configures the process logger: JSON entries appended to
// a persistent log file for postmortem review, mirrored to stderr.
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New opens (or creates) the log file at path in append mode and returns a
// logger writing to it and to stderr, plus a closer for the file handle.
func New(path string) (zerolog.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(zerolog.MultiLevelWriter(f, console)).
		With().
		Timestamp().
		Logger()

	return logger, f.Close, nil
}
