package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/veteranandreich/Async-web-server/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the logger. Logs are written to the file if set, appending to it, or to
// stderr otherwise. Every record carries the pid, so records of different server
// instances writing into the same file can be told apart. The returned closer
// releases the file, if any.
func New(cfg config.Log) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("log level: %w", err)
	}

	var (
		out    io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		closer io.Closer = nopCloser{}
	)

	if len(cfg.File) > 0 {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("log file: %w", err)
		}

		out, closer = file, file
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()

	return logger, closer, nil
}
