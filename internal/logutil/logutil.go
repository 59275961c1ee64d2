// Package logutil builds the application logger. The terminal is owned
// by the viewer, so logs always go to a file.
package logutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to the given file, creating parent
// directories as needed. The returned closer flushes and closes the
// file. An empty path yields a disabled logger.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("parse log level: %w", err)
	}

	if file == "" {
		return zerolog.Nop(), closer, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("create log dir: %w", err)
	}
	osFile, err := os.Create(file)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}
	closer = func() { _ = osFile.Close() }

	logger := zerolog.New(osFile).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return logger, closer, nil
}
