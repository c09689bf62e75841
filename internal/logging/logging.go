// Package logging configures the zerolog loggers used across speclint.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options control logger construction.
type Options struct {
	// Verbose lowers the console level to debug.
	Verbose bool
	// Console receives human readable output. Defaults to stderr.
	Console io.Writer
	// File, when set, receives JSON lines at debug level. Parent directories
	// are created and the file is appended to.
	File string
	// NoColor disables ANSI colours on the console.
	NoColor bool
}

// Logger is a configured logger and the file it may hold open.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New builds a Logger from opts.
func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	noColor := opts.NoColor
	if f, ok := console.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
		noColor = true
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	writers := []io.Writer{
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
				Out:        console,
				NoColor:    noColor,
				TimeFormat: time.Kitchen,
			}},
			Level: level,
		},
	}

	l := &Logger{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		writers = append(writers, f)
	}

	l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
	return l, nil
}

// SetGlobal makes l the logger behind github.com/rs/zerolog/log.
func (l *Logger) SetGlobal() {
	log.Logger = l.Logger
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
