// Package logging builds the process logger: human or JSON output on stderr
// plus an optional plain-text log file that the HTTP layer serves back.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"imgclassd/internal/common/fsutil"
)

// FileTimeFormat is the timestamp layout of log file lines.
const FileTimeFormat = "2006-01-02 15:04:05,000"

// Options configures New.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string
	// Format is "console" (default) or "json" for the stderr stream.
	Format string
	// File, when set, receives every event as "time [LEVEL] message k=v" lines.
	File string
	// Console overrides the stderr destination (tests).
	Console io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger for opts and a closer for the log file, if any.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	lvl := zerolog.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("log level: %w", err)
		}
		lvl = l
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	var console io.Writer
	switch strings.ToLower(opts.Format) {
	case "", "console":
		console = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "json":
		console = out
	default:
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("unsupported log format %q", opts.Format)
	}

	writers := []io.Writer{console}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := fsutil.OpenAppend(opts.File)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, fileWriter(f))
		closer = f
	}

	var w io.Writer = writers[0]
	if len(writers) > 1 {
		w = zerolog.MultiLevelWriter(writers...)
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return logger, closer, nil
}

// fileWriter renders events the way the log page displays them.
func fileWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: FileTimeFormat,
		FormatLevel: func(i any) string {
			if i == nil {
				return "[-]"
			}
			return "[" + strings.ToUpper(fmt.Sprint(i)) + "]"
		},
	}
}
