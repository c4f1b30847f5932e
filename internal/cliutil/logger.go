package cliutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Log formats accepted by NewLogger.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// LogOptions configures NewLogger.
type LogOptions struct {
	Level  string
	File   string
	Format string
	// Console receives every entry in addition to File. Defaults to stderr.
	Console io.Writer
}

// NewLogger builds the process logger. Unknown levels fall back to info. When
// a file is configured entries are written to both the file and the console;
// the returned closer releases the file and is never nil.
func NewLogger(opts LogOptions) (*log.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	logger := log.New()
	logger.SetLevel(ParseLevel(opts.Level))

	var (
		out    io.Writer = console
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(console, f)
		closer = f
	}
	logger.SetOutput(out)

	tty := isTerminal(console) && opts.File == ""
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case FormatJSON:
		logger.SetFormatter(&log.JSONFormatter{})
	case FormatText:
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, ForceColors: tty, DisableColors: !tty})
	case "", FormatAuto:
		if isTerminal(console) {
			logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, ForceColors: tty, DisableColors: !tty})
		} else {
			logger.SetFormatter(&log.JSONFormatter{})
		}
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return logger, closer, nil
}

// ParseLevel maps a level name to a logrus level, defaulting to info.
func ParseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
