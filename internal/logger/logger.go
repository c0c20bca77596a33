package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/five82/roomperms/internal/config"
)

// Options selects where log output goes.
type Options struct {
	Level string

	// File is the rolling log file; empty disables it.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Console adds a human readable writer, stderr unless ConsoleOut is set.
	Console    bool
	ConsoleOut io.Writer
}

// FromConfig maps the [log] config section. console forces the console
// writer on, for commands that do not own the terminal.
func FromConfig(cfg config.Log, console bool) Options {
	return Options{
		Level:      cfg.Level,
		File:       cfg.FilePath(),
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Console:    cfg.Console || console,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init replaces the global zerolog logger. The returned closer releases
// the log file.
func Init(opts Options) (io.Closer, error) {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "loglevel %s is not supported", opts.Level)
	}
	if opts.Level == "" {
		level = zerolog.InfoLevel
	}

	stack := false
	if level == zerolog.TraceLevel {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
		stack = true
	}
	zerolog.SetGlobalLevel(level)

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return nil, errors.Wrap(err, "create log directory")
		}
		rolling := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxAge:     opts.MaxAgeDays,
			MaxBackups: opts.MaxBackups,
		}
		writers = append(writers, rolling)
		closer = rolling
	}
	if opts.Console {
		out := opts.ConsoleOut
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"})
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp()
	if stack {
		ctx = ctx.Stack()
	}
	log.Logger = ctx.Logger()
	return closer, nil
}
