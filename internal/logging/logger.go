// Package logging provides structured logging for the CLI.
package logging

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog with CLI-specific output handling.
type Logger struct {
	zlog   zerolog.Logger
	output io.Writer // current console writer
	file   *lumberjack.Logger
	runID  string
}

// Options configures a Logger.
type Options struct {
	// Console is where human-readable log lines go (default: stderr, stdout is for results)
	Console io.Writer

	// LogFile is an optional path for rotated JSON logs (empty = no file logging)
	LogFile string
}

// NewLogger creates a new logger. Every logger carries a run_id so the lines of one
// invocation can be picked out of a shared log file.
func NewLogger(opts Options) *Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	l := &Logger{
		output: console,
		runID:  uuid.NewString(),
	}

	if opts.LogFile != "" {
		l.file = &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
	}

	l.rebuild()
	return l
}

// NewDefaultCLILogger creates a default CLI logger writing to stderr.
func NewDefaultCLILogger() *Logger {
	return NewLogger(Options{})
}

func (l *Logger) rebuild() {
	var w io.Writer = zerolog.ConsoleWriter{
		Out:        l.output,
		TimeFormat: "15:04:05",
	}
	if l.file != nil {
		w = zerolog.MultiLevelWriter(w, l.file)
	}

	l.zlog = zerolog.New(w).
		With().
		Timestamp().
		Str("run_id", l.runID).
		Logger()

	// Core packages log through the global logger; keep it on the same sinks.
	log.Logger = l.zlog
}

// RunID returns the identifier attached to every line of this logger.
func (l *Logger) RunID() string {
	return l.runID
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// With creates a child logger with additional context.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// SetOutput changes the console writer for the logger.
// Used to route log lines above an active progress bar.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
	l.rebuild()
}

// Output returns the current console writer.
func (l *Logger) Output() io.Writer {
	return l.output
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// Nop returns a logger that discards everything. Used by tests and library callers
// that do not want output.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), output: io.Discard}
}

func init() {
	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	})
}
