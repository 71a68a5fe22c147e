// Package logging provides the leveled batch logger: human-readable console
// output (errors on stderr) plus an optional JSON file sink, both backed by
// zerolog and serialized so parallel jobs never interleave within a line.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/backmassage/rapidbatch/internal/config"
	"github.com/backmassage/rapidbatch/internal/term"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger wraps a zerolog.Logger with the printf-style helpers used across
// the pipeline. Child loggers created by With share the parent's sinks.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
	root bool
}

// NewLogger configures colors from cfg, builds the console writers and
// optionally opens cfg.LogFile for appending. runID is attached to every
// record written to the file sink. Call Close() when done.
func NewLogger(cfg *config.Config, runID string) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	l := &Logger{root: true}
	console := levelSplit{
		out: newConsole(os.Stdout),
		err: newConsole(os.Stderr),
	}
	writers := []io.Writer{zerolog.SyncWriter(console)}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		writers = append(writers, zerolog.SyncWriter(f))
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp()
	if runID != "" {
		ctx = ctx.Str("run", runID)
	}
	l.zl = ctx.Logger()
	return l, nil
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func newConsole(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       !term.Enabled(),
		TimeFormat:    timeFormat,
		FieldsExclude: []string{"run"},
	}
}

// levelSplit sends error-and-above records to err, everything else to out.
type levelSplit struct {
	out io.Writer
	err io.Writer
}

func (w levelSplit) Write(p []byte) (int, error) { return w.out.Write(p) }

func (w levelSplit) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel {
		return w.err.Write(p)
	}
	return w.out.Write(p)
}

// Close closes the log file if one was opened. Child loggers never close.
func (l *Logger) Close() error {
	if !l.root || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// With returns a child logger that adds key=value to every record.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger(), file: l.file}
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Success logs at INFO level with result=ok.
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Info().Str("result", "ok").Msg(fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level, on stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level; dropped unless the logger was built verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}
