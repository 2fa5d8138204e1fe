package core

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ConsoleTimeFormat = "15:04:05"
	FileTimeFormat    = "2006-01-02 15:04:05"

	DefaultLogFile        = "./logs/renderer.log"
	DefaultLogFileSizeMB  = 1
	DefaultLogFileBackups = 5

	DefaultLogLevel = log.InfoLevel
	DebugLogLevel   = log.DebugLevel
)

// LogOptions describes the console and rolling file sinks.
type LogOptions struct {
	Level  log.Level
	Prefix string
	// Console receives the human oriented output. Defaults to stderr.
	Console io.Writer
	// File is the path of the rolling log file. Empty disables the file sink.
	File string
	// FileSizeMB is the size a log file may reach before it is rolled.
	FileSizeMB int
	// FileBackups is the number of rolled files kept on disk.
	FileBackups int
}

// Logging owns the loggers and the file sink behind the Log* helpers.
type Logging struct {
	console *log.Logger
	file    *log.Logger
	sink    io.WriteCloser
}

func NewLogging(opts LogOptions) *Logging {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	l := &Logging{
		console: log.NewWithOptions(console, log.Options{
			ReportTimestamp: true,
			TimeFormat:      ConsoleTimeFormat,
			Prefix:          opts.Prefix,
			Level:           opts.Level,
		}),
	}
	if opts.File != "" {
		size := opts.FileSizeMB
		if size <= 0 {
			size = DefaultLogFileSizeMB
		}
		backups := opts.FileBackups
		if backups <= 0 {
			backups = DefaultLogFileBackups
		}
		l.sink = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    size,
			MaxBackups: backups,
		}
		l.file = log.NewWithOptions(l.sink, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      FileTimeFormat,
			Level:           opts.Level,
			// skip the Log* helper and the fan-out below
			CallerOffset: 2,
			Formatter:    log.TextFormatter,
		})
	}
	return l
}

func (l *Logging) logf(level log.Level, msg string, args ...interface{}) {
	l.console.Logf(level, msg, args...)
	if l.file != nil {
		l.file.Logf(level, msg, args...)
	}
}

// Close flushes and closes the file sink. Safe to call more than once.
func (l *Logging) Close() error {
	if l.sink == nil {
		return nil
	}
	err := l.sink.Close()
	l.sink = nil
	l.file = nil
	return err
}

var (
	loggingMu sync.RWMutex
	logging   *Logging
	fallback  = sync.OnceValue(func() *Logging {
		return NewLogging(LogOptions{Level: log.DebugLevel, Prefix: "Engine 🏎️ "})
	})
)

// SetupLogging installs the process wide logging state used by the Log* helpers.
// Any previously installed state is closed first.
func SetupLogging(opts LogOptions) error {
	if opts.File != "" {
		if err := EnsureDir(parentDir(opts.File)); err != nil {
			return err
		}
	}
	l := NewLogging(opts)

	loggingMu.Lock()
	prev := logging
	logging = l
	loggingMu.Unlock()

	if prev != nil {
		return prev.Close()
	}
	return nil
}

// ShutdownLogging closes the installed logging state and reverts to the stderr fallback.
func ShutdownLogging() error {
	loggingMu.Lock()
	prev := logging
	logging = nil
	loggingMu.Unlock()

	if prev == nil {
		return nil
	}
	return prev.Close()
}

func getLogger() *Logging {
	loggingMu.RLock()
	l := logging
	loggingMu.RUnlock()
	if l == nil {
		return fallback()
	}
	return l
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().logf(log.DebugLevel, msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().logf(log.InfoLevel, msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().logf(log.WarnLevel, msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().logf(log.ErrorLevel, msg, args...)
}

// LogFatal logs at fatal level and exits the process.
func LogFatal(msg string, args ...interface{}) {
	getLogger().logf(log.FatalLevel, msg, args...)
	_ = ShutdownLogging()
	os.Exit(1)
}

// Elapsed logs how long an operation took, in milliseconds.
func Elapsed(what string, start time.Time) {
	LogInfo("%s used %dms.", what, time.Since(start).Milliseconds())
}
