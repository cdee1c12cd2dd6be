package metrics

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Level represents a logging level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent // Disables all logging
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSilent:
		return "SILENT"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level string.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "SILENT", "OFF", "NONE":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// Fields represents structured log fields.
type Fields map[string]interface{}

// Format specifies the log output format.
type Format int

const (
	FormatText Format = iota // logfmt key=value lines
	FormatJSON               // JSON format for log aggregation
)

// Logger provides structured, levelled logging on top of go-kit/log.
// Loggers derived with With or Named share the output and the level.
type Logger struct {
	out      io.Writer
	format   Format
	timeFunc func() time.Time

	lvl    *levelVar
	base   kitlog.Logger
	fields Fields
	name   string
}

type levelVar struct {
	mu    sync.RWMutex
	level Level
}

func (v *levelVar) get() Level {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.level
}

func (v *levelVar) set(l Level) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.level = l
}

// LoggerOption configures a logger.
type LoggerOption func(*Logger)

// WithOutput sets the output writer.
func WithOutput(w io.Writer) LoggerOption {
	return func(l *Logger) {
		l.out = w
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(l *Logger) {
		l.lvl.level = level
	}
}

// WithFormat sets the output format.
func WithFormat(format Format) LoggerOption {
	return func(l *Logger) {
		l.format = format
	}
}

// WithFields sets default fields for all log entries.
func WithFields(fields Fields) LoggerOption {
	return func(l *Logger) {
		l.fields = fields
	}
}

// WithName sets the logger name.
func WithName(name string) LoggerOption {
	return func(l *Logger) {
		l.name = name
	}
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) LoggerOption {
	return func(l *Logger) {
		l.timeFunc = now
	}
}

// NewLogger creates a new logger with the given options.
func NewLogger(opts ...LoggerOption) *Logger {
	l := &Logger{
		out:      os.Stdout,
		format:   FormatText,
		fields:   make(Fields),
		timeFunc: time.Now,
		lvl:      &levelVar{level: LevelInfo},
	}
	for _, opt := range opts {
		opt(l)
	}

	w := kitlog.NewSyncWriter(l.out)
	if l.format == FormatJSON {
		l.base = kitlog.NewJSONLogger(w)
	} else {
		l.base = kitlog.NewLogfmtLogger(w)
	}
	l.base = kitlog.With(l.base, "ts", kitlog.TimestampFormat(l.timeFunc, time.RFC3339Nano))
	return l
}

func (l *Logger) derive() *Logger {
	return &Logger{
		out:      l.out,
		format:   l.format,
		timeFunc: l.timeFunc,
		lvl:      l.lvl,
		base:     l.base,
		fields:   l.fields,
		name:     l.name,
	}
}

// With returns a new logger with additional fields.
func (l *Logger) With(fields Fields) *Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	d := l.derive()
	d.fields = merged
	return d
}

// Named returns a new logger with the given name appended to the current one.
func (l *Logger) Named(name string) *Logger {
	d := l.derive()
	if l.name != "" {
		d.name = l.name + "." + name
	} else {
		d.name = name
	}
	return d
}

// SetLevel changes the logging level of l and every logger derived from it.
func (l *Logger) SetLevel(level Level) {
	l.lvl.set(level)
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	return l.lvl.get()
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...Fields) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...Fields) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...Fields) {
	l.log(LevelError, msg, fields...)
}

func (l *Logger) log(lv Level, msg string, extra ...Fields) {
	if lv == LevelSilent || lv < l.lvl.get() {
		return
	}

	all := make(Fields, len(l.fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for _, f := range extra {
		for k, v := range f {
			all[k] = v
		}
	}

	kv := make([]interface{}, 0, 4+2*len(all))
	if l.name != "" {
		kv = append(kv, "logger", l.name)
	}
	kv = append(kv, "msg", msg)

	// Sort keys for consistent output
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = append(kv, k, all[k])
	}

	_ = leveled(l.base, lv).Log(kv...)
}

func leveled(base kitlog.Logger, lv Level) kitlog.Logger {
	switch lv {
	case LevelDebug:
		return level.Debug(base)
	case LevelWarn:
		return level.Warn(base)
	case LevelError:
		return level.Error(base)
	default:
		return level.Info(base)
	}
}

// --- Global Logger ---

var (
	globalLogger   *Logger
	globalLoggerMu sync.RWMutex
)

func init() {
	globalLogger = NewLogger(WithOutput(os.Stderr))
}

// SetLogger sets the global logger.
func SetLogger(l *Logger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = l
}

// GetLogger returns the global logger.
func GetLogger() *Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// --- Convenience Functions ---

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return NewLogger(WithOutput(io.Discard), WithLevel(LevelSilent))
}

// TestLogger returns a logger suitable for testing (debug level, text format).
func TestLogger(w io.Writer) *Logger {
	return NewLogger(
		WithOutput(w),
		WithLevel(LevelDebug),
		WithFormat(FormatText),
	)
}

// ProductionLogger returns a logger suitable for production (info level, JSON format).
func ProductionLogger(w io.Writer) *Logger {
	return NewLogger(
		WithOutput(w),
		WithLevel(LevelInfo),
		WithFormat(FormatJSON),
	)
}
