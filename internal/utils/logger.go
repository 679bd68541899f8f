package utils

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel represents an enumeration of log levels
type LogLevel int

const (
	Critical LogLevel = 50
	Fatal    LogLevel = Critical
	Error    LogLevel = 40
	Warning  LogLevel = 30
	Info     LogLevel = 20
	Debug    LogLevel = 10
	NotSet   LogLevel = 0
)

// ParseLogLevel maps a config string to a LogLevel, defaulting to Info
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warning
	case "error":
		return Error
	case "critical", "fatal":
		return Critical
	default:
		return Info
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch {
	case l >= Critical:
		return logrus.FatalLevel
	case l >= Error:
		return logrus.ErrorLevel
	case l >= Warning:
		return logrus.WarnLevel
	case l >= Info:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// utcFormatter stamps every line in UTC
type utcFormatter struct {
	logrus.Formatter
}

func (f utcFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Time = entry.Time.UTC()
	return f.Formatter.Format(entry)
}

// Logger provides structured logging with context
type Logger struct {
	prefix        string
	logger        *logrus.Logger
	logLevelMutex sync.Mutex
}

// NewLogger creates a new logger with a given prefix
func NewLogger(prefix string, logLevel ...LogLevel) *Logger {
	logLevelValue := Info
	if len(logLevel) > 0 {
		logLevelValue = logLevel[0]
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(utcFormatter{&logrus.TextFormatter{
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02 15:04:05 UTC",
		DisableColors:    true,
		QuoteEmptyFields: true,
	}})
	logger.SetLevel(logLevelValue.logrusLevel())

	return &Logger{
		prefix: prefix,
		logger: logger,
	}
}

// SetLogLevel sets the logging level
func (l *Logger) SetLogLevel(logLevel LogLevel) {
	l.logLevelMutex.Lock()
	defer l.logLevelMutex.Unlock()
	l.logger.SetLevel(logLevel.logrusLevel())
}

// SetOutput redirects log lines, mostly for tests
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// With returns a logger for a sub-component sharing the same sink and level
func (l *Logger) With(prefix string) *Logger {
	return &Logger{
		prefix: l.prefix + "." + prefix,
		logger: l.logger,
	}
}

// Info logs an informational message
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.entry(keyvals...).Info(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.entry(keyvals...).Error(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.entry(keyvals...).Warn(msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.entry(keyvals...).Debug(msg)
}

// entry converts key-value pairs into logrus fields. A trailing key without a value is dropped.
func (l *Logger) entry(keyvals ...interface{}) *logrus.Entry {
	fields := logrus.Fields{"component": l.prefix}
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fields[key] = keyvals[i+1]
	}
	return l.logger.WithFields(fields)
}
