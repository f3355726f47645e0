package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// FileLogger implements Logger with file output. Derived loggers created
// via WithFields share the underlying file and its mutex.
type FileLogger struct {
	core   *fileCore
	fields Fields
}

// fileCore is the shared write side of one log file
type fileCore struct {
	config FileLoggerConfig

	mu     sync.Mutex
	file   *os.File
	writer io.Writer
	size   int64
}

// NewFileLogger creates a new file logger, creating parent directories as needed
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &FileLogger{
		core: &fileCore{
			config: config,
			file:   file,
			writer: file,
			size:   info.Size(),
		},
	}, nil
}

// Debug logs a debug message
func (l *FileLogger) Debug(ctx context.Context, msg string, fields Fields) {
	if l.core.config.Level <= DebugLevel {
		l.core.log(DebugLevel, msg, nil, mergeFields(l.fields, fields))
	}
}

// Info logs an info message
func (l *FileLogger) Info(ctx context.Context, msg string, fields Fields) {
	if l.core.config.Level <= InfoLevel {
		l.core.log(InfoLevel, msg, nil, mergeFields(l.fields, fields))
	}
}

// Warn logs a warning message
func (l *FileLogger) Warn(ctx context.Context, msg string, fields Fields) {
	if l.core.config.Level <= WarnLevel {
		l.core.log(WarnLevel, msg, nil, mergeFields(l.fields, fields))
	}
}

// Error logs an error message
func (l *FileLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	if l.core.config.Level <= ErrorLevel {
		l.core.log(ErrorLevel, msg, err, mergeFields(l.fields, fields))
	}
}

// WithFields returns a logger carrying additional base fields.
// The returned logger writes to the same file.
func (l *FileLogger) WithFields(fields Fields) Logger {
	return &FileLogger{
		core:   l.core,
		fields: mergeFields(l.fields, fields),
	}
}

// Close flushes and closes the underlying file
func (l *FileLogger) Close() error {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	if l.core.file != nil {
		err := l.core.file.Close()
		l.core.file = nil
		return err
	}
	return nil
}

// log writes a single entry, rotating first if the file is over size
func (c *fileCore) log(level Level, msg string, err error, fields Fields) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return
	}

	if c.config.MaxSize > 0 && c.size >= c.config.MaxSize {
		c.rotate()
	}

	var line []byte
	var fmtErr error
	if c.config.Format == FormatJSON {
		line, fmtErr = formatJSON(level, msg, err, fields)
	} else {
		line, fmtErr = formatText(level, msg, err, fields)
	}
	if fmtErr != nil {
		return
	}

	n, _ := c.writer.Write(line)
	c.size += int64(n)
}

// rotate shifts backups up by one and starts a fresh file
func (c *fileCore) rotate() {
	if c.file == nil {
		return
	}

	c.file.Close()

	for i := c.config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", c.config.Path, i)
		newPath := fmt.Sprintf("%s.%d", c.config.Path, i+1)
		os.Rename(oldPath, newPath)
	}
	os.Rename(c.config.Path, c.config.Path+".1")

	if c.config.MaxBackups > 0 {
		os.Remove(fmt.Sprintf("%s.%d", c.config.Path, c.config.MaxBackups+1))
	}

	file, err := os.OpenFile(c.config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		c.file = nil
		return
	}

	c.file = file
	c.writer = file
	c.size = 0
}

// formatJSON formats a log entry as one JSON object per line
func formatJSON(level Level, msg string, err error, fields Fields) ([]byte, error) {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     levelString(level),
		"message":   msg,
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	for k, v := range fields {
		entry[k] = v
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil, jsonErr
	}
	return append(data, '\n'), nil
}

// formatText formats a log entry as plain text
func formatText(level Level, msg string, err error, fields Fields) ([]byte, error) {
	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	line := fmt.Sprintf("%s [%s] %s", timestamp, levelString(level), msg)

	if err != nil {
		line += fmt.Sprintf(" error=%q", err.Error())
	}
	for k, v := range fields {
		line += fmt.Sprintf(" %s=%v", k, v)
	}

	return []byte(line + "\n"), nil
}

// levelString returns the string representation of a log level
func levelString(level Level) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return DebugLevel
	case "info", "INFO":
		return InfoLevel
	case "warn", "WARN", "warning", "WARNING":
		return WarnLevel
	case "error", "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// LevelString returns level as string (exported version)
func LevelString(level Level) string {
	return levelString(level)
}
