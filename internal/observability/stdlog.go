package observability

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// LogLevel orders the severities understood by the standard logger.
type LogLevel int

const (
	// LevelDebug emits everything.
	LevelDebug LogLevel = iota
	// LevelInfo suppresses debug output.
	LevelInfo
	// LevelError emits errors only.
	LevelError
)

// ParseLevel maps a level name to a LogLevel, defaulting to info.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// StdLogger adapts the standard library logger to the Logger interface.
type StdLogger struct {
	logger *log.Logger
	level  LogLevel
}

// NewStdLogger wraps logger with severity filtering.
func NewStdLogger(logger *log.Logger, level LogLevel) *StdLogger {
	return &StdLogger{logger: logger, level: level}
}

// Debug implements Logger.
func (s *StdLogger) Debug(msg string, fields ...Field) {
	if s.level <= LevelDebug {
		s.emit("DEBUG", msg, fields)
	}
}

// Info implements Logger.
func (s *StdLogger) Info(msg string, fields ...Field) {
	if s.level <= LevelInfo {
		s.emit("INFO", msg, fields)
	}
}

// Error implements Logger.
func (s *StdLogger) Error(msg string, fields ...Field) {
	s.emit("ERROR", msg, fields)
}

func (s *StdLogger) emit(severity, msg string, fields []Field) {
	if len(fields) == 0 {
		s.logger.Printf("%s %s", severity, msg)
		return
	}
	pairs := make([]string, 0, len(fields))
	for _, f := range fields {
		pairs = append(pairs, fmt.Sprintf("%s=%v", f.Key, f.Value))
	}
	sort.Strings(pairs)
	s.logger.Printf("%s %s %s", severity, msg, strings.Join(pairs, " "))
}
