package core

import (
	"log"
	"os"
)

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// DefaultLogger implements Logger with the standard library logger
type DefaultLogger struct {
	logger *log.Logger
}

// Printf formats and writes a log line
func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	dl.logger.Printf(format, args...)
}

// NewDefaultLogger creates a logger writing to stderr with timestamps
func NewDefaultLogger() Logger {
	return &DefaultLogger{logger: log.New(os.Stderr, "", log.LstdFlags)}
}
