package logger

import "github.com/rotsutc/go_hash_avalanche/internal/ports"

// NopLogger discards all log output. Used in tests and benchmarks.
type NopLogger struct{}

// NewNopLogger creates a logger that drops everything.
func NewNopLogger() ports.Logger {
	return NopLogger{}
}

func (NopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (NopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (NopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (NopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (NopLogger) Close() error                                   { return nil }
