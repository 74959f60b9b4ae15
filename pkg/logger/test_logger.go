package logger

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

// NewTestLogger returns a logger that writes through t.Log.
func NewTestLogger(t *testing.T) *Logger {
	return &Logger{Logger: zaptest.NewLogger(t)}
}
