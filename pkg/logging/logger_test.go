package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewDefaultLogger()
	logger.SetOutput(buf)

	tests := []struct {
		name     string
		level    LogLevel
		logFunc  func(string, ...any)
		message  string
		expected bool // Whether the message should be logged
	}{
		{
			name:     "Debug logs at DEBUG level",
			level:    DEBUG,
			logFunc:  logger.Debug,
			message:  "debug message",
			expected: true,
		},
		{
			name:     "Debug doesn't log at INFO level",
			level:    INFO,
			logFunc:  logger.Debug,
			message:  "debug message",
			expected: false,
		},
		{
			name:     "Warn logs at INFO level",
			level:    INFO,
			logFunc:  logger.Warn,
			message:  "warn message",
			expected: true,
		},
		{
			name:     "Info doesn't log at WARN level",
			level:    WARN,
			logFunc:  logger.Info,
			message:  "info message",
			expected: false,
		},
		{
			name:     "Error logs at WARN level",
			level:    WARN,
			logFunc:  logger.Error,
			message:  "error message",
			expected: true,
		},
		{
			name:     "Warn doesn't log at ERROR level",
			level:    ERROR,
			logFunc:  logger.Warn,
			message:  "warn message",
			expected: false,
		},
		{
			name:     "Error logs at ERROR level",
			level:    ERROR,
			logFunc:  logger.Error,
			message:  "error message",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			logger.SetLevel(tt.level)
			tt.logFunc(tt.message)

			if tt.expected {
				assert.Contains(t, buf.String(), tt.message, "Expected message to be logged")
			} else {
				assert.NotContains(t, buf.String(), tt.message, "Expected message not to be logged")
			}
		})
	}
}

func TestLogFormatting(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewDefaultLogger()
	logger.SetOutput(buf)

	logger.With("invocation_id", "abc").Info("revoked rule", "group_id", "sg-123", "port", 22)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "revoked rule", entry["msg"])
	assert.Equal(t, "abc", entry["invocation_id"])
	assert.Equal(t, "sg-123", entry["group_id"])
	assert.EqualValues(t, 22, entry["port"])
	assert.Contains(t, entry, "time")
}

func TestObservedLogger(t *testing.T) {
	logger, logs := NewObservedLogger(DEBUG)
	logger.Debug("normalized", "permissions", 2)

	entries := logs.FilterMessage("normalized").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 2, entries[0].ContextMap()["permissions"])
}

func TestStringToLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, StringToLogLevel("debug"))
	assert.Equal(t, WARN, StringToLogLevel(" WARNING "))
	assert.Equal(t, ERROR, StringToLogLevel("error"))
	assert.Equal(t, INFO, StringToLogLevel("bogus"))
}
