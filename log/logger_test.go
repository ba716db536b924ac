package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeveledLogger_DebugToggle(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLeveledLogger(&buf)
	logger.Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")
	logger.SetDebug(true)
	logger.Debugf("skipping event %s", "http.request.stop")
	assert.Contains(t, buf.String(), "skipping event http.request.stop")
	logger.SetDebug(false)
	logger.Debug("hidden again")
	assert.NotContains(t, buf.String(), "hidden again")
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "unknown", Level(42).String())
}

func TestLeveledLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLeveledLogger(&buf)
	logger.Info("attached request-metrics")
	logger.Errorf("could not write metric: %v", assert.AnError)
	out := buf.String()
	assert.Contains(t, out, "attached request-metrics")
	assert.Contains(t, out, "could not write metric")
}
