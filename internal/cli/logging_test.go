package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, "text", false)

	logger.Debug("hidden")
	logger.Info("schema loaded", "classes", 3)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), `msg="schema loaded" classes=3`)
}

func TestNewLogger_VerboseEnablesDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	NewLogger(buf, "text", true).Debug("compiled operation", "class", "Employee")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "class=Employee")
}

func TestNewLogger_Console(t *testing.T) {
	buf := &bytes.Buffer{}
	NewLogger(buf, "console", true).Debug("compiled operation", "class", "Employee")

	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "compiled operation")
	assert.Contains(t, out, "class=Employee")
	assert.NotContains(t, out, `"msg"`)
}

func TestNewLogger_NilWriterDiscards(t *testing.T) {
	logger := NewLogger(nil, "console", true)
	assert.NotPanics(t, func() { logger.Info("nothing") })
}
