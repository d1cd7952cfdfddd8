// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := &loggerImpl{
		level:  LevelInfo,
		out:    &buf,
		errOut: &buf,
		fields: []Field{},
	}

	logger.Debug("debug message")
	if buf.Len() > 0 {
		t.Errorf("expected no output for debug at Info level, got: %q", buf.String())
	}

	buf.Reset()
	logger.Info("info message")
	if !strings.Contains(buf.String(), "INFO") {
		t.Errorf("expected INFO in output, got: %q", buf.String())
	}

	buf.Reset()
	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "WARN") {
		t.Errorf("expected WARN in output, got: %q", buf.String())
	}

	buf.Reset()
	logger.Error("error message")
	if !strings.Contains(buf.String(), "ERROR") {
		t.Errorf("expected ERROR in output, got: %q", buf.String())
	}
}

func TestLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger := &loggerImpl{
		level:  LevelDebug,
		out:    &buf,
		errOut: &buf,
		fields: []Field{},
	}

	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "DEBUG") {
		t.Errorf("expected DEBUG in output when verbose, got: %q", buf.String())
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := &loggerImpl{
		level:  LevelInfo,
		out:    &buf,
		errOut: &buf,
		fields: []Field{},
	}

	logger = logger.WithFields(NewField("env", "prod"), NewField("version", "1.0.0")).(*loggerImpl)
	logger.Info("deploying")

	output := buf.String()
	if !strings.Contains(output, "env=prod") {
		t.Errorf("expected 'env=prod' in output, got: %q", output)
	}
	if !strings.Contains(output, "version=1.0.0") {
		t.Errorf("expected 'version=1.0.0' in output, got: %q", output)
	}
}

func TestLogger_FieldOrderBaseThenCall(t *testing.T) {
	var buf bytes.Buffer
	logger := (&loggerImpl{level: LevelInfo, out: &buf, errOut: &buf}).
		WithFields(NewField("opcode", "PUT")).(*loggerImpl)

	logger.Info("posted", NewField("tag", "abc-123"))

	output := buf.String()
	opIdx := strings.Index(output, "opcode=PUT")
	tagIdx := strings.Index(output, "tag=abc-123")
	if opIdx == -1 || tagIdx == -1 || opIdx > tagIdx {
		t.Errorf("expected base fields before call fields, got: %q", output)
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(false)
	if logger == nil {
		t.Fatalf("expected non-nil logger")
	}

	verboseLogger := NewLogger(true)
	if verboseLogger == nil {
		t.Fatalf("expected non-nil logger")
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestObserver_OnPostLogsOpcodeAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := &loggerImpl{level: LevelDebug, out: &buf, errOut: &buf}
	obs := NewObserver(logger)

	obs.OnPost(rbroker.Put)

	output := buf.String()
	if !strings.Contains(output, "DEBUG") || !strings.Contains(output, "opcode=PUT") {
		t.Errorf("expected a DEBUG line naming opcode=PUT, got: %q", output)
	}
}

func TestObserver_OnCompleteSuccessLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := &loggerImpl{level: LevelDebug, out: &buf, errOut: &buf}
	obs := NewObserver(logger)

	obs.OnComplete(rbroker.Get, rbroker.Success)

	output := buf.String()
	if !strings.Contains(output, "DEBUG") {
		t.Errorf("expected success completion logged at DEBUG, got: %q", output)
	}
	if !strings.Contains(output, "status=SUCCESS") {
		t.Errorf("expected status=SUCCESS, got: %q", output)
	}
}

func TestObserver_OnCompleteFailureLogsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := &loggerImpl{level: LevelInfo, out: &buf, errOut: &buf}
	obs := NewObserver(logger)

	obs.OnComplete(rbroker.NSDelete, rbroker.ErrNSBusy)

	output := buf.String()
	if !strings.Contains(output, "WARN") {
		t.Errorf("expected a failing completion logged at WARN even without --verbose, got: %q", output)
	}
	if !strings.Contains(output, "status=ERR_NSBUSY") {
		t.Errorf("expected status=ERR_NSBUSY, got: %q", output)
	}
}
