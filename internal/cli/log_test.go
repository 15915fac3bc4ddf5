package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("draw") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("skip") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("skip") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("exhausted") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestPlateLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := plateLogger(newLogger(&buf, log.InfoLevel), "P001", "pcr")

	logger.Info("claim")

	out := buf.String()
	for _, want := range []string{"plate=P001", "key=pcr", "claim"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))

	prog.done(6)

	out := buf.String()
	for _, want := range []string{"claimed", "wells=6", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress.done() output %q missing %q", out, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}

	ctx := withLogger(context.Background(), custom)
	got := loggerFromContext(ctx)
	if got != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	got.Info("test")
	if buf.Len() == 0 {
		t.Error("attached logger should write to its buffer")
	}
}
