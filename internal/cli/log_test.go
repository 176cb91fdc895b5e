package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(10 * time.Millisecond)
	prog.done("test completed")

	if !bytes.Contains(buf.Bytes(), []byte("test completed")) {
		t.Errorf("progress.done() output = %q, should contain message", buf.String())
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	var h observability.CodecHooks = &logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnLoad(ctx, observability.LoadEvent{Bytes: 120, Entries: 2})
	h.OnSave(ctx, observability.SaveEvent{Err: errors.New("boom")})
	h.OnDelete(ctx, observability.DeleteEvent{Policy: "strict", Removed: 3})

	out := buf.String()
	for _, want := range []string{"loaded", "entries=2", "save failed", "boom", "policy=strict", "removed=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.InfoLevel)}
	h.OnLoad(context.Background(), observability.LoadEvent{})
	if buf.Len() != 0 {
		t.Errorf("codec events should log at debug only, got %q", buf.String())
	}
}

func TestTimingHooksBesideLogHooks(t *testing.T) {
	var buf bytes.Buffer
	var timing timingHooks
	h := observability.Multi{&logHooks{logger: newLogger(&buf, log.DebugLevel)}, &timing}
	ctx := context.Background()

	h.OnLoad(ctx, observability.LoadEvent{Duration: 3 * time.Millisecond})
	h.OnSave(ctx, observability.SaveEvent{Duration: 5 * time.Millisecond})

	if timing.load != 3*time.Millisecond || timing.save != 5*time.Millisecond {
		t.Errorf("timing = %v/%v, want 3ms/5ms", timing.load, timing.save)
	}
	if !strings.Contains(buf.String(), "saved") {
		t.Errorf("log hooks did not see the save:\n%s", buf.String())
	}
}
