package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerWithWriter_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"msg=\"page loaded\"", "page=2"}},
		{"json", []string{`"msg":"page loaded"`, `"page":2`}},
		{"JSON", []string{`"msg":"page loaded"`}},
		{"", []string{"msg=\"page loaded\""}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			NewLoggerWithWriter(slog.LevelInfo, tt.format, &buf).Info("page loaded", "page", 2)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("expected %s in output, got: %s", w, buf.String())
				}
			}
		})
	}
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelWarn, "text", &buf)

	logger.Info("fetch started")
	logger.Warn("fetch superseded")

	output := buf.String()
	if strings.Contains(output, "fetch started") {
		t.Errorf("INFO message should be filtered at WARN level, got: %s", output)
	}
	if !strings.Contains(output, "fetch superseded") {
		t.Errorf("WARN message should appear at WARN level, got: %s", output)
	}
}

func TestNewLoggerWithWriter_ChildLogger(t *testing.T) {
	var buf bytes.Buffer
	child := NewLoggerWithWriter(slog.LevelDebug, "text", &buf).With("component", "vanlist")

	child.Debug("refresh", "seq", 3)

	output := buf.String()
	if !strings.Contains(output, "component=vanlist") || !strings.Contains(output, "seq=3") {
		t.Errorf("expected component and seq in output, got: %s", output)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should not be enabled at ERROR")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRequestAttrs(t *testing.T) {
	AddRequestAttrs(context.Background(), "session", "ignored")
	if got := RequestAttrs(context.Background()); got != nil {
		t.Errorf("unprepared context: got %v, want nil", got)
	}

	ctx := WithRequestAttrs(context.Background())
	AddRequestAttrs(ctx, "session", "sess_1")
	AddRequestAttrs(ctx, "page", 3)
	got := RequestAttrs(ctx)
	if len(got) != 4 || got[1] != "sess_1" || got[3] != 3 {
		t.Errorf("RequestAttrs = %v", got)
	}
}
