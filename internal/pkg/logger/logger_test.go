package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func bufferLogger(buf *bytes.Buffer) *Logger {
	return &Logger{logger: zerolog.New(buf)}
}

func TestFromContext(t *testing.T) {
	var scoped, fallback bytes.Buffer
	base := bufferLogger(&fallback)
	reqLog := bufferLogger(&scoped).With("request_id", "req-123")

	t.Run("returns the stored logger", func(t *testing.T) {
		ctx := reqLog.IntoContext(context.Background())
		FromContext(ctx, base).Info("handled")

		if !strings.Contains(scoped.String(), `"request_id":"req-123"`) {
			t.Errorf("expected request id in scoped output, got %q", scoped.String())
		}
		if fallback.Len() != 0 {
			t.Errorf("expected nothing written to fallback, got %q", fallback.String())
		}
	})

	t.Run("falls back without a stored logger", func(t *testing.T) {
		if got := FromContext(context.Background(), base); got != base {
			t.Error("expected fallback logger")
		}
	})

	t.Run("ignores a nil stored logger", func(t *testing.T) {
		var nilLog *Logger
		ctx := context.WithValue(context.Background(), ctxKey{}, nilLog)
		if got := FromContext(ctx, base); got != base {
			t.Error("expected fallback logger for nil entry")
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
