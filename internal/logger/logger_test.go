package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON, Level: slog.LevelInfo})

	log.Info("book created", "book_id", "book-1")

	assert.Contains(t, buf.String(), `"msg":"book created"`)
	assert.Contains(t, buf.String(), `"book_id":"book-1"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestNew_FormatFromEnvironment(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{environment: "production", wantJSON: true},
		{environment: "development", wantJSON: false},
		{environment: "", wantJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Writer: &buf, Environment: tt.environment}).Info("hello")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.Contains(t, buf.String(), "hello")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestPrettyHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, Level: slog.LevelWarn})

	log.Info("quiet")
	log.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "WRN")
	assert.Contains(t, buf.String(), "loud")
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty})

	log.With("request_id", "abc").WithGroup("http").Info("served", "status", 201)

	out := buf.String()
	assert.Contains(t, out, "request_id=abc")
	assert.Contains(t, out, "http.status=201")
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON})

	log.WithError(errors.New("boom")).Error("failed")
	assert.Contains(t, buf.String(), `"error":"boom"`)

	assert.Same(t, log, log.WithError(nil))
}

func TestFromContext(t *testing.T) {
	fallback := Discard()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := fallback.WithField("request_id", "r-1")
	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, fallback))
}
