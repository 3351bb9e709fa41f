package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFieldsAndStack(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: "debug", Format: FormatJSON, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithRole(ctx, "vendor")
	log.Error(ctx, "boom", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{`"request_id":"req-123"`, `"role":"vendor"`, `"stack"`, `"service":"test"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in entry=%s", want, out)
		}
	}
}

func TestLoggerWarnStackToggle(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := New(Options{ServiceName: "test", Format: FormatJSON, Output: buf, WarnStack: true})
		log.Warn(context.Background(), "warny")
		if !strings.Contains(buf.String(), `"stack"`) {
			t.Fatalf("expected stack when warn stack enabled; entry=%s", buf.String())
		}
	})
	t.Run("disabled", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := New(Options{ServiceName: "test", Format: FormatJSON, Output: buf})
		log.Warn(context.Background(), "warny")
		if strings.Contains(buf.String(), `"stack"`) {
			t.Fatalf("did not expect stack; entry=%s", buf.String())
		}
	})
}

func TestLoggerLevelFiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Format: FormatJSON, Output: buf})
	log.Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered at default info level; got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.NoLevel {
		t.Fatalf("expected NoLevel for empty input, got %v", lvl)
	}
	if lvl := ParseLevel("nonsense"); lvl != zerolog.NoLevel {
		t.Fatalf("expected NoLevel for invalid input, got %v", lvl)
	}
	if lvl := ParseLevel(" WARN "); lvl != zerolog.WarnLevel {
		t.Fatalf("expected warn, got %v", lvl)
	}
}

func TestLoggerLevelNames(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: "warn", Format: FormatJSON, Output: buf})
	log.Info(context.Background(), "quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn; got %s", buf.String())
	}
	log.Warn(context.Background(), "loud")
	if !strings.Contains(buf.String(), `"loud"`) {
		t.Fatalf("expected warn entry; got %s", buf.String())
	}

	buf.Reset()
	log = New(Options{ServiceName: "test", Level: "verbose", Format: FormatJSON, Output: buf})
	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected unknown level to fall back to info; got %s", buf.String())
	}
}
