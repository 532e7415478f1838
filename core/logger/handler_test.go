package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"log/slog"
)

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	if len(tokens) < 6 {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	expected := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONFields(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	log := slog.New(handler).With("component", "service.render")
	LogEvent(ctx, log, slog.LevelError, "render.failed",
		slog.String("status", "fail"),
		slog.String("carrier", "postnl"),
		slog.String("err", "boom"),
		slog.String("err_code", "TEMPLATE_ERROR"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["component"] != "service.render" {
		t.Fatalf("component = %v", decoded["component"])
	}
	if decoded["event"] != "render.failed" {
		t.Fatalf("event = %v", decoded["event"])
	}
	if decoded["carrier"] != "postnl" {
		t.Fatalf("carrier = %v", decoded["carrier"])
	}
	if decoded["err_code"] != "TEMPLATE_ERROR" {
		t.Fatalf("err_code = %v", decoded["err_code"])
	}
	if decoded["user_id"] != float64(33) {
		t.Fatalf("user_id = %v", decoded["user_id"])
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "abc\x00def\x1b[0m"
	out := SanitizeLimit(in, 5)
	if strings.ContainsAny(out, "\x00\x1b") {
		t.Fatalf("control characters survived: %q", out)
	}
	if len([]rune(out)) > 5 {
		t.Fatalf("limit not applied: %q", out)
	}
}

func TestCompactRID(t *testing.T) {
	if got := CompactRID("100:200:300"); got != "2s.5k.8c" {
		t.Fatalf("compact = %s", got)
	}
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("passthrough = %s", got)
	}
}
