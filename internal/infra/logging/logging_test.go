//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithTgID(WithTraceID(context.Background(), "trace-1"), 42)
	With(ctx, &base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid json log line: %v", err)
	}
	if line["trace_id"] != "trace-1" {
		t.Errorf("expected trace_id, got %v", line["trace_id"])
	}
	if line["tg_id"] != float64(42) {
		t.Errorf("expected tg_id 42, got %v", line["tg_id"])
	}
}

func TestRedact(t *testing.T) {
	cases := []struct {
		in   string
		dev  bool
		want string
	}{
		{"123456:ABCDEFGHIJ", false, "1234...IJ"},
		{"short", false, "***"},
		{"123456:ABCDEFGHIJ", true, "123456:ABCDEFGHIJ"},
	}
	for _, c := range cases {
		if got := Redact(c.in, c.dev); got != c.want {
			t.Errorf("Redact(%q, %v) = %q, want %q", c.in, c.dev, got, c.want)
		}
	}
}

func TestTraceID(t *testing.T) {
	if TraceID(context.Background()) != "" {
		t.Error("expected empty trace id on bare context")
	}
	id := NewTraceID()
	if TraceID(WithTraceID(context.Background(), id)) != id {
		t.Error("trace id did not round trip through context")
	}
}
