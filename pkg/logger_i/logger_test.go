package logger_i

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/akolanti/ChatbotAPI/internal/config"
)

func TestLogger_ComponentAndSource(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, false)

	log := NewLogger("docstore")
	log.Error("write failed", "path", "/tmp/x.json")

	out := buf.String()
	if !strings.Contains(out, "component=docstore") {
		t.Errorf("missing component attr: %s", out)
	}
	if !strings.Contains(out, "source=logger_test.go:") {
		t.Errorf("missing source attr: %s", out)
	}
}

func TestLogger_ProdHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, true)
	defer InitWithWriter(&bytes.Buffer{}, false)

	log := NewLogger("prod")
	log.Debug("hidden")
	log.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record leaked in prod: %s", out)
	}
	if !strings.Contains(out, `"msg":"visible"`) {
		t.Errorf("expected json info record, got %s", out)
	}
}

func TestLogger_WithTrace(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, false)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace-123")
	NewLogger("middleware").WithTrace(ctx).Info("request")

	if !strings.Contains(buf.String(), "traceId=trace-123") {
		t.Errorf("trace id not attached: %s", buf.String())
	}
}
