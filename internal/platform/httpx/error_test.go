package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/scrimteamx/Card-Ghar/internal/platform/requestctx"
)

func TestWriteErrorEnvelope(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = requestctx.WithTrace(ctx, requestctx.TraceInfo{TraceID: "trace-1"})

	rec := httptest.NewRecorder()
	WriteError(ctx, rec, NewError("out_of_stock", "the selected plan is sold out", http.StatusConflict))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["error"] != "out_of_stock" {
		t.Errorf("error = %v", payload["error"])
	}
	if payload["request_id"] != "req-1" || payload["trace_id"] != "trace-1" {
		t.Errorf("ids = %v/%v", payload["request_id"], payload["trace_id"])
	}
}

func TestNewErrorDefaultsStatus(t *testing.T) {
	if e := NewError("oops", "broken", 0); e.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", e.Status)
	}
}

func TestSanitizeStripsNewlines(t *testing.T) {
	if got := sanitize("a\r\nb", 80); got != "a  b" {
		t.Errorf("sanitize = %q", got)
	}
}
