package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/scrimteamx/Card-Ghar/internal/platform/requestctx"
)

// Error is the JSON error envelope every handler returns on failure.
// Request and trace identifiers are stamped from the context at write
// time so responses correlate with log lines.
type Error struct {
	Code      string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// NewError constructs an envelope. A zero status falls back to 500 so a
// missing mapping never produces a success code.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    sanitize(code, 80),
		Message: sanitize(message, 512),
		Status:  status,
	}
}

// WriteError writes the envelope as JSON to the response writer.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	if err.Status == 0 {
		err.Status = http.StatusInternalServerError
	}
	err.RequestID = sanitize(middleware.GetReqID(ctx), 80)
	err.TraceID = sanitize(requestctx.TraceID(ctx), 64)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)
	_ = json.NewEncoder(w).Encode(err)
}

// sanitize keeps header-derived values single-line and bounded before
// they are echoed back to the client.
func sanitize(value string, limit int) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
