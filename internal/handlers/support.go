package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/platform/httpx"
	"github.com/scrimteamx/Card-Ghar/internal/services"
)

// SupportHandlers serves the kim.ai support chat.
type SupportHandlers struct {
	support *services.SupportService
}

// NewSupportHandlers constructs support chat handlers.
func NewSupportHandlers(support *services.SupportService) *SupportHandlers {
	return &SupportHandlers{support: support}
}

// Routes registers support chat endpoints under the provided router.
func (h *SupportHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/support/chat", h.transcript)
	r.Post("/support/chat", h.send)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type chatMessagePayload struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

func (h *SupportHandlers) transcript(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	messages, err := h.support.Transcript(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("support_error", "failed to load chat transcript", http.StatusInternalServerError))
		return
	}
	payload := make([]chatMessagePayload, 0, len(messages))
	for _, message := range messages {
		payload = append(payload, toChatMessagePayload(message))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"messages": payload})
}

func (h *SupportHandlers) send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req sendMessageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	reply, err := h.support.Send(ctx, req.Text)
	if err != nil {
		if errors.Is(err, services.ErrChatEmptyMessage) || errors.Is(err, services.ErrChatMessageTooLong) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("support_error", "failed to send message", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusOK, toChatMessagePayload(reply))
}

func toChatMessagePayload(message domain.ChatMessage) chatMessagePayload {
	return chatMessagePayload{
		ID:        message.ID,
		Role:      message.Role,
		Text:      message.Text,
		CreatedAt: message.CreatedAt.Format(time.RFC3339),
	}
}
