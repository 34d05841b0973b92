package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scrimteamx/Card-Ghar/internal/platform/httpx"
	"github.com/scrimteamx/Card-Ghar/internal/services"
)

// GameHandlers serves the daily Play & Win minigame.
type GameHandlers struct {
	game *services.GameService
}

// NewGameHandlers constructs minigame handlers.
func NewGameHandlers(game *services.GameService) *GameHandlers {
	return &GameHandlers{game: game}
}

// Routes registers minigame endpoints under the provided router.
func (h *GameHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/game", h.start)
	r.Get("/game", h.current)
	r.Post("/game/reveal", h.reveal)
}

type revealRequest struct {
	Cell int `json:"cell"`
}

type gameStatePayload struct {
	RoundID      string `json:"roundId"`
	Status       string `json:"status"`
	Revealed     []int  `json:"revealed"`
	Bombs        []int  `json:"bombs,omitempty"`
	SafeRevealed int    `json:"safeRevealed"`
	SafeTotal    int    `json:"safeTotal"`
	RewardPoints int    `json:"rewardPoints,omitempty"`
}

func (h *GameHandlers) start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.game.Start(ctx)
	if err != nil {
		writeGameError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, gameStatePayload(state))
}

func (h *GameHandlers) current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.game.Current(ctx)
	if err != nil {
		writeGameError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, gameStatePayload(state))
}

func (h *GameHandlers) reveal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req revealRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	state, err := h.game.Reveal(ctx, req.Cell)
	if err != nil {
		writeGameError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, gameStatePayload(state))
}

func writeGameError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrGameAlreadyPlayedToday):
		httpx.WriteError(ctx, w, httpx.NewError("already_played", "today's attempt has been used", http.StatusConflict))
	case errors.Is(err, services.ErrGameRoundActive):
		httpx.WriteError(ctx, w, httpx.NewError("round_active", "a round is already in progress", http.StatusConflict))
	case errors.Is(err, services.ErrGameNotActive):
		httpx.WriteError(ctx, w, httpx.NewError("no_active_round", "no round is in progress", http.StatusNotFound))
	case errors.Is(err, services.ErrGameInvalidCell):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("game_error", "game operation failed", http.StatusInternalServerError))
	}
}
