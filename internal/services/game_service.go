package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/repositories"
)

var (
	// ErrGameAlreadyPlayedToday limits the minigame to one round per
	// calendar day.
	ErrGameAlreadyPlayedToday = errors.New("game: already played today")
	// ErrGameNotActive is returned when no round is in progress.
	ErrGameNotActive = errors.New("game: no active round")
	// ErrGameRoundActive is returned when starting over an unfinished round.
	ErrGameRoundActive = errors.New("game: round already active")
	// ErrGameInvalidCell signals an out-of-range or already revealed cell.
	ErrGameInvalidCell = errors.New("game: invalid cell")
)

const (
	gameBoardCells = 16
	gameBombCount  = 2
	gameSafeCells  = gameBoardCells - gameBombCount
)

// Round statuses exposed to the serving layer.
const (
	GameStatusActive = "active"
	GameStatusWon    = "won"
	GameStatusLost   = "lost"
)

const lastPlayedLayout = "2006-01-02"

// GameService runs the daily bomb-dodging minigame. Revealing every safe
// cell on the 4x4 board wins a points reward; hitting a bomb ends the
// round. Either outcome uses up the day's attempt.
type GameService struct {
	games   repositories.GameRepository
	loyalty LoyaltyLedger
	idGen   func() string
	intN    func(n int) int
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)

	mu    sync.Mutex
	round *gameRound
}

type gameRound struct {
	id       string
	bombs    [gameBoardCells]bool
	revealed [gameBoardCells]bool
	safe     int
	status   string
}

// GameServiceDeps carries the collaborators for NewGameService.
type GameServiceDeps struct {
	Games   repositories.GameRepository
	Loyalty LoyaltyLedger
	IDGen   func() string
	// IntN overrides the randomness source for bomb placement.
	IntN   func(n int) int
	Now    func() time.Time
	Logger func(context.Context, string, map[string]any)
}

// NewGameService constructs the service.
func NewGameService(deps GameServiceDeps) (*GameService, error) {
	if deps.Games == nil {
		return nil, errors.New("game service: game repository is required")
	}
	if deps.Loyalty == nil {
		return nil, errors.New("game service: loyalty ledger is required")
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	intN := deps.IntN
	if intN == nil {
		intN = rand.IntN
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &GameService{
		games:   deps.Games,
		loyalty: deps.Loyalty,
		idGen:   idGen,
		intN:    intN,
		now:     func() time.Time { return now().UTC() },
		logger:  logger,
	}, nil
}

// GameState is the round snapshot for the serving layer. Bomb positions
// are only disclosed once the round is over.
type GameState struct {
	RoundID      string
	Status       string
	Revealed     []int
	Bombs        []int
	SafeRevealed int
	SafeTotal    int
	RewardPoints int
}

// Start begins a new round if today's attempt is still available.
func (s *GameService) Start(ctx context.Context) (GameState, error) {
	today := s.now().Format(lastPlayedLayout)
	lastPlayed, err := s.games.LastPlayed(ctx)
	if err != nil {
		return GameState{}, err
	}
	if lastPlayed == today {
		return GameState{}, ErrGameAlreadyPlayedToday
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round != nil && s.round.status == GameStatusActive {
		return GameState{}, ErrGameRoundActive
	}
	round := &gameRound{id: s.idGen(), status: GameStatusActive}
	for placed := 0; placed < gameBombCount; {
		cell := s.intN(gameBoardCells)
		if round.bombs[cell] {
			continue
		}
		round.bombs[cell] = true
		placed++
	}
	s.round = round
	s.logger(ctx, "game_started", map[string]any{"roundId": round.id})
	return s.stateLocked(), nil
}

// Current returns the active or just-finished round.
func (s *GameService) Current(ctx context.Context) (GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		return GameState{}, ErrGameNotActive
	}
	return s.stateLocked(), nil
}

// Reveal uncovers one cell. A bomb loses the round; uncovering the last
// safe cell wins it and awards the daily points. Both outcomes consume
// today's attempt.
func (s *GameService) Reveal(ctx context.Context, cell int) (GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil || s.round.status != GameStatusActive {
		return GameState{}, ErrGameNotActive
	}
	if cell < 0 || cell >= gameBoardCells {
		return GameState{}, fmt.Errorf("%w: %d", ErrGameInvalidCell, cell)
	}
	round := s.round
	if round.revealed[cell] {
		return GameState{}, fmt.Errorf("%w: %d already revealed", ErrGameInvalidCell, cell)
	}
	round.revealed[cell] = true

	if round.bombs[cell] {
		round.status = GameStatusLost
		if err := s.games.SetLastPlayed(ctx, s.now().Format(lastPlayedLayout)); err != nil {
			return GameState{}, err
		}
		s.logger(ctx, "game_lost", map[string]any{"roundId": round.id, "cell": cell})
		return s.stateLocked(), nil
	}

	round.safe++
	if round.safe < gameSafeCells {
		return s.stateLocked(), nil
	}

	round.status = GameStatusWon
	if err := s.games.SetLastPlayed(ctx, s.now().Format(lastPlayedLayout)); err != nil {
		return GameState{}, err
	}
	if _, err := s.loyalty.Award(ctx, domain.GameWinPoints); err != nil {
		return GameState{}, err
	}
	s.logger(ctx, "game_won", map[string]any{"roundId": round.id, "points": domain.GameWinPoints})
	return s.stateLocked(), nil
}

func (s *GameService) stateLocked() GameState {
	round := s.round
	state := GameState{
		RoundID:      round.id,
		Status:       round.status,
		SafeRevealed: round.safe,
		SafeTotal:    gameSafeCells,
	}
	for cell := 0; cell < gameBoardCells; cell++ {
		if round.revealed[cell] {
			state.Revealed = append(state.Revealed, cell)
		}
	}
	if round.status == GameStatusWon {
		state.RewardPoints = domain.GameWinPoints
	}
	if round.status != GameStatusActive {
		for cell := 0; cell < gameBoardCells; cell++ {
			if round.bombs[cell] {
				state.Bombs = append(state.Bombs, cell)
			}
		}
	}
	return state
}
