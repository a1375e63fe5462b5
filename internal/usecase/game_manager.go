package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/presenter"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session entity.Session) error
	GetByID(ctx context.Context, id string) (entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// Outcome is the session after an operation together with what the operation did.
type Outcome struct {
	Session entity.Session
	View    presenter.View
	Effect  tictactoe.Effect
}

type GameManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo

	locks *keyedMutex
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		sessionRepo: sessionRepo,
		locks:       newKeyedMutex(),
	}
}

// StartSession creates a session with an empty board.
func (that *GameManager) StartSession(ctx context.Context) (*Outcome, error) {
	session := entity.NewSession(uuid.NewString())

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session started", "sessionID", session.ID)

	return newOutcome(session, tictactoe.Effect{Changed: true}), nil
}

func (that *GameManager) GetSession(ctx context.Context, id string) (*Outcome, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return newOutcome(session, tictactoe.Effect{}), nil
}

// MakeMove plays the next mark on cell. An illegal move leaves the session as it was.
func (that *GameManager) MakeMove(ctx context.Context, id string, cell int) (*Outcome, error) {
	return that.apply(ctx, id, tictactoe.Action{Kind: tictactoe.ActionMove, Cell: cell})
}

// JumpTo shows the board as it was after step moves.
func (that *GameManager) JumpTo(ctx context.Context, id string, step int) (*Outcome, error) {
	return that.apply(ctx, id, tictactoe.Action{Kind: tictactoe.ActionJump, Step: step})
}

func (that *GameManager) ToggleSort(ctx context.Context, id string) (*Outcome, error) {
	return that.apply(ctx, id, tictactoe.Action{Kind: tictactoe.ActionToggleSort})
}

// EndSession drops the session state.
func (that *GameManager) EndSession(ctx context.Context, id string) error {
	unlock := that.locks.Lock(id)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session ended", "sessionID", id)

	return nil
}

func (that *GameManager) apply(ctx context.Context, id string, action tictactoe.Action) (*Outcome, error) {
	log := that.logger.With("method", "apply", "sessionID", id, "action", action.Kind)

	unlock := that.locks.Lock(id)
	defer unlock()

	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	next, effect := tictactoe.Reduce(session, action)
	if !effect.Changed {
		log.Debug("action ignored", "reason", effect.Ignored)

		return newOutcome(session, effect), nil
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	log.Debug("action applied", "step", next.StepNumber, "historyLength", len(next.History))

	return newOutcome(next, effect), nil
}

func newOutcome(session entity.Session, effect tictactoe.Effect) *Outcome {
	return &Outcome{
		Session: session,
		View:    presenter.Build(session),
		Effect:  effect,
	}
}
