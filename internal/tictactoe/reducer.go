package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

type ActionKind string

const (
	ActionMove       ActionKind = "move"
	ActionJump       ActionKind = "jump"
	ActionToggleSort ActionKind = "toggle_sort"
)

// Action is one user input applied to a session.
type Action struct {
	Kind ActionKind
	Cell int
	Step int
}

type HighlightKind string

const (
	HighlightMove HighlightKind = "move"
	HighlightLine HighlightKind = "line"
)

// Highlight asks the presentation layer to mark cells for a while.
// How long is up to the presentation layer.
type Highlight struct {
	Kind  HighlightKind `json:"kind"`
	Cells []int         `json:"cells"`
}

// Effect describes what an action did.
// Ignored holds the reason when the action was a no-op.
type Effect struct {
	Changed    bool        `json:"changed"`
	Ignored    error       `json:"-"`
	Highlights []Highlight `json:"highlights,omitempty"`
}

func ignored(reason error) Effect {
	return Effect{Ignored: reason}
}

// Reduce applies the action to the session and returns the next session.
// The input session is never modified.
func Reduce(session entity.Session, action Action) (entity.Session, Effect) {
	switch action.Kind {
	case ActionMove:
		return ApplyMove(session, action.Cell)
	case ActionJump:
		return SelectStep(session, action.Step)
	case ActionToggleSort:
		return ToggleMoveOrder(session)
	default:
		return session, ignored(apperror.ErrUnknownAction)
	}
}

// ApplyMove places the next player's mark on cell. Moves on a won board,
// on an occupied cell or outside the board are ignored.
// Playing after a jump back discards every snapshot after the current step.
func ApplyMove(session entity.Session, cell int) (entity.Session, Effect) {
	if cell < 0 || cell >= entity.BoardSize {
		return session, ignored(apperror.ErrInvalidCell)
	}

	current := session.Current()

	if Evaluate(current.Board).HasWinner() {
		return session, ignored(apperror.ErrGameFinished)
	}

	if current.Board.IsOccupied(cell) {
		return session, ignored(apperror.ErrCellOccupied)
	}

	board := current.Board
	board[cell] = session.NextCell()

	history := make([]entity.Snapshot, session.StepNumber+1, session.StepNumber+2)
	copy(history, session.History[:session.StepNumber+1])
	history = append(history, entity.Snapshot{
		Board:  board,
		Coords: entity.CoordsOf(cell),
	})

	next := session
	next.History = history
	next.StepNumber = len(history) - 1

	return next, changed(next, nil)
}

// SelectStep moves the step pointer without touching the history.
func SelectStep(session entity.Session, step int) (entity.Session, Effect) {
	if !session.HasStep(step) {
		return session, ignored(apperror.ErrStepOutOfRange)
	}

	next := session
	next.StepNumber = step

	var highlights []Highlight
	if index := next.Current().Coords.Index(); step != 0 && index >= 0 {
		highlights = append(highlights, Highlight{Kind: HighlightMove, Cells: []int{index}})
	}

	return next, changed(next, highlights)
}

// ToggleMoveOrder flips the order the move list is shown in.
func ToggleMoveOrder(session entity.Session) (entity.Session, Effect) {
	next := session
	next.ReverseSort = !session.ReverseSort

	return next, Effect{Changed: true}
}

func changed(session entity.Session, highlights []Highlight) Effect {
	if result := Evaluate(session.Current().Board); result.HasWinner() {
		highlights = append(highlights, Highlight{Kind: HighlightLine, Cells: result.Line})
	}

	return Effect{Changed: true, Highlights: highlights}
}
