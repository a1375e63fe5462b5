package presenter

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

// Move is one entry of the move list.
type Move struct {
	Step    int    `json:"step"`
	Label   string `json:"label"`
	Column  int    `json:"column"`
	Row     int    `json:"row"`
	Current bool   `json:"current,omitempty"`
}

// View is everything a client needs to draw a session.
type View struct {
	ID          string    `json:"id"`
	Board       [9]string `json:"board"`
	Step        int       `json:"step"`
	Status      string    `json:"status"`
	Winner      string    `json:"winner,omitempty"`
	WinningLine []int     `json:"winning_line,omitempty"`
	NextPlayer  string    `json:"next_player,omitempty"`
	StatusText  string    `json:"status_text"`
	ReverseSort bool      `json:"reverse_sort"`
	Moves       []Move    `json:"moves"`
}

// Build renders the session at its current step.
func Build(session entity.Session) View {
	current := session.Current()

	view := View{
		ID:          session.ID,
		Step:        session.StepNumber,
		ReverseSort: session.ReverseSort,
		Moves:       moves(session),
	}

	for index, cell := range current.Board {
		view.Board[index] = string(cell)
	}

	switch result := tictactoe.Evaluate(current.Board); {
	case result.HasWinner():
		view.Status = entity.StatusFinished
		view.Winner = string(result.Winner)
		view.WinningLine = result.Line
		view.StatusText = "Winner: " + view.Winner
	case tictactoe.IsFull(current.Board):
		view.Status = entity.StatusFinished
		view.Winner = entity.PlayerTie
		view.StatusText = "Draw"
	default:
		view.Status = entity.StatusOngoing
		view.NextPlayer = string(session.NextCell())
		view.StatusText = "Next player: " + view.NextPlayer
	}

	return view
}

func moves(session entity.Session) []Move {
	list := make([]Move, 0, len(session.History))

	for step, snapshot := range session.History {
		list = append(list, Move{
			Step:    step,
			Label:   label(step),
			Column:  snapshot.Coords.Column,
			Row:     snapshot.Coords.Row,
			Current: step == session.StepNumber,
		})
	}

	if session.ReverseSort {
		slices.Reverse(list)
	}

	return list
}

func label(step int) string {
	if step == 0 {
		return "Go to game start"
	}

	return fmt.Sprintf("Go to move #%d", step)
}

// String formats the move the way the move list shows it.
func (that Move) String() string {
	return fmt.Sprintf("%s (%d, %d)", that.Label, that.Column, that.Row)
}
