package tictactoe

import "github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"

// WinCombos are checked in order: rows, columns, then both diagonals.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Result is the outcome of evaluating a board.
type Result struct {
	Winner entity.Cell `json:"winner"`
	Line   []int       `json:"line,omitempty"`
}

func (that Result) HasWinner() bool {
	return that.Winner != entity.CellEmpty
}

// Evaluate returns the first completed line in WinCombos order.
// A full board without a line and a board in progress both yield an empty Result.
func Evaluate(board entity.Board) Result {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.CellEmpty && a == b && b == c {
			return Result{Winner: a, Line: []int{combo[0], combo[1], combo[2]}}
		}
	}

	return Result{}
}

// IsFull reports whether no empty cell is left.
func IsFull(board entity.Board) bool {
	for _, cell := range board {
		if cell == entity.CellEmpty {
			return false
		}
	}

	return true
}

// Decided reports whether the board is won or drawn.
func Decided(board entity.Board) bool {
	return Evaluate(board).HasWinner() || IsFull(board)
}
