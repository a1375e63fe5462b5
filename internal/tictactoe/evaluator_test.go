package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const (
	x = entity.CellX
	o = entity.CellO
	e = entity.CellEmpty
)

func TestEvaluate(t *testing.T) {
	t.Run("Empty board has no winner", func(t *testing.T) {
		// When: evaluating an empty board
		result := Evaluate(entity.Board{})

		// Then: there is no winner and no line
		assert.Equal(t, Result{}, result)
		assert.False(t, result.HasWinner())
		assert.Empty(t, result.Line)
	})

	t.Run("Every line is detected for both players", func(t *testing.T) {
		for _, mark := range []entity.Cell{x, o} {
			for _, combo := range WinCombos {
				// Given: a board where only one line is filled with the mark
				var board entity.Board
				for _, index := range combo {
					board[index] = mark
				}

				// When: evaluating the board
				result := Evaluate(board)

				// Then: the mark and its line are reported
				assert.Equal(t, mark, result.Winner)
				assert.Equal(t, []int{combo[0], combo[1], combo[2]}, result.Line)
			}
		}
	})

	t.Run("Column win", func(t *testing.T) {
		// Given: X:0, O:1, X:3, O:2, X:6
		board := entity.Board{
			x, o, o,
			x, e, e,
			x, e, e,
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: X wins on the first column
		assert.Equal(t, x, result.Winner)
		assert.Equal(t, []int{0, 3, 6}, result.Line)
	})

	t.Run("Rows take priority over columns and diagonals", func(t *testing.T) {
		// Given: a board where row 0, column 0 and the main diagonal are all X
		board := entity.Board{
			x, x, x,
			x, x, o,
			x, o, x,
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: the top row is reported
		assert.Equal(t, []int{0, 1, 2}, result.Line)
	})

	t.Run("Main diagonal is checked before the anti-diagonal", func(t *testing.T) {
		// Given: both diagonals are X
		board := entity.Board{
			x, o, x,
			o, x, o,
			x, e, x,
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: the main diagonal is reported
		assert.Equal(t, []int{0, 4, 8}, result.Line)
	})

	t.Run("Full board without a line has no winner", func(t *testing.T) {
		// Given: a drawn board
		board := entity.Board{
			x, o, x,
			o, x, x,
			o, x, o,
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: no winner is reported, the board is full and decided
		assert.False(t, result.HasWinner())
		assert.True(t, IsFull(board))
		assert.True(t, Decided(board))
	})
}

func TestIsFull(t *testing.T) {
	assert.False(t, IsFull(entity.Board{}))
	assert.False(t, IsFull(entity.Board{x, o, x, o, x, o, o, x, e}))
	assert.True(t, IsFull(entity.Board{x, o, x, o, x, o, o, x, o}))
}

func TestDecided(t *testing.T) {
	t.Run("Board in progress is not decided", func(t *testing.T) {
		assert.False(t, Decided(entity.Board{x, o, e, e, x, e, e, e, o}))
	})

	t.Run("Won board is decided", func(t *testing.T) {
		assert.True(t, Decided(entity.Board{x, x, x, o, o, e, e, e, e}))
	})
}
