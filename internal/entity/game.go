package entity

// Cell is the content of one square of the board.
type Cell string

const (
	CellEmpty Cell = ""
	CellX     Cell = "X"
	CellO     Cell = "O"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"

	PlayerTie = "-"
)

const (
	BoardSize = 9
	BoardSide = 3
)

// Board holds the cells row by row: row = index/3, column = index%3.
type Board [BoardSize]Cell

// IsOccupied reports whether the cell at index holds a mark.
func (that Board) IsOccupied(index int) bool {
	return that[index] != CellEmpty
}

// Coords are the 1-indexed row and column of a played move.
// The zero value marks the initial snapshot.
type Coords struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// CoordsOf returns the coordinates of the board index.
func CoordsOf(index int) Coords {
	return Coords{
		Row:    index/BoardSide + 1,
		Column: index%BoardSide + 1,
	}
}

// Index maps coordinates back to a board index, -1 for the initial snapshot.
func (that Coords) Index() int {
	if that.Row == 0 || that.Column == 0 {
		return -1
	}

	return (that.Row-1)*BoardSide + that.Column - 1
}

// Snapshot is one board state plus the move that produced it.
type Snapshot struct {
	Board  Board  `json:"board"`
	Coords Coords `json:"coords"`
}
