package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
)

type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

const BoardSize = 9

// WinCombos - rows, then columns, then the two diagonals. The index of a combo
// selects its winning line, see LineFor.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board - cells in row-major order.
type Board [BoardSize]Mark

func NewBoard() Board {
	return Board{EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell}
}

// ValidateCell - checks that the cell exists and is empty.
func (that *Board) ValidateCell(cell int) error {
	if cell < 0 || cell >= len(that) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return nil
}

// WinningCombo - returns the index of the first combo filled with player, or -1.
func (that *Board) WinningCombo(player Mark) int {
	for i, combo := range WinCombos {
		if that[combo[0]] == player && that[combo[1]] == player && that[combo[2]] == player {
			return i
		}
	}

	return -1
}

// IsFull - every cell holds X or O.
func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// EmptyCells - positions still free.
func (that *Board) EmptyCells() []int {
	cells := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

type GameState int

const (
	StatePlaying GameState = iota
	StateWaiting
	StateAssigning
	StateWin
	StateDraw
)

func (that GameState) String() string {
	switch that {
	case StatePlaying:
		return "playing"
	case StateWaiting:
		return "waiting"
	case StateAssigning:
		return "assigning"
	case StateWin:
		return "win"
	case StateDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// IsFinished - win and draw are terminal until reset.
func (that GameState) IsFinished() bool {
	return that == StateWin || that == StateDraw
}
