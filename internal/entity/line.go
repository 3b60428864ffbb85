package entity

type LineKind string

const (
	LineHorizontal LineKind = "horizontal"
	LineVertical   LineKind = "vertical"
	LineDiagonal   LineKind = "diagonal"
)

const (
	lineFirstOffset = 50
	lineCellSize    = 100
)

// Line - placement of the decoration drawn over a winning combo. Offset is
// the distance of the line from the board's top (horizontal) or left
// (vertical) edge; diagonals are centered and rotated by Angle degrees.
type Line struct {
	Combo  int      `json:"combo"`
	Kind   LineKind `json:"kind"`
	Offset int      `json:"offset,omitempty"`
	Angle  int      `json:"angle,omitempty"`
}

// LineFor - returns the decoration for a combo index from WinCombos.
func LineFor(combo int) Line {
	switch {
	case combo < 3:
		return Line{Combo: combo, Kind: LineHorizontal, Offset: lineFirstOffset + combo*lineCellSize}
	case combo < 6:
		return Line{Combo: combo, Kind: LineVertical, Offset: lineFirstOffset + (combo-3)*lineCellSize}
	case combo == 6:
		return Line{Combo: combo, Kind: LineDiagonal, Angle: 45}
	default:
		return Line{Combo: combo, Kind: LineDiagonal, Angle: -45}
	}
}
