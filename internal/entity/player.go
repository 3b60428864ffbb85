package entity

// FirstPlayerOpponent - value of first_player naming the opponent service.
const FirstPlayerOpponent = "AI"

type Side int

const (
	SideLocal Side = iota
	SideOpponent
)

// Mark - the local player is always X, the opponent always O.
func (that Side) Mark() Mark {
	if that == SideOpponent {
		return PlayerO
	}
	return PlayerX
}

// ParseFirstPlayer - anything other than "AI" hands the first move to the local player.
func ParseFirstPlayer(value string) Side {
	if value == FirstPlayerOpponent {
		return SideOpponent
	}
	return SideLocal
}
