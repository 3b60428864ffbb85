package entity

const (
	ActionTest  = "test"
	ActionMove  = "move"
	ActionReset = "reset"
	ActionStart = "start"
)

// Message represents a frame exchanged with the opponent service.
type Message struct {
	Action      string `json:"action"`
	Position    *int   `json:"position,omitempty"`
	Board       *Board `json:"board,omitempty"`
	FirstPlayer string `json:"first_player,omitempty"`
}

func NewTestMessage() Message {
	return Message{Action: ActionTest}
}

func NewResetMessage() Message {
	return Message{Action: ActionReset}
}

func NewStartMessage() Message {
	return Message{Action: ActionStart}
}

// NewMoveMessage - copies the board so later moves don't leak into a queued message.
func NewMoveMessage(position int, board Board) Message {
	return Message{
		Action:   ActionMove,
		Position: &position,
		Board:    &board,
	}
}
