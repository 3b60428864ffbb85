package entity

import "time"

const (
	GameEventReset    = "reset"
	GameEventAssigned = "assigned"
	GameEventMove     = "move"
	GameEventFinished = "finished"
)

// GameEvent - a game transition published for external observers.
type GameEvent struct {
	GameID   string    `json:"game_id"`
	Type     string    `json:"type"`
	Player   Mark      `json:"player,omitempty"`
	Position *int      `json:"position,omitempty"`
	Board    Board     `json:"board"`
	State    string    `json:"state"`
	Winner   Mark      `json:"winner,omitempty"`
	Line     *Line     `json:"line,omitempty"`
	Time     time.Time `json:"time"`
}
