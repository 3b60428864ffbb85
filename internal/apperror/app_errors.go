package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrNotWaiting       = errors.New("not waiting for opponent move")
	ErrNotAssigning     = errors.New("not waiting for first player assignment")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrMissingPosition  = errors.New("move has no position")
	ErrMalformedMessage = errors.New("malformed message")
	ErrSessionNotOpen   = errors.New("session is not open")
	ErrBudgetExhausted  = errors.New("reconnect budget exhausted")
)
