package event

import "github.com/gorilla/websocket"

// Event is anything the game loop dispatches. Handlers for one event run to
// completion before the next event is taken from the queue.
type Event interface {
	isEvent()
}

// CellActivated - the local player picked a cell.
type CellActivated struct {
	Cell int
}

// RestartRequested - the local player asked for a new game.
type RestartRequested struct{}

// Quit - the local player closed the client.
type Quit struct{}

// SessionOpened - the dial of session SessionID succeeded.
type SessionOpened struct {
	SessionID string
	Conn      *websocket.Conn
}

// SessionFailed - the dial of session SessionID failed.
type SessionFailed struct {
	SessionID string
	Err       error
}

// FrameReceived - a text frame arrived on session SessionID.
type FrameReceived struct {
	SessionID string
	Data      []byte
}

// SessionError - a transport error on session SessionID. A SessionClosed
// event for the same session always follows.
type SessionError struct {
	SessionID string
	Err       error
}

// SessionClosed - session SessionID is gone.
type SessionClosed struct {
	SessionID string
	Code      int
	Reason    string
}

// RetryElapsed - the reconnect delay is over.
type RetryElapsed struct{}

func (CellActivated) isEvent()    {}
func (RestartRequested) isEvent() {}
func (Quit) isEvent()             {}
func (SessionOpened) isEvent()    {}
func (SessionFailed) isEvent()    {}
func (FrameReceived) isEvent()    {}
func (SessionError) isEvent()     {}
func (SessionClosed) isEvent()    {}
func (RetryElapsed) isEvent()     {}
