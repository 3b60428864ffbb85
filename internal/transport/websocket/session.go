package websocket

import (
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
)

type SessionState int

const (
	SessionConnecting SessionState = iota
	SessionOpen
	SessionClosed
)

func (that SessionState) String() string {
	switch that {
	case SessionConnecting:
		return "connecting"
	case SessionOpen:
		return "open"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session wraps one connection attempt to the opponent service.
type Session struct {
	ID          string
	State       SessionState
	CloseCode   int
	CloseReason string

	conn *gorilla.Conn
}

func newSession() *Session {
	return &Session{
		ID:    uuid.NewString(),
		State: SessionConnecting,
	}
}

func (that *Session) open(conn *gorilla.Conn) {
	that.conn = conn
	that.State = SessionOpen
}

func (that *Session) close(code int, reason string) {
	that.State = SessionClosed
	that.CloseCode = code
	that.CloseReason = reason

	if that.conn != nil {
		_ = that.conn.Close()
	}
}
