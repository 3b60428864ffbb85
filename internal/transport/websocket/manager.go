package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/event"
)

type dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*gorilla.Conn, *http.Response, error)
}

type scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type poster interface {
	Post(ev event.Event) bool
}

// handler receives what the opponent service says and how the connection fares.
type handler interface {
	ApplyRemoteMove(cell int)
	AssignFirstPlayer(firstPlayer string)
	OnReady()
	OnConnectionLost()
	OnDisconnected()
	OnConnectionFailed()
}

type Options struct {
	URL          string
	MaxAttempts  int
	RetryDelay   time.Duration
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// Manager owns the session to the opponent service. Connect and the Handle*
// methods must be called from the game loop goroutine; dialing and reading
// happen elsewhere and come back as events.
type Manager struct {
	logger *slog.Logger
	opts   Options

	dialer    dialer
	scheduler scheduler
	poster    poster
	handler   handler

	session  *Session
	attempts int
	closing  bool
}

func NewManager(logger *slog.Logger, opts Options, poster poster) *Manager {
	return &Manager{
		logger: logger.With("component", "connection_manager"),
		opts:   opts,

		dialer:    &gorilla.Dialer{HandshakeTimeout: opts.DialTimeout},
		scheduler: timerScheduler{},
		poster:    poster,
	}
}

// SetHandler - attaches the receiver of inbound messages.
func (that *Manager) SetHandler(handler handler) {
	that.handler = handler
}

// Attempts - consecutive abnormal closures since the last successful open.
func (that *Manager) Attempts() int {
	return that.attempts
}

func (that *Manager) IsOpen() bool {
	return that.session != nil && that.session.State == SessionOpen
}

// Connect - starts one connection attempt unless the reconnect budget is spent.
func (that *Manager) Connect(ctx context.Context) {
	log := that.logger.With("method", "Connect")

	if that.closing {
		log.Debug("manager is closing, connect skipped")
		return
	}

	if that.attempts >= that.opts.MaxAttempts {
		log.Error("connection abandoned", "error", apperror.ErrBudgetExhausted, "attempts", that.attempts)
		that.handler.OnConnectionFailed()
		return
	}

	if that.session != nil && that.session.State != SessionClosed {
		log.Warn("connection attempt already in flight", "session_id", that.session.ID, "state", that.session.State.String())
		return
	}

	session := newSession()
	that.session = session

	log.Info("connecting", "url", that.opts.URL, "session_id", session.ID)

	go that.dial(ctx, session.ID)
}

func (that *Manager) dial(ctx context.Context, sessionID string) {
	dialCtx, cancel := context.WithTimeout(ctx, that.opts.DialTimeout)
	defer cancel()

	conn, resp, err := that.dialer.DialContext(dialCtx, that.opts.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		that.poster.Post(event.SessionFailed{SessionID: sessionID, Err: err})
		return
	}

	if !that.poster.Post(event.SessionOpened{SessionID: sessionID, Conn: conn}) {
		_ = conn.Close()
	}
}

// HandleOpened - the dial succeeded.
func (that *Manager) HandleOpened(ev event.SessionOpened) {
	log := that.logger.With("method", "HandleOpened", "session_id", ev.SessionID)

	if !that.isCurrent(ev.SessionID) || that.closing {
		log.Debug("stale session opened, closing it")
		_ = ev.Conn.Close()
		return
	}

	that.session.open(ev.Conn)
	that.attempts = 0

	log.Info("connected to opponent service")

	go that.read(ev.SessionID, ev.Conn)

	that.Send(entity.NewTestMessage())
	that.handler.OnReady()
}

// HandleFailed - the dial failed; counted like an abnormal closure.
func (that *Manager) HandleFailed(ev event.SessionFailed) {
	if !that.isCurrent(ev.SessionID) {
		return
	}

	that.logger.Warn("failed to connect", "method", "HandleFailed", "session_id", ev.SessionID, "error", ev.Err)

	that.HandleClosed(event.SessionClosed{
		SessionID: ev.SessionID,
		Code:      gorilla.CloseAbnormalClosure,
		Reason:    ev.Err.Error(),
	})
}

// HandleFrame - decodes an untrusted frame and hands it to the handler.
func (that *Manager) HandleFrame(ev event.FrameReceived) {
	log := that.logger.With("method", "HandleFrame", "session_id", ev.SessionID)

	if !that.isCurrent(ev.SessionID) {
		log.Debug("frame from stale session dropped")
		return
	}

	var msg entity.Message
	if err := json.Unmarshal(ev.Data, &msg); err != nil {
		log.Warn("frame dropped", "error", fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err))
		return
	}

	log.Debug("message received", "action", msg.Action)

	switch msg.Action {
	case entity.ActionMove:
		if msg.Position == nil {
			log.Warn("frame dropped", "error", apperror.ErrMissingPosition)
			return
		}
		that.handler.ApplyRemoteMove(*msg.Position)
	case entity.ActionStart:
		that.handler.AssignFirstPlayer(msg.FirstPlayer)
	default:
		log.Debug("message ignored", "action", msg.Action)
	}
}

// HandleError - transport errors are only logged, the closure that follows
// decides about the retry.
func (that *Manager) HandleError(ev event.SessionError) {
	if !that.isCurrent(ev.SessionID) {
		return
	}

	that.logger.Error("transport error", "method", "HandleError", "session_id", ev.SessionID, "error", ev.Err)
}

// HandleClosed - schedules a retry after an abnormal closure while the budget lasts.
func (that *Manager) HandleClosed(ev event.SessionClosed) {
	log := that.logger.With("method", "HandleClosed", "session_id", ev.SessionID, "code", ev.Code, "reason", ev.Reason)

	if !that.isCurrent(ev.SessionID) || that.session.State == SessionClosed {
		log.Debug("closure of stale session dropped")
		return
	}

	that.session.close(ev.Code, ev.Reason)

	if ev.Code == gorilla.CloseNormalClosure || that.closing {
		log.Info("session closed")
		that.handler.OnDisconnected()
		return
	}

	that.attempts++

	if that.attempts < that.opts.MaxAttempts {
		log.Warn("session closed abnormally, reconnecting", "attempts", that.attempts, "delay", that.opts.RetryDelay)
		that.handler.OnConnectionLost()
		that.scheduler.AfterFunc(that.opts.RetryDelay, func() {
			that.poster.Post(event.RetryElapsed{})
		})
		return
	}

	log.Error("session closed abnormally, giving up", "error", apperror.ErrBudgetExhausted, "attempts", that.attempts)
	that.handler.OnConnectionFailed()
}

// Send - writes one frame. Without an open session the message is logged and dropped.
func (that *Manager) Send(msg entity.Message) {
	log := that.logger.With("method", "Send", "action", msg.Action)

	if !that.IsOpen() {
		log.Warn("message dropped", "error", apperror.ErrSessionNotOpen)
		return
	}

	conn := that.session.conn
	if err := conn.SetWriteDeadline(time.Now().Add(that.opts.WriteTimeout)); err != nil {
		log.Error("failed to set write deadline", "error", err)
	}

	if err := conn.WriteJSON(msg); err != nil {
		log.Error("failed to send message", "error", err)
	}
}

// Close - ends the session with a normal closure so no retry follows.
func (that *Manager) Close() {
	that.closing = true

	if !that.IsOpen() {
		return
	}

	log := that.logger.With("method", "Close", "session_id", that.session.ID)

	deadline := time.Now().Add(that.opts.WriteTimeout)
	payload := gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, "client quit")
	if err := that.session.conn.WriteControl(gorilla.CloseMessage, payload, deadline); err != nil {
		log.Warn("failed to send close frame", "error", err)
	}

	that.session.close(gorilla.CloseNormalClosure, "client quit")
	log.Info("session closed by client")
}

func (that *Manager) isCurrent(sessionID string) bool {
	return that.session != nil && that.session.ID == sessionID
}

// read - forwards frames of conn until it fails. Runs on its own goroutine.
func (that *Manager) read(sessionID string, conn *gorilla.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			that.postClosure(sessionID, err)
			return
		}

		if msgType != gorilla.TextMessage {
			that.logger.Debug("non-text frame ignored", "session_id", sessionID, "type", msgType)
			continue
		}

		if !that.poster.Post(event.FrameReceived{SessionID: sessionID, Data: data}) {
			return
		}
	}
}

func (that *Manager) postClosure(sessionID string, err error) {
	var closeErr *gorilla.CloseError
	if errors.As(err, &closeErr) {
		that.poster.Post(event.SessionClosed{SessionID: sessionID, Code: closeErr.Code, Reason: closeErr.Text})
		return
	}

	that.poster.Post(event.SessionError{SessionID: sessionID, Err: err})
	that.poster.Post(event.SessionClosed{SessionID: sessionID, Code: gorilla.CloseAbnormalClosure, Reason: err.Error()})
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
