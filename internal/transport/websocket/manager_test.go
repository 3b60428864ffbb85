package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRefused = errors.New("connection refused")

type fakeDialer struct {
	mu    sync.Mutex
	calls int
}

func (that *fakeDialer) DialContext(context.Context, string, http.Header) (*gorilla.Conn, *http.Response, error) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.calls++
	return nil, nil, errRefused
}

func (that *fakeDialer) Calls() int {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.calls
}

type fakeScheduler struct {
	delays []time.Duration
	funcs  []func()
}

func (that *fakeScheduler) AfterFunc(d time.Duration, f func()) {
	that.delays = append(that.delays, d)
	that.funcs = append(that.funcs, f)
}

type fakeHandler struct {
	moves    []int
	assigned []string
	ready    int
	lost     int
	closed   int
	failed   int
}

func (that *fakeHandler) ApplyRemoteMove(cell int)             { that.moves = append(that.moves, cell) }
func (that *fakeHandler) AssignFirstPlayer(firstPlayer string) { that.assigned = append(that.assigned, firstPlayer) }
func (that *fakeHandler) OnReady()                             { that.ready++ }
func (that *fakeHandler) OnConnectionLost()                    { that.lost++ }
func (that *fakeHandler) OnDisconnected()                      { that.closed++ }
func (that *fakeHandler) OnConnectionFailed()                  { that.failed++ }

type fixture struct {
	manager   *Manager
	queue     *event.Queue
	dialer    *fakeDialer
	scheduler *fakeScheduler
	handler   *fakeHandler
}

func newFixture(t *testing.T, url string) *fixture {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	f := &fixture{
		queue:     event.NewQueue(16),
		dialer:    &fakeDialer{},
		scheduler: &fakeScheduler{},
		handler:   &fakeHandler{},
	}
	t.Cleanup(f.queue.Close)

	f.manager = NewManager(logger, Options{
		URL:          url,
		MaxAttempts:  3,
		RetryDelay:   2 * time.Second,
		DialTimeout:  time.Second,
		WriteTimeout: time.Second,
	}, f.queue)
	f.manager.scheduler = f.scheduler
	f.manager.SetHandler(f.handler)

	return f
}

func (that *fixture) next(t *testing.T) event.Event {
	t.Helper()

	select {
	case ev := <-that.queue.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event posted")
		return nil
	}
}

// openSession fakes a session that is already open, without a connection.
func (that *fixture) openSession(id string) {
	that.manager.session = &Session{ID: id, State: SessionOpen}
}

func TestManager_Reconnect(t *testing.T) {
	t.Run("Abnormal closures retry until the budget is spent", func(t *testing.T) {
		// Given: a service that refuses every connection
		f := newFixture(t, "ws://localhost:1")
		f.manager.dialer = f.dialer
		ctx := context.Background()

		f.manager.Connect(ctx)

		for attempt := 1; attempt <= 2; attempt++ {
			// When: the dial fails
			failed, ok := f.next(t).(event.SessionFailed)
			require.True(t, ok)
			f.manager.HandleFailed(failed)

			// Then: exactly one retry is scheduled after two seconds
			assert.Equal(t, attempt, f.manager.Attempts())
			require.Len(t, f.scheduler.funcs, attempt)
			assert.Equal(t, 2*time.Second, f.scheduler.delays[attempt-1])
			assert.Equal(t, attempt, f.handler.lost)

			// When: the delay elapses
			f.scheduler.funcs[attempt-1]()
			_, ok = f.next(t).(event.RetryElapsed)
			require.True(t, ok)
			f.manager.Connect(ctx)
		}

		// When: the third attempt fails as well
		failed, ok := f.next(t).(event.SessionFailed)
		require.True(t, ok)
		f.manager.HandleFailed(failed)

		// Then: no further retry, terminal failure reported
		assert.Equal(t, 3, f.manager.Attempts())
		assert.Len(t, f.scheduler.funcs, 2)
		assert.Equal(t, 1, f.handler.failed)
		assert.Equal(t, 3, f.dialer.Calls())

		// When: connect is called once more
		f.manager.Connect(ctx)

		// Then: it is abandoned without dialing
		assert.Equal(t, 3, f.dialer.Calls())
		assert.Equal(t, 2, f.handler.failed)
	})

	t.Run("Normal closure never retries", func(t *testing.T) {
		// Given: an open session
		f := newFixture(t, "")
		f.openSession("s1")

		// When: it closes with the normal-closure code
		f.manager.HandleClosed(event.SessionClosed{SessionID: "s1", Code: gorilla.CloseNormalClosure})

		// Then: no retry is scheduled
		assert.Empty(t, f.scheduler.funcs)
		assert.Zero(t, f.manager.Attempts())
		assert.Equal(t, 1, f.handler.closed)
		assert.False(t, f.manager.IsOpen())
	})

	t.Run("Each abnormal closure counts once", func(t *testing.T) {
		// Given: an open session
		f := newFixture(t, "")
		f.openSession("s1")

		// When: a transport error is followed by the closure
		f.manager.HandleError(event.SessionError{SessionID: "s1", Err: io.ErrUnexpectedEOF})
		f.manager.HandleClosed(event.SessionClosed{SessionID: "s1", Code: gorilla.CloseAbnormalClosure})
		f.manager.HandleClosed(event.SessionClosed{SessionID: "s1", Code: gorilla.CloseAbnormalClosure})

		// Then: the failure is counted and retried once
		assert.Equal(t, 1, f.manager.Attempts())
		assert.Len(t, f.scheduler.funcs, 1)
	})

	t.Run("Events of a stale session are dropped", func(t *testing.T) {
		f := newFixture(t, "")
		f.openSession("current")

		f.manager.HandleClosed(event.SessionClosed{SessionID: "old", Code: gorilla.CloseAbnormalClosure})
		f.manager.HandleFrame(event.FrameReceived{SessionID: "old", Data: []byte(`{"action":"move","position":1}`)})

		assert.Zero(t, f.manager.Attempts())
		assert.Empty(t, f.handler.moves)
		assert.True(t, f.manager.IsOpen())
	})

	t.Run("Connect is skipped while closing", func(t *testing.T) {
		f := newFixture(t, "ws://localhost:1")
		f.manager.dialer = f.dialer

		f.manager.Close()
		f.manager.Connect(context.Background())

		assert.Zero(t, f.dialer.Calls())
	})
}

func TestManager_HandleFrame(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		moves    []int
		assigned []string
	}{
		{name: "Move", frame: `{"action":"move","position":4}`, moves: []int{4}},
		{name: "Move to cell zero", frame: `{"action":"move","position":0}`, moves: []int{0}},
		{name: "Out of range move is left to the controller", frame: `{"action":"move","position":12}`, moves: []int{12}},
		{name: "Move without position", frame: `{"action":"move"}`},
		{name: "Move with fractional position", frame: `{"action":"move","position":1.5}`},
		{name: "Start", frame: `{"action":"start","first_player":"AI"}`, assigned: []string{"AI"}},
		{name: "Unknown action", frame: `{"action":"chat","text":"hi"}`},
		{name: "Not JSON", frame: `move 4`},
		{name: "JSON array", frame: `[1,2,3]`},
		{name: "Null", frame: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: an open session
			f := newFixture(t, "")
			f.openSession("s1")

			// When: the frame arrives
			f.manager.HandleFrame(event.FrameReceived{SessionID: "s1", Data: []byte(tt.frame)})

			// Then: only well-formed moves and assignments reach the handler
			assert.Equal(t, tt.moves, f.handler.moves)
			assert.Equal(t, tt.assigned, f.handler.assigned)
			assert.True(t, f.manager.IsOpen())
		})
	}
}

func TestManager_SendWithoutSession(t *testing.T) {
	// Given: a manager that never connected
	f := newFixture(t, "")

	// When: a message is sent
	// Then: it is dropped without a panic
	assert.NotPanics(t, func() {
		f.manager.Send(entity.NewStartMessage())
	})
	assert.False(t, f.manager.IsOpen())
}

type opponentServer struct {
	*httptest.Server
	received chan entity.Message
	conns    chan *gorilla.Conn
	errs     chan error
}

func newOpponentServer(t *testing.T) *opponentServer {
	t.Helper()

	srv := &opponentServer{
		received: make(chan entity.Message, 16),
		conns:    make(chan *gorilla.Conn, 1),
		errs:     make(chan error, 1),
	}

	upgrader := gorilla.Upgrader{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		srv.conns <- conn

		for {
			var msg entity.Message
			if err = conn.ReadJSON(&msg); err != nil {
				srv.errs <- err
				return
			}
			srv.received <- msg
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func (that *opponentServer) url() string {
	return "ws" + strings.TrimPrefix(that.URL, "http")
}

func TestManager_Session(t *testing.T) {
	// Given: an opponent service and a manager with two failures behind it
	srv := newOpponentServer(t)
	f := newFixture(t, srv.url())
	f.manager.attempts = 2

	// When: the manager connects
	f.manager.Connect(context.Background())
	opened, ok := f.next(t).(event.SessionOpened)
	require.True(t, ok)
	f.manager.HandleOpened(opened)

	// Then: the counter is reset and the handshake is sent
	assert.True(t, f.manager.IsOpen())
	assert.Zero(t, f.manager.Attempts())
	assert.Equal(t, 1, f.handler.ready)

	handshake := <-srv.received
	assert.Equal(t, entity.ActionTest, handshake.Action)

	// When: the client sends a move
	board := entity.NewBoard()
	board[0] = entity.PlayerX
	f.manager.Send(entity.NewMoveMessage(0, board))

	// Then: the service receives it intact
	move := <-srv.received
	assert.Equal(t, entity.ActionMove, move.Action)
	require.NotNil(t, move.Position)
	assert.Equal(t, 0, *move.Position)
	assert.Equal(t, board, *move.Board)

	// When: the service answers and then closes abnormally
	conn := <-srv.conns
	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte(`{"action":"move","position":4}`)))

	frame, ok := f.next(t).(event.FrameReceived)
	require.True(t, ok)
	f.manager.HandleFrame(frame)
	assert.Equal(t, []int{4}, f.handler.moves)

	closeMsg := gorilla.FormatCloseMessage(gorilla.CloseInternalServerErr, "agent crashed")
	require.NoError(t, conn.WriteControl(gorilla.CloseMessage, closeMsg, time.Now().Add(time.Second)))

	closed, ok := f.next(t).(event.SessionClosed)
	require.True(t, ok)
	assert.Equal(t, gorilla.CloseInternalServerErr, closed.Code)
	f.manager.HandleClosed(closed)

	// Then: one retry is scheduled
	assert.False(t, f.manager.IsOpen())
	assert.Equal(t, 1, f.manager.Attempts())
	assert.Len(t, f.scheduler.funcs, 1)

	// When: sending on the closed session
	f.manager.Send(entity.NewResetMessage())

	// Then: nothing reaches the service
	select {
	case msg := <-srv.received:
		t.Fatalf("unexpected message %q", msg.Action)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_Close(t *testing.T) {
	// Given: an open session
	srv := newOpponentServer(t)
	f := newFixture(t, srv.url())

	f.manager.Connect(context.Background())
	opened, ok := f.next(t).(event.SessionOpened)
	require.True(t, ok)
	f.manager.HandleOpened(opened)
	<-srv.conns
	<-srv.received

	// When: the client quits
	f.manager.Close()

	// Then: the service sees a normal closure
	var err error
	select {
	case err = <-srv.errs:
	case <-time.After(2 * time.Second):
		t.Fatal("service saw no closure")
	}
	assert.True(t, gorilla.IsCloseError(err, gorilla.CloseNormalClosure), "got %v", err)
	assert.False(t, f.manager.IsOpen())
	assert.Empty(t, f.scheduler.funcs)
}

func TestManager_ConnectionDropped(t *testing.T) {
	// Given: a service that drops the TCP connection without a close frame
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := gorilla.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.UnderlyingConn().Close()
	}))
	t.Cleanup(srv.Close)

	f := newFixture(t, "ws"+strings.TrimPrefix(srv.URL, "http"))

	f.manager.Connect(context.Background())
	opened, ok := f.next(t).(event.SessionOpened)
	require.True(t, ok)
	f.manager.HandleOpened(opened)

	// When: the read fails
	sessionErr, ok := f.next(t).(event.SessionError)
	require.True(t, ok)
	require.Error(t, sessionErr.Err)
	f.manager.HandleError(sessionErr)

	closed, ok := f.next(t).(event.SessionClosed)
	require.True(t, ok)
	assert.Equal(t, gorilla.CloseAbnormalClosure, closed.Code)
	f.manager.HandleClosed(closed)

	// Then: the drop counts as one abnormal closure with one retry
	assert.False(t, f.manager.IsOpen())
	assert.Equal(t, 1, f.manager.Attempts())
	assert.Len(t, f.scheduler.funcs, 1)
	assert.Equal(t, 1, f.handler.lost)
	assert.Zero(t, f.handler.failed)

	select {
	case ev := <-f.queue.Events():
		t.Fatalf("unexpected event %T", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
