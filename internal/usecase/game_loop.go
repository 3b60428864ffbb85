package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-client/internal/event"
)

type connectionManager interface {
	Connect(ctx context.Context)
	HandleOpened(ev event.SessionOpened)
	HandleFailed(ev event.SessionFailed)
	HandleFrame(ev event.FrameReceived)
	HandleError(ev event.SessionError)
	HandleClosed(ev event.SessionClosed)
	Close()
}

type gameController interface {
	ApplyLocalMove(cell int)
	ResetGame()
}

// GameLoop dispatches every event of the client on a single goroutine, so the
// board and the session never need a lock.
type GameLoop struct {
	logger *slog.Logger
	queue  *event.Queue

	manager    connectionManager
	controller gameController
}

func NewGameLoop(logger *slog.Logger, queue *event.Queue, manager connectionManager, controller gameController) *GameLoop {
	return &GameLoop{
		logger: logger.With("component", "game_loop"),
		queue:  queue,

		manager:    manager,
		controller: controller,
	}
}

// Run - connects, starts the first game and dispatches events until ctx is
// canceled or the player quits.
func (that *GameLoop) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	defer that.queue.Close()

	that.manager.Connect(ctx)
	that.controller.ResetGame()

	for {
		select {
		case <-ctx.Done():
			log.Info("context canceled, stopping game loop")
			that.manager.Close()
			return nil
		case ev := <-that.queue.Events():
			if !that.dispatch(ctx, ev) {
				log.Info("player quit, stopping game loop")
				that.manager.Close()
				return nil
			}
		}
	}
}

// dispatch - returns false when the loop has to stop.
func (that *GameLoop) dispatch(ctx context.Context, ev event.Event) bool {
	switch ev := ev.(type) {
	case event.CellActivated:
		that.controller.ApplyLocalMove(ev.Cell)
	case event.RestartRequested:
		that.controller.ResetGame()
	case event.Quit:
		return false
	case event.SessionOpened:
		that.manager.HandleOpened(ev)
	case event.SessionFailed:
		that.manager.HandleFailed(ev)
	case event.FrameReceived:
		that.manager.HandleFrame(ev)
	case event.SessionError:
		that.manager.HandleError(ev)
	case event.SessionClosed:
		that.manager.HandleClosed(ev)
	case event.RetryElapsed:
		that.manager.Connect(ctx)
	default:
		that.logger.Error("unknown event", "event", fmt.Sprintf("%T", ev))
	}

	return true
}
